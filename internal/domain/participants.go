package domain

import "context"

// ParticipantReport is the admin review view for one activity.
type ParticipantReport struct {
	Activity     Activity
	Participants []Participant
	Stats        ParticipantStats
}

// Aggregator builds the read-only participant view. It performs no mutation
// and tolerates slightly stale snapshots.
type Aggregator struct {
	activities ActivityRepository
	checkIns   CheckInRepository
}

// NewAggregator constructs an Aggregator.
func NewAggregator(activities ActivityRepository, checkIns CheckInRepository) *Aggregator {
	return &Aggregator{activities: activities, checkIns: checkIns}
}

// ListParticipants joins an activity's check-ins with member identities and
// computes attendance statistics.
func (a *Aggregator) ListParticipants(ctx context.Context, activityID string) (*ParticipantReport, error) {
	activity, err := a.activities.GetActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if activity == nil {
		return nil, ErrActivityNotFound
	}

	participants, err := a.checkIns.ListParticipants(ctx, activityID)
	if err != nil {
		return nil, err
	}

	stats := ParticipantStats{Total: len(participants)}
	for _, p := range participants {
		switch p.CheckIn.Status {
		case CheckInStatusAttended:
			stats.Attended++
		case CheckInStatusPending:
			stats.Pending++
		case CheckInStatusRejected:
			stats.Rejected++
		}
	}

	return &ParticipantReport{
		Activity:     *activity,
		Participants: participants,
		Stats:        stats,
	}, nil
}
