package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Ledger records and reviews attendance claims.
type Ledger struct {
	activities ActivityRepository
	checkIns   CheckInRepository
}

// NewLedger constructs a Ledger.
func NewLedger(activities ActivityRepository, checkIns CheckInRepository) *Ledger {
	return &Ledger{activities: activities, checkIns: checkIns}
}

// SubmitCheckIn records a member's attendance claim. Uniqueness per
// (user, activity) is enforced by the store constraint; two concurrent
// submissions leave exactly one row and one ErrDuplicateCheckIn.
func (l *Ledger) SubmitCheckIn(ctx context.Context, userID, activityID, evidence string) (*CheckIn, error) {
	activity, err := l.activities.GetActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if activity == nil {
		return nil, ErrActivityNotFound
	}

	if !activity.CheckinEnabled {
		return nil, fmt.Errorf("%w: check-in is disabled", ErrCheckInClosed)
	}
	if !activity.Status.OpenForCheckIn() {
		return nil, fmt.Errorf("%w: activity is %s", ErrCheckInClosed, activity.Status)
	}

	evidence = strings.TrimSpace(evidence)
	if activity.RequiresEvidence && evidence == "" {
		return nil, Validationf("evidence is required for this activity")
	}

	now := time.Now().UTC()
	checkIn := CheckIn{
		ID:         uuid.NewString(),
		UserID:     userID,
		ActivityID: activityID,
		CheckedAt:  now,
		Status:     CheckInStatusPending,
		CreatedAt:  now,
	}
	if evidence != "" {
		checkIn.Evidence = &evidence
	}

	if err := l.checkIns.CreateCheckIn(ctx, checkIn); err != nil {
		return nil, err
	}
	return &checkIn, nil
}

// ReviewCheckIn settles a pending claim. A decision of attended credits the
// member's gem balance exactly once: the status write, the credit, and the
// rewarded marker commit in one transaction, and the pending-only guard makes
// retries observe ErrAlreadyDecided instead of a second credit.
func (l *Ledger) ReviewCheckIn(ctx context.Context, checkInID string, decision CheckInStatus) (*CheckIn, *RewardReceipt, error) {
	if !decision.Decision() {
		return nil, nil, Validationf("decision must be %q or %q", CheckInStatusAttended, CheckInStatusRejected)
	}

	existing, err := l.checkIns.GetCheckIn(ctx, checkInID)
	if err != nil {
		return nil, nil, err
	}
	if existing == nil {
		return nil, nil, ErrCheckInNotFound
	}
	if existing.Status != CheckInStatusPending {
		return nil, nil, fmt.Errorf("%w: status is %s", ErrAlreadyDecided, existing.Status)
	}

	var credit *GemCredit
	if decision == CheckInStatusAttended {
		activity, err := l.activities.GetActivity(ctx, existing.ActivityID)
		if err != nil {
			return nil, nil, err
		}
		if activity == nil {
			// Deletion is restricted while check-ins exist, so this signals
			// store corruption rather than a caller mistake.
			return nil, nil, fmt.Errorf("activity %s missing for check-in %s", existing.ActivityID, checkInID)
		}
		credit = CreditForDecision(activity, existing.UserID, decision)
	}

	updated, newBalance, err := l.checkIns.DecideCheckIn(ctx, checkInID, decision, credit)
	if err != nil {
		return nil, nil, err
	}

	var receipt *RewardReceipt
	if credit != nil {
		receipt = &RewardReceipt{UserID: credit.UserID, Gems: credit.Amount, NewBalance: newBalance}
	}
	return updated, receipt, nil
}
