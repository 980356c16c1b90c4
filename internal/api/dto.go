package api

import (
	"encoding/json"
	"strings"
	"time"

	"example.com/club/internal/assistant"
	"example.com/club/internal/domain"
)

// CreateActivityRequest is the payload for POST /v1/activities.
type CreateActivityRequest struct {
	Title            string     `json:"title"`
	Type             string     `json:"type"`
	StartsAt         time.Time  `json:"starts_at"`
	EndsAt           *time.Time `json:"ends_at"`
	Location         *string    `json:"location"`
	Description      *string    `json:"description"`
	CheckinEnabled   *bool      `json:"checkin_enabled"`
	RequiresEvidence *bool      `json:"requires_evidence"`
	Status           *string    `json:"status"`
	GemAmount        *int       `json:"gem_amount"`
}

// ToInput maps the request onto the domain input.
func (r CreateActivityRequest) ToInput() domain.CreateActivityInput {
	input := domain.CreateActivityInput{
		Title:            strings.TrimSpace(r.Title),
		Type:             strings.TrimSpace(r.Type),
		StartsAt:         r.StartsAt,
		EndsAt:           r.EndsAt,
		Location:         r.Location,
		Description:      r.Description,
		CheckinEnabled:   r.CheckinEnabled,
		RequiresEvidence: r.RequiresEvidence,
		GemAmount:        r.GemAmount,
	}
	if r.Status != nil {
		status := domain.ActivityStatus(*r.Status)
		input.Status = &status
	}
	return input
}

// UpdateActivityRequest is the payload for PUT /v1/activities/{id}. Decoding
// tracks which keys were present so that an absent field, an explicit null,
// and a zero value stay distinguishable.
type UpdateActivityRequest struct {
	Patch domain.ActivityPatch
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *UpdateActivityRequest) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	for key, raw := range fields {
		var err error
		switch key {
		case "title":
			var v string
			if err = json.Unmarshal(raw, &v); err == nil {
				r.Patch.Title = domain.Some(v)
			}
		case "type":
			var v string
			if err = json.Unmarshal(raw, &v); err == nil {
				r.Patch.Type = domain.Some(v)
			}
		case "starts_at":
			var v time.Time
			if err = json.Unmarshal(raw, &v); err == nil {
				r.Patch.StartsAt = domain.Some(v)
			}
		case "ends_at":
			var v *time.Time
			if err = json.Unmarshal(raw, &v); err == nil {
				r.Patch.EndsAt = domain.Some(v)
			}
		case "location":
			var v *string
			if err = json.Unmarshal(raw, &v); err == nil {
				r.Patch.Location = domain.Some(v)
			}
		case "description":
			var v *string
			if err = json.Unmarshal(raw, &v); err == nil {
				r.Patch.Description = domain.Some(v)
			}
		case "checkin_enabled":
			var v bool
			if err = json.Unmarshal(raw, &v); err == nil {
				r.Patch.CheckinEnabled = domain.Some(v)
			}
		case "requires_evidence":
			var v bool
			if err = json.Unmarshal(raw, &v); err == nil {
				r.Patch.RequiresEvidence = domain.Some(v)
			}
		case "status":
			var v string
			if err = json.Unmarshal(raw, &v); err == nil {
				r.Patch.Status = domain.Some(domain.ActivityStatus(v))
			}
		case "gem_amount":
			var v int
			if err = json.Unmarshal(raw, &v); err == nil {
				r.Patch.GemAmount = domain.Some(v)
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// SubmitCheckInRequest is the payload for POST /v1/activities/{id}/checkins.
type SubmitCheckInRequest struct {
	Evidence string `json:"evidence"`
}

// ReviewCheckInRequest is the payload for POST /v1/checkins/{id}/review.
type ReviewCheckInRequest struct {
	Decision string `json:"decision"`
}

// ActivityView exposes full details about an activity.
type ActivityView struct {
	ActivityID       string     `json:"activity_id"`
	Title            string     `json:"title"`
	Type             string     `json:"type"`
	StartsAt         time.Time  `json:"starts_at"`
	EndsAt           *time.Time `json:"ends_at"`
	Location         *string    `json:"location"`
	Description      *string    `json:"description"`
	CheckinEnabled   bool       `json:"checkin_enabled"`
	RequiresEvidence bool       `json:"requires_evidence"`
	Status           string     `json:"status"`
	GemAmount        int        `json:"gem_amount"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func toActivityView(a domain.Activity) ActivityView {
	return ActivityView{
		ActivityID:       a.ID,
		Title:            a.Title,
		Type:             a.Type,
		StartsAt:         a.StartsAt,
		EndsAt:           a.EndsAt,
		Location:         a.Location,
		Description:      a.Description,
		CheckinEnabled:   a.CheckinEnabled,
		RequiresEvidence: a.RequiresEvidence,
		Status:           string(a.Status),
		GemAmount:        a.GemAmount,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

// ListActivitiesResponse packages list results.
type ListActivitiesResponse struct {
	Activities []ActivityView `json:"activities"`
}

// DeleteActivityResponse reports the removed record.
type DeleteActivityResponse struct {
	Message string `json:"message"`
	Deleted struct {
		ActivityID string `json:"activity_id"`
		Title      string `json:"title"`
	} `json:"deleted_activity"`
}

// CheckInView exposes a check-in record.
type CheckInView struct {
	CheckInID   string     `json:"checkin_id"`
	UserID      string     `json:"user_id"`
	ActivityID  string     `json:"activity_id"`
	CheckedAt   time.Time  `json:"checked_at"`
	Status      string     `json:"status"`
	Evidence    *string    `json:"evidence"`
	GemsAwarded int        `json:"gems_awarded"`
	RewardedAt  *time.Time `json:"rewarded_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toCheckInView(c domain.CheckIn) CheckInView {
	return CheckInView{
		CheckInID:   c.ID,
		UserID:      c.UserID,
		ActivityID:  c.ActivityID,
		CheckedAt:   c.CheckedAt,
		Status:      string(c.Status),
		Evidence:    c.Evidence,
		GemsAwarded: c.GemsAwarded,
		RewardedAt:  c.RewardedAt,
		CreatedAt:   c.CreatedAt,
	}
}

// ReviewCheckInResponse pairs the settled check-in with the reward, if any.
type ReviewCheckInResponse struct {
	CheckIn CheckInView `json:"checkin"`
	Reward  *RewardView `json:"reward,omitempty"`
}

// RewardView reports a settled gem credit.
type RewardView struct {
	UserID     string `json:"user_id"`
	Gems       int    `json:"gems"`
	NewBalance int64  `json:"new_balance"`
}

// ParticipantView is one row of the admin review table.
type ParticipantView struct {
	CheckInID   string    `json:"checkin_id"`
	UserID      string    `json:"user_id"`
	CheckedAt   time.Time `json:"checked_at"`
	Status      string    `json:"status"`
	Evidence    *string   `json:"evidence"`
	GemsAwarded int       `json:"gems_awarded"`
	CreatedAt   time.Time `json:"created_at"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Avatar      *string   `json:"avatar"`
	ClubRole    string    `json:"club_role"`
}

// ParticipantStatsView summarises an activity's check-ins.
type ParticipantStatsView struct {
	TotalParticipants int `json:"total_participants"`
	AttendedCount     int `json:"attended_count"`
	PendingCount      int `json:"pending_count"`
	RejectedCount     int `json:"rejected_count"`
}

// ParticipantsResponse is the admin review view for one activity.
type ParticipantsResponse struct {
	Activity     ActivityView         `json:"activity"`
	Participants []ParticipantView    `json:"participants"`
	Stats        ParticipantStatsView `json:"stats"`
}

func toParticipantsResponse(report domain.ParticipantReport) ParticipantsResponse {
	resp := ParticipantsResponse{
		Activity:     toActivityView(report.Activity),
		Participants: make([]ParticipantView, 0, len(report.Participants)),
		Stats: ParticipantStatsView{
			TotalParticipants: report.Stats.Total,
			AttendedCount:     report.Stats.Attended,
			PendingCount:      report.Stats.Pending,
			RejectedCount:     report.Stats.Rejected,
		},
	}
	for _, p := range report.Participants {
		resp.Participants = append(resp.Participants, ParticipantView{
			CheckInID:   p.CheckIn.ID,
			UserID:      p.CheckIn.UserID,
			CheckedAt:   p.CheckIn.CheckedAt,
			Status:      string(p.CheckIn.Status),
			Evidence:    p.CheckIn.Evidence,
			GemsAwarded: p.CheckIn.GemsAwarded,
			CreatedAt:   p.CheckIn.CreatedAt,
			Username:    p.Member.Username,
			Email:       p.Member.Email,
			Avatar:      p.Member.Avatar,
			ClubRole:    p.Member.ClubRole,
		})
	}
	return resp
}

// StandingView is one row of the gem ranking.
type StandingView struct {
	UserID     string  `json:"user_id"`
	Username   string  `json:"username"`
	Avatar     *string `json:"avatar"`
	GemBalance int64   `json:"gem_balance"`
}

// RankingResponse packages the gem standings.
type RankingResponse struct {
	Standings []StandingView `json:"standings"`
}

// AssistantTurn is one prior exchange supplied by the caller.
type AssistantTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// AssistantMessageRequest is the payload for POST /v1/assistant/messages.
type AssistantMessageRequest struct {
	Message string          `json:"message"`
	History []AssistantTurn `json:"history"`
}

// ToTurns maps the caller-supplied history to assistant turns.
func (r AssistantMessageRequest) ToTurns() []assistant.Turn {
	turns := make([]assistant.Turn, 0, len(r.History))
	for _, t := range r.History {
		turns = append(turns, assistant.Turn{Role: t.Role, Text: t.Text})
	}
	return turns
}

// AssistantMessageResponse carries the model's reply.
type AssistantMessageResponse struct {
	Reply string `json:"reply"`
}

// AssistantHistoryResponse is always empty: the caller owns the transcript.
type AssistantHistoryResponse struct {
	Messages []AssistantTurn `json:"messages"`
}
