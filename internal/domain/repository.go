package domain

import "context"

// ActivityRepository captures persistence operations for activities.
// Get and Delete return nil without error when the id is unknown.
type ActivityRepository interface {
	ListActivities(ctx context.Context) ([]Activity, error)
	GetActivity(ctx context.Context, id string) (*Activity, error)
	CreateActivity(ctx context.Context, activity Activity) error
	// UpdateActivity replaces the stored row. Returns ErrActivityNotFound if
	// the activity vanished between read and write.
	UpdateActivity(ctx context.Context, activity Activity) error
	// DeleteActivity removes the activity and returns the prior record.
	// Returns ErrActivityHasCheckIns while check-ins reference it.
	DeleteActivity(ctx context.Context, id string) (*Activity, error)
}

// CheckInRepository captures persistence operations for check-ins. The store
// is the synchronization point: uniqueness per (user, activity) and the
// one-shot decision are enforced by constraints and guarded writes, not by
// application-level checks.
type CheckInRepository interface {
	GetCheckIn(ctx context.Context, id string) (*CheckIn, error)
	// CreateCheckIn inserts the claim. Returns ErrDuplicateCheckIn when a row
	// already exists for the (user, activity) pair.
	CreateCheckIn(ctx context.Context, checkIn CheckIn) error
	// DecideCheckIn transitions a pending check-in to the decision and, when
	// credit is non-nil, credits the member's gem balance and persists the
	// rewarded marker in the same transaction. Returns the updated check-in
	// and the resulting balance. Returns ErrCheckInNotFound if the row is
	// absent and ErrAlreadyDecided if it is no longer pending.
	DecideCheckIn(ctx context.Context, id string, decision CheckInStatus, credit *GemCredit) (*CheckIn, int64, error)
	// ListParticipants returns the activity's check-ins ordered by checked_at
	// descending, joined with member identities.
	ListParticipants(ctx context.Context, activityID string) ([]Participant, error)
}

// BalanceRepository exposes the read side of the gem ledger owned by the user
// collaborator. Writes happen exclusively through DecideCheckIn.
type BalanceRepository interface {
	GemBalance(ctx context.Context, userID string) (int64, error)
	Standings(ctx context.Context, limit int) ([]Standing, error)
}
