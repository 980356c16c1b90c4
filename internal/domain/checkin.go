package domain

import "time"

// CheckInStatus represents the review state of an attendance claim.
type CheckInStatus string

const (
	CheckInStatusPending  CheckInStatus = "pending"
	CheckInStatusAttended CheckInStatus = "attended"
	CheckInStatusRejected CheckInStatus = "rejected"
)

// Decision reports whether s is a value an administrator may decide on a
// pending check-in.
func (s CheckInStatus) Decision() bool {
	return s == CheckInStatusAttended || s == CheckInStatusRejected
}

// CheckIn is a member's attendance claim against an activity. At most one
// exists per (user, activity) pair.
type CheckIn struct {
	ID          string
	UserID      string
	ActivityID  string
	CheckedAt   time.Time
	Status      CheckInStatus
	Evidence    *string
	GemsAwarded int
	RewardedAt  *time.Time
	CreatedAt   time.Time
}

// MemberIdentity carries the public profile fields joined into the
// participant view.
type MemberIdentity struct {
	UserID   string
	Username string
	Email    string
	Avatar   *string
	ClubRole string
}

// Participant pairs a check-in with the submitting member's identity.
type Participant struct {
	CheckIn CheckIn
	Member  MemberIdentity
}

// ParticipantStats summarises review states for an activity's check-ins.
// Attended + Pending + Rejected always equals Total.
type ParticipantStats struct {
	Total    int
	Attended int
	Pending  int
	Rejected int
}

// Standing is one row of the gem ranking view.
type Standing struct {
	UserID     string
	Username   string
	Avatar     *string
	GemBalance int64
}
