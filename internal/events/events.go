// Package events defines the payloads recorded in the outbox and published
// to Kafka for downstream consumers.
package events

import "time"

// ActivityCreated is emitted when an administrator creates an activity.
type ActivityCreated struct {
	ActivityID   string    `json:"activity_id"`
	Title        string    `json:"title"`
	ActivityType string    `json:"activity_type"`
	StartsAt     time.Time `json:"starts_at"`
	Status       string    `json:"status"`
	GemAmount    int       `json:"gem_amount"`
}

// CheckInRecorded is emitted when a member submits an attendance claim.
type CheckInRecorded struct {
	CheckInID  string    `json:"checkin_id"`
	ActivityID string    `json:"activity_id"`
	UserID     string    `json:"user_id"`
	CheckedAt  time.Time `json:"checked_at"`
}

// CheckInDecided is emitted when an administrator settles a claim. GemsAwarded
// is zero for rejections and for activities without a reward.
type CheckInDecided struct {
	CheckInID   string    `json:"checkin_id"`
	ActivityID  string    `json:"activity_id"`
	UserID      string    `json:"user_id"`
	Decision    string    `json:"decision"`
	GemsAwarded int       `json:"gems_awarded"`
	DecidedAt   time.Time `json:"decided_at"`
}
