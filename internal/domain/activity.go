// Package domain defines the business logic for the club backend: the
// activity registry, the check-in ledger, the reward-accounting rule, and the
// participant aggregation view.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// ActivityStatus represents the lifecycle state of an activity.
type ActivityStatus string

const (
	ActivityStatusUpcoming  ActivityStatus = "upcoming"
	ActivityStatusOngoing   ActivityStatus = "ongoing"
	ActivityStatusCompleted ActivityStatus = "completed"
	ActivityStatusCancelled ActivityStatus = "cancelled"
)

// Valid reports whether s is a known lifecycle state.
func (s ActivityStatus) Valid() bool {
	switch s {
	case ActivityStatusUpcoming, ActivityStatusOngoing, ActivityStatusCompleted, ActivityStatusCancelled:
		return true
	}
	return false
}

// statusTransitions enumerates the permitted lifecycle moves. Completed and
// cancelled are terminal.
var statusTransitions = map[ActivityStatus][]ActivityStatus{
	ActivityStatusUpcoming: {ActivityStatusOngoing, ActivityStatusCancelled},
	ActivityStatusOngoing:  {ActivityStatusCompleted, ActivityStatusCancelled},
}

// CanTransitionTo reports whether the lifecycle permits moving from s to next.
func (s ActivityStatus) CanTransitionTo(next ActivityStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// OpenForCheckIn reports whether members may still check in.
func (s ActivityStatus) OpenForCheckIn() bool {
	return s == ActivityStatusUpcoming || s == ActivityStatusOngoing
}

// Activity is a scheduled club event eligible for attendance and reward.
type Activity struct {
	ID               string
	Title            string
	Type             string
	StartsAt         time.Time
	EndsAt           *time.Time
	Location         *string
	Description      *string
	CheckinEnabled   bool
	RequiresEvidence bool
	Status           ActivityStatus
	GemAmount        int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CreateActivityInput captures the payload from the API layer. Nil optional
// fields take the documented defaults.
type CreateActivityInput struct {
	Title            string
	Type             string
	StartsAt         time.Time
	EndsAt           *time.Time
	Location         *string
	Description      *string
	CheckinEnabled   *bool
	RequiresEvidence *bool
	Status           *ActivityStatus
	GemAmount        *int
}

// Validate ensures required fields are present and well formed.
func (in CreateActivityInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return Validationf("title is required")
	}
	if strings.TrimSpace(in.Type) == "" {
		return Validationf("type is required")
	}
	if in.StartsAt.IsZero() {
		return Validationf("starts_at is required")
	}
	if in.EndsAt != nil && in.EndsAt.Before(in.StartsAt) {
		return Validationf("ends_at must not be before starts_at")
	}
	if in.Status != nil && !in.Status.Valid() {
		return Validationf("unknown status %q", *in.Status)
	}
	if in.GemAmount != nil && *in.GemAmount < 0 {
		return Validationf("gem_amount must not be negative")
	}
	return nil
}

// Optional distinguishes an absent patch field from an explicitly supplied
// value, including an explicit null for nullable attributes.
type Optional[T any] struct {
	Set   bool
	Value T
}

// Some wraps a supplied value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// ActivityPatch carries partial-update fields. The registry applies this
// fixed attribute list; unset fields leave the stored value untouched.
type ActivityPatch struct {
	Title            Optional[string]
	Type             Optional[string]
	StartsAt         Optional[time.Time]
	EndsAt           Optional[*time.Time]
	Location         Optional[*string]
	Description      Optional[*string]
	CheckinEnabled   Optional[bool]
	RequiresEvidence Optional[bool]
	Status           Optional[ActivityStatus]
	GemAmount        Optional[int]
}

// IsEmpty reports whether no field was supplied.
func (p ActivityPatch) IsEmpty() bool {
	return !p.Title.Set && !p.Type.Set && !p.StartsAt.Set && !p.EndsAt.Set &&
		!p.Location.Set && !p.Description.Set && !p.CheckinEnabled.Set &&
		!p.RequiresEvidence.Set && !p.Status.Set && !p.GemAmount.Set
}

// Apply validates the patch against the current record and mutates it in
// place. The caller refreshes UpdatedAt and persists the result.
func (p ActivityPatch) Apply(a *Activity) error {
	if p.Title.Set {
		if strings.TrimSpace(p.Title.Value) == "" {
			return Validationf("title must not be empty")
		}
		a.Title = p.Title.Value
	}
	if p.Type.Set {
		if strings.TrimSpace(p.Type.Value) == "" {
			return Validationf("type must not be empty")
		}
		a.Type = p.Type.Value
	}
	if p.StartsAt.Set {
		if p.StartsAt.Value.IsZero() {
			return Validationf("starts_at must be a valid timestamp")
		}
		a.StartsAt = p.StartsAt.Value
	}
	if p.EndsAt.Set {
		a.EndsAt = p.EndsAt.Value
	}
	if a.EndsAt != nil && a.EndsAt.Before(a.StartsAt) {
		return Validationf("ends_at must not be before starts_at")
	}
	if p.Location.Set {
		a.Location = p.Location.Value
	}
	if p.Description.Set {
		a.Description = p.Description.Value
	}
	if p.CheckinEnabled.Set {
		a.CheckinEnabled = p.CheckinEnabled.Value
	}
	if p.RequiresEvidence.Set {
		a.RequiresEvidence = p.RequiresEvidence.Value
	}
	if p.Status.Set && p.Status.Value != a.Status {
		if !p.Status.Value.Valid() {
			return Validationf("unknown status %q", p.Status.Value)
		}
		if !a.Status.CanTransitionTo(p.Status.Value) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, a.Status, p.Status.Value)
		}
		a.Status = p.Status.Value
	}
	if p.GemAmount.Set {
		if p.GemAmount.Value < 0 {
			return Validationf("gem_amount must not be negative")
		}
		a.GemAmount = p.GemAmount.Value
	}
	return nil
}
