package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Registry manages the activity lifecycle.
type Registry struct {
	repo ActivityRepository
}

// NewRegistry constructs a Registry.
func NewRegistry(repo ActivityRepository) *Registry {
	return &Registry{repo: repo}
}

// ListActivities returns all activities ordered by starts_at descending.
func (r *Registry) ListActivities(ctx context.Context) ([]Activity, error) {
	return r.repo.ListActivities(ctx)
}

// GetActivity fetches by ID.
func (r *Registry) GetActivity(ctx context.Context, id string) (*Activity, error) {
	activity, err := r.repo.GetActivity(ctx, id)
	if err != nil {
		return nil, err
	}
	if activity == nil {
		return nil, ErrActivityNotFound
	}
	return activity, nil
}

// CreateActivity validates the input, fills defaults, and persists the record.
func (r *Registry) CreateActivity(ctx context.Context, input CreateActivityInput) (*Activity, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	activity := Activity{
		ID:               uuid.NewString(),
		Title:            input.Title,
		Type:             input.Type,
		StartsAt:         input.StartsAt.UTC(),
		EndsAt:           input.EndsAt,
		Location:         input.Location,
		Description:      input.Description,
		CheckinEnabled:   true,
		RequiresEvidence: false,
		Status:           ActivityStatusUpcoming,
		GemAmount:        0,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if input.CheckinEnabled != nil {
		activity.CheckinEnabled = *input.CheckinEnabled
	}
	if input.RequiresEvidence != nil {
		activity.RequiresEvidence = *input.RequiresEvidence
	}
	if input.Status != nil {
		activity.Status = *input.Status
	}
	if input.GemAmount != nil {
		activity.GemAmount = *input.GemAmount
	}

	if err := r.repo.CreateActivity(ctx, activity); err != nil {
		return nil, err
	}
	return &activity, nil
}

// UpdateActivity applies a partial update. Empty patches are rejected rather
// than silently accepted.
func (r *Registry) UpdateActivity(ctx context.Context, id string, patch ActivityPatch) (*Activity, error) {
	if patch.IsEmpty() {
		return nil, Validationf("no fields to update")
	}

	current, err := r.repo.GetActivity(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrActivityNotFound
	}

	updated := *current
	if err := patch.Apply(&updated); err != nil {
		return nil, err
	}
	updated.UpdatedAt = time.Now().UTC()

	if err := r.repo.UpdateActivity(ctx, updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeletedActivity identifies a removed record.
type DeletedActivity struct {
	ID    string
	Title string
}

// DeleteActivity removes the activity. Deletion is refused while check-ins
// reference it, so settled rewards keep their audit trail.
func (r *Registry) DeleteActivity(ctx context.Context, id string) (*DeletedActivity, error) {
	deleted, err := r.repo.DeleteActivity(ctx, id)
	if err != nil {
		return nil, err
	}
	if deleted == nil {
		return nil, ErrActivityNotFound
	}
	return &DeletedActivity{ID: deleted.ID, Title: deleted.Title}, nil
}
