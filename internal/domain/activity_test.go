package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from    ActivityStatus
		to      ActivityStatus
		allowed bool
	}{
		{ActivityStatusUpcoming, ActivityStatusOngoing, true},
		{ActivityStatusUpcoming, ActivityStatusCancelled, true},
		{ActivityStatusUpcoming, ActivityStatusCompleted, false},
		{ActivityStatusOngoing, ActivityStatusCompleted, true},
		{ActivityStatusOngoing, ActivityStatusCancelled, true},
		{ActivityStatusOngoing, ActivityStatusUpcoming, false},
		{ActivityStatusCompleted, ActivityStatusOngoing, false},
		{ActivityStatusCompleted, ActivityStatusCancelled, false},
		{ActivityStatusCancelled, ActivityStatusUpcoming, false},
		{ActivityStatusCancelled, ActivityStatusOngoing, false},
	}

	for _, tc := range cases {
		require.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestOpenForCheckIn(t *testing.T) {
	require.True(t, ActivityStatusUpcoming.OpenForCheckIn())
	require.True(t, ActivityStatusOngoing.OpenForCheckIn())
	require.False(t, ActivityStatusCompleted.OpenForCheckIn())
	require.False(t, ActivityStatusCancelled.OpenForCheckIn())
}

func TestCreateActivityInputValidate(t *testing.T) {
	starts := time.Date(2025, time.November, 3, 18, 0, 0, 0, time.UTC)
	valid := CreateActivityInput{Title: "Board Games Night", Type: "social", StartsAt: starts}
	require.NoError(t, valid.Validate())

	missingTitle := valid
	missingTitle.Title = "  "
	require.Error(t, missingTitle.Validate())
	require.True(t, IsValidation(missingTitle.Validate()))

	missingType := valid
	missingType.Type = ""
	require.Error(t, missingType.Validate())

	noStart := valid
	noStart.StartsAt = time.Time{}
	require.Error(t, noStart.Validate())

	endsBefore := valid
	earlier := starts.Add(-time.Hour)
	endsBefore.EndsAt = &earlier
	require.Error(t, endsBefore.Validate())

	badStatus := valid
	unknown := ActivityStatus("archived")
	badStatus.Status = &unknown
	require.Error(t, badStatus.Validate())

	negativeGems := valid
	gems := -5
	negativeGems.GemAmount = &gems
	require.Error(t, negativeGems.Validate())
}

func TestPatchApply(t *testing.T) {
	starts := time.Date(2025, time.November, 3, 18, 0, 0, 0, time.UTC)
	ends := starts.Add(2 * time.Hour)
	location := "clubhouse"

	base := Activity{
		ID:        "act-1",
		Title:     "Hiking Trip",
		Type:      "outdoor",
		StartsAt:  starts,
		EndsAt:    &ends,
		Location:  &location,
		Status:    ActivityStatusUpcoming,
		GemAmount: 10,
	}

	t.Run("partial fields", func(t *testing.T) {
		a := base
		patch := ActivityPatch{
			Title:     Some("Night Hike"),
			GemAmount: Some(25),
		}
		require.NoError(t, patch.Apply(&a))
		require.Equal(t, "Night Hike", a.Title)
		require.Equal(t, 25, a.GemAmount)
		// untouched fields keep their values
		require.Equal(t, base.Type, a.Type)
		require.Equal(t, base.EndsAt, a.EndsAt)
	})

	t.Run("explicit null clears nullable field", func(t *testing.T) {
		a := base
		patch := ActivityPatch{
			EndsAt:   Some[*time.Time](nil),
			Location: Some[*string](nil),
		}
		require.NoError(t, patch.Apply(&a))
		require.Nil(t, a.EndsAt)
		require.Nil(t, a.Location)
	})

	t.Run("ends before starts rejected", func(t *testing.T) {
		a := base
		earlier := starts.Add(-time.Minute)
		patch := ActivityPatch{EndsAt: Some(&earlier)}
		err := patch.Apply(&a)
		require.True(t, IsValidation(err))
	})

	t.Run("valid transition", func(t *testing.T) {
		a := base
		patch := ActivityPatch{Status: Some(ActivityStatusOngoing)}
		require.NoError(t, patch.Apply(&a))
		require.Equal(t, ActivityStatusOngoing, a.Status)
	})

	t.Run("invalid transition", func(t *testing.T) {
		a := base
		patch := ActivityPatch{Status: Some(ActivityStatusCompleted)}
		err := patch.Apply(&a)
		require.ErrorIs(t, err, ErrInvalidStatusTransition)
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		a := base
		a.Status = ActivityStatusCompleted
		patch := ActivityPatch{Status: Some(ActivityStatusCompleted)}
		require.NoError(t, patch.Apply(&a))
	})

	t.Run("empty title rejected", func(t *testing.T) {
		a := base
		patch := ActivityPatch{Title: Some("   ")}
		require.True(t, IsValidation(patch.Apply(&a)))
	})
}

func TestPatchIsEmpty(t *testing.T) {
	require.True(t, ActivityPatch{}.IsEmpty())
	require.False(t, ActivityPatch{Title: Some("x")}.IsEmpty())
	require.False(t, ActivityPatch{EndsAt: Some[*time.Time](nil)}.IsEmpty())
}
