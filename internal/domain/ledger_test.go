package domain_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/club/internal/domain"
	"example.com/club/internal/persistence/memory"
)

func seedActivity(t *testing.T, registry *domain.Registry, input domain.CreateActivityInput) *domain.Activity {
	t.Helper()
	created, err := registry.CreateActivity(context.Background(), input)
	require.NoError(t, err)
	return created
}

func TestSubmitCheckIn(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	registry := domain.NewRegistry(store)
	ledger := domain.NewLedger(store, store)

	activity := seedActivity(t, registry, domain.CreateActivityInput{
		Title:    "Yoga Session",
		Type:     "sports",
		StartsAt: time.Date(2026, time.January, 10, 8, 0, 0, 0, time.UTC),
	})

	checkIn, err := ledger.SubmitCheckIn(ctx, "user-1", activity.ID, "")
	require.NoError(t, err)
	require.Equal(t, domain.CheckInStatusPending, checkIn.Status)
	require.Equal(t, "user-1", checkIn.UserID)
	require.Equal(t, activity.ID, checkIn.ActivityID)
	require.Nil(t, checkIn.Evidence)
	require.Zero(t, checkIn.GemsAwarded)

	_, err = ledger.SubmitCheckIn(ctx, "user-1", activity.ID, "")
	require.ErrorIs(t, err, domain.ErrDuplicateCheckIn)

	// another member may still check in
	_, err = ledger.SubmitCheckIn(ctx, "user-2", activity.ID, "")
	require.NoError(t, err)

	_, err = ledger.SubmitCheckIn(ctx, "user-1", "missing", "")
	require.ErrorIs(t, err, domain.ErrActivityNotFound)
}

func TestSubmitCheckInClosedStates(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	registry := domain.NewRegistry(store)
	ledger := domain.NewLedger(store, store)

	disabled := false
	noCheckIn := seedActivity(t, registry, domain.CreateActivityInput{
		Title:          "Members Only Dinner",
		Type:           "social",
		StartsAt:       time.Date(2026, time.January, 17, 19, 0, 0, 0, time.UTC),
		CheckinEnabled: &disabled,
	})

	_, err := ledger.SubmitCheckIn(ctx, "user-1", noCheckIn.ID, "")
	require.ErrorIs(t, err, domain.ErrCheckInClosed)

	for _, status := range []domain.ActivityStatus{domain.ActivityStatusCompleted, domain.ActivityStatusCancelled} {
		terminal := seedActivity(t, registry, domain.CreateActivityInput{
			Title:    "Past Event " + string(status),
			Type:     "social",
			StartsAt: time.Date(2026, time.January, 3, 19, 0, 0, 0, time.UTC),
			Status:   &status,
		})
		_, err := ledger.SubmitCheckIn(ctx, "user-1", terminal.ID, "")
		require.ErrorIs(t, err, domain.ErrCheckInClosed, "status %s", status)
	}
}

func TestSubmitCheckInEvidence(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	registry := domain.NewRegistry(store)
	ledger := domain.NewLedger(store, store)

	required := true
	activity := seedActivity(t, registry, domain.CreateActivityInput{
		Title:            "Beach Cleanup",
		Type:             "volunteering",
		StartsAt:         time.Date(2026, time.February, 7, 9, 0, 0, 0, time.UTC),
		RequiresEvidence: &required,
	})

	_, err := ledger.SubmitCheckIn(ctx, "user-1", activity.ID, "   ")
	require.True(t, domain.IsValidation(err))

	checkIn, err := ledger.SubmitCheckIn(ctx, "user-1", activity.ID, "  https://img.example/123.jpg  ")
	require.NoError(t, err)
	require.NotNil(t, checkIn.Evidence)
	require.Equal(t, "https://img.example/123.jpg", *checkIn.Evidence)
}

func TestReviewCheckInAttendedCreditsOnce(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	store.AddMember(domain.MemberIdentity{UserID: "user-1", Username: "ada"}, 5)
	registry := domain.NewRegistry(store)
	ledger := domain.NewLedger(store, store)

	gems := 30
	activity := seedActivity(t, registry, domain.CreateActivityInput{
		Title:     "Hackathon",
		Type:      "competition",
		StartsAt:  time.Date(2026, time.February, 14, 9, 0, 0, 0, time.UTC),
		GemAmount: &gems,
	})

	checkIn, err := ledger.SubmitCheckIn(ctx, "user-1", activity.ID, "")
	require.NoError(t, err)

	decided, receipt, err := ledger.ReviewCheckIn(ctx, checkIn.ID, domain.CheckInStatusAttended)
	require.NoError(t, err)
	require.Equal(t, domain.CheckInStatusAttended, decided.Status)
	require.Equal(t, 30, decided.GemsAwarded)
	require.NotNil(t, decided.RewardedAt)
	require.NotNil(t, receipt)
	require.Equal(t, "user-1", receipt.UserID)
	require.Equal(t, 30, receipt.Gems)
	require.Equal(t, int64(35), receipt.NewBalance)

	// a retry must not credit again
	_, _, err = ledger.ReviewCheckIn(ctx, checkIn.ID, domain.CheckInStatusAttended)
	require.ErrorIs(t, err, domain.ErrAlreadyDecided)

	balance, err := store.GemBalance(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, int64(35), balance)
}

func TestReviewCheckInCapturesGemAmountAtDecision(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	store.AddMember(domain.MemberIdentity{UserID: "user-1", Username: "ada"}, 0)
	registry := domain.NewRegistry(store)
	ledger := domain.NewLedger(store, store)

	gems := 10
	activity := seedActivity(t, registry, domain.CreateActivityInput{
		Title:     "Debate Night",
		Type:      "social",
		StartsAt:  time.Date(2026, time.February, 21, 19, 0, 0, 0, time.UTC),
		GemAmount: &gems,
	})

	checkIn, err := ledger.SubmitCheckIn(ctx, "user-1", activity.ID, "")
	require.NoError(t, err)

	_, err = registry.UpdateActivity(ctx, activity.ID, domain.ActivityPatch{GemAmount: domain.Some(100)})
	require.NoError(t, err)

	_, receipt, err := ledger.ReviewCheckIn(ctx, checkIn.ID, domain.CheckInStatusAttended)
	require.NoError(t, err)
	require.Equal(t, 100, receipt.Gems, "reward reads the activity at decision time")
}

func TestReviewCheckInRejectedAndZeroGems(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	store.AddMember(domain.MemberIdentity{UserID: "user-1", Username: "ada"}, 0)
	registry := domain.NewRegistry(store)
	ledger := domain.NewLedger(store, store)

	gems := 30
	rewarded := seedActivity(t, registry, domain.CreateActivityInput{
		Title:     "Rewarded Event",
		Type:      "social",
		StartsAt:  time.Date(2026, time.March, 7, 19, 0, 0, 0, time.UTC),
		GemAmount: &gems,
	})
	unrewarded := seedActivity(t, registry, domain.CreateActivityInput{
		Title:    "Casual Meetup",
		Type:     "social",
		StartsAt: time.Date(2026, time.March, 8, 19, 0, 0, 0, time.UTC),
	})

	rejectedClaim, err := ledger.SubmitCheckIn(ctx, "user-1", rewarded.ID, "")
	require.NoError(t, err)
	decided, receipt, err := ledger.ReviewCheckIn(ctx, rejectedClaim.ID, domain.CheckInStatusRejected)
	require.NoError(t, err)
	require.Equal(t, domain.CheckInStatusRejected, decided.Status)
	require.Nil(t, receipt)
	require.Zero(t, decided.GemsAwarded)
	require.Nil(t, decided.RewardedAt)

	zeroClaim, err := ledger.SubmitCheckIn(ctx, "user-1", unrewarded.ID, "")
	require.NoError(t, err)
	decided, receipt, err = ledger.ReviewCheckIn(ctx, zeroClaim.ID, domain.CheckInStatusAttended)
	require.NoError(t, err)
	require.Equal(t, domain.CheckInStatusAttended, decided.Status)
	require.Nil(t, receipt, "zero gem_amount earns no receipt")

	balance, err := store.GemBalance(ctx, "user-1")
	require.NoError(t, err)
	require.Zero(t, balance)
}

func TestReviewCheckInValidation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ledger := domain.NewLedger(store, store)

	_, _, err := ledger.ReviewCheckIn(ctx, "any", domain.CheckInStatusPending)
	require.True(t, domain.IsValidation(err))

	_, _, err = ledger.ReviewCheckIn(ctx, "any", domain.CheckInStatus("approved"))
	require.True(t, domain.IsValidation(err))

	_, _, err = ledger.ReviewCheckIn(ctx, "missing", domain.CheckInStatusAttended)
	require.ErrorIs(t, err, domain.ErrCheckInNotFound)
}
