// Package memory stores club records in memory for unit tests and local
// development. It honors the same contracts as the Postgres repository:
// one check-in per (user, activity), one-shot decisions, and deletion
// restricted while check-ins exist.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"example.com/club/internal/domain"
)

// Store is an in-memory implementation of the domain repositories.
type Store struct {
	mu         sync.RWMutex
	activities map[string]domain.Activity
	checkIns   map[string]domain.CheckIn
	members    map[string]domain.MemberIdentity
	balances   map[string]int64
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{
		activities: make(map[string]domain.Activity),
		checkIns:   make(map[string]domain.CheckIn),
		members:    make(map[string]domain.MemberIdentity),
		balances:   make(map[string]int64),
	}
}

// AddMember seeds a member identity with a starting balance.
func (s *Store) AddMember(member domain.MemberIdentity, balance int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[member.UserID] = member
	s.balances[member.UserID] = balance
}

// ListActivities implements domain.ActivityRepository.
func (s *Store) ListActivities(ctx context.Context) ([]domain.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Activity, 0, len(s.activities))
	for _, a := range s.activities {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartsAt.After(out[j].StartsAt)
	})
	return out, nil
}

// GetActivity implements domain.ActivityRepository.
func (s *Store) GetActivity(ctx context.Context, id string) (*domain.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.activities[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

// CreateActivity implements domain.ActivityRepository.
func (s *Store) CreateActivity(ctx context.Context, activity domain.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activities[activity.ID] = activity
	return nil
}

// UpdateActivity implements domain.ActivityRepository.
func (s *Store) UpdateActivity(ctx context.Context, activity domain.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.activities[activity.ID]; !ok {
		return domain.ErrActivityNotFound
	}
	s.activities[activity.ID] = activity
	return nil
}

// DeleteActivity implements domain.ActivityRepository.
func (s *Store) DeleteActivity(ctx context.Context, id string) (*domain.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.activities[id]
	if !ok {
		return nil, nil
	}
	for _, c := range s.checkIns {
		if c.ActivityID == id {
			return nil, domain.ErrActivityHasCheckIns
		}
	}
	delete(s.activities, id)
	return &a, nil
}

// GetCheckIn implements domain.CheckInRepository.
func (s *Store) GetCheckIn(ctx context.Context, id string) (*domain.CheckIn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.checkIns[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// CreateCheckIn implements domain.CheckInRepository.
func (s *Store) CreateCheckIn(ctx context.Context, checkIn domain.CheckIn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.checkIns {
		if existing.UserID == checkIn.UserID && existing.ActivityID == checkIn.ActivityID {
			return domain.ErrDuplicateCheckIn
		}
	}
	s.checkIns[checkIn.ID] = checkIn
	return nil
}

// DecideCheckIn implements domain.CheckInRepository. The whole decision is
// applied under one lock, mirroring the Postgres transaction.
func (s *Store) DecideCheckIn(ctx context.Context, id string, decision domain.CheckInStatus, credit *domain.GemCredit) (*domain.CheckIn, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.checkIns[id]
	if !ok {
		return nil, 0, domain.ErrCheckInNotFound
	}
	if c.Status != domain.CheckInStatusPending {
		return nil, 0, domain.ErrAlreadyDecided
	}

	c.Status = decision
	var balance int64
	if credit != nil {
		now := time.Now().UTC()
		c.GemsAwarded = credit.Amount
		c.RewardedAt = &now
		s.balances[credit.UserID] += int64(credit.Amount)
		balance = s.balances[credit.UserID]
	}
	s.checkIns[id] = c
	return &c, balance, nil
}

// ListParticipants implements domain.CheckInRepository.
func (s *Store) ListParticipants(ctx context.Context, activityID string) ([]domain.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Participant, 0)
	for _, c := range s.checkIns {
		if c.ActivityID != activityID {
			continue
		}
		member, ok := s.members[c.UserID]
		if !ok {
			member = domain.MemberIdentity{UserID: c.UserID}
		}
		out = append(out, domain.Participant{CheckIn: c, Member: member})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CheckIn.CheckedAt.After(out[j].CheckIn.CheckedAt)
	})
	return out, nil
}

// GemBalance implements domain.BalanceRepository.
func (s *Store) GemBalance(ctx context.Context, userID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balances[userID], nil
}

// Standings implements domain.BalanceRepository.
func (s *Store) Standings(ctx context.Context, limit int) ([]domain.Standing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Standing, 0, len(s.members))
	for id, member := range s.members {
		out = append(out, domain.Standing{
			UserID:     id,
			Username:   member.Username,
			Avatar:     member.Avatar,
			GemBalance: s.balances[id],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].GemBalance != out[j].GemBalance {
			return out[i].GemBalance > out[j].GemBalance
		}
		return out[i].Username < out[j].Username
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
