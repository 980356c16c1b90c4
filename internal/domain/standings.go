package domain

import "context"

const defaultStandingsLimit = 100

// Standings serves the gem ranking view. Only the gem totals are read here;
// scoring beyond the balance ordering belongs to the ranking collaborator.
type Standings struct {
	balances BalanceRepository
}

// NewStandings constructs a Standings view.
func NewStandings(balances BalanceRepository) *Standings {
	return &Standings{balances: balances}
}

// Top returns members ordered by gem balance descending.
func (s *Standings) Top(ctx context.Context, limit int) ([]Standing, error) {
	if limit <= 0 || limit > defaultStandingsLimit {
		limit = defaultStandingsLimit
	}
	return s.balances.Standings(ctx, limit)
}
