package domain

// GemCredit is a pending balance mutation produced by the reward-accounting
// rule. The amount is the activity's gem_amount captured at decision time;
// later edits to the activity never change an already-settled reward.
type GemCredit struct {
	UserID string
	Amount int
}

// RewardReceipt reports a settled credit back to the caller.
type RewardReceipt struct {
	UserID     string
	Gems       int
	NewBalance int64
}

// CreditForDecision applies the reward-accounting rule: only a decision of
// attended earns gems, and only when the activity carries a positive amount.
func CreditForDecision(activity *Activity, userID string, decision CheckInStatus) *GemCredit {
	if decision != CheckInStatusAttended || activity.GemAmount <= 0 {
		return nil
	}
	return &GemCredit{UserID: userID, Amount: activity.GemAmount}
}
