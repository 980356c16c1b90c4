package auth

// OAuth scopes recognized by the club backend.
const (
	// ScopeAdmin allows activity management and check-in review.
	ScopeAdmin = "club:admin"
	// ScopeMember allows browsing, check-in submission, and the assistant.
	ScopeMember = "club:member"
)
