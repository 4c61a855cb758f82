package models

// ✅ Request statuses (forward-only: no resurrection from a terminal state)
const (
	RequestStatusPending   = "pending"
	RequestStatusMatched   = "matched"
	RequestStatusCompleted = "completed"
	RequestStatusCancelled = "cancelled"
)

// ✅ Match statuses
const (
	MatchStatusActive    = "active"
	MatchStatusCompleted = "completed"
	MatchStatusCancelled = "cancelled"
)

// ✅ Thread kinds (human threads never get automated replies)
const (
	ThreadKindHuman     = "human"
	ThreadKindAutomated = "automated"
)

// ✅ Urgency levels
const (
	UrgencyUrgent = "urgent"
	UrgencyNormal = "normal"
	UrgencyLow    = "low"
)

// ✅ Pointer roles
const (
	RoleRequester = "requester"
	RoleHelper    = "helper"
)
