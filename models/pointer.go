package models

// ActiveThreadPointer is a device-local resume point for an in-progress
// conversation. The corresponding Match is the source of truth; the pointer
// is re-validated on every app start and cleared when stale.
type ActiveThreadPointer struct {
	ThreadID  string `json:"threadId"`
	RequestID string `json:"requestId"`
	OtherID   string `json:"otherId"`
	Role      string `json:"role"` // "requester" or "helper"
	Urgency   string `json:"urgency,omitempty"`
	IsTopK    bool   `json:"isTopK,omitempty"`
}
