package controllers

import (
	"encoding/json"
	"net/http"

	"reachout_server/services"
)

// MatchController struct
type MatchController struct {
	MatchService *services.MatchService
}

// NewMatchController initializes the match controller
func NewMatchController(service *services.MatchService) *MatchController {
	return &MatchController{MatchService: service}
}

// HandleAccept - Helper accepts a request; idempotent on retries
func (c *MatchController) HandleAccept(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RequestID   string `json:"requestId"`
		HelperID    string `json:"helperId"`
		RequesterID string `json:"requesterId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	threadID, err := c.MatchService.Accept(r.Context(), body.RequestID, body.HelperID, body.RequesterID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"threadId": threadID})
}

// HandleActiveMatch - First active match for a requester, or null
func (c *MatchController) HandleActiveMatch(w http.ResponseWriter, r *http.Request) {
	requesterID := r.URL.Query().Get("requesterId")
	if requesterID == "" {
		http.Error(w, `{"error": "requesterId is required"}`, http.StatusBadRequest)
		return
	}

	match, err := c.MatchService.ActiveMatchFor(r.Context(), requesterID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, match)
}
