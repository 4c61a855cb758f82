package controllers

import (
	"encoding/json"
	"net/http"

	"reachout_server/services"
)

// ChatController struct
type ChatController struct {
	ThreadService *services.ThreadService
	SafetyService *services.SafetyService
}

// NewChatController initializes the chat controller
func NewChatController(threads *services.ThreadService, safety *services.SafetyService) *ChatController {
	return &ChatController{ThreadService: threads, SafetyService: safety}
}

// HandleSendMessage - Filter the text through the safety gateway, append the
// message, and return the persisted message id with the safety flags. The
// caller correlates flags by that id, never by text content.
func (c *ChatController) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ThreadID string `json:"threadId"`
		SenderID string `json:"senderId"`
		Text     string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	filtered := c.SafetyService.FilterMessage(r.Context(), body.Text)

	messageID, err := c.ThreadService.Send(r.Context(), body.ThreadID, body.SenderID, filtered.TextRedacted)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"messageId": messageID,
		"flags":     filtered.Flags,
	})
}

// HandleGetMessages - Fetch a thread's messages ascending by creation time
func (c *ChatController) HandleGetMessages(w http.ResponseWriter, r *http.Request) {
	threadID := r.URL.Query().Get("threadId")
	if threadID == "" {
		http.Error(w, `{"error": "threadId is required"}`, http.StatusBadRequest)
		return
	}

	messages, err := c.ThreadService.Messages(r.Context(), threadID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}
