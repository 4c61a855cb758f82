package controllers

import (
	"encoding/json"
	"net/http"

	"reachout_server/models"
	"reachout_server/services"
)

// SessionController struct
type SessionController struct {
	SessionService *services.SessionService
}

// NewSessionController initializes the session controller
func NewSessionController(service *services.SessionService) *SessionController {
	return &SessionController{SessionService: service}
}

// HandlePersistPointer - Store a device's active-thread pointer
func (c *SessionController) HandlePersistPointer(w http.ResponseWriter, r *http.Request) {
	var body struct {
		DeviceID string                     `json:"deviceId"`
		Pointer  models.ActiveThreadPointer `json:"pointer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	if err := c.SessionService.PersistPointer(r.Context(), body.DeviceID, body.Pointer); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Pointer persisted"})
}

// HandleRecoverPointer - Reconcile the stored pointer against the
// authoritative match; null means no active session.
func (c *SessionController) HandleRecoverPointer(w http.ResponseWriter, r *http.Request) {
	deviceID := r.URL.Query().Get("deviceId")
	if deviceID == "" {
		http.Error(w, `{"error": "deviceId is required"}`, http.StatusBadRequest)
		return
	}

	pointer, err := c.SessionService.RecoverOnStart(r.Context(), deviceID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pointer)
}

// HandleClearPointer - Explicit removal on cancel, complete, or logout
func (c *SessionController) HandleClearPointer(w http.ResponseWriter, r *http.Request) {
	deviceID := r.URL.Query().Get("deviceId")
	if deviceID == "" {
		http.Error(w, `{"error": "deviceId is required"}`, http.StatusBadRequest)
		return
	}

	if err := c.SessionService.ClearPointer(r.Context(), deviceID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Pointer cleared"})
}
