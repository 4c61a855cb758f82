package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"reachout_server/services"
)

// RequestController struct
type RequestController struct {
	RequestService *services.RequestService
}

// NewRequestController initializes the request controller
func NewRequestController(service *services.RequestService) *RequestController {
	return &RequestController{RequestService: service}
}

// HandleCreateRequest - Create a new help request
func (c *RequestController) HandleCreateRequest(w http.ResponseWriter, r *http.Request) {
	var input services.CreateRequestInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	requestID, err := c.RequestService.Create(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"requestId": requestID})
}

// HandleListRequests - Fetch the full request feed, newest first
func (c *RequestController) HandleListRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := c.RequestService.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

// HandleNearbyRequests - Fetch pending requests near the caller
func (c *RequestController) HandleNearbyRequests(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	lat, latErr := strconv.ParseFloat(query.Get("latitude"), 64)
	lng, lngErr := strconv.ParseFloat(query.Get("longitude"), 64)
	if latErr != nil || lngErr != nil {
		http.Error(w, `{"error": "latitude and longitude are required"}`, http.StatusBadRequest)
		return
	}
	ownerID := query.Get("ownerId")

	maxAgeMinutes, _ := strconv.Atoi(query.Get("maxAgeMinutes"))
	maxDistanceKm, _ := strconv.ParseFloat(query.Get("maxDistanceKm"), 64)

	all, err := c.RequestService.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	origin := services.LatLng{Latitude: lat, Longitude: lng}
	nearby := services.Nearby(all, origin, ownerID, maxAgeMinutes, maxDistanceKm)
	if nearby == nil {
		nearby = []services.NearbyRequest{}
	}
	writeJSON(w, http.StatusOK, nearby)
}

// HandleCancelRequest - Cancel a request (requester) or a help offer (helper)
func (c *RequestController) HandleCancelRequest(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RequestID   string `json:"requestId"`
		ActorID     string `json:"actorId"`
		IsRequester bool   `json:"isRequester"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	if err := c.RequestService.Cancel(r.Context(), body.RequestID, body.ActorID, body.IsRequester); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Request cancelled"})
}

// HandleCompleteRequest - Helper marks the drop-off as done
func (c *RequestController) HandleCompleteRequest(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RequestID string `json:"requestId"`
		HelperID  string `json:"helperId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	if err := c.RequestService.Complete(r.Context(), body.RequestID, body.HelperID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Request completed"})
}
