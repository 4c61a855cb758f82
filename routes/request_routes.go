package routes

import (
	"reachout_server/controllers"
	"reachout_server/services"

	"github.com/gorilla/mux"
)

// RegisterRequestRoutes sets up routes for help requests under /api/requests
func RegisterRequestRoutes(r *mux.Router, requestService *services.RequestService) {
	controller := controllers.NewRequestController(requestService)

	requestRouter := r.PathPrefix("/api/requests").Subrouter()

	requestRouter.HandleFunc("", controller.HandleCreateRequest).Methods("POST")
	requestRouter.HandleFunc("", controller.HandleListRequests).Methods("GET")
	requestRouter.HandleFunc("/nearby", controller.HandleNearbyRequests).Methods("GET")
	requestRouter.HandleFunc("/cancel", controller.HandleCancelRequest).Methods("POST")
	requestRouter.HandleFunc("/complete", controller.HandleCompleteRequest).Methods("POST")
}
