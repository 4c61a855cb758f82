package routes

import (
	"reachout_server/controllers"
	"reachout_server/services"

	"github.com/gorilla/mux"
)

// RegisterSessionRoutes sets up routes for session recovery under /api/session
func RegisterSessionRoutes(r *mux.Router, sessionService *services.SessionService) {
	controller := controllers.NewSessionController(sessionService)

	sessionRouter := r.PathPrefix("/api/session").Subrouter()

	sessionRouter.HandleFunc("/pointer", controller.HandlePersistPointer).Methods("PUT")
	sessionRouter.HandleFunc("/pointer", controller.HandleRecoverPointer).Methods("GET")
	sessionRouter.HandleFunc("/pointer", controller.HandleClearPointer).Methods("DELETE")
}
