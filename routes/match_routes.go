package routes

import (
	"reachout_server/controllers"
	"reachout_server/services"

	"github.com/gorilla/mux"
)

// RegisterMatchRoutes sets up routes for matches under /api/matches
func RegisterMatchRoutes(r *mux.Router, matchService *services.MatchService) {
	controller := controllers.NewMatchController(matchService)

	matchRouter := r.PathPrefix("/api/matches").Subrouter()

	matchRouter.HandleFunc("/accept", controller.HandleAccept).Methods("POST")
	matchRouter.HandleFunc("/active", controller.HandleActiveMatch).Methods("GET")
}
