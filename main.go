package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"reachout_server/routes"
	"reachout_server/services"
	"reachout_server/socket"
	"reachout_server/utils"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Initialize DynamoDB client and service
	log.Println("Initializing DynamoDB client...")
	dynamoClient := services.InitializeDynamoDBClient()
	dynamoService := &services.DynamoService{Client: dynamoClient}
	log.Println("DynamoDB client initialized.")

	// Safety gateway client (external text-safety boundary)
	safetyURL := os.Getenv("SAFETY_SERVICE_URL")
	if safetyURL == "" {
		safetyURL = "http://localhost:8000"
	}
	safetyService := services.NewSafetyService(safetyURL)

	// Initialize Services
	events := services.NewChangeNotifier()
	requestService := &services.RequestService{Dynamo: dynamoService, Classifier: safetyService, Events: events}
	matchService := &services.MatchService{Dynamo: dynamoService, Events: events}
	threadService := services.NewThreadService(dynamoService, events)

	// Session pointer store (Redis)
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}
	sessionService, err := services.NewSessionService(redisURL, matchService)
	if err != nil {
		log.Fatalf("Failed to connect session store: %v", err)
	}
	defer sessionService.Close()

	// Set up the server port
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Using server port: %s\n", port)
	log.Printf("Instance identity: %s\n", utils.DeviceID())

	// Initialize the router
	r := mux.NewRouter()

	// Register a welcome route
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "Welcome to Reachout")
	}).Methods("GET")

	// Register a health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		response := map[string]string{"status": "healthy"}
		json.NewEncoder(w).Encode(response)
	}).Methods("GET")

	// Live-push socket server (room per thread)
	socketServer := socket.NewSocketServer(threadService, safetyService)
	go func() {
		if err := socketServer.Serve(); err != nil {
			log.Fatalf("Socket server error: %v", err)
		}
	}()
	defer socketServer.Close()
	r.Handle("/socket.io/", socketServer)

	// Register routes
	routes.RegisterRequestRoutes(r, requestService)
	routes.RegisterMatchRoutes(r, matchService)
	routes.RegisterChatRoutes(r, threadService, safetyService)
	routes.RegisterSessionRoutes(r, sessionService)

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Adjust for specific domains if needed
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	// Start the HTTP server
	log.Printf("Starting server on port %s...\n", port)
	log.Fatal(http.ListenAndServe(":"+port, corsHandler))
}
