package main

import (
	"log"
	"net/http"
	"os"

	"teamup_server/controllers"
	"teamup_server/routes"
	"teamup_server/services"
	"teamup_server/socket"
	"teamup_server/utils"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	// Initialize DynamoDB client and service
	log.Println("Initializing DynamoDB client...")
	dynamoClient := services.InitializeDynamoDBClient()
	dynamoService := &services.DynamoService{Client: dynamoClient}
	log.Println("DynamoDB client initialized.")

	// Initialize Services
	userProfileService := &services.UserProfileService{Dynamo: dynamoService}
	chatService := &services.ChatService{Dynamo: dynamoService, Profiles: userProfileService}
	interactionService := &services.InteractionService{
		Dynamo:   dynamoService,
		Chat:     chatService,
		Profiles: userProfileService,
		Score:    services.CompatibilityScore,
	}
	teamService := &services.TeamService{Dynamo: dynamoService, Chat: chatService, Profiles: userProfileService}
	teamChatService := &services.TeamChatService{Dynamo: dynamoService, Teams: teamService}

	// Realtime gateway: presence lives for the lifetime of the socket server
	gateway := &socket.Gateway{
		Presence:  services.NewPresenceService(),
		Chat:      chatService,
		Teams:     teamService,
		TeamChat:  teamChatService,
		JWTSecret: jwtSecret,
	}
	socketServer := socket.NewSocketServer(gateway)
	go func() {
		if err := socketServer.Serve(); err != nil {
			log.Fatalf("Socket server error: %v", err)
		}
	}()
	defer socketServer.Close()

	// Set up the server port
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Using server port: %s\n", port)

	// Initialize the router
	r := mux.NewRouter()
	r.HandleFunc("/", controllers.WelcomeHandler).Methods("GET")
	r.HandleFunc("/health", controllers.HealthCheckHandler).Methods("GET")
	r.Handle("/socket.io/", socketServer)

	// All /api routes require a valid token
	api := r.PathPrefix("/api").Subrouter()
	api.Use(utils.AuthMiddleware(jwtSecret))

	routes.RegisterMatchRoutes(api, interactionService)
	routes.RegisterChatRoutes(api, chatService, interactionService)
	routes.RegisterTeamRoutes(api, teamService, teamChatService)

	// Add CORS middleware
	corsOrigin := os.Getenv("CORS_ORIGIN")
	if corsOrigin == "" {
		corsOrigin = "*"
	}
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{corsOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "x-auth-token"},
		AllowCredentials: true,
	}).Handler(r)

	// Start the HTTP server
	log.Printf("Starting server on port %s...\n", port)
	log.Fatal(http.ListenAndServe(":"+port, corsHandler))
}
