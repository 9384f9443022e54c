package routes

import (
	"ClinicQueue/cache"
	"ClinicQueue/clients"
	"ClinicQueue/config"
	"ClinicQueue/controllers"
	"ClinicQueue/database"
	"ClinicQueue/events"
	"ClinicQueue/handlers"
	"ClinicQueue/middlewares"
	"ClinicQueue/repositories"
	"ClinicQueue/services"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRoutes initializes the routes and middleware for the server
func SetupRoutes(cache *cache.Cache, config *config.AppConfig, db *gorm.DB) (http.Handler, error) {
	// Set Gin to release mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.Default()

	// Apply Bearer token validation to all routes
	router.Use(middlewares.ValidateBearerToken(config.GetBearerToken()))

	corsConfig := &middlewares.CorsConfig{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}
	router.Use(middlewares.CorsMiddleware(corsConfig))

	router.Use(middlewares.NewRateLimiterMiddleware(middlewares.RateLimiterConfig{
		RequestsPerSecond: 15,
		Burst:             30,
	}))

	router.Use(middlewares.LoggingMiddleware())

	// Outbound clients
	openAIClient, err := clients.NewOpenAIClient(config.OpenAIAPIKey, config.OpenAIModel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
	}
	twilioClient, err := clients.NewTwilioClient(config.TwilioAccountSID, config.TwilioAuthToken, config.TwilioFromNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Twilio client: %w", err)
	}

	// Change feed over Redis pub/sub
	feed, err := events.NewFeed(database.RedisClient)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize change feed: %w", err)
	}

	// Repositories
	appointmentRepo := repositories.NewAppointmentRepository(cache, feed)
	patientRepo := repositories.NewPatientRepository(cache, feed)
	visitRepo := repositories.NewVisitRepository(cache)
	settingRepo := repositories.NewSettingRepository(cache)
	conversationRepo := repositories.NewConversationRepository(cache, feed)
	staffRepo := repositories.NewStaffRepository(db, cache)

	// Services
	calculator := services.NewSlotCalculator()
	appointmentService := services.NewAppointmentService(appointmentRepo, patientRepo, calculator)
	bookingService := services.NewBookingService(appointmentRepo, patientRepo, calculator)
	patientService := services.NewPatientService(patientRepo)
	visitService := services.NewVisitService(visitRepo)
	settingService := services.NewSettingService(settingRepo)
	reminderService := services.NewReminderService(appointmentRepo, settingService, twilioClient)
	chatService := services.NewChatService(openAIClient, conversationRepo, bookingService)
	staffService := services.NewStaffService(staffRepo)

	// Handlers
	appointmentHandler := handlers.NewAppointmentHandler(appointmentService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	patientHandler := handlers.NewPatientHandler(patientService)
	visitHandler := handlers.NewVisitHandler(visitService)
	chatHandler := handlers.NewChatHandler(chatService)
	settingHandler := handlers.NewSettingHandler(settingService)
	reminderHandler := handlers.NewReminderHandler(reminderService)
	eventsHandler := handlers.NewEventsHandler(feed)
	authHandler := handlers.NewAuthHandler(staffService, cache)

	// Register routes
	controllers.SetupClinicRoutes(
		router,
		appointmentHandler,
		bookingHandler,
		patientHandler,
		visitHandler,
		chatHandler,
		settingHandler,
		reminderHandler,
		eventsHandler,
	)

	authController := controllers.NewAuthController(authHandler)
	authController.RegisterRoutes(router)

	controllers.SetupRootRoute(router)

	return router, nil
}
