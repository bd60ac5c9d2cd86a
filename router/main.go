package router

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/studyhall-app/studyhall-api/config"
	"github.com/studyhall-app/studyhall-api/database"
	"github.com/studyhall-app/studyhall-api/handlers"
	auth_handlers "github.com/studyhall-app/studyhall-api/handlers/auth"
	chat_handlers "github.com/studyhall-app/studyhall-api/handlers/chat"
	note_handlers "github.com/studyhall-app/studyhall-api/handlers/note"
	question_handlers "github.com/studyhall-app/studyhall-api/handlers/question"
	reflection_handlers "github.com/studyhall-app/studyhall-api/handlers/reflection"
	session_handlers "github.com/studyhall-app/studyhall-api/handlers/session"
	"github.com/studyhall-app/studyhall-api/services"
	"github.com/studyhall-app/studyhall-api/services/llm"
	"github.com/studyhall-app/studyhall-api/utils/auth"
	"github.com/studyhall-app/studyhall-api/utils/cache"
	"github.com/studyhall-app/studyhall-api/utils/middleware"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, store database.Storage, env *config.EnvironmentVariable) {
	if env.JWT_SECRET == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := env.JWT_ISSUER
	if jwtIssuer == "" {
		jwtIssuer = "studyhall-api"
	}

	// Initialize JWT manager with config
	jwtConfig := auth.JWTConfig{
		Secret:        env.JWT_SECRET,
		Expiry:        24 * time.Hour,     // Access token expires in 24 hours
		RefreshExpiry: 7 * 24 * time.Hour, // Refresh token expires in 7 days
		Issuer:        jwtIssuer,
	}
	jwtManager := auth.NewJWTManager(jwtConfig)

	// Get DB instance (type assert from interface)
	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	// Redis backs the public listing caches; the API works without it
	var redisCache *cache.RedisCache
	if env.REDIS_URL != "" {
		var err error
		redisCache, err = cache.NewRedisCache(env.REDIS_URL)
		if err != nil {
			log.Printf("Warning: Failed to connect to Redis: %v. Listing caches will be disabled.", err)
			redisCache = nil
		}
	}

	// Initialize auth middleware with DB for blacklist checking
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	// Services
	sessionService := services.NewSessionService(db)
	llmClient := llm.NewClient(llm.Config{
		APIURL:  env.LLM_API_URL,
		Model:   env.LLM_MODEL,
		Timeout: time.Duration(env.LLM_TIMEOUT_SECONDS) * time.Second,
	})
	tutorService := services.NewTutorService(db, llmClient)

	// Handlers
	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, redisCache)
	sessionHandler := session_handlers.NewSessionHandler(db, sessionService)
	chatHandler := chat_handlers.NewChatHandler(db, tutorService)
	noteHandler := note_handlers.NewNoteHandler(db, sessionService)
	questionHandler := question_handlers.NewQuestionHandler(db, sessionService, redisCache)
	reflectionHandler := reflection_handlers.NewReflectionHandler(db, sessionService)
	healthHandler := handlers.NewHealthHandler(store)

	// Apply security middleware
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:5173"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins: allowedOrigins,
	})

	// Health check endpoint (public)
	app.Get("/ping", healthHandler.Ping)

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Get("/check", authMiddleware.Optional(), authHandler.Check)
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	authGroup.Get("/subjects", authHandler.Subjects) // Public: the fixed subject list

	// Session routes (protected)
	sessions := api.Group("/sessions", authMiddleware.Required())
	sessions.Post("/", sessionHandler.Create)
	sessions.Get("/current", sessionHandler.Current)
	sessions.Get("/", sessionHandler.List)
	sessions.Get("/:id", sessionHandler.Get)
	sessions.Put("/:id", sessionHandler.Update)

	// Chat routes
	chat := api.Group("/chat")
	chat.Get("/test", chatHandler.TestConnection) // Public: connectivity probe
	chat.Post("/", authMiddleware.Required(), chatHandler.Send)
	chat.Get("/", authMiddleware.Required(), chatHandler.History)

	// Note routes (protected)
	notes := api.Group("/notes", authMiddleware.Required())
	notes.Get("/", noteHandler.List)
	notes.Post("/", noteHandler.Create)
	notes.Put("/:id", noteHandler.Update)
	notes.Delete("/:id", noteHandler.Delete)

	// Question routes (listing is public, create/delete are not)
	questions := api.Group("/questions")
	questions.Get("/", questionHandler.List)
	questions.Post("/", authMiddleware.Required(), questionHandler.Create)
	questions.Delete("/:id", authMiddleware.Required(), questionHandler.Delete)

	// Reflection routes (protected)
	reflections := api.Group("/reflections", authMiddleware.Required())
	reflections.Get("/", reflectionHandler.Get)
	reflections.Post("/", reflectionHandler.Save)
}
