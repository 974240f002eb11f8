package main

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/controlfin/backend/docs"
	"github.com/controlfin/backend/internal/database"
	"github.com/controlfin/backend/internal/handlers"
	mW "github.com/controlfin/backend/internal/middleware"
	"github.com/controlfin/backend/internal/repository"
	"github.com/controlfin/backend/internal/services"
)

// @title Personal Finance Tracker API
// @version 1.0
// @description REST API for tracking accounts, categories and ledger entries per user
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

func main() {
	// Initialize config
	viper.SetConfigFile(".env") // explicitly point to .env file
	viper.AutomaticEnv()        // allow environment variables to override .env

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")
	viper.BindEnv("jwt.expiry_hours", "JWT_EXPIRY_HOURS")
	viper.BindEnv("argon2.time", "ARGON2_TIME")
	viper.BindEnv("argon2.memory", "ARGON2_MEMORY")
	viper.BindEnv("argon2.threads", "ARGON2_THREADS")
	viper.BindEnv("argon2.key_length", "ARGON2_KEY_LENGTH")
	viper.BindEnv("argon2.salt_length", "ARGON2_SALT_LENGTH")
	viper.BindEnv("app.max_entry_amount", "MAX_ENTRY_AMOUNT")

	viper.SetDefault("jwt.expiry_hours", 2)
	viper.SetDefault("argon2.time", 1)
	viper.SetDefault("argon2.memory", 64*1024)
	viper.SetDefault("argon2.threads", 4)
	viper.SetDefault("argon2.key_length", 32)
	viper.SetDefault("argon2.salt_length", 16)
	viper.SetDefault("app.max_entry_amount", 10000.00)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Config file not found, using defaults: %v", err)
	}

	// Initialize Swagger docs
	docs.SwaggerInfo.Title = "Personal Finance Tracker API"
	docs.SwaggerInfo.Description = "REST API for tracking accounts, categories and ledger entries per user"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = "localhost:8080"
	docs.SwaggerInfo.BasePath = "/api/v1"
	docs.SwaggerInfo.Schemes = []string{"http", "https"}

	db := database.InitDatabase()
	defer db.Close()

	redisClient := database.InitRedis()
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Repositories and the ownership validator shared by every service
	userRepo := repository.NewUserRepository()
	accountRepo := repository.NewAccountRepository()
	categoryRepo := repository.NewCategoryRepository()
	entryRepo := repository.NewEntryRepository()
	ownership := services.NewOwnershipValidator(userRepo, accountRepo, categoryRepo, entryRepo)

	maxEntryAmount := int64(math.Round(viper.GetFloat64("app.max_entry_amount") * 100))

	authService := services.NewAuthService(db, redisClient, userRepo)
	accountService := services.NewAccountService(db, accountRepo, userRepo, ownership)
	categoryService := services.NewCategoryService(db, categoryRepo, userRepo, ownership)
	entryService := services.NewEntryService(db, entryRepo, ownership, maxEntryAmount)

	accountHandler := handlers.NewAccountHandler(accountService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	entryHandler := handlers.NewEntryHandler(entryService)

	// Initialize auth middleware with Redis
	mW.InitAuthMiddleware(redisClient)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Access-Control-Allow-Origin"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
	))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints (no auth required)
		r.Post("/auth/register", authService.Register)
		r.Post("/auth/login", authService.Login)
		r.Post("/auth/logout", authService.Logout)

		// Protected endpoints (auth required)
		r.Group(func(r chi.Router) {
			r.Use(mW.AuthMiddleware)

			r.Get("/auth/account", authService.GetAccount)

			r.Get("/accounts", accountHandler.ListAccounts)
			r.Post("/accounts", accountHandler.CreateAccount)
			r.Get("/accounts/{accountId}", accountHandler.GetAccount)
			r.Put("/accounts/{accountId}", accountHandler.UpdateAccount)
			r.Delete("/accounts/{accountId}", accountHandler.DeleteAccount)

			r.Get("/categories", categoryHandler.ListCategories)
			r.Post("/categories", categoryHandler.CreateCategory)
			r.Get("/categories/{categoryId}", categoryHandler.GetCategory)
			r.Put("/categories/{categoryId}", categoryHandler.UpdateCategory)
			r.Delete("/categories/{categoryId}", categoryHandler.DeleteCategory)

			r.Get("/entries", entryHandler.ListEntries)
			r.Get("/entries/detailed", entryHandler.ListEntriesDetailed)
			r.Get("/entries/period/{period}", entryHandler.ListEntriesByPeriod)
			r.Post("/entries", entryHandler.CreateEntry)
			r.Get("/entries/{entryId}", entryHandler.GetEntry)
			r.Put("/entries/{entryId}", entryHandler.UpdateEntry)
			r.Put("/entries/{entryId}/paid", entryHandler.MarkEntryPaid)
			r.Put("/entries/{entryId}/unpaid", entryHandler.MarkEntryUnpaid)
			r.Delete("/entries/{entryId}", entryHandler.DeleteEntry)
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Start server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server stopped")
}
