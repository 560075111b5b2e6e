package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"

	"shopify-session-gate/internal/application"
	apiinfra "shopify-session-gate/internal/infrastructure/api"
	gatemiddleware "shopify-session-gate/internal/infrastructure/middleware"
	"shopify-session-gate/internal/infrastructure/repository"
	shopifyinfra "shopify-session-gate/internal/infrastructure/shopify"
	"shopify-session-gate/internal/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("⚠️  Warning: .env file not found")
	}

	appURL := getenv("APP_URL", "http://localhost:8080")
	loginURL := getenv("LOGIN_URL", appURL+"/login")
	apiKey := os.Getenv("SHOPIFY_API_KEY")
	apiSecret := os.Getenv("SHOPIFY_API_SECRET")
	webhookSecret := os.Getenv("SHOPIFY_WEBHOOK_SECRET")
	if apiKey == "" || apiSecret == "" {
		logger.Fatal().Msg("SHOPIFY_API_KEY and SHOPIFY_API_SECRET environment variables are required")
	}

	// Pick the session backend
	var store ports.SessionStore
	switch getenv("SESSION_BACKEND", "mongo") {
	case "redis":
		opt, err := redis.ParseURL(getenv("REDIS_URL", "redis://localhost:6379"))
		if err != nil {
			logger.Fatal().Err(err).Msg("Invalid REDIS_URL")
		}
		client := redis.NewClient(opt)
		defer client.Close()
		store = repository.NewRedisSessionRepository(client)

	case "memory":
		logger.Warn().Msg("Using in-memory session store; sessions will not survive restarts")
		store = repository.NewMemorySessionRepository()

	default:
		client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(getenv("MONGODB_URI", "mongodb://localhost:27017")))
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
		}
		defer client.Disconnect(context.Background())
		store = repository.NewMongoSessionRepository(client.Database(getenv("MONGODB_DATABASE", "session_gate")))
	}

	// Initialize application services
	shopifyClient := shopifyinfra.NewClient(apiKey, apiSecret, logger)
	resolver := application.NewSessionResolver(store, logger)
	gate := application.NewLoginGate(resolver, store, shopifyClient, loginURL, logger)

	metrics := gatemiddleware.NewMetrics(prometheus.DefaultRegisterer)

	itpHandlers := apiinfra.NewITPHandlers(appURL, apiKey, logger)
	appHandlers := apiinfra.NewAppHandlers(gate, logger)
	webhookHandler := apiinfra.NewWebhookHandler(store, webhookSecret, logger)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Instrument)
	r.Use(gatemiddleware.SecurityHeadersMiddleware())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://admin.shopify.com", "https://*.myshopify.com"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	// Storage-access protocol surface; must stay outside the gate, the
	// browser hits these exactly when no usable session exists yet.
	r.Get("/itp/redirect-info", itpHandlers.RedirectInfo)
	r.Get("/itp/top-level", itpHandlers.TopLevel)
	r.Get("/itp/enable-cookies", itpHandlers.EnableCookies)

	// Webhook endpoint, authenticated by HMAC rather than session
	r.Post("/webhooks/shopify", webhookHandler.Handle)

	// Embedded app routes behind the session gate
	r.Group(func(r chi.Router) {
		r.Use(gatemiddleware.LoginGateMiddleware(gate, metrics, logger))
		r.Get("/", appHandlers.Home)
		r.Get("/api/shop", appHandlers.Shop)
	})

	port := getenv("PORT", "8080")
	logger.Info().Str("port", port).Msg("Starting API server")
	if err := http.ListenAndServe(":"+port, r); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
