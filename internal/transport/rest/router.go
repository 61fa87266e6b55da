package rest

import (
	"net/http"

	"accidentsev/internal/catalog"
	"accidentsev/internal/config"
	"accidentsev/internal/schema"
	"accidentsev/internal/service"
	"accidentsev/internal/transport/rest/handler"
	"accidentsev/internal/transport/rest/middleware"
	"accidentsev/internal/transport/ws"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Container holds all dependencies for the router
type Container struct {
	Schema            *schema.Schema
	Catalog           *catalog.Catalog
	AuthService       *service.AuthService
	PredictionService *service.PredictionService
	SessionService    *service.SessionService
	WSHub             *ws.Hub
	CORS              config.CORSConfig
	Logger            *zap.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService, c.SessionService)
	predictHandler := handler.NewPredictHandler(c.PredictionService)
	sessionHandler := handler.NewSessionHandler(c.SessionService)
	catalogHandler := handler.NewCatalogHandler(c.Schema, c.Catalog)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, logger)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.CORS))
	r.Use(middleware.Logging(logger))

	r.HandleFunc("/health", predictHandler.Health).Methods("GET")
	r.HandleFunc("/predict", predictHandler.Predict).Methods("POST", "OPTIONS")
	r.HandleFunc("/swagger/doc.json", handler.SwaggerDoc).Methods("GET")

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/schema", catalogHandler.Schema).Methods("GET", "OPTIONS")
	v1.HandleFunc("/catalog/{field}", catalogHandler.Field).Methods("GET", "OPTIONS")
	v1.HandleFunc("/stats", predictHandler.Stats).Methods("GET", "OPTIONS")
	v1.HandleFunc("/sessions", sessionHandler.Create).Methods("POST", "OPTIONS")

	// WebSocket route (public with token in query param)
	v1.HandleFunc("/ws/session", wsHandler.SessionWS).Methods("GET")

	// Session routes (require session token)
	sessionRoutes := v1.PathPrefix("/session").Subrouter()
	sessionRoutes.Use(authMW.RequireSession)

	sessionRoutes.HandleFunc("", sessionHandler.Get).Methods("GET", "OPTIONS")
	sessionRoutes.HandleFunc("", sessionHandler.End).Methods("DELETE", "OPTIONS")
	sessionRoutes.HandleFunc("/token", authHandler.Refresh).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/fields/{field}", sessionHandler.SetField).Methods("PUT", "OPTIONS")
	sessionRoutes.HandleFunc("/next", sessionHandler.Next).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/previous", sessionHandler.Previous).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/reset", sessionHandler.Reset).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/page/{page}", sessionHandler.GoTo).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/recap", sessionHandler.Recap).Methods("GET", "OPTIONS")
	sessionRoutes.HandleFunc("/submit", sessionHandler.Submit).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/history", sessionHandler.History).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(cfg config.CORSConfig) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", cfg.AllowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", cfg.AllowedMethods)
			w.Header().Set("Access-Control-Allow-Headers", cfg.AllowedHeaders)

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
