package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ijo-project/ijo-backend/internal/api/handler"
	"github.com/ijo-project/ijo-backend/internal/api/middleware"
	"github.com/ijo-project/ijo-backend/internal/metrics"
	sharedmw "github.com/ijo-project/ijo-backend/internal/middleware"
	"github.com/ijo-project/ijo-backend/internal/services/auth"
	"github.com/ijo-project/ijo-backend/internal/services/companion"
	"github.com/ijo-project/ijo-backend/internal/services/content"
	"github.com/ijo-project/ijo-backend/internal/services/games"
	"github.com/ijo-project/ijo-backend/internal/services/scan"
	"github.com/ijo-project/ijo-backend/internal/services/users"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger           *slog.Logger
	AuthService      *auth.Service
	UsersService     *users.Service
	ScanService      *scan.Service
	GamesService     *games.Service
	CompanionService *companion.Service
	ContentService   *content.Service

	// AllowedOrigins lists the browser origins allowed by CORS
	AllowedOrigins []string
	// LoginRate and LoginBurst bound login attempts per client; zero disables the limit
	LoginRate  float64
	LoginBurst int
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	usersHandler := handler.NewUsersHandler(cfg.UsersService)
	scanHandler := handler.NewScanHandler(cfg.ScanService)
	gamesHandler := handler.NewGamesHandler(cfg.GamesService)
	itemsHandler := handler.NewItemsHandler(cfg.CompanionService)
	contentHandler := handler.NewContentHandler(cfg.ContentService)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	optionalAuthMiddleware := middleware.OptionalAuth(cfg.AuthService)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)
	loggingMiddleware := sharedmw.Logging(cfg.Logger)
	corsMiddleware := sharedmw.CORS(cfg.AllowedOrigins)

	r.Use(metrics.InstrumentHandler)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)
	api.Use(corsMiddleware)

	// Preflight requests are answered by the CORS middleware
	api.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	api.HandleFunc("/health", handler.Health).Methods(http.MethodGet)

	// Auth routes
	login := http.Handler(http.HandlerFunc(authHandler.Login))
	if cfg.LoginRate > 0 && cfg.LoginBurst > 0 {
		login = middleware.RateLimit(cfg.Logger, cfg.LoginRate, cfg.LoginBurst)(login)
	}
	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.Handle("/auth/login", login).Methods(http.MethodPost)

	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(authMiddleware)
	authProtected.HandleFunc("/profile", authHandler.Profile).Methods(http.MethodGet)

	// Scan routes
	garbage := api.PathPrefix("/garbage").Subrouter()
	garbage.Use(authMiddleware)
	garbage.HandleFunc("/scan", scanHandler.Scan).Methods(http.MethodPost)

	// Game routes; the leaderboard is public
	api.Handle("/games/leaderboard", optionalAuthMiddleware(http.HandlerFunc(gamesHandler.Leaderboard))).Methods(http.MethodGet)

	gamesRouter := api.PathPrefix("/games").Subrouter()
	gamesRouter.Use(authMiddleware)
	gamesRouter.HandleFunc("/start", gamesHandler.Start).Methods(http.MethodPost)
	gamesRouter.HandleFunc("/score", gamesHandler.Score).Methods(http.MethodPost)

	// Companion routes
	items := api.PathPrefix("/items").Subrouter()
	items.Use(authMiddleware)
	items.HandleFunc("/me", itemsHandler.Get).Methods(http.MethodGet)
	items.HandleFunc("/choose", itemsHandler.Choose).Methods(http.MethodPost)
	items.HandleFunc("/checkin", itemsHandler.CheckIn).Methods(http.MethodPost)

	// Admin routes
	usersRouter := api.PathPrefix("/users").Subrouter()
	usersRouter.Use(authMiddleware)
	usersRouter.Use(middleware.RequireAdmin)
	usersRouter.HandleFunc("", usersHandler.List).Methods(http.MethodGet)
	usersRouter.HandleFunc("/{id}/status", usersHandler.SetStatus).Methods(http.MethodPatch)
	usersRouter.HandleFunc("/{id}", usersHandler.Delete).Methods(http.MethodDelete)

	// Content routes
	api.HandleFunc("/content/public", contentHandler.Public).Methods(http.MethodGet)

	contentAdmin := api.PathPrefix("/content").Subrouter()
	contentAdmin.Use(authMiddleware)
	contentAdmin.Use(middleware.RequireAdmin)
	contentAdmin.HandleFunc("/update", contentHandler.Update).Methods(http.MethodPost)

	return r
}
