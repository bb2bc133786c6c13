package main

import (
	"net/http"

	"ContentCalendarAPI/config"
	"ContentCalendarAPI/database"
	"ContentCalendarAPI/handlers"
	"ContentCalendarAPI/middleware"
	"ContentCalendarAPI/services"
	"ContentCalendarAPI/utils"

	"github.com/gorilla/mux"
)

func main() {
	cfg := config.Load()
	utils.SetLogLevel(cfg.LogLevel)

	db, err := database.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		utils.Errorf("Failed to connect to database: %v", err)
		return
	}

	storage, err := services.NewStorageService(cfg.UploadDir, cfg.BaseURL, cfg.MaxImageSize, cfg.MaxVideoSize)
	if err != nil {
		utils.Errorf("Failed to initialize storage: %v", err)
		return
	}

	authService := services.NewAuthService(db)
	registry := services.NewPublisherRegistry(cfg)

	scheduler := services.NewScheduler(db, registry, cfg.SweepInterval, cfg.PublishTimeout)
	if err := scheduler.Initialize(); err != nil {
		utils.Errorf("Failed to start scheduler: %v", err)
		return
	}
	defer scheduler.Stop()

	handler := handlers.NewHandler(db, scheduler, authService, storage)

	r := setupRoutes(cfg, handler, authService)

	utils.Infof("Server starting on port %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		utils.Errorf("Server stopped: %v", err)
	}
}

func setupRoutes(cfg *config.Config, h *handlers.Handler, authService *services.AuthService) *mux.Router {
	r := mux.NewRouter()

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.AllowedOrigins
	r.Use(middleware.CORS(corsConfig))
	// Ceiling for any request body; uploads are additionally bounded by
	// the storage service's per-type size checks.
	r.Use(middleware.BodyLimit(cfg.MaxVideoSize + (1 << 20)))

	limiter := middleware.NewRateLimiter(20, 40)
	r.Use(limiter.Limit())

	// Public routes
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")

	authLimiter := middleware.NewRateLimiter(1, 5)
	r.HandleFunc("/api/auth/register",
		middleware.BodyLimitHandler(64<<10, authLimiter.LimitHandler(h.Register))).Methods("POST")
	r.HandleFunc("/api/auth/login",
		middleware.BodyLimitHandler(64<<10, authLimiter.LimitHandler(h.Login))).Methods("POST")

	// Uploaded media: fetched by platforms via signed URLs, or by the
	// owning user with a JWT.
	r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/",
		middleware.SignedFileServer(cfg.UploadDir, cfg.URLSigningKey, authService)))

	// Protected routes
	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(middleware.AuthMiddleware(authService))

	// Posts
	protected.HandleFunc("/posts", h.CreatePost).Methods("POST")
	protected.HandleFunc("/posts", h.GetPosts).Methods("GET")
	protected.HandleFunc("/posts/upcoming", h.GetUpcomingPosts).Methods("GET")
	protected.HandleFunc("/posts/{id}", h.GetPost).Methods("GET")
	protected.HandleFunc("/posts/{id}", h.UpdatePost).Methods("PUT")
	protected.HandleFunc("/posts/{id}", h.DeletePost).Methods("DELETE")

	// Scheduling
	protected.HandleFunc("/posts/{id}/schedule", h.SchedulePost).Methods("POST")
	protected.HandleFunc("/posts/{id}/cancel", h.CancelSchedule).Methods("POST")
	protected.HandleFunc("/scheduler/armed", h.GetArmedPosts).Methods("GET")

	// Media
	protected.HandleFunc("/media", h.UploadMedia).Methods("POST")
	protected.HandleFunc("/media", h.GetMedia).Methods("GET")
	protected.HandleFunc("/media/{id}", h.DeleteMedia).Methods("DELETE")

	// Instagram connection
	protected.HandleFunc("/instagram/connection", h.ConnectInstagram).Methods("POST")
	protected.HandleFunc("/instagram/connection", h.GetInstagramConnection).Methods("GET")
	protected.HandleFunc("/instagram/connection", h.DisconnectInstagram).Methods("DELETE")

	return r
}
