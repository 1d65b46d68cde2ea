package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/e-dream-ai/dreamstream/config"
	"github.com/e-dream-ai/dreamstream/core/auth"
	"github.com/e-dream-ai/dreamstream/core/remote"
	"github.com/e-dream-ai/dreamstream/db"
	"github.com/e-dream-ai/dreamstream/logger"
	"github.com/e-dream-ai/dreamstream/model"
	"github.com/e-dream-ai/dreamstream/repository"
	"github.com/e-dream-ai/dreamstream/storage"

	"github.com/gorilla/mux"
)

// Start initializes and starts the HTTP/WebSocket server.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	})

	auth.SetSecret(cfg.JWTSecret)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	if err := storage.InitMinio(cfg); err != nil {
		log.Fatalf("Failed to initialize MinIO: %v", err)
	}

	if err := db.ConnectDB(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.DB.Close()

	if err := db.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if err := db.ConnectGormDB(cfg); err != nil {
		log.Fatalf("Failed to connect to database with GORM: %v", err)
	}
	defer db.CloseGormDB()

	if err := db.AutoMigrateModels(
		&model.Dream{},
		&model.DreamVote{},
		&model.Playlist{},
		&model.PlaylistItem{},
		&model.Keyframe{},
	); err != nil {
		log.Fatalf("Failed to migrate models: %v", err)
	}

	if err := db.ConnectRedis(cfg); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer db.CloseRedis()
	log.Println("Successfully connected to Redis")

	userRepo := repository.NewMySQLUserRepository(db.DB)
	dreamRepo := repository.NewGormDreamRepository(db.GormDB)
	playlistRepo := repository.NewGormPlaylistRepository(db.GormDB)

	hub := remote.NewHub()
	go hub.Run()
	defer hub.Stop()

	apiHandler := NewAPIHandler(userRepo, dreamRepo, playlistRepo, hub, cfg)

	router := mux.NewRouter()

	// CORS middleware.
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Range")
			w.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Range")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// Auth endpoints.
	router.HandleFunc("/api/auth/login", apiHandler.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/register", apiHandler.RegisterHandler).Methods(http.MethodPost)

	// Dream endpoints.
	router.HandleFunc("/api/dreams/current", apiHandler.AuthMiddleware(apiHandler.GetCurrentDreamHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/dreams/current", apiHandler.AuthMiddleware(apiHandler.SetCurrentDreamHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/dreams/{uuid}", apiHandler.AuthMiddleware(apiHandler.GetDreamHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/dreams/{uuid}/vote", apiHandler.AuthMiddleware(apiHandler.VoteDreamHandler)).Methods(http.MethodPost)

	// Playlist endpoints.
	router.HandleFunc("/api/playlists", apiHandler.AuthMiddleware(apiHandler.CreatePlaylistHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/playlists", apiHandler.AuthMiddleware(apiHandler.ListPlaylistsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/playlists/{id}", apiHandler.AuthMiddleware(apiHandler.GetPlaylistHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/playlists/{id}", apiHandler.AuthMiddleware(apiHandler.DeletePlaylistHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/playlists/{id}/items", apiHandler.AuthMiddleware(apiHandler.AddPlaylistItemHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/playlists/{id}/items/{item_id}", apiHandler.AuthMiddleware(apiHandler.RemovePlaylistItemHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/playlists/{id}/navigation", apiHandler.AuthMiddleware(apiHandler.PlaylistNavigationHandler)).Methods(http.MethodGet)

	// Feed.
	router.HandleFunc("/api/feed", apiHandler.AuthMiddleware(apiHandler.FeedHandler)).Methods(http.MethodGet)

	// Remote control.
	router.HandleFunc("/api/remote/devices", apiHandler.AuthMiddleware(apiHandler.RemoteDevicesHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/remote/actions", apiHandler.RemoteActionsHandler).Methods(http.MethodGet)
	router.HandleFunc("/ws/remote", apiHandler.RemoteWebSocketHandler)

	// Dream media from MinIO.
	router.PathPrefix("/media/").HandlerFunc(apiHandler.MediaHandler)

	server.Handler = router

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s...", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
