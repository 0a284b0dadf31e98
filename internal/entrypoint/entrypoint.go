package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/shelflift/internal/audit"
	"github.com/mrlokans/shelflift/internal/auth"
	"github.com/mrlokans/shelflift/internal/checkout"
	"github.com/mrlokans/shelflift/internal/config"
	"github.com/mrlokans/shelflift/internal/database"
	"github.com/mrlokans/shelflift/internal/database/catalog"
	"github.com/mrlokans/shelflift/internal/database/history"
	"github.com/mrlokans/shelflift/internal/database/users"
	"github.com/mrlokans/shelflift/internal/database/wishlists"
	http_controllers "github.com/mrlokans/shelflift/internal/http"
	"github.com/mrlokans/shelflift/internal/scheduler"
	"github.com/mrlokans/shelflift/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until an interrupt arrives, then shuts down
// within the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop the task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run wires the application together and serves it.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting Shelflift v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Repositories
	catalogRepo := catalog.NewRepository(db.DB)
	wishlistRepo := wishlists.NewRepository(db.DB, catalogRepo)
	historyRepo := history.NewRepository(db.DB)
	userRepo := users.NewRepository(db.DB)

	// Checkout receipts
	auditor := audit.NewAuditor(cfg.Audit.Dir)

	checkoutService := checkout.NewService(db.DB, catalogRepo, wishlistRepo, auditor)

	// Identity layer
	var authService *auth.Service
	var authMiddleware *auth.Middleware
	var sessionManager *auth.SessionManager
	var csrfSecret []byte

	if cfg.Auth.Mode == config.AuthModeLocal {
		authService = auth.NewService(userRepo, cfg.Auth)

		sqlDB, err := db.DB.DB()
		if err != nil {
			log.Fatalf("Failed to get SQL DB for sessions: %v", err)
		}
		sessionManager, err = auth.NewSessionManager(sqlDB, cfg.Auth)
		if err != nil {
			log.Fatalf("Failed to initialize session manager: %v", err)
		}

		secret := cfg.Auth.SessionSecret
		if secret == "" {
			secret, err = auth.GenerateSecret()
			if err != nil {
				log.Fatalf("Failed to generate session secret: %v", err)
			}
			log.Printf("WARNING: AUTH_SESSION_SECRET not set; generated an ephemeral secret, sessions will not survive restarts")
		}
		csrfSecret, err = hex.DecodeString(secret)
		if err != nil || len(csrfSecret) < 32 {
			log.Fatalf("AUTH_SESSION_SECRET must be a hex string of at least 32 bytes")
		}

		authMiddleware = auth.NewMiddleware(authService, sessionManager, cfg.Auth)
		log.Printf("Authentication enabled (mode=%s)", cfg.Auth.Mode)
	} else {
		log.Printf("WARNING: authentication is disabled; all requests act as the default user")
	}

	// Background task queue
	var taskClient *tasks.Client
	var cleanupScheduler *scheduler.CleanupScheduler
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		})
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}

		taskClient.Register(tasks.NewCleanupWishlistsQueue(wishlistRepo))

		taskCtx, cancelTasks := context.WithCancel(context.Background())
		defer cancelTasks()
		go taskClient.Start(taskCtx)

		if cfg.Cleanup.Enabled {
			cleanupScheduler = scheduler.NewCleanupScheduler(taskClient, cfg.Cleanup.Schedule, cfg.Cleanup.IdleDays)
			if err := cleanupScheduler.Start(); err != nil {
				log.Fatalf("Failed to start cleanup scheduler: %v", err)
			}
		}
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Database:       db,
		Version:        version,
		WishlistStore:  wishlistRepo,
		Checkout:       checkoutService,
		CatalogStore:   catalogRepo,
		History:        historyRepo,
		AuthService:    authService,
		AuthMiddleware: authMiddleware,
		SessionManager: sessionManager,
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Auth.SecureCookies,
	})

	Serve(router, cfg, func(ctx context.Context) {
		if cleanupScheduler != nil {
			cleanupScheduler.Stop()
		}
		if taskClient != nil {
			taskClient.Stop(ctx)
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task queue: %v", err)
			}
		}
	})
}
