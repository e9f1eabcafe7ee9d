package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"salon_backend/internal/config"
	"salon_backend/internal/database"
	"salon_backend/internal/metrics"
	"salon_backend/internal/middleware"
	"salon_backend/internal/notifier"
	"salon_backend/internal/repositories"
	"salon_backend/internal/router"
	"salon_backend/internal/services"
	"salon_backend/pkg/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.InitLogger("info", false)
		utils.LogError(err, "Invalid configuration")
		os.Exit(1)
	}
	utils.InitLogger(cfg.LogLevel, cfg.LogPretty)
	gin.SetMode(cfg.GinMode)
	utils.UseJSONFieldNames()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Metrics
	registry := prometheus.NewRegistry()
	metrics.RegisterRuntimeCollectors(registry)
	schedulerMetrics := metrics.NewSchedulerMetrics(registry)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	// Storage
	repos, closeStorage, err := buildRepositories(ctx, cfg)
	if err != nil {
		utils.LogError(err, "Failed to initialize storage")
		os.Exit(1)
	}
	defer closeStorage()

	// Notifications
	var n notifier.Notifier = notifier.NewLogNotifier()
	if len(cfg.KafkaBrokers) > 0 {
		kn, err := notifier.NewKafkaNotifier(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			utils.LogError(err, "Failed to initialize Kafka notifier, falling back to log notifier")
		} else {
			n = kn
		}
	}
	dispatcher := notifier.NewDispatcher(n, 10*time.Second)

	engine := gin.New()
	engine.Use(middleware.RequestID(), utils.GinLogger(), middleware.Recovery(), httpMetrics.Middleware())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	corsConfig.AllowCredentials = true
	engine.Use(cors.New(corsConfig))

	router.Setup(engine, router.Dependencies{
		Repos: repos,
		Options: services.Options{
			Location: cfg.Location,
			Metrics:  schedulerMetrics,
		},
		Events:   dispatcher,
		Registry: registry,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		utils.LogInfo("Server starting", map[string]interface{}{
			"port": cfg.Port, "storage": cfg.StorageDriver, "timezone": cfg.BusinessTimezone,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.LogError(err, "Failed to start server")
			stop()
		}
	}()

	<-ctx.Done()
	utils.LogInfo("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.LogError(err, "Server forced to shutdown")
	}

	dispatcher.Wait()
	if err := n.Close(); err != nil {
		utils.LogError(err, "Failed to close notifier")
	}
	utils.LogInfo("Server exited")
}

// buildRepositories selects the storage driver. The returned func releases its resources.
func buildRepositories(ctx context.Context, cfg *config.Config) (router.Repositories, func(), error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		utils.LogWarn("Using in-memory storage; data is lost on restart")
		return router.Repositories{
			Clients:      repositories.NewMemoryClientRepository(),
			Services:     repositories.NewMemoryServiceRepository(),
			Appointments: repositories.NewMemoryAppointmentRepository(),
		}, func() {}, nil
	}

	db, err := database.InitDB(ctx, cfg.DB)
	if err != nil {
		return router.Repositories{}, nil, err
	}
	if cfg.DBMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return router.Repositories{}, nil, err
		}
	}

	repos := router.Repositories{
		Clients:      repositories.NewClientRepository(db),
		Services:     repositories.NewServiceRepository(db),
		Appointments: repositories.NewAppointmentRepository(db),
	}

	closers := []func(){func() { closeDB(db) }}
	if cfg.RedisAddr != "" {
		cache, err := repositories.NewRedisServiceCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.ServiceCacheTTL)
		if err != nil {
			utils.LogError(err, "Redis unavailable, service catalog runs uncached")
		} else {
			repos.Services = repositories.NewCachedServiceRepository(repos.Services, cache)
			closers = append(closers, func() { _ = cache.Close() })
		}
	}

	return repos, func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}, nil
}

func closeDB(db *sql.DB) {
	if err := db.Close(); err != nil {
		utils.LogError(err, "Failed to close database")
	}
}
