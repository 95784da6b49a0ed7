package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"saferides-driver/internal/config"
	"saferides-driver/internal/models"
	fsrepo "saferides-driver/internal/repositories/firestore"
	"saferides-driver/internal/services"
	"saferides-driver/internal/utils"
	"saferides-driver/pkg/cache"
	"saferides-driver/pkg/database"
	"saferides-driver/pkg/identity"
	"saferides-driver/pkg/logger"
	"saferides-driver/pkg/maps"
)

// Headless driver client: signs in with the configured credentials, goes
// online, and logs the candidate list until interrupted.
func main() {
	// Load .env if present
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:  logger.LogLevel(cfg.App.LogLevel),
		Format: cfg.App.LogFormat,
		Output: "stdout",
		Colors: config.IsDevelopment(),
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := database.NewFirestoreClient(ctx, &database.FirestoreConfig{
		ProjectID:       cfg.Firebase.ProjectID,
		CredentialsFile: cfg.Firebase.CredentialsFile,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to document store")
	}
	defer client.Close()

	rideRepo := fsrepo.NewRideRepository(client, appLogger)
	driverRepo := fsrepo.NewDriverRepository(client, appLogger)

	provider := identity.NewFirebaseProvider(cfg.Identity.APIKey)
	session := services.NewSessionService(provider, driverRepo, appLogger)

	var etaService *services.ETAService
	if cfg.Maps.Enabled {
		mapsProvider, err := maps.NewGoogleMapsProvider(cfg.Maps.APIKey)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize maps provider")
		}

		var routeCache services.RouteCache
		if cfg.Redis.Enabled {
			redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
				Host:         cfg.Redis.Host,
				Port:         cfg.Redis.Port,
				Password:     cfg.Redis.Password,
				DB:           cfg.Redis.DB,
				PoolSize:     cfg.Redis.PoolSize,
				MinIdleConns: cfg.Redis.MinIdleConns,
				DialTimeout:  cfg.Redis.DialTimeout,
				ReadTimeout:  cfg.Redis.ReadTimeout,
				WriteTimeout: cfg.Redis.WriteTimeout,
			})
			if err != nil {
				// Route estimates work without the cache, just slower.
				appLogger.WithError(err).Warn("Redis unavailable, ETA caching disabled")
			} else {
				defer redisCache.Close()
				routeCache = redisCache
			}
		}

		etaService = services.NewETAService(mapsProvider, routeCache, cfg.Maps.ETATTL, appLogger)
	}

	rideService := services.NewRideService(rideRepo, driverRepo, session, etaService, appLogger, cfg.Store.WriteTimeout)
	tripService := services.NewTripService(rideRepo, session, appLogger)

	if cfg.Identity.Email == "" || cfg.Identity.Password == "" {
		appLogger.Fatal("DRIVER_EMAIL and DRIVER_PASSWORD must be set")
	}
	if err := session.SignIn(ctx, cfg.Identity.Email, cfg.Identity.Password); err != nil {
		appLogger.WithError(err).Fatal("Sign-in failed")
	}

	if stats, err := tripService.DailyStats(ctx); err == nil {
		appLogger.WithFields(map[string]interface{}{
			"trips":    stats.Trips,
			"earnings": stats.Earnings,
		}).Info("Today so far")
	}

	rideService.OnCandidates(func(candidates []*models.Ride) {
		appLogger.WithField("count", len(candidates)).Info("Candidate list updated")
		for _, ride := range candidates {
			appLogger.WithRideID(ride.ID).Infof("  %s -> %s ($%.2f, requested %s)",
				ride.PickupAddress, ride.DropoffAddress, ride.Price, utils.TimeAgo(ride.RequestedAt))
		}
	})

	if err := rideService.GoOnline(ctx); err != nil {
		appLogger.WithError(err).Fatal("Failed to go online")
	}

	<-ctx.Done()

	rideService.GoOffline()
	session.SignOut()
	appLogger.Info("Shut down cleanly")
}
