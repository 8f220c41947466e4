package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/scavhunt/scavhunt/backend/handlers"
	"github.com/scavhunt/scavhunt/backend/internal/avatars"
	"github.com/scavhunt/scavhunt/backend/internal/config"
	"github.com/scavhunt/scavhunt/backend/internal/database"
	"github.com/scavhunt/scavhunt/backend/internal/oidc"
	"github.com/scavhunt/scavhunt/backend/internal/profiles"
	"github.com/scavhunt/scavhunt/backend/internal/revocation"
	"github.com/scavhunt/scavhunt/backend/internal/storage"
	"github.com/scavhunt/scavhunt/backend/pkg/logger"
	"github.com/scavhunt/scavhunt/backend/pkg/metrics"
	"github.com/scavhunt/scavhunt/backend/pkg/middleware"
)

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		var cerr *config.ConfigurationError
		if errors.As(err, &cerr) {
			logger.Fatalf("refusing to start: %v", cerr)
		}
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())
	logger.Infof("config loaded: pool=%s region=%s mongo=%v redis=%v minio=%v",
		cfg.Cognito.UserPoolID, cfg.Cognito.Region, cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.MinIO.Endpoint != "")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	verifier, err := oidc.NewVerifier(ctx, cfg.Cognito)
	if err != nil {
		logger.Fatalf("%v", err)
	}

	ready := map[string]handlers.ReadyCheck{
		"verifier": func(context.Context) error { return nil },
	}

	// Redis backs the profile cache, token revocation and the shared rate limiter
	var rdb *redis.Client
	if cfg.Redis.Host != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
		} else {
			logger.Infof("connected to Redis %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
		defer rdb.Close()
		ready["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	var store profiles.Store
	if cfg.MongoDB.URI != "" {
		client, err := database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5, time.Second)
		if err != nil {
			logger.Fatalf("%v", err)
		}
		defer func() { _ = client.Disconnect(context.Background()) }()

		mongoStore := profiles.NewMongoStore(client.Database(cfg.MongoDB.Database).Collection(cfg.MongoDB.UsersCollection))
		if err := mongoStore.EnsureIndexes(ctx); err != nil {
			logger.Fatalf("%v", err)
		}
		store = mongoStore
		ready["profiles"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }
		logger.Infof("profiles stored in MongoDB %s.%s", cfg.MongoDB.Database, cfg.MongoDB.UsersCollection)
	} else {
		store = profiles.NewMemoryStore(nil)
		ready["profiles"] = func(context.Context) error { return nil }
		logger.Warnf("MONGODB_URI not set: profiles are kept in memory")
	}
	if rdb != nil && cfg.Redis.ProfileCacheTTL > 0 {
		store = profiles.NewCachedStore(store, rdb, "profile:", cfg.Redis.ProfileCacheTTL)
	}
	profileSvc := profiles.NewService(store)

	me := &handlers.MeHandler{Profiles: profileSvc}
	deps := handlers.Deps{Verifier: verifier, Me: me, Ready: ready}

	if cfg.MinIO.Endpoint != "" {
		objects, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
		if err != nil {
			logger.Warnf("avatar uploads disabled: %v", err)
		} else {
			me.Avatars = avatars.NewService(objects, profileSvc, cfg.MinIO.AvatarMaxBytes)
			ready["avatars"] = objects.Ping
		}
	}

	if rdb != nil {
		denylist := revocation.NewDenylist(rdb)
		deps.Revocations = denylist
		me.Revoker = denylist
	}

	// Optional rate limiter (per-user after authentication)
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && rdb != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			deps.RateLimit = middleware.RedisRateLimitMiddleware(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win)
		} else {
			deps.RateLimit = middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		}
	}

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r := handlers.NewRouter(deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("starting backend on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
}
