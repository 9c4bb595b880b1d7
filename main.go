package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/MightyOwl77/FitnessTracker-sub000/internal/config"
	"github.com/MightyOwl77/FitnessTracker-sub000/internal/logger"
	"github.com/MightyOwl77/FitnessTracker-sub000/internal/plancache"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// No logger yet; config decides which one to build.
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.ForEnv(cfg.Development())
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := getDBPool(ctx, cfg.DBURL)
	if err != nil {
		log.Fatal("unable to connect to database", zap.Error(err))
	}
	defer pool.Close()
	log.Info("db pool ready")

	h := &Handler{
		db:    pool,
		plans: plancache.New(planStore(ctx, cfg, log), cfg.PlanCacheTTL, log),
		log:   log,
		cfg:   cfg,
		now:   time.Now,
	}

	if !cfg.Development() {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newServer(h, cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

// newServer builds the gin engine and wraps it in CORS.
func newServer(h *Handler, cfg *config.Config) http.Handler {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(h.log))
	router.SetTrustedProxies(nil)
	h.registerRoutes(router)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	})
	return c.Handler(router)
}

// planStore uses Redis when configured and reachable, otherwise an
// in-process store. A Redis outage at startup degrades rather than fails.
func planStore(ctx context.Context, cfg *config.Config, log *zap.Logger) plancache.Store {
	if cfg.RedisAddr == "" {
		log.Info("plan cache: in-memory")
		return plancache.NewMemoryStore(cfg.PlanCacheMemorySize, cfg.PlanCacheTTL)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn("plan cache: redis unreachable, falling back to in-memory",
			zap.String("addr", cfg.RedisAddr), zap.Error(err))
		_ = rdb.Close()
		return plancache.NewMemoryStore(cfg.PlanCacheMemorySize, cfg.PlanCacheTTL)
	}
	log.Info("plan cache: redis", zap.String("addr", cfg.RedisAddr))
	return plancache.NewRedisStore(rdb)
}

// requestLogger logs one line per request.
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
