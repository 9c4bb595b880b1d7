package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/MightyOwl77/FitnessTracker-sub000/internal/config"
	"github.com/MightyOwl77/FitnessTracker-sub000/internal/engine"
	"github.com/MightyOwl77/FitnessTracker-sub000/internal/metrics"
	"github.com/MightyOwl77/FitnessTracker-sub000/internal/plancache"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the query helpers
// work inside and outside a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Handler holds shared dependencies for all route handlers.
type Handler struct {
	db    *pgxpool.Pool
	plans *plancache.Cache
	log   *zap.Logger
	cfg   *config.Config
	// now is the request clock; tests pin it.
	now func() time.Time
}

func (h *Handler) today() time.Time {
	t := h.now()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

/* ─── Database helpers ────────────────────────────────────────────────── */

// queryOne runs a query and scans the first row into T using RowToStructByName.
// pgx.ErrNoRows is returned as-is and not logged.
func queryOne[T any](ctx context.Context, db querier, log *zap.Logger, sql string, args pgx.NamedArgs) (T, error) {
	rows, err := db.Query(ctx, sql, args)
	if err != nil {
		log.Error("query failed", zap.String("sql_op", "queryOne"), zap.Error(err))
		var zero T
		return zero, err
	}
	result, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		log.Error("scan failed", zap.String("sql_op", "queryOne"), zap.Error(err))
	}
	return result, err
}

// queryMany runs a query and scans all rows into []T using RowToStructByName.
func queryMany[T any](ctx context.Context, db querier, log *zap.Logger, sql string, args pgx.NamedArgs) ([]T, error) {
	rows, err := db.Query(ctx, sql, args)
	if err != nil {
		log.Error("query failed", zap.String("sql_op", "queryMany"), zap.Error(err))
		return nil, err
	}
	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		log.Error("scan failed", zap.String("sql_op", "queryMany"), zap.Error(err))
	}
	return results, err
}

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// validationError responds 400 with the offending fields when err carries
// engine.ValidationErrors, and reports whether it did.
func validationError(c *gin.Context, operation string, err error) bool {
	var ve engine.ValidationErrors
	if !errors.As(err, &ve) {
		return false
	}
	metrics.ValidationFailures.WithLabelValues(operation).Inc()
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "fields": ve})
	return true
}

// parseDateParam validates a YYYY-MM-DD query or path value.
func parseDateParam(c *gin.Context, name, value string) (time.Time, bool) {
	t, err := time.Parse(engine.DateLayout, value)
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid "+name+", expected YYYY-MM-DD")
		return time.Time{}, false
	}
	return t, true
}

// dateRange reads the required start/end query params.
func dateRange(c *gin.Context) (start, end string, ok bool) {
	start = c.Query("start")
	end = c.Query("end")
	if start == "" || end == "" {
		apiError(c, http.StatusBadRequest, "start and end query params are required")
		return "", "", false
	}
	if _, ok := parseDateParam(c, "start", start); !ok {
		return "", "", false
	}
	if _, ok := parseDateParam(c, "end", end); !ok {
		return "", "", false
	}
	if start > end {
		apiError(c, http.StatusBadRequest, "start must not be after end")
		return "", "", false
	}
	return start, end, true
}

/* ─── Server setup ────────────────────────────────────────────────────── */

// getDBPool creates a connection pool.
func getDBPool(ctx context.Context, url string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, err
	}
	// Simple protocol avoids "cached plan must not change result type" after
	// migrations alter a table under a live pool.
	poolCfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	router.GET("/healthz", h.healthz)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Public routes
	router.POST("/api/login", h.login)
	router.POST("/api/plan/preview", h.previewPlan)

	// Authenticated routes
	api := router.Group("/api", h.authMiddleware())
	api.GET("/profile", h.getProfile)
	api.PUT("/profile", h.putProfile)
	api.GET("/goal", h.getGoal)
	api.PUT("/goal", h.putGoal)
	api.PUT("/goal/calorie-target", h.putCalorieTarget)
	api.GET("/goal/projection", h.getProjection)
	api.GET("/daily-log", h.getDailyLog)
	api.POST("/daily-log", h.upsertDailyLog)
	api.DELETE("/daily-log/:date", h.deleteDailyLog)
	api.GET("/body-stats", h.getBodyStats)
	api.POST("/body-stats", h.upsertBodyStat)
	api.DELETE("/body-stats/:date", h.deleteBodyStat)
	api.GET("/progress", h.getProgress)
	api.GET("/adherence", h.getAdherence)
}

// healthz reports liveness. The database is pinged when one is configured.
func (h *Handler) healthz(c *gin.Context) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c, 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			h.log.Warn("health check ping failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
