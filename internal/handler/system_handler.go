package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-proctor/internal/config"
	"github.com/stemsi/exstem-proctor/internal/middleware"
	"github.com/stemsi/exstem-proctor/internal/response"
)

const healthTimeout = 2 * time.Second

// SystemHandler reports process and dependency health. rdb and pool are nil
// when Redis or Postgres is not configured.
type SystemHandler struct {
	rdb       *redis.Client
	pool      *pgxpool.Pool
	startTime time.Time
	log       zerolog.Logger
}

func NewSystemHandler(rdb *redis.Client, pool *pgxpool.Pool, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		rdb:       rdb,
		pool:      pool,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

// Health godoc
// GET /health
// Returns {status:"ok"} plus the state of optional dependencies. A failing
// dependency reports "degraded" without failing the probe: the JSON stores
// keep the exam running.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	status := "ok"
	components := gin.H{}

	if h.rdb != nil {
		if err := h.rdb.Ping(ctx).Err(); err != nil {
			h.log.Warn().Err(err).Msg("Redis health check failed")
			components["redis"] = "down"
			status = "degraded"
		} else {
			components["redis"] = "ok"
			if n, err := h.rdb.LLen(ctx, config.WorkerKey.PersistResultsQueue).Result(); err == nil {
				components["archive_queue"] = n
			}
		}
	}

	if h.pool != nil {
		if err := h.pool.Ping(ctx); err != nil {
			h.log.Warn().Err(err).Msg("Postgres health check failed")
			components["postgres"] = "down"
			status = "degraded"
		} else {
			components["postgres"] = "ok"
		}
	}

	response.Success(c, http.StatusOK, gin.H{
		"status":     status,
		"uptime":     time.Since(h.startTime).Round(time.Second).String(),
		"goroutines": runtime.NumGoroutine(),
		"components": components,
	})
}

// Robots godoc
// GET /robots.txt
// Disallows all crawling.
func (h *SystemHandler) Robots(c *gin.Context) {
	c.String(http.StatusOK, middleware.RobotsTxt)
}
