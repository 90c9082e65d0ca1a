package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tradepulse/backend/internal/pkg/errors"
	"github.com/tradepulse/backend/internal/pkg/logger"
	"github.com/tradepulse/backend/internal/pkg/utils"
)

// HealthHandler handles liveness and readiness probes
type HealthHandler struct {
	db     *sql.DB
	redis  *redis.Client
	logger *logger.Logger
}

// NewHealthHandler creates a new health handler. The redis client may be
// nil when caching is disabled.
func NewHealthHandler(db *sql.DB, rdb *redis.Client, log *logger.Logger) *HealthHandler {
	return &HealthHandler{db: db, redis: rdb, logger: log}
}

// Healthz handles liveness probe
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string "Application is alive"
// @Router /health [get]
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	utils.WriteSuccess(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Readyz handles readiness probe
// @Summary Readiness probe
// @Description Check database and cache connectivity
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string "Application is ready"
// @Failure 503 {object} utils.ErrorResponse "Service unavailable"
// @Router /readyz [get]
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.ErrorWithErr(err, "Database ping failed")
		utils.WriteError(w, errors.ServiceUnavailable("Database connection failed"))
		return
	}

	cacheStatus := "disabled"
	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			h.logger.ErrorWithErr(err, "Redis ping failed")
			utils.WriteError(w, errors.ServiceUnavailable("Cache connection failed"))
			return
		}
		cacheStatus = "connected"
	}

	utils.WriteSuccess(w, http.StatusOK, map[string]string{
		"status":   "ready",
		"database": "connected",
		"cache":    cacheStatus,
	})
}
