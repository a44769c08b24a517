package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/pixelmags/internal/middleware"
	"github.com/deppfellow/pixelmags/internal/server"
	"github.com/labstack/echo/v4"
)

// HealthHandler reports whether the service and its dependencies are reachable.
type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

type healthCheck struct {
	name string

	// required checks turn the service unhealthy when they fail.
	required bool
	run      func(ctx context.Context) (map[string]interface{}, error)
}

// CheckHealth returns 200 when every required dependency check passes and
// 503 otherwise. Redis is reported but never required.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	response := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"store":       h.server.DB.Driver,
	}

	checks := make(map[string]interface{})
	isHealthy := true

	for _, check := range h.checks() {
		if !h.server.Config.Observability.CheckEnabled(check.name) {
			continue
		}

		ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout())
		checkStart := time.Now()
		details, err := check.run(ctx)
		cancel()

		result := map[string]interface{}{
			"status":        "healthy",
			"response_time": time.Since(checkStart).String(),
		}
		for k, v := range details {
			result[k] = v
		}

		if err != nil {
			result["status"] = "unhealthy"
			result["error"] = err.Error()
			if check.required {
				isHealthy = false
			}

			logger.Error().
				Err(err).
				Str("check", check.name).
				Dur("response_time", time.Since(checkStart)).
				Msg("health check failed")

			h.recordFailure(check.name, time.Since(checkStart), err)
		} else {
			logger.Debug().
				Str("check", check.name).
				Dur("response_time", time.Since(checkStart)).
				Msg("health check passed")
		}

		checks[check.name] = result
	}

	response["checks"] = checks

	if !isHealthy {
		response["status"] = "unhealthy"

		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	if err := c.JSON(http.StatusOK, response); err != nil {
		logger.Error().Err(err).Msg("failed to write JSON response")
		return fmt.Errorf("failed to write JSON response: %w", err)
	}

	return nil
}

func (h *HealthHandler) timeout() time.Duration {
	if timeout := h.server.Config.Observability.HealthChecks.Timeout; timeout > 0 {
		return timeout
	}
	return 5 * time.Second
}

func (h *HealthHandler) checks() []healthCheck {
	checks := []healthCheck{
		{
			name:     "database",
			required: true,
			run: func(ctx context.Context) (map[string]interface{}, error) {
				return nil, h.server.DB.Ping(ctx)
			},
		},
		{
			name:     "search",
			required: true,
			run: func(ctx context.Context) (map[string]interface{}, error) {
				counts, err := h.server.Search.Counts(ctx)
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{"documents": counts}, nil
			},
		},
	}

	if h.server.Redis != nil {
		checks = append(checks, healthCheck{
			name: "redis",
			run: func(ctx context.Context) (map[string]interface{}, error) {
				return nil, h.server.Redis.Ping(ctx).Err()
			},
		})
	}

	return checks
}

func (h *HealthHandler) recordFailure(check string, elapsed time.Duration, err error) {
	if h.server.LoggerService == nil || h.server.LoggerService.GetApplication() == nil {
		return
	}

	h.server.LoggerService.GetApplication().RecordCustomEvent(
		"HealthCheckError",
		map[string]interface{}{
			"check_type":       check,
			"operation":        "health_check",
			"error_type":       check + "_unhealthy",
			"response_time_ms": elapsed.Milliseconds(),
			"error_message":    err.Error(),
		},
	)
}
