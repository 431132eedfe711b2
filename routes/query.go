// Package routes wires the HTTP surface: question answering, document
// upload and ingestion status.
package routes

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"pdf-qa-backend/internal/config"
	"pdf-qa-backend/internal/telemetry"
	"pdf-qa-backend/models"
	"pdf-qa-backend/services"
	"pdf-qa-backend/utils"
)

// SetupQueryRoutes registers the question answering endpoint.
func SetupQueryRoutes(router *gin.Engine, svc *services.QueryService, cfg *config.Config, metrics *telemetry.Metrics) {
	router.POST("/query", func(c *gin.Context) {
		var req models.QueryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request body")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.QueryTimeout)
		defer cancel()

		start := time.Now()
		resp, err := svc.Answer(ctx, req.Question)

		if metrics != nil {
			status := "ok"
			if err != nil {
				status = "error"
			}
			attrs := metric.WithAttributes(attribute.String("status", status))
			metrics.QueryCounter.Add(c.Request.Context(), 1, attrs)
			metrics.QueryDuration.Record(c.Request.Context(), time.Since(start).Seconds(), attrs)
		}

		if err != nil {
			respondQueryError(c, err)
			return
		}

		c.JSON(http.StatusOK, resp)
	})
}

// respondQueryError maps pipeline failures to HTTP statuses. Upstream
// detail stays in the logs; callers get a stable, safe message.
func respondQueryError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		utils.RespondWithBadRequest(c, validationErr.Message)
		return
	}

	slog.Error("query failed", "request_id", c.GetString("request_id"), "err", err)

	if errors.Is(err, context.DeadlineExceeded) {
		utils.RespondWithGatewayTimeout(c, "Query timed out. Please try again.")
		return
	}

	var embeddingErr *services.EmbeddingServiceError
	var indexErr *services.VectorIndexError
	var generationErr *services.GenerationServiceError
	switch {
	case errors.As(err, &embeddingErr):
		utils.RespondWithBadGateway(c, "Embedding service is unavailable")
	case errors.As(err, &indexErr):
		utils.RespondWithBadGateway(c, "Search index is unavailable")
	case errors.As(err, &generationErr):
		utils.RespondWithBadGateway(c, "Answer generation is unavailable")
	default:
		utils.RespondWithInternalError(c, "Internal server error")
	}
}
