package routes

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"pdf-qa-backend/internal/config"
	"pdf-qa-backend/internal/queue"
	"pdf-qa-backend/internal/storage"
	"pdf-qa-backend/models"
	"pdf-qa-backend/utils"
)

var pdfMagic = []byte("%PDF")

// SetupDocumentRoutes registers document upload and ingestion status.
// Uploads are stored first, then queued; the response returns before any
// extraction or embedding happens.
func SetupDocumentRoutes(router *gin.Engine, store storage.ObjectStore, status *queue.StatusStore, client *asynq.Client, cfg *config.Config) {
	logger := slog.Default().With("component", "documents")

	router.POST("/documents", func(c *gin.Context) {
		fileHeader, err := c.FormFile("pdf")
		if err != nil {
			utils.RespondWithBadRequest(c, "PDF file is required (multipart field 'pdf')")
			return
		}

		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
			utils.RespondWithBadRequest(c, "Only PDF files are supported")
			return
		}

		if fileHeader.Size > cfg.MaxFileSize {
			utils.RespondWithBadRequest(c,
				fmt.Sprintf("File exceeds the %d MB limit", cfg.MaxFileSize/(1024*1024)))
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to read upload")
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to read upload")
			return
		}

		if !bytes.HasPrefix(data, pdfMagic) {
			utils.RespondWithBadRequest(c, "File is not a valid PDF")
			return
		}

		filename := filepath.Base(fileHeader.Filename)
		key := uuid.NewString() + "-" + filename

		ctx := c.Request.Context()
		if err := store.Put(ctx, cfg.StorageBucket, key, data); err != nil {
			logger.Error("failed to store upload", "key", key, "err", err)
			utils.RespondWithInternalError(c, "Failed to store document")
			return
		}

		if err := status.MarkPending(ctx, key); err != nil {
			logger.Warn("failed to record pending status", "key", key, "err", err)
		}

		task, err := queue.NewDocumentIngestTask(cfg.StorageBucket, key, cfg.IngestTimeout)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to queue document")
			return
		}

		info, err := client.EnqueueContext(ctx, task)
		if err != nil {
			logger.Error("failed to enqueue ingestion", "key", key, "err", err)
			utils.RespondWithInternalError(c, "Failed to queue document")
			return
		}

		logger.Info("document queued", "key", key, "size", fileHeader.Size, "task_id", info.ID)

		c.JSON(http.StatusAccepted, models.UploadResponse{
			Key:      key,
			Filename: filename,
			Size:     fileHeader.Size,
			Status:   models.StatusPending,
			TaskID:   info.ID,
			Message:  "Document accepted and queued for indexing",
		})
	})

	router.GET("/documents/:key/status", func(c *gin.Context) {
		key := c.Param("key")

		st, found, err := status.Get(c.Request.Context(), key)
		if err != nil {
			logger.Error("failed to read status", "key", key, "err", err)
			utils.RespondWithInternalError(c, "Failed to read document status")
			return
		}
		if !found {
			utils.RespondWithNotFound(c, "Unknown document key")
			return
		}

		c.JSON(http.StatusOK, st)
	})
}
