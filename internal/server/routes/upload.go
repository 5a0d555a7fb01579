package routes

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/factgraph/backend/internal/queue"
	"github.com/factgraph/backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

// MaxUploadBytes bounds the size of a single uploaded document.
const MaxUploadBytes = 10 << 20

// UploadDocumentHandler stores a UTF-8 text document and queues it for
// fact extraction.
func UploadDocumentHandler(c echo.Context) error {
	type uploadResponse struct {
		Message string `json:"message"`
		Key     string `json:"key,omitempty"`
	}

	caseID, ok := idParam(c, "id")
	if !ok {
		return message(c, http.StatusBadRequest, "Invalid case ID")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return message(c, http.StatusBadRequest, "No file provided")
	}
	if fh.Size > MaxUploadBytes {
		return message(c, http.StatusRequestEntityTooLarge, "File is too large")
	}
	f, err := fh.Open()
	if err != nil {
		return message(c, http.StatusBadRequest, "Could not read file")
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, MaxUploadBytes+1))
	if err != nil {
		return message(c, http.StatusBadRequest, "Could not read file")
	}
	if len(raw) > MaxUploadBytes {
		return message(c, http.StatusRequestEntityTooLarge, "File is too large")
	}
	if !utf8.Valid(raw) {
		return message(c, http.StatusBadRequest, "File must be UTF-8 text")
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return message(c, http.StatusBadRequest, "File is empty")
	}

	ctx := c.Request().Context()
	a := app(c)
	if _, err := a.Store.GetCase(ctx, caseID); err != nil {
		return errorStatus(c, err)
	}

	key, err := a.Documents.PutDocument(ctx, caseID, []byte(text))
	if err != nil {
		return errorStatus(c, err)
	}

	msg, err := queue.NewIngestMessage(caseID, key)
	if err == nil {
		err = queue.PublishIngest(a.Queue, msg)
	}
	if err != nil {
		logger.Error("[Server] Failed to queue document", "case_id", caseID, "key", key, "err", err)
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if delErr := a.Documents.DeleteDocument(cleanupCtx, key); delErr != nil {
			logger.Warn("[Server] Failed to delete orphaned document", "key", key, "err", delErr)
		}
		return message(c, http.StatusInternalServerError, "Internal server error")
	}

	logger.Info("[Server] Document queued", "case_id", caseID, "key", key, "correlation_id", msg.CorrelationID)
	return c.JSON(http.StatusAccepted, uploadResponse{
		Message: "File queued for processing",
		Key:     key,
	})
}
