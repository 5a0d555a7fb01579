package routes

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/factgraph/backend/internal/server/middleware"
	"github.com/factgraph/backend/pkg/graph"
	"github.com/factgraph/backend/pkg/logger"
	"github.com/factgraph/backend/pkg/store"

	"github.com/labstack/echo/v4"
)

type messageResponse struct {
	Message string `json:"message"`
}

func message(c echo.Context, status int, msg string) error {
	return c.JSON(status, messageResponse{Message: msg})
}

func app(c echo.Context) *middleware.App {
	return middleware.GetApp(c)
}

func idParam(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parseIDList reads a comma separated list of positive ids.
func parseIDList(raw string) ([]int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil || id <= 0 {
			return nil, errors.New("invalid id " + p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// errorStatus maps domain and storage errors to a response.
func errorStatus(c echo.Context, err error) error {
	switch {
	case errors.Is(err, graph.ErrInvalidKind):
		return message(c, http.StatusBadRequest, "Invalid node type")
	case errors.Is(err, graph.ErrEmptyContent):
		return message(c, http.StatusBadRequest, "Content is required")
	case errors.Is(err, graph.ErrDuplicateFact):
		return message(c, http.StatusConflict, "Fact already exists in this case")
	case errors.Is(err, store.ErrNotFound):
		return message(c, http.StatusNotFound, "Not found")
	}
	logger.Error("[Server] Request failed", "path", c.Path(), "err", err)
	return message(c, http.StatusInternalServerError, "Internal server error")
}
