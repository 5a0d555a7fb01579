package middleware

import (
	"context"

	"github.com/factgraph/backend/internal/queue"
	"github.com/factgraph/backend/internal/storage"
	"github.com/factgraph/backend/pkg/common"
	"github.com/factgraph/backend/pkg/graph"
	"github.com/factgraph/backend/pkg/store"

	"github.com/labstack/echo/v4"
)

// FactCreator is the part of *graph.Pipeline used by the handlers.
type FactCreator interface {
	CreateFact(ctx context.Context, caseID int64, kind common.FactKind, content string) (graph.FactResult, error)
}

type App struct {
	Store     store.GraphStorage
	Pipeline  FactCreator
	Queue     queue.Channel
	Documents storage.DocumentStore
	APIKey    string
}

type AppContext struct {
	echo.Context
	App *App
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}

// GetApp returns the App attached by AppContextMiddleware.
func GetApp(c echo.Context) *App {
	if cc, ok := c.(*AppContext); ok {
		return cc.App
	}
	return nil
}
