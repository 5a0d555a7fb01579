package server

import (
	"github.com/factgraph/backend/internal/server/middleware"
	"github.com/factgraph/backend/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Case routes
	apiRoutes.GET("/cases", routes.GetCasesHandler)
	apiRoutes.POST("/cases", routes.CreateCaseHandler)
	apiRoutes.GET("/cases/:id", routes.GetCaseHandler)
	apiRoutes.GET("/cases/:id/graph", routes.GetCaseGraphHandler)

	// Node and relationship routes
	apiRoutes.POST("/cases/:id/nodes", routes.CreateNodeHandler)
	apiRoutes.PATCH("/cases/:id/nodes/:node_id/position", routes.UpdateNodePositionHandler)
	apiRoutes.POST("/cases/:id/relationships", routes.CreateRelationshipHandler)

	// Document upload
	apiRoutes.POST("/cases/:id/upload", routes.UploadDocumentHandler)

	// Tag routes
	apiRoutes.GET("/cases/:id/tags", routes.GetTagsHandler)
	apiRoutes.POST("/cases/:id/tags", routes.CreateTagHandler)
	apiRoutes.GET("/cases/:id/nodes/:node_id/tags", routes.GetNodeTagsHandler)
	apiRoutes.POST("/cases/:id/nodes/:node_id/tags", routes.SetNodeTagsHandler)
}
