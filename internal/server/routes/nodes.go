package routes

import (
	"net/http"

	"github.com/factgraph/backend/pkg/common"

	"github.com/labstack/echo/v4"
)

// CreateNodeHandler creates a fact and links it into the case graph.
func CreateNodeHandler(c echo.Context) error {
	type createNodeBody struct {
		Type    string `json:"type" validate:"required"`
		Content string `json:"content" validate:"required"`
	}

	caseID, ok := idParam(c, "id")
	if !ok {
		return message(c, http.StatusBadRequest, "Invalid case ID")
	}

	data := new(createNodeBody)
	if err := c.Bind(data); err != nil {
		return message(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(data); err != nil {
		return message(c, http.StatusBadRequest, "Type and content are required")
	}

	ctx := c.Request().Context()
	a := app(c)
	if _, err := a.Store.GetCase(ctx, caseID); err != nil {
		return errorStatus(c, err)
	}

	res, err := a.Pipeline.CreateFact(ctx, caseID, common.FactKind(data.Type), data.Content)
	if err != nil {
		return errorStatus(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// UpdateNodePositionHandler stores the layout coordinates of a fact.
func UpdateNodePositionHandler(c echo.Context) error {
	type positionBody struct {
		X *int `json:"x" validate:"required"`
		Y *int `json:"y" validate:"required"`
	}

	caseID, ok := idParam(c, "id")
	if !ok {
		return message(c, http.StatusBadRequest, "Invalid case ID")
	}
	nodeID, ok := idParam(c, "node_id")
	if !ok {
		return message(c, http.StatusBadRequest, "Invalid node ID")
	}

	data := new(positionBody)
	if err := c.Bind(data); err != nil {
		return message(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(data); err != nil {
		return message(c, http.StatusBadRequest, "x and y are required")
	}

	fact, err := app(c).Store.UpdateFactPosition(c.Request().Context(), caseID, nodeID, *data.X, *data.Y)
	if err != nil {
		return errorStatus(c, err)
	}
	fact.Embedding = nil
	return c.JSON(http.StatusOK, fact)
}
