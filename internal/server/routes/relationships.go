package routes

import (
	"net/http"

	"github.com/factgraph/backend/pkg/common"

	"github.com/labstack/echo/v4"
)

// manualStrength is the strength of relationships drawn by an analyst.
const manualStrength = 1

// CreateRelationshipHandler stores a manual edge between two facts of the
// case.
func CreateRelationshipHandler(c echo.Context) error {
	type createRelationshipBody struct {
		SourceID int64  `json:"source_id" validate:"required,gt=0"`
		TargetID int64  `json:"target_id" validate:"required,gt=0"`
		Type     string `json:"type" validate:"required"`
	}

	caseID, ok := idParam(c, "id")
	if !ok {
		return message(c, http.StatusBadRequest, "Invalid case ID")
	}

	data := new(createRelationshipBody)
	if err := c.Bind(data); err != nil {
		return message(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(data); err != nil {
		return message(c, http.StatusBadRequest, "Source ID, target ID and type are required")
	}
	if data.SourceID == data.TargetID {
		return message(c, http.StatusBadRequest, "A fact cannot be related to itself")
	}

	rel, err := app(c).Store.InsertEdge(c.Request().Context(), common.Relationship{
		CaseID:   caseID,
		SourceID: data.SourceID,
		TargetID: data.TargetID,
		Type:     data.Type,
		Strength: manualStrength,
	})
	if err != nil {
		return errorStatus(c, err)
	}
	return c.JSON(http.StatusCreated, rel)
}
