package routes

import (
	"net/http"

	"github.com/factgraph/backend/pkg/common"

	"github.com/labstack/echo/v4"
)

// GetTagsHandler lists the tags of a case.
func GetTagsHandler(c echo.Context) error {
	caseID, ok := idParam(c, "id")
	if !ok {
		return message(c, http.StatusBadRequest, "Invalid case ID")
	}
	tags, err := app(c).Store.ListTags(c.Request().Context(), caseID)
	if err != nil {
		return errorStatus(c, err)
	}
	return c.JSON(http.StatusOK, tags)
}

// CreateTagHandler creates a tag in a case.
func CreateTagHandler(c echo.Context) error {
	type createTagBody struct {
		Name  string `json:"name" validate:"required"`
		Color string `json:"color" validate:"required"`
	}

	caseID, ok := idParam(c, "id")
	if !ok {
		return message(c, http.StatusBadRequest, "Invalid case ID")
	}

	data := new(createTagBody)
	if err := c.Bind(data); err != nil {
		return message(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(data); err != nil {
		return message(c, http.StatusBadRequest, "Name and color are required")
	}

	tag, err := app(c).Store.CreateTag(c.Request().Context(), common.Tag{
		CaseID: caseID,
		Name:   data.Name,
		Color:  data.Color,
	})
	if err != nil {
		return errorStatus(c, err)
	}
	return c.JSON(http.StatusCreated, tag)
}

// GetNodeTagsHandler lists the tags attached to a fact.
func GetNodeTagsHandler(c echo.Context) error {
	caseID, ok := idParam(c, "id")
	if !ok {
		return message(c, http.StatusBadRequest, "Invalid case ID")
	}
	nodeID, ok := idParam(c, "node_id")
	if !ok {
		return message(c, http.StatusBadRequest, "Invalid node ID")
	}

	tags, err := app(c).Store.GetFactTags(c.Request().Context(), caseID, nodeID)
	if err != nil {
		return errorStatus(c, err)
	}
	return c.JSON(http.StatusOK, tags)
}

// SetNodeTagsHandler replaces the tags attached to a fact and returns the
// new set.
func SetNodeTagsHandler(c echo.Context) error {
	type setTagsBody struct {
		TagIDs []int64 `json:"tag_ids" validate:"required,dive,gt=0"`
	}

	caseID, ok := idParam(c, "id")
	if !ok {
		return message(c, http.StatusBadRequest, "Invalid case ID")
	}
	nodeID, ok := idParam(c, "node_id")
	if !ok {
		return message(c, http.StatusBadRequest, "Invalid node ID")
	}

	data := new(setTagsBody)
	if err := c.Bind(data); err != nil {
		return message(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(data); err != nil {
		return message(c, http.StatusBadRequest, "Tag IDs must be an array")
	}

	ctx := c.Request().Context()
	st := app(c).Store
	if err := st.SetFactTags(ctx, caseID, nodeID, data.TagIDs); err != nil {
		return errorStatus(c, err)
	}
	tags, err := st.GetFactTags(ctx, caseID, nodeID)
	if err != nil {
		return errorStatus(c, err)
	}
	return c.JSON(http.StatusOK, tags)
}
