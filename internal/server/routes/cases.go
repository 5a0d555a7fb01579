package routes

import (
	"net/http"

	"github.com/factgraph/backend/pkg/common"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// GetCasesHandler lists all cases.
func GetCasesHandler(c echo.Context) error {
	cases, err := app(c).Store.ListCases(c.Request().Context())
	if err != nil {
		return errorStatus(c, err)
	}
	return c.JSON(http.StatusOK, cases)
}

// GetCaseHandler returns one case.
func GetCaseHandler(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return message(c, http.StatusBadRequest, "Invalid case ID")
	}
	cs, err := app(c).Store.GetCase(c.Request().Context(), id)
	if err != nil {
		return errorStatus(c, err)
	}
	return c.JSON(http.StatusOK, cs)
}

// CreateCaseHandler creates a new case
func CreateCaseHandler(c echo.Context) error {
	type createCaseBody struct {
		Title       string `json:"title" validate:"required"`
		Description string `json:"description"`
	}

	data := new(createCaseBody)
	if err := c.Bind(data); err != nil {
		return message(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(data); err != nil {
		return message(c, http.StatusBadRequest, "Title is required")
	}

	cs, err := app(c).Store.CreateCase(c.Request().Context(), common.Case{
		Title:       data.Title,
		Description: data.Description,
	})
	if err != nil {
		return errorStatus(c, err)
	}
	return c.JSON(http.StatusCreated, cs)
}

// GetCaseGraphHandler returns the nodes and links of a case. The optional
// tags query parameter restricts nodes to those carrying at least one of
// the listed tags.
func GetCaseGraphHandler(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return message(c, http.StatusBadRequest, "Invalid case ID")
	}
	tags, err := parseIDList(c.QueryParam("tags"))
	if err != nil {
		return message(c, http.StatusBadRequest, "Invalid tag filter")
	}

	g, err := app(c).Store.GetCaseGraph(c.Request().Context(), id, tags)
	if err != nil {
		return errorStatus(c, err)
	}
	return c.JSON(http.StatusOK, g)
}
