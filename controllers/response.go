package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/playerback_backend/middleware"
	"github.com/HSouheill/playerback_backend/models"
	"github.com/HSouheill/playerback_backend/utils"
)

// respondError translates a service error into a status and envelope
func respondError(c echo.Context, err error) error {
	status := models.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
	}
	return c.JSON(status, models.Response{
		Status:  status,
		Message: models.PublicMessage(err),
	})
}

func respondMessage(c echo.Context, status int, message string) error {
	return c.JSON(status, models.Response{Status: status, Message: message})
}

// bindAndValidate decodes the body into req and runs its validate tags
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return models.NewValidationError(utils.ValidationMessage(err))
	}
	return nil
}

// viewer returns the caller's id on optional-auth routes, nil when anonymous
func viewer(c echo.Context) *primitive.ObjectID {
	id, ok := middleware.GetUserIDFromToken(c)
	if !ok {
		return nil
	}
	return &id
}

// caller returns the caller's id on required-auth routes
func caller(c echo.Context) (primitive.ObjectID, error) {
	id, ok := middleware.GetUserIDFromToken(c)
	if !ok {
		return primitive.NilObjectID, models.NewUnauthorizedError("Access denied. No token provided.")
	}
	return id, nil
}

func pathID(c echo.Context, name, label string) (primitive.ObjectID, error) {
	id, ok := utils.ParseObjectID(c.Param(name))
	if !ok {
		return primitive.NilObjectID, models.NewValidationError("Invalid " + label + " ID")
	}
	return id, nil
}

func pagination(c echo.Context) (int, int, error) {
	page, limit, err := utils.ParsePagination(c.QueryParam("page"), c.QueryParam("limit"))
	if err != nil {
		return 0, 0, models.NewValidationError(err.Error())
	}
	return page, limit, nil
}
