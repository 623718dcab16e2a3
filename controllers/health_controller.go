package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthController reports whether the database answers pings
type HealthController struct {
	ping func() error
}

func NewHealthController(ping func() error) *HealthController {
	return &HealthController{ping: ping}
}

// Health handler returns 503 while the database is unreachable
func (hc *HealthController) Health(c echo.Context) error {
	if err := hc.ping(); err != nil {
		c.Logger().Errorf("health check: %v", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":   "unhealthy",
			"database": "unreachable",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":   "healthy",
		"database": "connected",
	})
}
