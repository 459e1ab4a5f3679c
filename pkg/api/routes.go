package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// SetupRoutes sets up the API routes
func (h *APIHandler) SetupRoutes(e *echo.Echo) {
	e.GET("/api/health", h.Health)
	e.GET("/api/report", h.GetReport)
	e.POST("/api/runs", h.CreateRun)
	e.GET("/api/process", h.GetProcess)
	e.GET("/api/openapi.json", h.OpenAPI)

	e.GET("/visualizations/:file", h.GetChart)

	// Swagger documentation
	e.GET("/swagger/*", echo.WrapHandler(httpSwagger.Handler(httpSwagger.URL("/api/openapi.json"))))
}

// NewServer builds the Echo instance with request logging, panic recovery
// and CORS for the given origins
func NewServer(h *APIHandler, allowedOrigins []string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType},
	}))

	h.SetupRoutes(e)
	return e
}
