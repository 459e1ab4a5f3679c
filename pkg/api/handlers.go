package api

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/timeplus-io/processviz/pkg/config"
	"github.com/timeplus-io/processviz/pkg/models"
	"github.com/timeplus-io/processviz/pkg/pipeline"
	"github.com/timeplus-io/processviz/pkg/store"
)

//go:embed openapi.json
var openAPIDoc []byte

// WorkflowRunner runs the workflow and reports where charts are written
type WorkflowRunner interface {
	Run(ctx context.Context) (*pipeline.Report, error)
	OutputDir() string
}

// Ensure pipeline.Runner implements WorkflowRunner
var _ WorkflowRunner = (*pipeline.Runner)(nil)

// APIHandler serves the latest run report, process rows and charts
type APIHandler struct {
	runner WorkflowRunner
	store  store.ProcessStore

	// mu serialises runs against each other and against table reads,
	// and guards report
	mu     sync.Mutex
	report *pipeline.Report
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(runner WorkflowRunner, st store.ProcessStore) *APIHandler {
	return &APIHandler{
		runner: runner,
		store:  st,
	}
}

// SetReport records the report of a run performed outside the handler
func (h *APIHandler) SetReport(report *pipeline.Report) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.report = report
}

// Health reports that the server is up
func (h *APIHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// GetReport returns the report of the latest run
func (h *APIHandler) GetReport(c echo.Context) error {
	h.mu.Lock()
	report := h.report
	h.mu.Unlock()

	if report == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "No run has completed yet"})
	}
	return c.JSON(http.StatusOK, report)
}

// CreateRun runs the workflow again and returns its report.
// The run is not tied to the request: a client that disconnects after the
// table is dropped must not leave it missing.
func (h *APIHandler) CreateRun(c echo.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	report, err := h.runner.Run(context.WithoutCancel(c.Request().Context()))
	if err != nil {
		logrus.Errorf("Error running workflow: %v", err)
		status := http.StatusInternalServerError
		if errors.Is(err, pipeline.ErrEmptyResult) {
			status = http.StatusUnprocessableEntity
		}
		return c.JSON(status, map[string]string{"error": fmt.Sprintf("Failed to run workflow: %v", err)})
	}

	h.report = report
	return c.JSON(http.StatusCreated, report)
}

// GetProcess returns the process rows dated in [from, to)
func (h *APIHandler) GetProcess(c echo.Context) error {
	fromStr := c.QueryParam("from")
	toStr := c.QueryParam("to")
	if fromStr == "" || toStr == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "from and to are required (YYYY-MM-DD)"})
	}

	from, err := time.ParseInLocation(config.DateLayout, fromStr, time.UTC)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid from date format"})
	}
	to, err := time.ParseInLocation(config.DateLayout, toStr, time.UTC)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid to date format"})
	}
	if !from.Before(to) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "from must be before to"})
	}

	// Wait for any re-run so the table is never read between drop and commit
	h.mu.Lock()
	rows, err := h.store.QueryProcessRange(c.Request().Context(), from, to)
	h.mu.Unlock()
	if err != nil {
		logrus.Errorf("Error querying process rows: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to query process rows"})
	}
	if rows == nil {
		rows = models.Dataset{}
	}
	return c.JSON(http.StatusOK, rows)
}

// GetChart serves a rendered chart from the output directory
func (h *APIHandler) GetChart(c echo.Context) error {
	name := c.Param("file")
	if name != filepath.Base(name) || !strings.EqualFold(filepath.Ext(name), ".png") {
		return c.JSON(http.StatusNotFound, map[string]string{"error": fmt.Sprintf("Chart %s not found", name)})
	}
	return c.File(filepath.Join(h.runner.OutputDir(), name))
}

// OpenAPI serves the API description used by the swagger UI
func (h *APIHandler) OpenAPI(c echo.Context) error {
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, openAPIDoc)
}
