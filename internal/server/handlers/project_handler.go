package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/boq/internal/codec"
	"github.com/mamadbah2/boq/internal/domain/models"
	"github.com/mamadbah2/boq/internal/service/projects"
	"github.com/mamadbah2/boq/internal/service/reporting"
)

// ProjectService exposes the document and snapshot operations.
type ProjectService interface {
	Document() (codec.Document, error)
	Snapshot(ctx context.Context) (models.ProjectSnapshot, error)
	Restore(ctx context.Context, projectCode string) error
}

// ProjectHandler serves document export and snapshot requests.
type ProjectHandler struct {
	svc    ProjectService
	logger *zap.Logger
}

// NewProjectHandler constructs the HTTP handler adapter.
func NewProjectHandler(svc ProjectService, logger *zap.Logger) *ProjectHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectHandler{svc: svc, logger: logger}
}

// Document exports the project as JSON (default) or YAML (?format=yaml).
func (h *ProjectHandler) Document(c *gin.Context) {
	format := codec.Format(c.DefaultQuery("format", string(codec.JSON)))

	doc, err := h.svc.Document()
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	data, err := codec.Marshal(format, doc)
	if errors.Is(err, codec.ErrUnknownFormat) {
		badRequest(c, err)
		return
	}
	if err != nil {
		h.logger.Error("failed encoding project document", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to encode document"})
		return
	}

	contentType := "application/json"
	if format == codec.YAML {
		contentType = "application/yaml"
	}
	c.Data(http.StatusOK, contentType, data)
}

// Snapshot stores the current project.
func (h *ProjectHandler) Snapshot(c *gin.Context) {
	snap, err := h.svc.Snapshot(c.Request.Context())
	if err != nil {
		h.logger.Error("failed storing snapshot", zap.Error(err))
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, snap)
}

// Restore replaces the project with its latest snapshot.
func (h *ProjectHandler) Restore(c *gin.Context) {
	code := c.Param("code")
	if err := h.svc.Restore(c.Request.Context(), code); err != nil {
		h.logger.Warn("failed restoring snapshot", zap.String("project", code), zap.Error(err))
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, reporting.ErrChapterNotFound),
		errors.Is(err, reporting.ErrPriceNotFound),
		errors.Is(err, projects.ErrPriceNotFound),
		errors.Is(err, models.ErrSnapshotNotFound):
		return http.StatusNotFound
	case errors.Is(err, reporting.ErrNotCompound):
		return http.StatusUnprocessableEntity
	case errors.Is(err, projects.ErrNoProject):
		return http.StatusServiceUnavailable
	case errors.Is(err, projects.ErrNoRepository):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
