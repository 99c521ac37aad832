package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/boq/internal/domain/models"
	"github.com/mamadbah2/boq/internal/domain/prices"
	"github.com/mamadbah2/boq/internal/service/reporting"
)

// ReportService is the read-only report surface used by ReportHandler.
type ReportService interface {
	Summary() (models.ProjectSummary, error)
	Chapter(code string) (models.ChapterView, error)
	ChapterAt(path []int) (models.ChapterView, error)
	Price(code string) (models.PriceView, error)
	Justification(code string, mode prices.PercentageMode) (models.JustificationView, error)
	Quantities(chapterCode string, limitTextWidth int) ([]models.QuantityRow, error)
	ElementaryQuantities(chapterCode string, filter reporting.QuantityFilter, limitTextWidth int) ([]models.QuantityRow, error)
	EmployedPrices(chapterCode string, lower decimal.Decimal, elementary bool) ([]string, error)
	Budget() (models.BudgetView, error)
}

// ReportHandler serves project reports over HTTP.
type ReportHandler struct {
	svc    ReportService
	logger *zap.Logger
}

// NewReportHandler constructs the HTTP handler adapter.
func NewReportHandler(svc ReportService, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{svc: svc, logger: logger}
}

// Summary returns the project outline.
func (h *ReportHandler) Summary(c *gin.Context) {
	out, err := h.svc.Summary()
	h.respond(c, out, err)
}

// Budget returns the budget with overheads applied.
func (h *ReportHandler) Budget(c *gin.Context) {
	out, err := h.svc.Budget()
	h.respond(c, out, err)
}

// Chapter returns a chapter found by code.
func (h *ReportHandler) Chapter(c *gin.Context) {
	out, err := h.svc.Chapter(c.Param("code"))
	h.respond(c, out, err)
}

// ChapterAt returns a chapter found by a dotted path of 1-based indices,
// such as ?path=2.1.
func (h *ReportHandler) ChapterAt(c *gin.Context) {
	path, err := parsePath(c.Query("path"))
	if err != nil {
		badRequest(c, err)
		return
	}
	out, err := h.svc.ChapterAt(path)
	h.respond(c, out, err)
}

// Price describes one price.
func (h *ReportHandler) Price(c *gin.Context) {
	out, err := h.svc.Price(c.Param("code"))
	h.respond(c, out, err)
}

// Justification returns the breakdown of a compound price.
func (h *ReportHandler) Justification(c *gin.Context) {
	mode := prices.NonCumulative
	switch c.DefaultQuery("mode", "non_cumulative") {
	case "non_cumulative":
	case "cumulative":
		mode = prices.Cumulative
	default:
		badRequest(c, fmt.Errorf("unknown percentage mode %q", c.Query("mode")))
		return
	}
	out, err := h.svc.Justification(c.Param("code"), mode)
	h.respond(c, out, err)
}

// Quantities lists measured prices by descending amount.
func (h *ReportHandler) Quantities(c *gin.Context) {
	width, err := queryInt(c, "width")
	if err != nil {
		badRequest(c, err)
		return
	}
	out, err := h.svc.Quantities(c.Query("chapter"), width)
	h.respond(c, out, err)
}

// ElementaryQuantities lists elementary resources, optionally filtered by
// unit and type.
func (h *ReportHandler) ElementaryQuantities(c *gin.Context) {
	width, err := queryInt(c, "width")
	if err != nil {
		badRequest(c, err)
		return
	}
	filter := reporting.QuantityFilter{Unit: c.Query("unit")}
	if raw := c.Query("type"); raw != "" {
		t, err := prices.ParsePriceType(raw)
		if err != nil {
			badRequest(c, err)
			return
		}
		filter.Type = &t
	}
	out, err := h.svc.ElementaryQuantities(c.Query("chapter"), filter, width)
	h.respond(c, out, err)
}

// EmployedPrices lists the codes measured above ?lower=.
func (h *ReportHandler) EmployedPrices(c *gin.Context) {
	lower := decimal.Zero
	if raw := c.Query("lower"); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			badRequest(c, fmt.Errorf("lower must be a decimal number: %w", err))
			return
		}
		lower = parsed
	}
	elementary, err := strconv.ParseBool(c.DefaultQuery("elementary", "false"))
	if err != nil {
		badRequest(c, fmt.Errorf("elementary must be a boolean: %w", err))
		return
	}
	out, err := h.svc.EmployedPrices(c.Query("chapter"), lower, elementary)
	h.respond(c, gin.H{"codes": out}, err)
}

func (h *ReportHandler) respond(c *gin.Context, body any, err error) {
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("report request failed", zap.String("path", c.FullPath()), zap.Error(err))
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, body)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return n, nil
}

func parsePath(raw string) ([]int, error) {
	if raw == "" {
		return nil, errors.New("path must be provided")
	}
	parts := strings.Split(raw, ".")
	path := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid path element %q", p)
		}
		path = append(path, n)
	}
	return path, nil
}
