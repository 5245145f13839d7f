// Package httpapi exposes the loss metrics, the transaction history and the
// latest slippage scan over HTTP.
package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shahrookhpiray1/sliswap-loss-visualizer/business/loss/domain"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/apperror"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/httpserver"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/logger"
)

// LossService is what the handlers need from the loss app layer.
type LossService interface {
	ImpermanentLoss(ratio float64) (float64, error)
	SlippageLoss(expected, actual float64) (float64, error)
	Transactions(ctx context.Context) ([]domain.TransactionReport, domain.Summary, error)
}

// ScanSource yields scanner reports.
type ScanSource interface {
	Last() *domain.ScanReport
	RunOnce(ctx context.Context) *domain.ScanReport
}

// Handler serves the loss endpoints.
type Handler struct {
	service LossService
	scanner ScanSource
	logger  logger.LoggerInterface
}

// NewHandler creates the loss handlers. scanner may be nil, which disables GET /scan.
func NewHandler(service LossService, scanner ScanSource, log logger.LoggerInterface) *Handler {
	return &Handler{service: service, scanner: scanner, logger: log}
}

// Register mounts the routes on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/loss/impermanent", h.ImpermanentLoss)
	r.POST("/loss/slippage", h.SlippageLoss)
	r.GET("/transactions", h.Transactions)
	if h.scanner != nil {
		r.GET("/scan", h.Scan)
	}
}

// ImpermanentLoss handles GET /loss/impermanent?ratio=R.
func (h *Handler) ImpermanentLoss(c *gin.Context) {
	ratio, err := strconv.ParseFloat(c.Query("ratio"), 64)
	if err != nil {
		httpserver.RespondError(c, apperror.New(apperror.CodeInvalidPriceRatio,
			apperror.WithCause(err),
			apperror.WithContext("ratio="+c.Query("ratio"))))
		return
	}

	il, err := h.service.ImpermanentLoss(ratio)
	if err != nil {
		httpserver.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"priceRatio": ratio, "impermanentLoss": il})
}

type slippageBody struct {
	Expected *float64 `json:"expected" binding:"required"`
	Actual   *float64 `json:"actual" binding:"required"`
}

// SlippageLoss handles POST /loss/slippage {expected, actual}.
func (h *Handler) SlippageLoss(c *gin.Context) {
	var body slippageBody
	if err := c.ShouldBindJSON(&body); err != nil {
		httpserver.RespondError(c, apperror.New(apperror.CodeInvalidFormat,
			apperror.WithCause(err),
			apperror.WithContext("expected {expected, actual}")))
		return
	}

	loss, err := h.service.SlippageLoss(*body.Expected, *body.Actual)
	if err != nil {
		httpserver.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"expected":     *body.Expected,
		"actual":       *body.Actual,
		"slippageLoss": loss,
	})
}

// Transactions handles GET /transactions.
func (h *Handler) Transactions(c *gin.Context) {
	reports, summary, err := h.service.Transactions(c.Request.Context())
	if err != nil {
		httpserver.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": reports, "summary": summary})
}

// Scan handles GET /scan. It returns the scanner's latest pass, running one
// when none exists yet or when ?fresh=true.
func (h *Handler) Scan(c *gin.Context) {
	fresh, _ := strconv.ParseBool(c.Query("fresh"))

	report := h.scanner.Last()
	if report == nil || fresh {
		report = h.scanner.RunOnce(c.Request.Context())
	}

	c.JSON(http.StatusOK, gin.H{
		"report":           report,
		"failed":           report.Failed(),
		"impactViolations": report.ImpactViolations(),
	})
}
