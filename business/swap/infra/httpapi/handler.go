// Package httpapi exposes the swap service over HTTP and websocket.
package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shahrookhpiray1/sliswap-loss-visualizer/business/swap/app"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/apperror"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/asset"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/httpserver"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/logger"
)

// SwapService is what the handlers need from the swap app layer.
type SwapService interface {
	Calculate(ctx context.Context, req app.CalculateRequest) (*app.Quote, error)
	Verify(ctx context.Context, req app.CalculateRequest) (*app.Verification, error)
	Pairs(ctx context.Context) []app.PairInfo
}

// Handler serves the swap endpoints.
type Handler struct {
	service SwapService
	assets  *asset.Registry
	logger  logger.LoggerInterface
	origins []string
}

// NewHandler creates the swap handlers.
func NewHandler(service SwapService, assets *asset.Registry, log logger.LoggerInterface) *Handler {
	return &Handler{service: service, assets: assets, logger: log}
}

// WithAllowedOrigins sets the Origin patterns accepted on /ws/quotes, in the
// form of server.allowed_origins ("*", "app.example.com" or
// "https://app.example.com"). Without it only same-host upgrades pass.
func (h *Handler) WithAllowedOrigins(origins []string) *Handler {
	h.origins = origins
	return h
}

// Register mounts the routes on r.
func (h *Handler) Register(r gin.IRouter) {
	r.POST("/calculate", h.Calculate)
	r.GET("/pairs", h.Pairs)
	r.GET("/tokens", h.Tokens)
	r.GET("/tokens/:symbol/format", h.FormatRaw)
	r.GET("/ws/quotes", h.Stream)
}

type calculateBody struct {
	From   string   `json:"from" binding:"required"`
	To     string   `json:"to" binding:"required"`
	Amount *float64 `json:"amount" binding:"required"`
}

// Calculate handles POST /calculate. With ?verify=true the on-chain output is added.
func (h *Handler) Calculate(c *gin.Context) {
	var body calculateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		httpserver.RespondError(c, apperror.New(apperror.CodeInvalidFormat,
			apperror.WithCause(err),
			apperror.WithContext("expected {from, to, amount}")))
		return
	}

	req := app.CalculateRequest{From: body.From, To: body.To, Amount: *body.Amount}

	verify, _ := strconv.ParseBool(c.Query("verify"))
	if verify {
		v, err := h.service.Verify(c.Request.Context(), req)
		if err != nil {
			httpserver.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, v)
		return
	}

	q, err := h.service.Calculate(c.Request.Context(), req)
	if err != nil {
		httpserver.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

// Pairs handles GET /pairs.
func (h *Handler) Pairs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"pairs": h.service.Pairs(c.Request.Context())})
}

type tokenView struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals uint8  `json:"decimals"`
	Metadata string `json:"metadata"`
}

func newTokenView(a *asset.Asset) tokenView {
	return tokenView{
		Symbol:   a.Symbol(),
		Name:     a.Name(),
		Decimals: a.Decimals(),
		Metadata: a.Metadata().Hex(),
	}
}

// Tokens handles GET /tokens.
func (h *Handler) Tokens(c *gin.Context) {
	all := h.assets.All()
	out := make([]tokenView, len(all))
	for i, a := range all {
		out[i] = newTokenView(a)
	}
	c.JSON(http.StatusOK, gin.H{"tokens": out})
}

// FormatRaw handles GET /tokens/:symbol/format?raw=N, rendering atomic units
// in human units of the token.
func (h *Handler) FormatRaw(c *gin.Context) {
	symbol := c.Param("symbol")
	a, ok := h.assets.GetBySymbol(symbol)
	if !ok {
		httpserver.RespondError(c, apperror.NotFound(apperror.CodeUnknownToken, symbol))
		return
	}

	amount, err := asset.ParseRaw(a, c.Query("raw"))
	if err != nil {
		httpserver.RespondError(c, apperror.New(apperror.CodeInvalidRawAmount,
			apperror.WithCause(err),
			apperror.WithContext("raw="+c.Query("raw"))))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":     newTokenView(a),
		"raw":       amount.Raw().String(),
		"formatted": amount.Format(),
	})
}
