package httpapi

import (
	"context"
	"errors"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"

	"github.com/shahrookhpiray1/sliswap-loss-visualizer/business/swap/app"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/apperror"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	streamReadLimit   = 4 << 10
	streamIdleTimeout = 5 * time.Minute
)

// streamFrame is sent for every inbound request frame.
type streamFrame struct {
	Type  string              `json:"type"` // quote | error
	Quote *app.Quote          `json:"quote,omitempty"`
	Error *apperror.ErrorBody `json:"error,omitempty"`
}

// Stream handles GET /ws/quotes. Every text frame {from,to,amount} is
// answered with a quote or error frame, in order. Cross-origin upgrades must
// match one of the handler's allowed origins.
func (h *Handler) Stream(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		OriginPatterns: h.origins,
	})
	if err != nil {
		h.logger.Warn(c.Request.Context(), "websocket accept failed", "error", err.Error())
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(streamReadLimit)

	ctx := c.Request.Context()
	h.logger.Debug(ctx, "quote stream opened", "client_ip", c.ClientIP())

	for {
		if err := h.serveFrame(ctx, conn); err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				h.logger.Debug(ctx, "quote stream closed")
				return
			}
			h.logger.Warn(ctx, "quote stream error", "error", err.Error())
			conn.Close(websocket.StatusInternalError, "stream error")
			return
		}
	}
}

func (h *Handler) serveFrame(ctx context.Context, conn *websocket.Conn) error {
	readCtx, cancel := context.WithTimeout(ctx, streamIdleTimeout)
	defer cancel()

	typ, data, err := conn.Read(readCtx)
	if err != nil {
		return err
	}

	var frame streamFrame
	if typ != websocket.MessageText {
		frame = errorFrame(apperror.New(apperror.CodeInvalidFormat, apperror.WithContext("text frames only")))
	} else {
		var req app.CalculateRequest
		if err := json.Unmarshal(data, &req); err != nil {
			frame = errorFrame(apperror.New(apperror.CodeInvalidFormat, apperror.WithCause(err)))
		} else if q, err := h.service.Calculate(ctx, req); err != nil {
			frame = errorFrame(err)
		} else {
			frame = streamFrame{Type: "quote", Quote: q}
		}
	}

	out, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, out)
}

func errorFrame(err error) streamFrame {
	body := apperror.Wrap(err, apperror.CodeInternalError, "").ToResponse()["error"]
	return streamFrame{Type: "error", Error: &body}
}
