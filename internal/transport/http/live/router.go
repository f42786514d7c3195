package livehttp

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"ladder/internal/logger"
	"ladder/internal/position"
	"ladder/internal/signal"
	"ladder/internal/trader"

	"github.com/gin-gonic/gin"
)

type Router struct {
	Desk Desk
}

func NewRouter(desk Desk) *Router {
	return &Router{Desk: desk}
}

func (r *Router) Register(engine *gin.Engine) {
	if engine == nil {
		return
	}
	engine.POST("/webhook", r.handleWebhook)
	engine.POST("/price_update", r.handlePriceUpdate)

	api := engine.Group("/api")
	api.GET("/position", r.handlePosition)
	api.POST("/position/close", r.handleClose)
	api.GET("/position/:id/events", r.handlePositionEvents)
}

func (r *Router) handleWebhook(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}
	sig, err := signal.ParseOpen(raw)
	if err != nil {
		logger.Warnf("[api] webhook rejected ip=%s err=%v", c.ClientIP(), err)
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}
	res, err := r.Desk.OpenPosition(c.Request.Context(), sig)
	if err != nil {
		logger.Errorf("[api] open %s failed ip=%s err=%v", sig.Symbol, c.ClientIP(), err)
		c.JSON(statusFor(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	body := gin.H{
		"ok":          true,
		"position_id": res.Position.ID,
		"received":    sig.Raw,
		"position":    res.Position,
	}
	if res.Replaced != nil {
		body["replaced_position_id"] = res.Replaced.ID
	}
	c.JSON(http.StatusOK, body)
}

func (r *Router) handlePriceUpdate(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
		return
	}
	tick, err := signal.ParsePrice(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
		return
	}
	res, err := r.Desk.UpdatePrice(c.Request.Context(), tick)
	events := res.Decision.Events
	if events == nil {
		events = []position.Event{}
	}
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{
			"status":      res.Decision.Action,
			"events":      events,
			"closed":      res.Closed,
			"position_id": res.PositionID,
		})
	case errors.Is(err, trader.ErrNoActivePosition):
		c.JSON(http.StatusBadRequest, gin.H{"status": "No trade active"})
	default:
		var orderErr *trader.OrderError
		if errors.As(err, &orderErr) {
			// exit decided but the venue refused the close; tracking continues
			c.JSON(http.StatusBadGateway, gin.H{
				"status":      res.Decision.Action,
				"events":      events,
				"closed":      false,
				"position_id": res.PositionID,
				"error":       err.Error(),
			})
			return
		}
		c.JSON(statusFor(err), gin.H{"status": "error", "error": err.Error()})
	}
}

func (r *Router) handlePosition(c *gin.Context) {
	view, ok := r.Desk.CurrentPosition()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": trader.ErrNoActivePosition.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"position": view})
}

func (r *Router) handleClose(c *gin.Context) {
	var req closeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	res, err := r.Desk.ClosePosition(c.Request.Context(), strings.TrimSpace(req.Reason))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      "closed",
		"position_id": res.Position.ID,
		"reason":      res.Reason,
		"order":       res.Order,
	})
}

func (r *Router) handlePositionEvents(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	recs, err := r.Desk.PositionEvents(c.Request.Context(), id, limit)
	if err != nil {
		logger.Errorf("[api] position events failed id=%s err=%v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"position_id": id, "events": recs})
}

func statusFor(err error) int {
	var orderErr *trader.OrderError
	switch {
	case signal.IsValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, trader.ErrNoActivePosition):
		return http.StatusNotFound
	case errors.Is(err, trader.ErrPositionOpen), errors.Is(err, trader.ErrSymbolMismatch):
		return http.StatusConflict
	case errors.Is(err, trader.ErrSymbolNotAllowed):
		return http.StatusUnprocessableEntity
	case errors.As(err, &orderErr):
		return http.StatusBadGateway
	case errors.Is(err, trader.ErrTraderStopped):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
