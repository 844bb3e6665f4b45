// Package server exposes the latest dashboard snapshot over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"trading_dashboard/internal/models"
	"trading_dashboard/internal/stats"
)

type apiResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, apiResponse{Code: 0, Message: "ok", Data: data})
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, apiResponse{Code: status, Message: message})
}

// Refresher is the part of the refresh loop the HTTP layer needs.
type Refresher interface {
	Snapshot() (models.Snapshot, bool)
	RefreshNow(ctx context.Context) models.Snapshot
}

// Handler serves read-only views of the current snapshot.
type Handler struct {
	Refresher Refresher
}

// New builds the gin engine with all dashboard routes registered.
func New(ref Refresher) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	h := &Handler{Refresher: ref}
	h.Register(r)
	return r
}

func (h *Handler) Register(r *gin.Engine) {
	r.GET("/healthz", h.health)

	v1 := r.Group("/api/v1")
	v1.GET("/snapshot", h.getSnapshot)
	v1.GET("/stats", h.getStats)
	v1.GET("/positions", h.getPositions)
	v1.GET("/trades", h.getTrades)
	v1.GET("/alerts", h.getAlerts)
	v1.GET("/history", h.getHistory)
	v1.GET("/history/curve", h.getHistoryCurve)
	v1.GET("/orders", h.getOrders)
	v1.GET("/signals", h.getSignals)
	v1.GET("/status", h.getStatus)
	v1.POST("/refresh", h.postRefresh)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// snapshot fetches the current snapshot or writes a 503 when no refresh
// has completed yet.
func (h *Handler) snapshot(c *gin.Context) (models.Snapshot, bool) {
	snap, ready := h.Refresher.Snapshot()
	if !ready {
		fail(c, http.StatusServiceUnavailable, "no snapshot yet")
		return models.Snapshot{}, false
	}
	return snap, true
}

func (h *Handler) getSnapshot(c *gin.Context) {
	snap, ready := h.snapshot(c)
	if !ready {
		return
	}
	ok(c, snap)
}

func (h *Handler) getStats(c *gin.Context) {
	snap, ready := h.snapshot(c)
	if !ready {
		return
	}
	ok(c, snap.Stats)
}

func (h *Handler) getPositions(c *gin.Context) {
	snap, ready := h.snapshot(c)
	if !ready {
		return
	}
	ok(c, snap.Positions)
}

func (h *Handler) getTrades(c *gin.Context) {
	snap, ready := h.snapshot(c)
	if !ready {
		return
	}
	ok(c, snap.Trades)
}

func (h *Handler) getAlerts(c *gin.Context) {
	snap, ready := h.snapshot(c)
	if !ready {
		return
	}
	ok(c, snap.Risk)
}

func (h *Handler) getHistory(c *gin.Context) {
	snap, ready := h.snapshot(c)
	if !ready {
		return
	}
	ok(c, snap.HistoryDays)
}

func (h *Handler) getHistoryCurve(c *gin.Context) {
	snap, ready := h.snapshot(c)
	if !ready {
		return
	}
	ok(c, stats.CumulativeCurve(snap.HistoryDays))
}

func (h *Handler) getOrders(c *gin.Context) {
	snap, ready := h.snapshot(c)
	if !ready {
		return
	}
	ok(c, snap.Orders)
}

func (h *Handler) getSignals(c *gin.Context) {
	snap, ready := h.snapshot(c)
	if !ready {
		return
	}
	ok(c, snap.Signals)
}

type statusResponse struct {
	MarketStatus models.MarketStatus `json:"market_status"`
	LoadedAt     time.Time           `json:"loaded_at"`
	LoadErrors   map[string]string   `json:"load_errors,omitempty"`
}

func (h *Handler) getStatus(c *gin.Context) {
	snap, ready := h.snapshot(c)
	if !ready {
		return
	}
	ok(c, statusResponse{
		MarketStatus: snap.MarketStatus,
		LoadedAt:     snap.LoadedAt,
		LoadErrors:   snap.LoadErrors,
	})
}

func (h *Handler) postRefresh(c *gin.Context) {
	// The cycle runs on its own context: a client disconnect must not cancel
	// the sheet reads mid-cycle and publish a degraded snapshot.
	snap := h.Refresher.RefreshNow(context.Background())
	ok(c, statusResponse{
		MarketStatus: snap.MarketStatus,
		LoadedAt:     snap.LoadedAt,
		LoadErrors:   snap.LoadErrors,
	})
}
