// Package handler exposes the retention service's HTTP surface: nudge
// checks, interaction reporting, event ingress, and the risk debug
// endpoint.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/brightpath-edu/retention-service/pkg/events"
	"github.com/brightpath-edu/retention-service/pkg/nudge"
	"github.com/brightpath-edu/retention-service/pkg/risk"
	"github.com/brightpath-edu/retention-service/pkg/student"
)

// SessionTracker records login activity for retention analytics.
type SessionTracker interface {
	RecordLogin(ctx context.Context, studentID string, now time.Time) error
}

// Pinger reports backing store health for the readiness endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RetentionHandler binds the nudge pipeline to HTTP routes.
type RetentionHandler struct {
	composer *nudge.Composer
	store    student.Store
	assessor *risk.Assessor
	bus      *events.Bus
	tracker  SessionTracker
	pinger   Pinger
	now      func() time.Time
}

// Option customizes a RetentionHandler.
type Option func(*RetentionHandler)

// WithSessionTracker enables weekly login tracking on login events.
func WithSessionTracker(t SessionTracker) Option {
	return func(h *RetentionHandler) { h.tracker = t }
}

// WithPinger wires a backing store health check into /healthz.
func WithPinger(p Pinger) Option {
	return func(h *RetentionHandler) { h.pinger = p }
}

// WithClock overrides the handler clock. Test hook.
func WithClock(now func() time.Time) Option {
	return func(h *RetentionHandler) { h.now = now }
}

func NewRetentionHandler(composer *nudge.Composer, store student.Store, assessor *risk.Assessor, bus *events.Bus, opts ...Option) *RetentionHandler {
	h := &RetentionHandler{
		composer: composer,
		store:    store,
		assessor: assessor,
		bus:      bus,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes mounts all service routes on the router.
func (h *RetentionHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/healthz", h.Health)

	v1 := r.Group("/v1")
	v1.GET("/nudges", h.CheckNudge)
	v1.POST("/nudges", h.RecordInteraction)
	v1.POST("/nudges/force", h.ForceNudge)
	v1.GET("/risk", h.GetRisk)
	v1.POST("/events", h.IngestEvent)
}

// Health reports service liveness and, when a pinger is wired, backing
// store reachability.
func (h *RetentionHandler) Health(c *gin.Context) {
	if h.pinger != nil {
		if err := h.pinger.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
	}
	respondOK(c, gin.H{"status": "ok"})
}
