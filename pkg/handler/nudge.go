package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/brightpath-edu/retention-service/pkg/common"
	"github.com/brightpath-edu/retention-service/pkg/metrics"
	"github.com/brightpath-edu/retention-service/pkg/nudge"
	"github.com/brightpath-edu/retention-service/pkg/student"
)

// nudgeEnvelope wraps a check response. Nudge is null when nothing is due,
// so clients can distinguish "no nudge" from transport failures.
type nudgeEnvelope struct {
	Nudge *nudge.Message `json:"nudge"`
}

// CheckNudge handles GET /v1/nudges?studentId=. A missing or unknown
// student and a rate-limited window both yield {"nudge": null}; only
// backend failures produce an error status.
func (h *RetentionHandler) CheckNudge(c *gin.Context) {
	h.checkNudge(c, false)
}

// ForceNudge handles POST /v1/nudges/force. It bypasses the session-level
// freshness rules but still honours the rate-limit window, which is only
// claimed when a nudge is actually shown.
func (h *RetentionHandler) ForceNudge(c *gin.Context) {
	h.checkNudge(c, true)
}

func (h *RetentionHandler) checkNudge(c *gin.Context, force bool) {
	scope := common.NewScope(c.Request.Context(), "handler.CheckNudge")
	defer scope.Finish()

	start := h.now()

	studentID := c.Query("studentId")
	if studentID == "" {
		respondError(c, http.StatusBadRequest, "missing_student_id", errors.New("studentId query parameter is required"))
		return
	}
	scope.AddBaggage("studentId", studentID)
	if force {
		scope.TraceEvent("forced nudge check")
	}

	msg, err := h.composer.Generate(scope.Ctx, studentID)
	metrics.CheckDuration.Observe(h.now().Sub(start).Seconds())
	if err != nil {
		scope.TraceError(err)
		metrics.NudgeChecks.WithLabelValues("error").Inc()
		respondError(c, http.StatusInternalServerError, "check_failed", err)
		return
	}

	if msg == nil {
		metrics.NudgeChecks.WithLabelValues("none").Inc()
		respondOK(c, nudgeEnvelope{Nudge: nil})
		return
	}

	metrics.NudgeChecks.WithLabelValues("nudge").Inc()
	metrics.NudgesGenerated.WithLabelValues(string(msg.Trigger), msg.Priority.String()).Inc()
	scope.Log.Infof("generated nudge %s (trigger=%s priority=%s) for student %s",
		msg.ID, msg.Trigger, msg.Priority, studentID)

	respondOK(c, nudgeEnvelope{Nudge: msg})
}

// interactionRequest is the POST /v1/nudges body.
type interactionRequest struct {
	StudentID string `json:"studentId" binding:"required"`
	NudgeID   string `json:"nudgeId" binding:"required"`
	Action    string `json:"action" binding:"required"`
	Trigger   string `json:"trigger"`
}

// RecordInteraction handles POST /v1/nudges. A "shown" action claims the
// rate-limit window; losing that claim is not an error, the nudge was
// simply superseded by a concurrent display.
func (h *RetentionHandler) RecordInteraction(c *gin.Context) {
	scope := common.NewScope(c.Request.Context(), "handler.RecordInteraction")
	defer scope.Finish()

	var req interactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	action, err := nudge.ParseAction(req.Action)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_action", err)
		return
	}
	scope.AddBaggage("studentId", req.StudentID)

	trigger := nudge.Trigger(req.Trigger)

	if action == nudge.ActionShown {
		err = h.composer.MarkShown(scope.Ctx, req.StudentID, req.NudgeID, trigger)
		if errors.Is(err, nudge.ErrRateLimited) {
			scope.TraceEvent("shown claim lost to concurrent nudge")
			logrus.Warnf("duplicate shown report for student %s nudge %s", req.StudentID, req.NudgeID)
			err = nil
		}
	} else {
		err = h.composer.RecordInteraction(scope.Ctx, req.StudentID, req.NudgeID, action, trigger)
	}
	if err != nil {
		scope.TraceError(err)
		if errors.Is(err, student.ErrNotFound) {
			respondError(c, http.StatusNotFound, "student_not_found", err)
			return
		}
		respondError(c, http.StatusInternalServerError, "interaction_failed", fmt.Errorf("failed to record interaction: %w", err))
		return
	}

	metrics.NudgeInteractions.WithLabelValues(string(action)).Inc()
	respondOK(c, gin.H{"recorded": true})
}
