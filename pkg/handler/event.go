package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/brightpath-edu/retention-service/pkg/common"
	"github.com/brightpath-edu/retention-service/pkg/events"
	"github.com/brightpath-edu/retention-service/pkg/student"
)

// eventRequest is the POST /v1/events body. The field name matches the
// eventType key the bus event itself marshals with.
type eventRequest struct {
	StudentID string `json:"studentId" binding:"required"`
	EventType string `json:"eventType" binding:"required"`
}

// IngestEvent handles POST /v1/events. Login events refresh the student's
// last-login timestamp and feed the weekly session tracker; every accepted
// event is fanned out on the bus so delivery loops re-check promptly.
func (h *RetentionHandler) IngestEvent(c *gin.Context) {
	scope := common.NewScope(c.Request.Context(), "handler.IngestEvent")
	defer scope.Finish()

	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	eventType := events.Type(req.EventType)
	if !eventType.Known() {
		respondError(c, http.StatusBadRequest, "unknown_event_type", fmt.Errorf("unknown event type %q", req.EventType))
		return
	}
	scope.AddBaggage("studentId", req.StudentID)

	now := h.now()

	if eventType == events.TypeLogin {
		if err := h.recordLogin(scope, req.StudentID, now); err != nil {
			if errors.Is(err, student.ErrNotFound) {
				respondError(c, http.StatusNotFound, "student_not_found", err)
				return
			}
			scope.TraceError(err)
			respondError(c, http.StatusInternalServerError, "event_failed", err)
			return
		}
	}

	h.bus.Publish(events.Event{
		StudentID: req.StudentID,
		Type:      eventType,
		At:        now,
	})
	scope.Log.Infof("ingested %s event for student %s", eventType, req.StudentID)

	c.JSON(http.StatusAccepted, gin.H{"accepted": true})
}

func (h *RetentionHandler) recordLogin(scope *common.Scope, studentID string, now time.Time) error {
	s, err := h.store.GetStudent(scope.Ctx, studentID)
	if err != nil {
		return err
	}
	s.LastLoginAt = now
	if err := h.store.SaveStudent(scope.Ctx, s); err != nil {
		return fmt.Errorf("failed to save student %s: %w", studentID, err)
	}

	if h.tracker != nil {
		// Tracking is best effort; a tracker outage must not reject logins.
		if err := h.tracker.RecordLogin(scope.Ctx, studentID, now); err != nil {
			logrus.Warnf("failed to track login for student %s: %v", studentID, err)
		}
	}
	return nil
}
