package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brightpath-edu/retention-service/pkg/common"
	"github.com/brightpath-edu/retention-service/pkg/metrics"
	"github.com/brightpath-edu/retention-service/pkg/student"
)

// GetRisk handles GET /v1/risk?studentId=. It exposes the raw assessment
// for debugging and support tooling; it never mutates state and never
// claims the nudge window.
func (h *RetentionHandler) GetRisk(c *gin.Context) {
	scope := common.NewScope(c.Request.Context(), "handler.GetRisk")
	defer scope.Finish()

	studentID := c.Query("studentId")
	if studentID == "" {
		respondError(c, http.StatusBadRequest, "missing_student_id", errors.New("studentId query parameter is required"))
		return
	}
	scope.AddBaggage("studentId", studentID)

	s, err := h.store.GetStudent(scope.Ctx, studentID)
	if err != nil && !errors.Is(err, student.ErrNotFound) {
		scope.TraceError(err)
		respondError(c, http.StatusInternalServerError, "load_failed", err)
		return
	}

	// Unknown students still get the fail-safe assessment rather than a
	// 404, so callers probing a half-provisioned account see level none.
	assessment := h.assessor.Assess(s, h.now())
	metrics.RiskAssessments.WithLabelValues(assessment.Level.String()).Inc()

	respondOK(c, assessment)
}
