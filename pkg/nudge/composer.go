package nudge

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/brightpath-edu/retention-service/pkg/risk"
	"github.com/brightpath-edu/retention-service/pkg/student"
)

// DefaultInactiveAfterDays is the login gap beyond which the inactive
// trigger applies when no configured threshold is supplied. It matches the
// inactivity rule's default critical_days.
const DefaultInactiveAfterDays = 3

// ComposerConfig carries the composer's tunables. Zero values select the
// defaults; Now and Intn are test hooks.
type ComposerConfig struct {
	Window time.Duration

	// InactiveAfterDays is the login gap beyond which the inactive trigger
	// applies. Callers wire the inactivity rule's configured critical_days
	// here so trigger resolution and scoring agree.
	InactiveAfterDays int

	Now  func() time.Time
	Intn func(n int) int
}

// Composer turns a risk assessment into a personalized nudge message.
// It is stateless apart from its injected collaborators; every call reads
// the current student snapshot fresh.
type Composer struct {
	store             student.Store
	assessor          *risk.Assessor
	catalog           *Catalog
	limiter           RateLimiter
	window            time.Duration
	inactiveAfterDays int
	now               func() time.Time
	intn              func(n int) int
}

// NewComposer wires a composer from its collaborators.
func NewComposer(store student.Store, assessor *risk.Assessor, catalog *Catalog, limiter RateLimiter, cfg ComposerConfig) *Composer {
	window := cfg.Window
	if window <= 0 {
		window = DefaultRateLimitWindow
	}
	inactiveAfterDays := cfg.InactiveAfterDays
	if inactiveAfterDays <= 0 {
		inactiveAfterDays = DefaultInactiveAfterDays
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	intn := cfg.Intn
	if intn == nil {
		intn = rand.Intn
	}

	return &Composer{
		store:             store,
		assessor:          assessor,
		catalog:           catalog,
		limiter:           limiter,
		window:            window,
		inactiveAfterDays: inactiveAfterDays,
		now:               now,
		intn:              intn,
	}
}

// Generate composes a nudge for the student, or returns nil when no nudge
// is due: unknown student, rate-limited window, no measurable risk, or no
// matching template. Only genuinely unexpected store failures surface as
// errors; a missed nudge is always preferred over a loud failure.
//
// Generate is idempotent within the rate-limit window: the second call for
// the same student returns nil.
func (c *Composer) Generate(ctx context.Context, studentID string) (*Message, error) {
	s, err := c.store.GetStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, student.ErrNotFound) {
			logrus.Warnf("nudge check for unknown student %s, skipping", studentID)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load student %s: %w", studentID, err)
	}

	now := c.now()

	if !c.shouldNudge(ctx, s, now) {
		return nil, nil
	}

	assessment := c.assessor.Assess(s, now)
	if assessment.Level == risk.LevelNone {
		logrus.Debugf("student %s is healthy (score=%d), no nudge", studentID, assessment.Score)
		return nil, nil
	}

	trigger := c.determineTrigger(s, assessment)

	tmpl, ok := c.catalog.Select(trigger, s.AgeGroup(), assessment.Level)
	if !ok {
		logrus.Warnf("no template for trigger %s, age group %s; skipping nudge for student %s",
			trigger, s.AgeGroup(), studentID)
		return nil, nil
	}

	vals := ValuesFor(s)

	celebration := tmpl.Celebration
	if specific, found := findCelebrationPoint(s, c.intn); found {
		celebration = specific
	}

	msg := &Message{
		ID:            uuid.NewString(),
		StudentID:     s.ID,
		Trigger:       trigger,
		Celebration:   Substitute(celebration, vals),
		Encouragement: Substitute(tmpl.Encouragement, vals),
		CallToAction:  Substitute(tmpl.CallToAction, vals),
		Priority:      assessment.Level,
		CreatedAt:     now,
		ExpiresAt:     now.Add(c.window),
	}

	logrus.Infof("generated nudge %s for student %s: trigger=%s priority=%s",
		msg.ID, studentID, trigger, assessment.Level)

	return msg, nil
}

// shouldNudge applies the rolling rate-limit window: the last-shown
// timestamp on the student record plus the shared limiter. A limiter
// failure suppresses the nudge; skipping an encouragement beats risking a
// double delivery.
func (c *Composer) shouldNudge(ctx context.Context, s *student.Student, now time.Time) bool {
	if last := s.Metadata.LastNudgeShown; last != nil && now.Sub(*last) < c.window {
		logrus.Debugf("student %s nudged %v ago, within window", s.ID, now.Sub(*last))
		return false
	}

	allowed, err := c.limiter.Allow(ctx, s.ID)
	if err != nil {
		logrus.Warnf("rate limiter check failed for student %s: %v, suppressing nudge", s.ID, err)
		return false
	}
	return allowed
}

// determineTrigger resolves the trigger reason in fixed priority order:
// goal_completed, then inactive, then streak_broken, then
// low_task_completion, else general_encouragement. Only the first matching
// reason is selected even when several fired.
func (c *Composer) determineTrigger(s *student.Student, assessment risk.Assessment) Trigger {
	switch {
	case s.HasCompletedGoalWithoutNew():
		return TriggerGoalCompleted
	case assessment.DaysSinceLastActive > c.inactiveAfterDays:
		return TriggerInactive
	case s.HasBrokenStreak():
		return TriggerStreakBroken
	case len(s.TaskHistory) == 0:
		return TriggerLowTaskCompletion
	default:
		return TriggerGeneralEncouragement
	}
}

// MarkShown records that a nudge was actually displayed. This is the only
// writer of lastNudgeShown; the delivery loop calls it after confirming
// display. The limiter claim is the per-student critical section: when two
// racing nudges reach this point, exactly one wins and the loser gets
// ErrRateLimited.
func (c *Composer) MarkShown(ctx context.Context, studentID, nudgeID string, trigger Trigger) error {
	won, err := c.limiter.Mark(ctx, studentID)
	if err != nil {
		return fmt.Errorf("failed to claim nudge window for student %s: %w", studentID, err)
	}
	if !won {
		return ErrRateLimited
	}

	s, err := c.store.GetStudent(ctx, studentID)
	if err != nil {
		return fmt.Errorf("failed to load student %s: %w", studentID, err)
	}

	now := c.now()
	s.Metadata.LastNudgeShown = &now
	s.Metadata.AppendNudgeRecord(student.NudgeRecord{
		NudgeID: nudgeID,
		Action:  string(ActionShown),
		Trigger: string(trigger),
		At:      now,
	})

	if err := c.store.SaveStudent(ctx, s); err != nil {
		return fmt.Errorf("failed to save student %s: %w", studentID, err)
	}

	logrus.Infof("marked nudge %s shown for student %s", nudgeID, studentID)
	return nil
}

// RecordInteraction appends an accepted/dismissed/expired outcome to the
// student's interaction history. The history is append-only and analytics
// only; it never feeds back into nudge decisions.
func (c *Composer) RecordInteraction(ctx context.Context, studentID, nudgeID string, action Action, trigger Trigger) error {
	s, err := c.store.GetStudent(ctx, studentID)
	if err != nil {
		return fmt.Errorf("failed to load student %s: %w", studentID, err)
	}

	s.Metadata.AppendNudgeRecord(student.NudgeRecord{
		NudgeID: nudgeID,
		Action:  string(action),
		Trigger: string(trigger),
		At:      c.now(),
	})

	if err := c.store.SaveStudent(ctx, s); err != nil {
		return fmt.Errorf("failed to save student %s: %w", studentID, err)
	}

	logrus.Infof("recorded nudge interaction: student=%s nudge=%s action=%s", studentID, nudgeID, action)
	return nil
}
