package nudge

import (
	"fmt"
	"time"

	"github.com/brightpath-edu/retention-service/pkg/risk"
)

// Trigger is the churn-risk category a nudge is explained by.
type Trigger string

const (
	TriggerInactive             Trigger = "inactive"
	TriggerGoalCompleted        Trigger = "goal_completed"
	TriggerLowTaskCompletion    Trigger = "low_task_completion"
	TriggerStreakBroken         Trigger = "streak_broken"
	TriggerGeneralEncouragement Trigger = "general_encouragement"
)

// Triggers lists all trigger reasons.
var Triggers = []Trigger{
	TriggerInactive,
	TriggerGoalCompleted,
	TriggerLowTaskCompletion,
	TriggerStreakBroken,
	TriggerGeneralEncouragement,
}

// Valid reports whether the trigger is a known value.
func (t Trigger) Valid() bool {
	for _, known := range Triggers {
		if t == known {
			return true
		}
	}
	return false
}

// Intensity tags a template's tone, used to break ties when multiple
// templates match a trigger and age group.
type Intensity string

const (
	IntensityGentle   Intensity = "gentle"
	IntensityModerate Intensity = "moderate"
	IntensityUrgent   Intensity = "urgent"
)

// Valid reports whether the intensity is a known value.
func (i Intensity) Valid() bool {
	switch i {
	case IntensityGentle, IntensityModerate, IntensityUrgent:
		return true
	}
	return false
}

// Action is a recorded nudge interaction outcome.
type Action string

const (
	ActionShown     Action = "shown"
	ActionAccepted  Action = "accepted"
	ActionDismissed Action = "dismissed"
	ActionExpired   Action = "expired"
)

// ParseAction validates and converts the wire representation.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionShown, ActionAccepted, ActionDismissed, ActionExpired:
		return Action(s), nil
	default:
		return "", fmt.Errorf("unknown nudge action: %q", s)
	}
}

// Message is one fully personalized nudge. Messages are ephemeral: created
// by the composer, shown by the delivery loop, and terminated by exactly one
// of accepted, dismissed, or silent expiry. Once terminated a message is
// inert; a new assessment cycle mints a new message with a new id.
type Message struct {
	ID            string     `json:"id"`
	StudentID     string     `json:"studentId"`
	Trigger       Trigger    `json:"trigger"`
	Celebration   string     `json:"celebration"`
	Encouragement string     `json:"encouragement"`
	CallToAction  string     `json:"callToAction"`
	Priority      risk.Level `json:"priority"`
	CreatedAt     time.Time  `json:"createdAt"`
	ExpiresAt     time.Time  `json:"expiresAt"`
}

// Validate checks the structural invariants of a message received over the
// wire. The delivery loop discards messages that fail this check rather than
// displaying them.
func (m *Message) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("nudge message missing id")
	}
	if m.StudentID == "" {
		return fmt.Errorf("nudge message %s missing student id", m.ID)
	}
	if !m.Trigger.Valid() {
		return fmt.Errorf("nudge message %s has unknown trigger %q", m.ID, m.Trigger)
	}
	if m.Encouragement == "" && m.CallToAction == "" {
		return fmt.Errorf("nudge message %s has no content", m.ID)
	}
	if !m.ExpiresAt.After(m.CreatedAt) {
		return fmt.Errorf("nudge message %s expires before creation", m.ID)
	}
	return nil
}

// Expired reports whether the message passed its expiry.
func (m *Message) Expired(now time.Time) bool {
	return now.After(m.ExpiresAt)
}
