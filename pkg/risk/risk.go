package risk

import (
	"encoding/json"
	"fmt"
)

// Level is the churn-risk tier derived from the numeric score.
// Levels are ordered: none < low < medium < high.
type Level int

const (
	LevelNone Level = iota
	LevelLow
	LevelMedium
	LevelHigh
)

// Score thresholds. Boundary values belong to the higher tier.
const (
	ThresholdLow    = 15
	ThresholdMedium = 35
	ThresholdHigh   = 60

	// MaxScore caps the accumulated rule score.
	MaxScore = 100
)

// LevelForScore maps a score in [0,100] to its risk level.
func LevelForScore(score int) Level {
	switch {
	case score >= ThresholdHigh:
		return LevelHigh
	case score >= ThresholdMedium:
		return LevelMedium
	case score >= ThresholdLow:
		return LevelLow
	default:
		return LevelNone
	}
}

// String implements fmt.Stringer.
func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelLow:
		return "low"
	case LevelMedium:
		return "medium"
	case LevelHigh:
		return "high"
	default:
		return fmt.Sprintf("unknown(%d)", int(l))
	}
}

// ParseLevel converts the wire representation back to a Level.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "none":
		return LevelNone, nil
	case "low":
		return LevelLow, nil
	case "medium":
		return LevelMedium, nil
	case "high":
		return LevelHigh, nil
	default:
		return LevelNone, fmt.Errorf("unknown risk level: %q", s)
	}
}

// MarshalJSON encodes the level as its string name.
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON decodes the string name into a level.
func (l *Level) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseLevel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Assessment is the result of one churn-risk evaluation. It is computed
// fresh on every call and never persisted.
type Assessment struct {
	Level               Level    `json:"level"`
	Score               int      `json:"score"`
	Reasons             []string `json:"reasons"`
	AccountAgeDays      int      `json:"accountAgeDays"`
	DaysSinceLastActive int      `json:"daysSinceLastActive"`
	Interventions       []string `json:"interventions"`
}
