package student

import (
	"time"
)

// StreakType identifies which activity a streak counter tracks.
type StreakType string

const (
	StreakLogin    StreakType = "login"
	StreakPractice StreakType = "practice"
)

// AgeGroup is a coarse age bucket used to adjust message tone and vocabulary.
type AgeGroup string

const (
	AgeGroupYoung  AgeGroup = "young"  // 11 and under
	AgeGroupMiddle AgeGroup = "middle" // 12-14
	AgeGroupTeen   AgeGroup = "teen"   // 15 and up
)

// AgeGroupFor maps a student's age onto its age group.
func AgeGroupFor(age int) AgeGroup {
	switch {
	case age <= 11:
		return AgeGroupYoung
	case age <= 14:
		return AgeGroupMiddle
	default:
		return AgeGroupTeen
	}
}

// Goal is a learning goal with overall progress and per-topic sub-progress.
// Progress is a percentage in [0,100].
type Goal struct {
	Subject  string             `json:"subject"`
	Progress float64            `json:"progress"`
	Topics   map[string]float64 `json:"topics,omitempty"`
}

// Completed reports whether the goal has reached full progress.
func (g Goal) Completed() bool {
	return g.Progress >= 100
}

// Streak tracks consecutive-day activity for one streak type.
type Streak struct {
	Current    int       `json:"current"`
	Longest    int       `json:"longest"`
	LastActive time.Time `json:"lastActive"`
}

// TaskRecord is one entry in a student's practice task history.
type TaskRecord struct {
	ID          string    `json:"id"`
	Subject     string    `json:"subject"`
	CompletedAt time.Time `json:"completedAt"`
	Correct     bool      `json:"correct"`
}

// NudgeRecord is one append-only entry in a student's nudge interaction
// history. The history is analytics-only and is never read back into
// nudge decision logic.
type NudgeRecord struct {
	NudgeID string    `json:"nudgeId"`
	Action  string    `json:"action"`
	Trigger string    `json:"trigger,omitempty"`
	At      time.Time `json:"at"`
}

// maxNudgeHistory bounds the per-student interaction log.
const maxNudgeHistory = 50

// Metadata is the free-form bag attached to a student record. It carries the
// last-nudge-shown timestamp used by the 24h rate limit and the bounded
// interaction history.
type Metadata struct {
	LastNudgeShown *time.Time    `json:"lastNudgeShown,omitempty"`
	NudgeHistory   []NudgeRecord `json:"nudgeHistory,omitempty"`
}

// AppendNudgeRecord appends to the interaction history, trimming the oldest
// entries once the bound is exceeded. Prior entries are never rewritten.
func (m *Metadata) AppendNudgeRecord(rec NudgeRecord) {
	m.NudgeHistory = append(m.NudgeHistory, rec)
	if len(m.NudgeHistory) > maxNudgeHistory {
		m.NudgeHistory = m.NudgeHistory[len(m.NudgeHistory)-maxNudgeHistory:]
	}
}

// Student is the snapshot of a student's state that risk assessment and
// nudge composition read. Assessments are always computed fresh from the
// current snapshot, never persisted.
type Student struct {
	ID                string                `json:"id"`
	Name              string                `json:"name"`
	Age               int                   `json:"age"`
	Grade             string                `json:"grade,omitempty"`
	CreatedAt         time.Time             `json:"createdAt"`
	LastLoginAt       time.Time             `json:"lastLoginAt"`
	Goals             []Goal                `json:"goals,omitempty"`
	CompletedSessions []string              `json:"completedSessions,omitempty"`
	Conversations     int                   `json:"conversations"`
	TaskHistory       []TaskRecord          `json:"taskHistory,omitempty"`
	Streaks           map[StreakType]Streak `json:"streaks,omitempty"`
	Achievements      []string              `json:"achievements,omitempty"`
	Metadata          Metadata              `json:"metadata"`
}

// AgeGroup returns the student's age group bucket.
func (s *Student) AgeGroup() AgeGroup {
	return AgeGroupFor(s.Age)
}

// AccountAgeDays returns whole days since account creation.
func (s *Student) AccountAgeDays(now time.Time) int {
	if s.CreatedAt.IsZero() || now.Before(s.CreatedAt) {
		return 0
	}
	return int(now.Sub(s.CreatedAt).Hours() / 24)
}

// DaysSinceLastLogin returns whole days since the last login. A student who
// has never logged in is treated as inactive since account creation.
func (s *Student) DaysSinceLastLogin(now time.Time) int {
	last := s.LastLoginAt
	if last.IsZero() {
		last = s.CreatedAt
	}
	if last.IsZero() || now.Before(last) {
		return 0
	}
	return int(now.Sub(last).Hours() / 24)
}

// SessionCount returns the number of completed tutoring sessions.
func (s *Student) SessionCount() int {
	return len(s.CompletedSessions)
}

// AverageGoalProgress returns the mean progress across goals, or 0 when the
// student has no goals.
func (s *Student) AverageGoalProgress() float64 {
	if len(s.Goals) == 0 {
		return 0
	}
	var total float64
	for _, g := range s.Goals {
		total += g.Progress
	}
	return total / float64(len(s.Goals))
}

// LongestStreak returns the longest streak across all streak types.
func (s *Student) LongestStreak() int {
	longest := 0
	for _, st := range s.Streaks {
		if st.Longest > longest {
			longest = st.Longest
		}
	}
	return longest
}

// HasBrokenStreak reports whether any streak type currently sits at zero
// after previously reaching a nonzero length.
func (s *Student) HasBrokenStreak() bool {
	for _, st := range s.Streaks {
		if st.Current == 0 && st.Longest > 0 {
			return true
		}
	}
	return false
}

// HasCompletedGoalWithoutNew reports whether the student has completed at
// least one goal while having no goal still in progress. This is the
// heuristic behind the "Completed goal, no new goals" risk reason.
func (s *Student) HasCompletedGoalWithoutNew() bool {
	completed := false
	for _, g := range s.Goals {
		if g.Completed() {
			completed = true
		} else {
			return false
		}
	}
	return completed
}

// Clone returns a deep copy of the student snapshot.
func (s *Student) Clone() *Student {
	if s == nil {
		return nil
	}
	cp := *s

	cp.Goals = make([]Goal, len(s.Goals))
	for i, g := range s.Goals {
		cp.Goals[i] = g
		if g.Topics != nil {
			cp.Goals[i].Topics = make(map[string]float64, len(g.Topics))
			for k, v := range g.Topics {
				cp.Goals[i].Topics[k] = v
			}
		}
	}

	cp.CompletedSessions = append([]string(nil), s.CompletedSessions...)
	cp.TaskHistory = append([]TaskRecord(nil), s.TaskHistory...)
	cp.Achievements = append([]string(nil), s.Achievements...)

	if s.Streaks != nil {
		cp.Streaks = make(map[StreakType]Streak, len(s.Streaks))
		for k, v := range s.Streaks {
			cp.Streaks[k] = v
		}
	}

	if s.Metadata.LastNudgeShown != nil {
		ts := *s.Metadata.LastNudgeShown
		cp.Metadata.LastNudgeShown = &ts
	}
	cp.Metadata.NudgeHistory = append([]NudgeRecord(nil), s.Metadata.NudgeHistory...)

	return &cp
}
