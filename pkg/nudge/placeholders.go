package nudge

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/brightpath-edu/retention-service/pkg/student"
)

// Placeholder names available to templates. Substitution values are
// resolved into an explicit map before formatting so the set of supported
// tokens stays checkable in one place.
const (
	PlaceholderName          = "name"
	PlaceholderAge           = "age"
	PlaceholderGrade         = "grade"
	PlaceholderSubject       = "subject"
	PlaceholderProgress      = "progress"
	PlaceholderLongestStreak = "longest_streak"
)

// Values maps placeholder names to their resolved text.
type Values map[string]string

var placeholderPattern = regexp.MustCompile(`\{([a-z_]+)\}`)

// Substitute replaces every {token} in text with its resolved value.
// Tokens with no value are removed rather than left as literals, and any
// whitespace runs left behind are collapsed.
func Substitute(text string, vals Values) string {
	out := placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := match[1 : len(match)-1]
		return vals[name]
	})
	return strings.Join(strings.Fields(out), " ")
}

// ValuesFor resolves the placeholder map from a student snapshot. Only
// placeholders with actual data are present.
func ValuesFor(s *student.Student) Values {
	vals := Values{}

	if s.Name != "" {
		vals[PlaceholderName] = s.Name
	}
	if s.Age > 0 {
		vals[PlaceholderAge] = strconv.Itoa(s.Age)
	}
	if s.Grade != "" {
		vals[PlaceholderGrade] = s.Grade
	}
	if len(s.Goals) > 0 {
		first := s.Goals[0]
		vals[PlaceholderSubject] = first.Subject
		vals[PlaceholderProgress] = fmt.Sprintf("%d%%", int(first.Progress))
	}
	if streak := s.LongestStreak(); streak > 0 {
		vals[PlaceholderLongestStreak] = strconv.Itoa(streak)
	}

	return vals
}
