package nudge

import (
	"github.com/brightpath-edu/retention-service/pkg/student"
)

// DefaultTemplates returns the built-in catalog: one template per trigger
// and age group, plus urgent variants for the inactivity trigger. Deployed
// catalogs usually come from the retention config file; this set is the
// fallback and the fixture the tests run against.
func DefaultTemplates() []Template {
	return []Template{
		// inactive
		{
			Trigger: TriggerInactive, AgeGroup: student.AgeGroupYoung, Intensity: IntensityGentle,
			Celebration:   "We saved your spot, {name}!",
			Encouragement: "Your tutor missed you! Learning is more fun when we do it together.",
			CallToAction:  "Come say hi and play a quick {subject} game!",
		},
		{
			Trigger: TriggerInactive, AgeGroup: student.AgeGroupYoung, Intensity: IntensityUrgent,
			Celebration:   "{name}, your tutor has been waiting for you!",
			Encouragement: "It's been a while! Your {subject} adventure is paused right where you left it.",
			CallToAction:  "Jump back in for just five minutes today!",
		},
		{
			Trigger: TriggerInactive, AgeGroup: student.AgeGroupMiddle, Intensity: IntensityModerate,
			Celebration:   "Good to see you, {name}!",
			Encouragement: "A few days off is fine. Picking back up now keeps everything you learned fresh.",
			CallToAction:  "Do one quick {subject} session today to get rolling again.",
		},
		{
			Trigger: TriggerInactive, AgeGroup: student.AgeGroupMiddle, Intensity: IntensityUrgent,
			Celebration:   "{name}, you've built real momentum before.",
			Encouragement: "The longer the break, the harder restarting feels. Today is the easiest day to come back.",
			CallToAction:  "Knock out a ten-minute session right now.",
		},
		{
			Trigger: TriggerInactive, AgeGroup: student.AgeGroupTeen, Intensity: IntensityModerate,
			Celebration:   "Welcome back, {name}.",
			Encouragement: "Consistency beats cramming. Even a short session keeps {subject} moving.",
			CallToAction:  "Pick up where you left off. Ten minutes counts.",
		},
		{
			Trigger: TriggerInactive, AgeGroup: student.AgeGroupTeen, Intensity: IntensityUrgent,
			Celebration:   "{name}, your progress is still here.",
			Encouragement: "You were at {progress} in {subject}. That work doesn't expire, but momentum does.",
			CallToAction:  "Restart with one focused session today.",
		},

		// goal_completed
		{
			Trigger: TriggerGoalCompleted, AgeGroup: student.AgeGroupYoung, Intensity: IntensityGentle,
			Celebration:   "You finished your {subject} goal, {name}! Amazing!",
			Encouragement: "Finishing a goal is a big deal. You should be really proud!",
			CallToAction:  "Want to pick your next adventure?",
		},
		{
			Trigger: TriggerGoalCompleted, AgeGroup: student.AgeGroupMiddle, Intensity: IntensityModerate,
			Celebration:   "Goal complete, {name}. Nicely done!",
			Encouragement: "You proved you can see a goal through. The next one will go even faster.",
			CallToAction:  "Set your next goal while you're on a roll.",
		},
		{
			Trigger: TriggerGoalCompleted, AgeGroup: student.AgeGroupTeen, Intensity: IntensityModerate,
			Celebration:   "{subject} goal: done. Solid work, {name}.",
			Encouragement: "Finishing is the hard part, and you did it. Don't let the momentum idle.",
			CallToAction:  "Line up your next goal. A challenge you pick is one you'll finish.",
		},

		// low_task_completion
		{
			Trigger: TriggerLowTaskCompletion, AgeGroup: student.AgeGroupYoung, Intensity: IntensityGentle,
			Celebration:   "You're all set up, {name}!",
			Encouragement: "Practice tasks are like mini games. The first one is the most fun to try!",
			CallToAction:  "Try one little {subject} task today!",
		},
		{
			Trigger: TriggerLowTaskCompletion, AgeGroup: student.AgeGroupMiddle, Intensity: IntensityModerate,
			Celebration:   "Your tutor has tasks picked out for you, {name}.",
			Encouragement: "Practice is where chat lessons turn into skills you keep.",
			CallToAction:  "Start with one short practice task. It takes two minutes.",
		},
		{
			Trigger: TriggerLowTaskCompletion, AgeGroup: student.AgeGroupTeen, Intensity: IntensityModerate,
			Celebration:   "You've got a practice queue ready, {name}.",
			Encouragement: "Reading about {subject} feels productive. Doing problems is what actually sticks.",
			CallToAction:  "Clear one practice task today and see where you stand.",
		},

		// streak_broken
		{
			Trigger: TriggerStreakBroken, AgeGroup: student.AgeGroupYoung, Intensity: IntensityGentle,
			Celebration:   "You had a {longest_streak}-day streak, {name}! Wow!",
			Encouragement: "Streaks break sometimes, and that's okay. You can build an even bigger one!",
			CallToAction:  "Start a brand new streak today!",
		},
		{
			Trigger: TriggerStreakBroken, AgeGroup: student.AgeGroupMiddle, Intensity: IntensityModerate,
			Celebration:   "Your best streak was {longest_streak} days, {name}.",
			Encouragement: "A broken streak isn't lost progress. Everything you learned is still yours.",
			CallToAction:  "Day one of the new streak starts with one session.",
		},
		{
			Trigger: TriggerStreakBroken, AgeGroup: student.AgeGroupTeen, Intensity: IntensityModerate,
			Celebration:   "You held a {longest_streak}-day streak once, {name}.",
			Encouragement: "You've already proven you can be consistent. Rebuilding is faster than starting fresh.",
			CallToAction:  "Log a session today and reset the counter.",
		},

		// general_encouragement
		{
			Trigger: TriggerGeneralEncouragement, AgeGroup: student.AgeGroupYoung, Intensity: IntensityGentle,
			Celebration:   "You're doing great, {name}!",
			Encouragement: "Every time you practice, your brain gets a little stronger!",
			CallToAction:  "Come learn something cool today!",
		},
		{
			Trigger: TriggerGeneralEncouragement, AgeGroup: student.AgeGroupMiddle, Intensity: IntensityGentle,
			Celebration:   "Keep it up, {name}!",
			Encouragement: "Small steady steps add up faster than you'd think.",
			CallToAction:  "A quick session today keeps you moving forward.",
		},
		{
			Trigger: TriggerGeneralEncouragement, AgeGroup: student.AgeGroupTeen, Intensity: IntensityGentle,
			Celebration:   "Nice steady work, {name}.",
			Encouragement: "Showing up regularly is the whole game. You're playing it well.",
			CallToAction:  "Keep the rhythm going with a session today.",
		},
	}
}
