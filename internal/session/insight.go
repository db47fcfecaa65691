package session

import (
	"fmt"
	"strings"

	"github.com/example/adaptedmind/pkg/models"
)

// RushedSecondsPerQuestion is the pace below which an attempt counts as rushed.
const RushedSecondsPerQuestion = 30

// InsightTier buckets a score for feedback
type InsightTier string

const (
	TierExcellent  InsightTier = "excellent"
	TierGood       InsightTier = "good"
	TierAverage    InsightTier = "average"
	TierNeedsWork  InsightTier = "needs-work"
	TierStruggling InsightTier = "struggling"
)

// Insight is the qualitative feedback shown with a result
type Insight struct {
	Tier           InsightTier
	Title          string
	Message        string
	Recommendation string
	Tips           []string
	WrongCount     int    // wrong plus skipped
	WeakestTopic   string // empty when no missed question has a topic
	Rushed         bool
}

type tierCopy struct {
	title          string
	message        string
	recommendation string
	tips           []string
}

var tiers = map[InsightTier]tierCopy{
	TierExcellent: {
		title:          "Outstanding work!",
		message:        "You have a strong command of this material.",
		recommendation: "Move up to a harder difficulty to keep challenging yourself.",
		tips: []string{
			"Try the hard tier on this subject",
			"Teach a concept to someone else to lock it in",
		},
	},
	TierGood: {
		title:          "Great job!",
		message:        "You understand most of this material.",
		recommendation: "Review the questions you missed, then take another test.",
		tips: []string{
			"Read the explanation for every missed question",
			"Retake the test in a day or two",
		},
	},
	TierAverage: {
		title:          "Good effort",
		message:        "You have the basics, with some gaps left to close.",
		recommendation: "Practice the questions you got wrong before moving on.",
		tips: []string{
			"Use practice mode on your incorrect answers",
			"Take notes on the concepts you missed",
			"Slow down and read every option",
		},
	},
	TierNeedsWork: {
		title:          "Keep going",
		message:        "This material needs more practice.",
		recommendation: "Revisit the fundamentals of this subject and try an easier test.",
		tips: []string{
			"Review the core concepts before retesting",
			"Switch to the easy tier for a while",
			"Study in short, regular sessions",
		},
	},
	TierStruggling: {
		title:          "Let's build a foundation",
		message:        "This subject is still new to you, and that is fine.",
		recommendation: "Start with the easy tier and review every explanation.",
		tips: []string{
			"Begin with the basics of the subject",
			"Read each explanation carefully",
			"Practice a little every day",
		},
	},
}

func tierFor(percentage int) InsightTier {
	switch {
	case percentage >= 90:
		return TierExcellent
	case percentage >= 75:
		return TierGood
	case percentage >= 60:
		return TierAverage
	case percentage >= 40:
		return TierNeedsWork
	default:
		return TierStruggling
	}
}

// GenerateInsight builds feedback for an attempt. answers maps question index
// to the chosen option; missing entries are skipped questions.
func GenerateInsight(percentage int, questions []models.Question, answers map[int]int, timeSpentSeconds int) Insight {
	tier := tierFor(percentage)
	c := tiers[tier]

	insight := Insight{
		Tier:           tier,
		Title:          c.title,
		Recommendation: c.recommendation,
		Tips:           append([]string(nil), c.tips...),
	}

	misses := make(map[string]int)
	var order []string
	for i, q := range questions {
		if answer, ok := answers[i]; ok && answer == q.Correct {
			continue
		}
		insight.WrongCount++
		if q.Topic == "" {
			continue
		}
		if _, seen := misses[q.Topic]; !seen {
			order = append(order, q.Topic)
		}
		misses[q.Topic]++
	}
	for _, topic := range order {
		if misses[topic] > misses[insight.WeakestTopic] {
			insight.WeakestTopic = topic
		}
	}

	if len(questions) > 0 {
		insight.Rushed = float64(timeSpentSeconds)/float64(len(questions)) < RushedSecondsPerQuestion
	}

	parts := []string{c.message}
	switch insight.WrongCount {
	case 0:
		parts = append(parts, "You answered every question correctly.")
	case 1:
		parts = append(parts, "You missed 1 question.")
	default:
		parts = append(parts, fmt.Sprintf("You missed %d questions.", insight.WrongCount))
	}
	if insight.WeakestTopic != "" {
		parts = append(parts, fmt.Sprintf("Focus on %s, where you missed the most.", insight.WeakestTopic))
	}
	if insight.Rushed {
		parts = append(parts, "You moved through the questions quickly; taking more time may help.")
		insight.Tips = append(insight.Tips, "Spend at least 30 seconds on each question")
	}
	insight.Message = strings.Join(parts, " ")

	return insight
}
