// Package feedback turns a performance report into narrative guidance.
package feedback

import (
	"maps"
	"slices"
	"strings"

	"github.com/pavelanni/mockinterview/internal/model"
)

// Resources maps topic to study recommendations.
type Resources map[string]model.Resource

// DefaultResources is the built-in resource library.
var DefaultResources = Resources{
	"SQL": {
		Focus:    "Aggregation, window functions, indexing, query optimization",
		Practice: "Solve advanced GROUP BY and ranking problems",
		Tools:    "Practice on LeetCode SQL section or Mode Analytics",
	},
	"Machine Learning": {
		Focus:    "Bias-variance tradeoff, overfitting, regularization, cross-validation",
		Practice: "Explain models conceptually before implementation",
		Tools:    "Revise sklearn implementations and experiment with hyperparameters",
	},
	"Python / Data Handling": {
		Focus:    "Pandas optimization, vectorization, memory management",
		Practice: "Work with large datasets and profile execution time",
		Tools:    "Practice NumPy broadcasting and Pandas groupby operations",
	},
	"System Design Basics": {
		Focus:    "High-level architecture, scalability, data pipelines",
		Practice: "Draw system diagrams for simple problems",
		Tools:    "Study basic components like load balancers, queues, storage systems",
	},
	"Operating Systems": {
		Focus:    "Process management, memory, scheduling",
		Practice: "Explain concepts like deadlock and paging",
		Tools:    "Revise OS fundamentals and system-level trade-offs",
	},
}

// lookup matches topic exactly, then case-insensitively for tables loaded
// from config files. Keys are tried in sorted order.
func (r Resources) lookup(topic string) (model.Resource, bool) {
	if res, ok := r[topic]; ok {
		return res, true
	}
	for _, k := range slices.Sorted(maps.Keys(r)) {
		if strings.EqualFold(k, topic) {
			return r[k], true
		}
	}
	return model.Resource{}, false
}

// Generator derives feedback from a report. It holds no other state.
type Generator struct {
	report    model.Report
	resources Resources
}

// New creates a Generator. A nil resources table means DefaultResources.
func New(report model.Report, resources Resources) *Generator {
	if resources == nil {
		resources = DefaultResources
	}
	return &Generator{report: report, resources: resources}
}

// OverallFeedback describes the overall score in one sentence.
func (g *Generator) OverallFeedback() string {
	score := g.report.OverallScore
	switch {
	case score >= 75:
		return "Excellent overall performance. You demonstrate strong conceptual understanding across most topics."
	case score >= 50:
		return "Decent performance, but there are noticeable gaps in certain topics that need improvement."
	default:
		return "Your performance indicates significant conceptual gaps. Focused revision and practice are required."
	}
}

// TopicFeedback has one entry per topic of the report, in report order.
func (g *Generator) TopicFeedback() model.OrderedMap[string] {
	out := make(model.OrderedMap[string], 0, len(g.report.TopicScores))
	for _, e := range g.report.TopicScores {
		var text string
		switch {
		case e.Value >= 75:
			text = "Strong understanding. You are comfortable with core concepts and practical usage."
		case e.Value >= 50:
			text = "Average understanding. Revise fundamentals and practice applying concepts."
		default:
			text = "Weak understanding. Focus on core concepts, examples, and common interview questions."
		}
		out = append(out, model.Entry[string]{Key: e.Key, Value: text})
	}
	return out
}

// ImprovementPlan lists a study line for each weak topic.
func (g *Generator) ImprovementPlan() string {
	weak := g.report.Classification.Weak
	if len(weak) == 0 {
		return "Maintain consistency and continue practicing advanced problems."
	}
	var sb strings.Builder
	sb.WriteString("Recommended improvement plan:\n")
	for _, topic := range weak {
		sb.WriteString("- Strengthen fundamentals in " + topic + "\n")
	}
	return sb.String()
}

// ResourceRecommendations lists resources for weak topics. Topics missing
// from the library are left out.
func (g *Generator) ResourceRecommendations() model.OrderedMap[model.Resource] {
	out := model.OrderedMap[model.Resource]{}
	for _, topic := range g.report.Classification.Weak {
		if r, ok := g.resources.lookup(topic); ok {
			out = append(out, model.Entry[model.Resource]{Key: topic, Value: r})
		}
	}
	return out
}

// ReadinessLevel maps the overall score to a readiness tier.
func (g *Generator) ReadinessLevel() model.Readiness {
	score := g.report.OverallScore
	switch {
	case score >= 75:
		return model.Readiness{
			Level:       "Interview Ready",
			Description: "You are well-prepared for technical interviews and demonstrate strong topic mastery.",
		}
	case score >= 55:
		return model.Readiness{
			Level:       "Moderately Prepared",
			Description: "You have decent understanding but should refine weak areas before appearing for interviews.",
		}
	case score >= 35:
		return model.Readiness{
			Level:       "Beginner",
			Description: "Your fundamentals need strengthening before attempting competitive interviews.",
		}
	default:
		return model.Readiness{
			Level:       "Needs Foundation Work",
			Description: "Significant conceptual gaps detected. Focus on core fundamentals before progressing.",
		}
	}
}

// ConfidenceFeedback comments on how consistent the topic scores are.
func (g *Generator) ConfidenceFeedback() string {
	c := g.report.ConfidenceScore
	switch {
	case c >= 75:
		return "Your performance is consistent across topics, indicating stable understanding."
	case c >= 50:
		return "Your performance shows moderate variation across topics."
	default:
		return "Your performance is inconsistent across topics. Strengthen weak areas for stability."
	}
}

// GenerateFeedback assembles every part of the feedback.
func (g *Generator) GenerateFeedback() model.Feedback {
	return model.Feedback{
		OverallFeedback:    g.OverallFeedback(),
		TopicFeedback:      g.TopicFeedback(),
		ImprovementPlan:    g.ImprovementPlan(),
		Resources:          g.ResourceRecommendations(),
		Readiness:          g.ReadinessLevel(),
		ConfidenceScore:    g.report.ConfidenceScore,
		ConfidenceFeedback: g.ConfidenceFeedback(),
	}
}
