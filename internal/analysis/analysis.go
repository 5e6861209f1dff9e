// Package analysis aggregates graded responses into a performance report.
package analysis

import (
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/pavelanni/mockinterview/internal/model"
	"github.com/pavelanni/mockinterview/internal/scoring"
)

// Topic classification bands; lower bounds are inclusive.
const (
	StrongThreshold  = 75.0
	AverageThreshold = 50.0
)

// Weights maps role to per-topic weights. A topic missing for a role weighs 1.
type Weights map[string]map[string]float64

// DefaultWeights is the built-in role weight table.
var DefaultWeights = Weights{
	"Data Scientist": {
		"Machine Learning":       3,
		"Python / Data Handling": 2,
		"SQL":                    2,
		"System Design Basics":   1,
	},
	"Data Analyst": {
		"SQL":                    3,
		"Python / Data Handling": 2,
		"Machine Learning":       1,
	},
	"ML Engineer": {
		"Machine Learning":       3,
		"System Design Basics":   2,
		"Python / Data Handling": 2,
		"Operating Systems":      1,
	},
	"Software Engineer": {
		"System Design Basics":   3,
		"Operating Systems":      2,
		"Python / Data Handling": 1,
	},
}

// Weight returns the weight of topic for role. Names are matched exactly
// first, then case-insensitively, since tables loaded from config files
// arrive with lowercased keys.
func (w Weights) Weight(role, topic string) float64 {
	topics, ok := w[role]
	if !ok {
		topics, _ = foldLookup(w, role)
	}
	if v, ok := topics[topic]; ok {
		return v
	}
	if v, ok := foldLookup(topics, topic); ok {
		return v
	}
	return 1
}

// foldLookup returns the value of the first key, in sorted order, equal to
// key under case folding.
func foldLookup[V any](m map[string]V, key string) (V, bool) {
	for _, k := range slices.Sorted(maps.Keys(m)) {
		if strings.EqualFold(k, key) {
			return m[k], true
		}
	}
	var zero V
	return zero, false
}

// Analyzer computes a report from one session's responses.
type Analyzer struct {
	responses []model.ResponseRecord
	role      string
	weights   Weights
}

// New creates an Analyzer. A nil weights table means DefaultWeights.
func New(responses []model.ResponseRecord, role string, weights Weights) *Analyzer {
	if weights == nil {
		weights = DefaultWeights
	}
	return &Analyzer{responses: responses, role: role, weights: weights}
}

// TopicScores averages the response scores per topic and scales them to
// 0-100, rounded to 2 places. Topics appear in the order they were first
// answered; unanswered topics are absent.
func (a *Analyzer) TopicScores() model.TopicScores {
	type acc struct {
		sum float64
		n   int
	}
	var order []string
	groups := make(map[string]*acc)
	for _, r := range a.responses {
		g, ok := groups[r.Topic]
		if !ok {
			g = &acc{}
			groups[r.Topic] = g
			order = append(order, r.Topic)
		}
		g.sum += r.Score
		g.n++
	}

	scores := make(model.TopicScores, 0, len(order))
	for _, topic := range order {
		g := groups[topic]
		scores = append(scores, model.Entry[float64]{
			Key:   topic,
			Value: scoring.Round(g.sum/float64(g.n)*100, 2),
		})
	}
	return scores
}

// ClassifyTopics splits topics into strong, average and weak bands, keeping
// the order of scores within each band.
func ClassifyTopics(scores model.TopicScores) model.Classification {
	c := model.Classification{Strong: []string{}, Average: []string{}, Weak: []string{}}
	for _, e := range scores {
		switch {
		case e.Value >= StrongThreshold:
			c.Strong = append(c.Strong, e.Key)
		case e.Value >= AverageThreshold:
			c.Average = append(c.Average, e.Key)
		default:
			c.Weak = append(c.Weak, e.Key)
		}
	}
	return c
}

// OverallScore is the role-weighted mean of the topic scores, rounded to 2
// places. It is 0 when there are no topics or the weights sum to zero.
func (a *Analyzer) OverallScore(scores model.TopicScores) float64 {
	var sum, total float64
	for _, e := range scores {
		w := a.weights.Weight(a.role, e.Key)
		sum += e.Value * w
		total += w
	}
	if len(scores) == 0 || total == 0 {
		return 0
	}
	return scoring.Round(sum/total, 2)
}

// ConfidenceScore is 100 minus the population standard deviation of the topic
// scores, floored at 0 and rounded to 2 places. With one topic or none there
// is no spread to measure and the score is 100.
func ConfidenceScore(scores model.TopicScores) float64 {
	if len(scores) <= 1 {
		return 100
	}
	var mean float64
	for _, e := range scores {
		mean += e.Value
	}
	mean /= float64(len(scores))

	var variance float64
	for _, e := range scores {
		d := e.Value - mean
		variance += d * d
	}
	variance /= float64(len(scores))

	return scoring.Round(math.Max(0, 100-math.Sqrt(variance)), 2)
}

// GenerateReport builds the full report. The reported confidence is scaled by
// overall/100, so a low overall score lowers confidence even when topic
// scores are uniform.
func (a *Analyzer) GenerateReport() model.Report {
	scores := a.TopicScores()
	overall := a.OverallScore(scores)
	confidence := ConfidenceScore(scores)
	return model.Report{
		OverallScore:    overall,
		TopicScores:     scores,
		Classification:  ClassifyTopics(scores),
		ConfidenceScore: scoring.Round(confidence*(overall/100), 2),
	}
}
