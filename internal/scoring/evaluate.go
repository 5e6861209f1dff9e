package scoring

import (
	"math"
	"strconv"

	"github.com/pavelanni/mockinterview/internal/model"
)

// Label thresholds; lower bounds are inclusive.
const (
	GoodThreshold    = 0.65
	AverageThreshold = 0.40
)

const (
	feedbackGood             = "Your answer covers most of the important concepts clearly."
	feedbackAverage          = "Your answer shows partial understanding but misses some key points."
	feedbackNeedsImprovement = "Your answer lacks key concepts and needs further improvement."
)

// Grade maps a similarity score to a label and its fixed feedback text.
func Grade(score float64) (model.Label, string) {
	switch {
	case score >= GoodThreshold:
		return model.LabelGood, feedbackGood
	case score >= AverageThreshold:
		return model.LabelAverage, feedbackAverage
	default:
		return model.LabelNeedsImprovement, feedbackNeedsImprovement
	}
}

// QuestionLookup finds a question by id.
type QuestionLookup interface {
	Get(id string) (model.Question, bool)
}

// Evaluator grades answers against the reference answers of a question bank.
type Evaluator struct {
	questions QuestionLookup
}

// NewEvaluator creates an Evaluator backed by the given question lookup.
func NewEvaluator(q QuestionLookup) *Evaluator {
	return &Evaluator{questions: q}
}

// EvaluateResponse grades userAnswer against the reference answer of the
// question. An unknown id yields a Result carrying only an error message.
func (e *Evaluator) EvaluateResponse(questionID, userAnswer string) model.Result {
	q, ok := e.questions.Get(questionID)
	if !ok {
		return model.Result{Error: model.ErrInvalidQuestionID}
	}

	sim := Similarity(userAnswer, q.IdealAnswer)
	label, feedback := Grade(sim)
	return model.Result{Evaluation: &model.Evaluation{
		QuestionID:      q.ID,
		Topic:           q.Topic,
		SimilarityScore: Round(sim, 3),
		Label:           label,
		Feedback:        feedback,
	}}
}

// Round rounds x to the given number of decimal places. Halfway cases are
// decided on the exact binary value of x, so Round(2.675, 2) is 2.67.
func Round(x float64, places int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', places, 64), 64)
	if err != nil {
		return x
	}
	return r
}
