package model

// InputType describes how the front-end should collect an answer.
type InputType string

const (
	InputText InputType = "text"
	InputCode InputType = "code"
)

// Question is a row of the question bank. Questions are read-only once loaded.
type Question struct {
	ID          string    `json:"question_id"`
	Text        string    `json:"question_text"`
	Topic       string    `json:"topic"`
	Role        string    `json:"role"`
	InputType   InputType `json:"input_type"`
	IdealAnswer string    `json:"ideal_answer,omitempty"`
}

// Public returns a copy of the question with the reference answer removed,
// safe to hand to a candidate.
func (q Question) Public() Question {
	q.IdealAnswer = ""
	return q
}

// QuestionImport is one validated row of a question bank CSV file.
type QuestionImport struct {
	ID          string `validate:"required,max=64"`
	Text        string `validate:"required"`
	Topic       string `validate:"required"`
	Role        string `validate:"required"`
	InputType   string `validate:"omitempty,oneof=text code"`
	IdealAnswer string `validate:"required"`
}

// Question converts the import row into a bank question.
func (qi QuestionImport) Question() Question {
	it := InputType(qi.InputType)
	if it == "" {
		it = InputText
	}
	return Question{
		ID:          qi.ID,
		Text:        qi.Text,
		Topic:       qi.Topic,
		Role:        qi.Role,
		InputType:   it,
		IdealAnswer: qi.IdealAnswer,
	}
}

// Label is the qualitative grade given to a single answer.
type Label string

const (
	LabelGood             Label = "Good"
	LabelAverage          Label = "Average"
	LabelNeedsImprovement Label = "Needs Improvement"
)

// ErrInvalidQuestionID is the error text returned for an unknown question id.
const ErrInvalidQuestionID = "Invalid question ID"

// Evaluation is the outcome of grading one answer against its reference.
type Evaluation struct {
	QuestionID      string  `json:"question_id"`
	Topic           string  `json:"topic"`
	SimilarityScore float64 `json:"similarity_score"`
	Label           Label   `json:"label"`
	Feedback        string  `json:"feedback"`
}

// Result is either an Evaluation or an error message. An unknown question id
// is reported here rather than as a Go error.
type Result struct {
	*Evaluation
	Error string `json:"error,omitempty"`
}

// OK reports whether the result carries an evaluation.
func (r Result) OK() bool {
	return r.Error == "" && r.Evaluation != nil
}

// ResponseRecord is appended to a session once per submitted answer and never
// changed afterwards.
type ResponseRecord struct {
	QuestionID string  `json:"question_id"`
	Topic      string  `json:"topic"`
	Score      float64 `json:"score"`
	Label      Label   `json:"label"`
	Suggestion string  `json:"suggestion"`
}

// SessionState tracks where an interview session is in its lifecycle.
type SessionState string

const (
	StateNotStarted SessionState = "not_started"
	StateInProgress SessionState = "in_progress"
	StateFinished   SessionState = "finished"
)

// TopicScores maps topic to its averaged percentage score in first-appearance order.
type TopicScores = OrderedMap[float64]

// Classification partitions topics by score band.
type Classification struct {
	Strong  []string `json:"strong"`
	Average []string `json:"average"`
	Weak    []string `json:"weak"`
}

// Report is the output of the performance analyzer.
type Report struct {
	OverallScore    float64        `json:"overall_score"`
	TopicScores     TopicScores    `json:"topic_scores"`
	Classification  Classification `json:"classification"`
	ConfidenceScore float64        `json:"confidence_score"`
}

// Resource is a study recommendation for one topic.
type Resource struct {
	Focus    string `json:"focus" mapstructure:"focus"`
	Practice string `json:"practice" mapstructure:"practice"`
	Tools    string `json:"tools" mapstructure:"tools"`
}

// Readiness is the interview readiness tier.
type Readiness struct {
	Level       string `json:"level"`
	Description string `json:"description"`
}

// Feedback is the narrative derived from a Report.
type Feedback struct {
	OverallFeedback    string               `json:"overall_feedback"`
	TopicFeedback      OrderedMap[string]   `json:"topic_feedback"`
	ImprovementPlan    string               `json:"improvement_plan"`
	Resources          OrderedMap[Resource] `json:"resources"`
	Readiness          Readiness            `json:"readiness"`
	ConfidenceScore    float64              `json:"confidence_score"`
	ConfidenceFeedback string               `json:"confidence_feedback"`
}

// InterviewConfig holds runtime interview parameters set via CLI flags.
type InterviewConfig struct {
	Limit   int      // 0 means every question for the role
	Formats []string // report formats written at the end of a session
	OutDir  string
}
