// Package session runs one interview practice attempt: a shuffled set of
// questions for a role and the graded answers submitted against them.
package session

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/pavelanni/mockinterview/internal/model"
	"github.com/pavelanni/mockinterview/internal/scoring"
)

// ErrNoQuestions is returned when the bank has no questions for the role.
var ErrNoQuestions = errors.New("no questions found for role")

// ErrUnknownQuestion is returned by SubmitAnswer for an id missing from the bank.
var ErrUnknownQuestion = errors.New(model.ErrInvalidQuestionID)

// Bank is the question source a session draws from.
type Bank interface {
	Get(id string) (model.Question, bool)
	ByRole(role string) []model.Question
}

// Session is not safe for concurrent use.
type Session struct {
	role      string
	questions []model.Question
	responses []model.ResponseRecord
	evaluator *scoring.Evaluator
	state     model.SessionState
	served    int
	seen      map[string]bool
	startedAt time.Time
	endedAt   *time.Time
	now       func() time.Time
}

type options struct {
	rng   *rand.Rand
	limit int
	now   func() time.Time
}

// Option configures a Session.
type Option func(*options)

// WithRand sets the source used to shuffle questions.
func WithRand(r *rand.Rand) Option {
	return func(o *options) { o.rng = r }
}

// WithSeed shuffles questions with a PCG source seeded from seed, making the
// order reproducible.
func WithSeed(seed uint64) Option {
	return func(o *options) { o.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// WithLimit caps the number of questions served. Zero or negative means all.
func WithLimit(n int) Option {
	return func(o *options) { o.limit = n }
}

// WithClock overrides time.Now for session timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New starts a session for role. The role's questions are copied from the bank
// and shuffled; an unseeded session gets a random order each time.
func New(b Bank, role string, opts ...Option) (*Session, error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	questions := slices.Clone(b.ByRole(role))
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoQuestions, role)
	}

	shuffle := rand.Shuffle
	if o.rng != nil {
		shuffle = o.rng.Shuffle
	}
	shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})

	if o.limit > 0 && o.limit < len(questions) {
		questions = questions[:o.limit]
	}

	return &Session{
		role:      role,
		questions: questions,
		evaluator: scoring.NewEvaluator(b),
		state:     model.StateNotStarted,
		seen:      make(map[string]bool, len(questions)),
		startedAt: o.now(),
		now:       o.now,
	}, nil
}

// Role returns the role the session was started for.
func (s *Session) Role() string { return s.role }

// Len returns the number of questions in the session.
func (s *Session) Len() int { return len(s.questions) }

// State returns the current lifecycle state.
func (s *Session) State() model.SessionState { return s.state }

// Question returns the question at index. Past the end it returns false and
// the session is finished.
func (s *Session) Question(index int) (model.Question, bool) {
	if index < 0 {
		return model.Question{}, false
	}
	if index >= len(s.questions) {
		s.finish()
		return model.Question{}, false
	}
	if s.state == model.StateNotStarted {
		s.state = model.StateInProgress
	}
	if index+1 > s.served {
		s.served = index + 1
	}
	q := s.questions[index]
	s.seen[q.ID] = true
	return q, true
}

// Served returns the question with id if Question has returned it in this
// session.
func (s *Session) Served(id string) (model.Question, bool) {
	if !s.seen[id] {
		return model.Question{}, false
	}
	for _, q := range s.questions {
		if q.ID == id {
			return q, true
		}
	}
	return model.Question{}, false
}

// SubmitAnswer grades answer and records it. questionID is not checked
// against the question last served. When topic is empty the bank's topic for
// the question is used.
func (s *Session) SubmitAnswer(questionID, topic, answer string) (model.ResponseRecord, error) {
	res := s.evaluator.EvaluateResponse(questionID, answer)
	if !res.OK() {
		return model.ResponseRecord{}, fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}
	if topic == "" {
		topic = res.Topic
	}

	rec := model.ResponseRecord{
		QuestionID: questionID,
		Topic:      topic,
		Score:      res.SimilarityScore,
		Label:      res.Label,
		Suggestion: res.Feedback,
	}
	if s.state == model.StateNotStarted {
		s.state = model.StateInProgress
	}
	s.responses = append(s.responses, rec)
	return rec, nil
}

// Responses returns a copy of the recorded responses in submission order.
func (s *Session) Responses() []model.ResponseRecord {
	out := make([]model.ResponseRecord, len(s.responses))
	copy(out, s.responses)
	return out
}

// Finish ends the session early.
func (s *Session) Finish() { s.finish() }

func (s *Session) finish() {
	if s.state == model.StateFinished {
		return
	}
	s.state = model.StateFinished
	t := s.now()
	s.endedAt = &t
}

// Summary describes the session for reports.
func (s *Session) Summary() model.SessionSummary {
	return model.SessionSummary{
		Role:       s.role,
		StartedAt:  s.startedAt,
		FinishedAt: s.endedAt,
		Served:     s.served,
		Total:      len(s.questions),
		Responses:  s.Responses(),
	}
}
