// Package bank holds the read-only question bank an interview draws from.
package bank

import (
	"errors"
	"fmt"

	"github.com/pavelanni/mockinterview/internal/model"
)

// ErrDuplicateID is returned when two questions share an id.
var ErrDuplicateID = errors.New("duplicate question id")

// Bank is an immutable set of questions indexed by id and role.
type Bank struct {
	questions []model.Question
	byID      map[string]int
}

// New builds a bank from questions, keeping their order.
func New(questions []model.Question) (*Bank, error) {
	b := &Bank{
		questions: make([]model.Question, 0, len(questions)),
		byID:      make(map[string]int, len(questions)),
	}
	for _, q := range questions {
		if _, dup := b.byID[q.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, q.ID)
		}
		b.byID[q.ID] = len(b.questions)
		b.questions = append(b.questions, q)
	}
	return b, nil
}

// Get returns the question with the given id.
func (b *Bank) Get(id string) (model.Question, bool) {
	i, ok := b.byID[id]
	if !ok {
		return model.Question{}, false
	}
	return b.questions[i], true
}

// ByRole returns a fresh slice of the questions for role, in bank order.
// No match is an empty result, not an error.
func (b *Bank) ByRole(role string) []model.Question {
	var out []model.Question
	for _, q := range b.questions {
		if q.Role == role {
			out = append(out, q)
		}
	}
	return out
}

// RoleCount is the number of questions available for a role.
type RoleCount struct {
	Role      string `json:"role"`
	Questions int    `json:"questions"`
}

// Roles lists the roles in first-appearance order with their question counts.
func (b *Bank) Roles() []RoleCount {
	var out []RoleCount
	idx := make(map[string]int)
	for _, q := range b.questions {
		i, ok := idx[q.Role]
		if !ok {
			i = len(out)
			idx[q.Role] = i
			out = append(out, RoleCount{Role: q.Role})
		}
		out[i].Questions++
	}
	return out
}

// Len returns the number of questions in the bank.
func (b *Bank) Len() int {
	return len(b.questions)
}
