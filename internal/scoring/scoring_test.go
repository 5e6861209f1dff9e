package scoring

import (
	"math"
	"testing"

	"github.com/pavelanni/mockinterview/internal/model"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"punctuation and case", "ML Overfitting!! 123", "ml overfitting 123"},
		{"whitespace runs", "  a\t\tb \n c  ", "a b c"},
		{"only symbols", "!!! ???", ""},
		{"empty", "", ""},
		{"non-ascii letters dropped", "café naïve", "caf nave"},
		{"non-string", 42, ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"ML Overfitting!! 123",
		"  Mixed\tCASE  with-dashes_and_underscores ",
		"SELECT * FROM t GROUP BY x;",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestSimilarity(t *testing.T) {
	const answer = "Overfitting happens when a model memorizes training data and fails on new data"

	t.Run("identical text", func(t *testing.T) {
		if got := Similarity(answer, answer); got != 1.0 {
			t.Errorf("Similarity(x, x) = %v, want 1.0", got)
		}
	})

	t.Run("identical after normalization", func(t *testing.T) {
		if got := Similarity("Deadlock!", "deadlock"); got != 1.0 {
			t.Errorf("Similarity = %v, want 1.0", got)
		}
	})

	t.Run("disjoint vocabularies", func(t *testing.T) {
		if got := Similarity("paging memory", "window functions"); got != 0 {
			t.Errorf("Similarity = %v, want 0", got)
		}
	})

	t.Run("two document idf", func(t *testing.T) {
		idf := math.Log(1.5) + 1
		want := 1 / (1 + idf*idf)
		if got := Similarity("a b", "a c"); math.Abs(got-want) > 1e-12 {
			t.Errorf("Similarity = %v, want %v", got, want)
		}
	})

	t.Run("empty inputs fall back to zero", func(t *testing.T) {
		cases := [][2]string{{"", answer}, {answer, ""}, {"?!", "..."}, {"", ""}}
		for _, c := range cases {
			if got := Similarity(c[0], c[1]); got != 0 {
				t.Errorf("Similarity(%q, %q) = %v, want 0", c[0], c[1], got)
			}
		}
	})
}

func TestSimilaritySymmetricAndBounded(t *testing.T) {
	texts := []string{
		"Overfitting happens when a model memorizes training data",
		"A model that memorizes noise in training data overfits and generalizes poorly",
		"window functions compute values over a set of rows",
		"data data data model",
		"x",
	}
	for _, a := range texts {
		for _, b := range texts {
			ab := Similarity(a, b)
			ba := Similarity(b, a)
			if ab != ba {
				t.Errorf("Similarity not symmetric for %q / %q: %v vs %v", a, b, ab, ba)
			}
			if ab < 0 || ab > 1 {
				t.Errorf("Similarity(%q, %q) = %v out of [0,1]", a, b, ab)
			}
		}
	}
}

func TestGrade(t *testing.T) {
	tests := []struct {
		score float64
		want  model.Label
	}{
		{1.0, model.LabelGood},
		{0.65, model.LabelGood},
		{0.6499, model.LabelAverage},
		{0.40, model.LabelAverage},
		{0.3999, model.LabelNeedsImprovement},
		{0, model.LabelNeedsImprovement},
	}
	for _, tt := range tests {
		label, feedback := Grade(tt.score)
		if label != tt.want {
			t.Errorf("Grade(%v) = %q, want %q", tt.score, label, tt.want)
		}
		if feedback == "" {
			t.Errorf("Grade(%v) returned empty feedback", tt.score)
		}
	}

	if _, fb := Grade(0.9); fb != "Your answer covers most of the important concepts clearly." {
		t.Errorf("unexpected Good feedback %q", fb)
	}
}

type mapLookup map[string]model.Question

func (m mapLookup) Get(id string) (model.Question, bool) {
	q, ok := m[id]
	return q, ok
}

func TestEvaluateResponse(t *testing.T) {
	ev := NewEvaluator(mapLookup{
		"Q5": {
			ID:          "Q5",
			Topic:       "Machine Learning",
			Role:        "Data Scientist",
			IdealAnswer: "Overfitting occurs when a model learns noise in the training data and performs poorly on unseen data.",
		},
	})

	t.Run("unknown id", func(t *testing.T) {
		res := ev.EvaluateResponse("Q999", "anything")
		if res.OK() {
			t.Fatal("expected error result")
		}
		if res.Error != "Invalid question ID" {
			t.Errorf("Error = %q, want %q", res.Error, "Invalid question ID")
		}
	})

	t.Run("known id", func(t *testing.T) {
		res := ev.EvaluateResponse("Q5", "Overfitting happens when a model memorizes training data and fails on new data")
		if !res.OK() {
			t.Fatalf("unexpected error %q", res.Error)
		}
		if res.QuestionID != "Q5" || res.Topic != "Machine Learning" {
			t.Errorf("got %s/%s, want Q5/Machine Learning", res.QuestionID, res.Topic)
		}
		if res.SimilarityScore != Round(res.SimilarityScore, 3) {
			t.Errorf("score %v not rounded to 3 places", res.SimilarityScore)
		}
		if res.SimilarityScore <= 0 || res.SimilarityScore >= 1 {
			t.Errorf("score %v should be strictly between 0 and 1", res.SimilarityScore)
		}
		label, _ := Grade(res.SimilarityScore)
		if res.Label != label {
			t.Errorf("label %q does not match score %v", res.Label, res.SimilarityScore)
		}
	})

	t.Run("exact reference answer", func(t *testing.T) {
		res := ev.EvaluateResponse("Q5", "Overfitting occurs when a model learns noise in the training data and performs poorly on unseen data.")
		if res.SimilarityScore != 1 || res.Label != model.LabelGood {
			t.Errorf("got %v/%q, want 1/Good", res.SimilarityScore, res.Label)
		}
	})
}

func TestRound(t *testing.T) {
	tests := []struct {
		x      float64
		places int
		want   float64
	}{
		{0.33333, 3, 0.333},
		{0.6666, 3, 0.667},
		{2.675, 2, 2.67},
		{0.125, 2, 0.12},
		{70, 2, 70},
		{66.666666, 2, 66.67},
	}
	for _, tt := range tests {
		if got := Round(tt.x, tt.places); got != tt.want {
			t.Errorf("Round(%v, %d) = %v, want %v", tt.x, tt.places, got, tt.want)
		}
	}
}
