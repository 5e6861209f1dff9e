package scoring

import (
	"math"
	"slices"
	"strings"
)

// Similarity returns the cosine similarity of the TF-IDF vectors of the two
// answers. The IDF is computed over a corpus made of just these two documents,
// so the same pair of words can weigh differently from call to call. The result
// is in [0,1]; if either side normalizes to nothing the similarity is 0.
func Similarity(userAnswer, idealAnswer string) float64 {
	user := strings.Fields(Normalize(userAnswer))
	ideal := strings.Fields(Normalize(idealAnswer))
	if len(user) == 0 || len(ideal) == 0 {
		return 0
	}

	vocab, tfs := termCounts(user, ideal)
	idf := inverseDocFrequency(vocab, tfs)

	u := weigh(vocab, tfs[0], idf)
	v := weigh(vocab, tfs[1], idf)
	return cosine(u, v)
}

// termCounts returns the sorted vocabulary of all documents and the raw term
// count of each document. Sorting keeps the result independent of argument order.
func termCounts(docs ...[]string) ([]string, []map[string]int) {
	var vocab []string
	seen := make(map[string]bool)
	tfs := make([]map[string]int, len(docs))
	for i, doc := range docs {
		tfs[i] = make(map[string]int, len(doc))
		for _, term := range doc {
			tfs[i][term]++
			if !seen[term] {
				seen[term] = true
				vocab = append(vocab, term)
			}
		}
	}
	slices.Sort(vocab)
	return vocab, tfs
}

// inverseDocFrequency uses the smoothed form ln((1+n)/(1+df)) + 1.
func inverseDocFrequency(vocab []string, tfs []map[string]int) map[string]float64 {
	n := float64(len(tfs))
	idf := make(map[string]float64, len(vocab))
	for _, term := range vocab {
		df := 0
		for _, tf := range tfs {
			if tf[term] > 0 {
				df++
			}
		}
		idf[term] = math.Log((1+n)/(1+float64(df))) + 1
	}
	return idf
}

func weigh(vocab []string, tf map[string]int, idf map[string]float64) []float64 {
	vec := make([]float64, len(vocab))
	for i, term := range vocab {
		vec[i] = float64(tf[term]) * idf[term]
	}
	return vec
}

func cosine(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	sim := dot / math.Sqrt(na*nb)
	return math.Max(0, math.Min(1, sim))
}
