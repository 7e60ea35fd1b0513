package rank

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/otakulab/anirec/internal/domain"
)

// VectorizerParams mirror the classic TF-IDF preprocessing knobs:
// terms must appear in at least MinDF documents and in at most MaxDF
// (a proportion) of them, and the vocabulary is capped at MaxFeatures terms
// chosen by corpus frequency.
type VectorizerParams struct {
	MaxFeatures int
	MaxDF       float64
	MinDF       int
}

// DefaultVectorizerParams returns the tuning the recommendation pipeline uses.
func DefaultVectorizerParams() VectorizerParams {
	return VectorizerParams{MaxFeatures: 4000, MaxDF: 0.8, MinDF: 10}
}

// tokens of two or more word characters, after lowercasing
var tokenRegex = regexp.MustCompile(`[a-z0-9_][a-z0-9_]+`)

// Tokenize lowercases text and extracts word tokens of length >= 2,
// dropping english stop words.
func Tokenize(text string) []string {
	raw := tokenRegex.FindAllString(strings.ToLower(text), -1)
	tokens := raw[:0]
	for _, t := range raw {
		if !IsStopWord(t) {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// Vectorize builds an l2-normalized TF-IDF matrix, one row per document.
// idf uses the smoothed formula ln((1+n)/(1+df)) + 1.
// Returns domain.ErrNoVocabulary when no term survives the df cuts.
func Vectorize(docs []string, p VectorizerParams) (*mat.Dense, error) {
	n := len(docs)
	if n == 0 {
		return nil, domain.ErrTooFewDocuments
	}

	counts := make([]map[string]int, n)
	df := make(map[string]int)
	corpusFreq := make(map[string]int)

	for i, doc := range docs {
		c := make(map[string]int)
		for _, t := range Tokenize(doc) {
			c[t]++
			corpusFreq[t]++
		}
		for t := range c {
			df[t]++
		}
		counts[i] = c
	}

	maxDocs := int(p.MaxDF * float64(n))
	var terms []string
	for t, d := range df {
		if d < p.MinDF || d > maxDocs {
			continue
		}
		terms = append(terms, t)
	}
	if len(terms) == 0 {
		return nil, domain.ErrNoVocabulary
	}

	// Cap the vocabulary by corpus frequency, ties resolved alphabetically.
	if p.MaxFeatures > 0 && len(terms) > p.MaxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if corpusFreq[terms[i]] != corpusFreq[terms[j]] {
				return corpusFreq[terms[i]] > corpusFreq[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:p.MaxFeatures]
	}
	sort.Strings(terms)

	col := make(map[string]int, len(terms))
	for i, t := range terms {
		col[t] = i
	}

	idf := make([]float64, len(terms))
	for i, t := range terms {
		idf[i] = math.Log(float64(1+n)/float64(1+df[t])) + 1
	}

	m := mat.NewDense(n, len(terms), nil)
	for i, c := range counts {
		var norm float64
		row := make([]float64, len(terms))
		for t, tf := range c {
			j, ok := col[t]
			if !ok {
				continue
			}
			v := float64(tf) * idf[j]
			row[j] = v
			norm += v * v
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for j := range row {
				row[j] /= norm
			}
		}
		m.SetRow(i, row)
	}

	return m, nil
}
