package rank

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/otakulab/anirec/internal/domain"
)

// Reduce projects the rows of m into a k-dimensional space via truncated SVD:
// reduced = U_k · diag(s_k). k is clamped to min(rows, cols) - 1, matching the
// sparse-SVD requirement that k stay strictly below the smaller dimension.
func Reduce(m *mat.Dense, k int) (*mat.Dense, error) {
	rows, cols := m.Dims()

	limit := rows
	if cols < limit {
		limit = cols
	}
	if k > limit-1 {
		k = limit - 1
	}
	if k < 1 {
		return nil, fmt.Errorf("%w: %d×%d matrix", domain.ErrTooFewDocuments, rows, cols)
	}

	var svd mat.SVD
	if ok := svd.Factorize(m, mat.SVDThin); !ok {
		return nil, fmt.Errorf("svd factorization failed for %d×%d matrix", rows, cols)
	}

	var u mat.Dense
	svd.UTo(&u)
	s := svd.Values(nil) // descending order

	reduced := mat.NewDense(rows, k, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < k; j++ {
			reduced.Set(i, j, u.At(i, j)*s[j])
		}
	}
	return reduced, nil
}

// SimilaritiesToLast returns the cosine similarity of every row except the
// last against the last row (the reference document). Zero vectors score 0.
func SimilaritiesToLast(m *mat.Dense) []float64 {
	rows, cols := m.Dims()
	if rows < 2 {
		return nil
	}

	ref := m.RawRowView(rows - 1)
	refNorm := norm(ref)

	sims := make([]float64, rows-1)
	for i := 0; i < rows-1; i++ {
		row := m.RawRowView(i)
		denom := norm(row) * refNorm
		if denom == 0 {
			sims[i] = 0
			continue
		}
		var dot float64
		for j := 0; j < cols; j++ {
			dot += row[j] * ref[j]
		}
		sims[i] = dot / denom
	}
	return sims
}

// RankAgainstLast vectorizes the documents, reduces them with truncated SVD,
// and scores each document (except the last) against the last one.
func RankAgainstLast(docs []string, components int, p VectorizerParams) ([]float64, error) {
	tfidf, err := Vectorize(docs, p)
	if err != nil {
		return nil, fmt.Errorf("vectorize: %w", err)
	}
	reduced, err := Reduce(tfidf, components)
	if err != nil {
		return nil, fmt.Errorf("reduce: %w", err)
	}
	return SimilaritiesToLast(reduced), nil
}

func norm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
