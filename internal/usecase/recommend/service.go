package recommend

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/otakulab/anirec/internal/domain"
	"github.com/otakulab/anirec/internal/metrics"
	"github.com/otakulab/anirec/internal/rank"
)

// Params tune the recommendation pipeline.
type Params struct {
	JaccardThreshold float64
	Components       int
	Vectorizer       rank.VectorizerParams
}

// DefaultParams returns the production pipeline tuning.
func DefaultParams() Params {
	return Params{
		JaccardThreshold: 0.45,
		Components:       100,
		Vectorizer:       rank.DefaultVectorizerParams(),
	}
}

// Service runs the hybrid recommendation pipeline: genre similarity narrows
// the catalog, reviewer overlap filters it, and synopsis similarity (TF-IDF
// reduced by truncated SVD) orders what is left. Each later stage falls back
// to the previous one's output when it produces nothing.
type Service struct {
	catalog Catalog
	cache   Cache
	params  Params
	logger  *zap.Logger
}

// New creates a recommendation service.
func New(catalog Catalog, params Params, logger *zap.Logger) *Service {
	return &Service{catalog: catalog, params: params, logger: logger}
}

// WithCache attaches a recommendation cache.
func (s *Service) WithCache(cache Cache) *Service {
	s.cache = cache
	return s
}

// Recommend returns ranked recommendations for an exact catalog title.
// The query anime itself never appears in the result. The result is never
// nil on success.
func (s *Service) Recommend(ctx context.Context, title string) ([]domain.Recommendation, error) {
	if len(s.catalog.All()) == 0 {
		return nil, domain.ErrCatalogNotLoaded
	}

	target, idx, ok := s.catalog.ByTitle(title)
	if !ok {
		return nil, fmt.Errorf("%q: %w", title, domain.ErrTitleNotFound)
	}

	if s.cache != nil {
		if recs, ok := s.cache.Get(ctx, title); ok {
			return recs, nil
		}
	}

	recs := s.run(target, idx)

	if s.cache != nil {
		s.cache.Put(ctx, title, recs)
	}
	return recs, nil
}

func (s *Service) run(target domain.Anime, targetIdx int) []domain.Recommendation {
	candidates := s.genreStage(target)
	if len(candidates) == 0 {
		return []domain.Recommendation{}
	}

	filtered := s.reviewerStage(targetIdx, candidates)
	if len(filtered) == 0 {
		metrics.RecommendFallbacksTotal.WithLabelValues("genre").Inc()
		s.logger.Debug("No reviewer overlap, using genre similarity order",
			zap.String("title", target.Name), zap.Int("candidates", len(candidates)))
		sortBySimilarity(candidates)
		return candidates
	}

	ranked, err := s.synopsisStage(target, filtered)
	if err != nil {
		metrics.RecommendFallbacksTotal.WithLabelValues("reviewer").Inc()
		s.logger.Debug("Synopsis ranking unavailable, using reviewer-filtered order",
			zap.String("title", target.Name), zap.Error(err))
		return filtered
	}
	return ranked
}

// genreStage keeps catalog entries whose genre sets have Jaccard similarity
// of at least the threshold with the query anime. The query itself is skipped.
func (s *Service) genreStage(target domain.Anime) []domain.Recommendation {
	defer observeStage("genre", time.Now())

	targetGenres := domain.GenreSet(target.Genres)
	var out []domain.Recommendation

	for _, a := range s.catalog.All() {
		if a.Name == target.Name {
			continue
		}
		sim := domain.Jaccard(targetGenres, domain.GenreSet(a.Genres))
		if sim >= s.params.JaccardThreshold {
			out = append(out, domain.Recommendation{Anime: a, Similarity: sim})
		}
	}
	return out
}

// reviewerStage keeps candidates that at least one enthusiastic reviewer of
// the query anime (score 9+) also scored 9+. Order is preserved.
func (s *Service) reviewerStage(targetIdx int, candidates []domain.Recommendation) []domain.Recommendation {
	defer observeStage("reviewer", time.Now())

	targetID, ok := s.catalog.IDForIndex(targetIdx)
	if !ok {
		return nil
	}

	liked := make(map[int]struct{})
	for _, reviewer := range s.catalog.ReviewersFor(targetID) {
		for _, id := range s.catalog.AnimeForReviewer(reviewer) {
			liked[id] = struct{}{}
		}
	}
	if len(liked) == 0 {
		return nil
	}

	var out []domain.Recommendation
	for _, c := range candidates {
		if _, ok := liked[c.ID]; ok {
			out = append(out, c)
		}
	}
	return out
}

// synopsisStage re-scores candidates by reduced TF-IDF similarity between
// their synopses and the query anime's, then orders them best-first.
func (s *Service) synopsisStage(target domain.Anime, candidates []domain.Recommendation) ([]domain.Recommendation, error) {
	defer observeStage("synopsis", time.Now())

	docs := make([]string, 0, len(candidates)+1)
	for _, c := range candidates {
		docs = append(docs, domain.CleanSynopsis(c.Synopsis))
	}
	docs = append(docs, domain.CleanSynopsis(target.Synopsis))

	sims, err := rank.RankAgainstLast(docs, s.params.Components, s.params.Vectorizer)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Recommendation, len(candidates))
	for i, c := range candidates {
		c.Similarity = sims[i]
		out[i] = c
	}
	sortBySimilarity(out)
	return out, nil
}

func sortBySimilarity(recs []domain.Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Similarity > recs[j].Similarity
	})
}

func observeStage(stage string, start time.Time) {
	metrics.RecommendStageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
