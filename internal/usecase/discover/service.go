package discover

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/otakulab/anirec/internal/domain"
	"github.com/otakulab/anirec/internal/rank"
)

// episodeBuckets are the named episode-count ranges the UI offers.
var episodeBuckets = map[string][2]float64{
	"1001-4000": {1001, 4000},
	"201-1000":  {201, 1000},
	"101-200":   {101, 200},
	"61-100":    {61, 100},
	"31-60":     {31, 60},
	"21-30":     {21, 30},
	"11-20":     {11, 20},
	"1-10":      {1, 10},
}

// Filters describe one discovery request. List fields use AND semantics
// across dimensions: a record must match something in every non-empty list.
type Filters struct {
	Genres      []string
	Episodes    []string
	Studios     []string
	Ratings     []string
	Description string
	Limit       int
}

// Params tune the discovery pipeline.
type Params struct {
	Components   int
	DefaultLimit int
	Vectorizer   rank.VectorizerParams
}

// DefaultParams returns the production discovery tuning.
func DefaultParams() Params {
	return Params{
		Components:   60,
		DefaultLimit: 10,
		Vectorizer:   rank.DefaultVectorizerParams(),
	}
}

// Service scores the catalog against user-chosen filters, optionally
// re-ranking survivors by synopsis similarity to a free-text description.
type Service struct {
	catalog Catalog
	params  Params
	logger  *zap.Logger
}

// New creates a discovery service.
func New(catalog Catalog, params Params, logger *zap.Logger) *Service {
	return &Service{catalog: catalog, params: params, logger: logger}
}

// Discover returns catalog entries matching every requested filter dimension,
// best matches first. The result is never nil on success.
func (s *Service) Discover(ctx context.Context, f Filters) ([]domain.DiscoveryResult, error) {
	if len(s.catalog.All()) == 0 {
		return nil, domain.ErrCatalogNotLoaded
	}

	filtered := s.filterStage(f)

	limit := f.Limit
	if limit <= 0 {
		limit = s.params.DefaultLimit
	}

	if f.Description == "" {
		sortByFilterScore(filtered)
		return truncate(filtered, limit), nil
	}

	ranked, err := s.descriptionStage(f.Description, filtered)
	if err != nil {
		s.logger.Debug("Description ranking unavailable, using filter score order",
			zap.Int("candidates", len(filtered)), zap.Error(err))
		sortByFilterScore(filtered)
		return truncate(filtered, limit), nil
	}
	return truncate(ranked, limit), nil
}

// filterStage keeps records where every requested dimension scores above
// zero, attaching the mean of the four dimension scores.
func (s *Service) filterStage(f Filters) []domain.DiscoveryResult {
	out := []domain.DiscoveryResult{}
	for _, a := range s.catalog.All() {
		episodeScore := episodeMatch(a, f.Episodes)
		genreScore := listMatch(a.Genres, f.Genres)
		studioScore := listMatch(a.Studios, f.Studios)
		ratingScore := ratingMatch(a.Rating, f.Ratings)

		if episodeScore > 0 && genreScore > 0 && studioScore > 0 && ratingScore > 0 {
			out = append(out, domain.DiscoveryResult{
				Anime:       a,
				FilterScore: (episodeScore + genreScore + studioScore + ratingScore) / 4,
			})
		}
	}
	return out
}

// descriptionStage re-scores candidates by reduced TF-IDF similarity of their
// synopses to the description. Similarity is blended with the filter score
// but never lowered by it.
func (s *Service) descriptionStage(description string, candidates []domain.DiscoveryResult) ([]domain.DiscoveryResult, error) {
	docs := make([]string, 0, len(candidates)+1)
	for _, c := range candidates {
		docs = append(docs, domain.CleanSynopsis(c.Synopsis))
	}
	docs = append(docs, domain.CleanSynopsis(description))

	sims, err := rank.RankAgainstLast(docs, s.params.Components, s.params.Vectorizer)
	if err != nil {
		return nil, err
	}

	out := make([]domain.DiscoveryResult, len(candidates))
	for i, c := range candidates {
		sim := sims[i]
		if blended := 0.55*sim + 0.45*c.FilterScore; blended > sim {
			sim = blended
		}
		c.Similarity = sim
		out[i] = c
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Similarity > out[j].Similarity
	})
	return out, nil
}

// episodeMatch scores how centrally the episode count sits inside the best
// of the requested buckets. Unknown bucket names and unparsable or zero
// episode counts score zero.
func episodeMatch(a domain.Anime, buckets []string) float64 {
	if len(buckets) == 0 {
		return 1.0
	}
	episodes, ok := a.Episodes.Float()
	if !ok || episodes == 0 {
		return 0.0
	}

	best := 0.0
	for _, name := range buckets {
		bounds, ok := episodeBuckets[name]
		if !ok {
			continue
		}
		lo, hi := bounds[0], bounds[1]
		if episodes < lo || episodes > hi {
			continue
		}
		position := (episodes - lo) / (hi - lo)
		if score := 1 - abs(position-0.5)*2; score > best {
			best = score
		}
	}
	return best
}

// listMatch scores the fraction of selected values present in the record's
// comma-separated list field.
func listMatch(field string, selected []string) float64 {
	if len(selected) == 0 {
		return 1.0
	}
	have := make(map[string]struct{})
	for _, v := range domain.SplitList(field) {
		have[v] = struct{}{}
	}
	matches := 0
	for _, v := range selected {
		if _, ok := have[v]; ok {
			matches++
		}
	}
	return float64(matches) / float64(len(selected))
}

func ratingMatch(rating string, selected []string) float64 {
	if len(selected) == 0 {
		return 1.0
	}
	if rating == "" {
		return 0.0
	}
	for _, v := range selected {
		if v == rating {
			return 1.0
		}
	}
	return 0.0
}

func sortByFilterScore(results []domain.DiscoveryResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FilterScore > results[j].FilterScore
	})
}

func truncate(results []domain.DiscoveryResult, limit int) []domain.DiscoveryResult {
	if len(results) > limit {
		return results[:limit]
	}
	return results
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
