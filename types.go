package anirec

import "github.com/otakulab/anirec/internal/domain"

// Anime is one catalog record. Score and Episodes are zero when the catalog
// marks them unknown.
type Anime struct {
	ID       int
	Name     string
	Score    float64
	Genres   []string
	Episodes float64
	Studios  []string
	Rating   string
	Synopsis string
	ImageURL string
}

// Recommendation is a ranked catalog entry.
type Recommendation struct {
	Anime
	Similarity float64
}

// DiscoveryResult is a catalog entry matched by filtered discovery.
// Similarity is zero when no description was supplied.
type DiscoveryResult struct {
	Anime
	FilterScore float64
	Similarity  float64
}

// DiscoverFilters describe one discovery query. List fields use AND
// semantics across dimensions. Episode ranges use the catalog's named
// buckets ("1-10" through "1001-4000").
type DiscoverFilters struct {
	Genres      []string
	Episodes    []string
	Studios     []string
	Ratings     []string
	Description string
	Limit       int
}

// HealthReport aggregates component health.
type HealthReport struct {
	Status string
	Checks map[string]string
}

func animeFromDomain(a domain.Anime) Anime {
	score, _ := a.Score.Float()
	episodes, _ := a.Episodes.Float()
	return Anime{
		ID:       a.ID,
		Name:     a.Name,
		Score:    score,
		Genres:   domain.SplitList(a.Genres),
		Episodes: episodes,
		Studios:  domain.SplitList(a.Studios),
		Rating:   a.Rating,
		Synopsis: domain.CleanSynopsis(a.Synopsis),
		ImageURL: a.ImageURL,
	}
}
