package discover

import (
	"context"
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/otakulab/anirec/internal/domain"
	"github.com/otakulab/anirec/internal/rank"
)

type mockCatalog struct {
	anime []domain.Anime
}

func (m *mockCatalog) All() []domain.Anime { return m.anime }

func fixtureCatalog() *mockCatalog {
	return &mockCatalog{anime: []domain.Anime{
		{ID: 1, Name: "Short Action", Genres: "Action, Comedy", Studios: "Bones",
			Rating: "PG-13", Episodes: domain.NumberOf(12),
			Synopsis: "A swordsman wanders the countryside fighting bandits."},
		{ID: 2, Name: "Long Drama", Genres: "Drama", Studios: "Madhouse",
			Rating: "R", Episodes: domain.NumberOf(74),
			Synopsis: "A doctor chases a killer across the continent."},
		{ID: 3, Name: "Mid Action", Genres: "Action", Studios: "Bones",
			Rating: "PG-13", Episodes: domain.NumberOf(26),
			Synopsis: "A swordsman defends a village of bandits turned farmers."},
		{ID: 4, Name: "Unknown Eps", Genres: "Action", Studios: "Bones",
			Rating: "PG-13", Episodes: domain.NumberOfString("Unknown"),
			Synopsis: "Unknown length adventure."},
	}}
}

func testParams() Params {
	p := DefaultParams()
	p.Vectorizer = rank.VectorizerParams{MaxDF: 1.0, MinDF: 1}
	return p
}

func TestDiscover_NoFilters(t *testing.T) {
	svc := New(fixtureCatalog(), testParams(), zap.NewNop())

	results, err := svc.Discover(context.Background(), Filters{})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected the full catalog, got %d", len(results))
	}
	for _, r := range results {
		if r.FilterScore != 1.0 {
			t.Errorf("%s: FilterScore = %v, want 1.0 with no filters", r.Name, r.FilterScore)
		}
	}
}

func TestDiscover_ANDAcrossDimensions(t *testing.T) {
	svc := New(fixtureCatalog(), testParams(), zap.NewNop())

	// Genre matches entries 1, 3 and 4; the studio filter alone matches the
	// same set; the rating filter excludes nothing extra. Episodes "21-30"
	// then keeps only Mid Action.
	results, err := svc.Discover(context.Background(), Filters{
		Genres:   []string{"Action"},
		Studios:  []string{"Bones"},
		Ratings:  []string{"PG-13"},
		Episodes: []string{"21-30"},
	})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(results) != 1 || results[0].Name != "Mid Action" {
		t.Fatalf("expected only Mid Action, got %+v", results)
	}
}

func TestDiscover_EpisodeBucketScoring(t *testing.T) {
	tests := []struct {
		episodes float64
		bucket   string
		want     float64
	}{
		{12, "11-20", 1 - math.Abs((12-11)/9.0-0.5)*2},
		{26, "21-30", 1 - math.Abs((26-21)/9.0-0.5)*2},
		{15.5, "11-20", 1.0}, // bucket midpoint is a perfect match
	}

	for _, tt := range tests {
		a := domain.Anime{Episodes: domain.NumberOf(tt.episodes)}
		got := episodeMatch(a, []string{tt.bucket})
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("episodeMatch(%v, %q) = %v, want %v", tt.episodes, tt.bucket, got, tt.want)
		}
	}
}

func TestDiscover_UnparsableEpisodesExcluded(t *testing.T) {
	a := domain.Anime{Episodes: domain.NumberOfString("Unknown")}
	if got := episodeMatch(a, []string{"1-10"}); got != 0 {
		t.Errorf("episodeMatch = %v, want 0 for unparsable count", got)
	}
}

func TestDiscover_UnknownBucketIgnored(t *testing.T) {
	a := domain.Anime{Episodes: domain.NumberOf(5)}
	if got := episodeMatch(a, []string{"5000-9000"}); got != 0 {
		t.Errorf("episodeMatch = %v, want 0 for unknown bucket", got)
	}
}

func TestDiscover_PartialGenreMatchScoresFractionally(t *testing.T) {
	svc := New(fixtureCatalog(), testParams(), zap.NewNop())

	results, err := svc.Discover(context.Background(), Filters{
		Genres: []string{"Action", "Comedy"},
	})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	// Short Action matches both selected genres, the rest match one of two.
	if results[0].Name != "Short Action" {
		t.Fatalf("results[0] = %q, want Short Action", results[0].Name)
	}
	if results[0].FilterScore != 1.0 {
		t.Errorf("full match FilterScore = %v, want 1.0", results[0].FilterScore)
	}
	for _, r := range results[1:] {
		want := (0.5 + 3) / 4 // half genre match, three unfiltered dimensions
		if math.Abs(r.FilterScore-want) > 1e-9 {
			t.Errorf("%s: FilterScore = %v, want %v", r.Name, r.FilterScore, want)
		}
	}
}

func TestDiscover_RatingExactMatch(t *testing.T) {
	svc := New(fixtureCatalog(), testParams(), zap.NewNop())

	results, err := svc.Discover(context.Background(), Filters{Ratings: []string{"R"}})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(results) != 1 || results[0].Name != "Long Drama" {
		t.Fatalf("expected only Long Drama, got %+v", results)
	}
}

func TestDiscover_DescriptionReRanks(t *testing.T) {
	svc := New(fixtureCatalog(), testParams(), zap.NewNop())

	results, err := svc.Discover(context.Background(), Filters{
		Description: "a wandering swordsman fighting bandits in the countryside",
	})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(results) < 2 {
		t.Fatalf("expected multiple results, got %d", len(results))
	}
	if results[0].Name != "Short Action" {
		t.Errorf("results[0] = %q, want Short Action", results[0].Name)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Similarity > results[i-1].Similarity {
			t.Errorf("results not ordered by similarity at %d", i)
		}
	}
}

func TestDiscover_DescriptionFailureFallsBackToFilters(t *testing.T) {
	params := testParams()
	params.Vectorizer.MinDF = 50 // empty vocabulary

	svc := New(fixtureCatalog(), params, zap.NewNop())

	results, err := svc.Discover(context.Background(), Filters{
		Genres:      []string{"Action", "Comedy"},
		Description: "anything at all",
	})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected filter-ordered fallback results")
	}
	if results[0].Name != "Short Action" {
		t.Errorf("results[0] = %q, want the best filter score first", results[0].Name)
	}
	for _, r := range results {
		if r.Similarity != 0 {
			t.Errorf("%s: Similarity = %v, want 0 on fallback", r.Name, r.Similarity)
		}
	}
}

func TestDiscover_LimitTruncates(t *testing.T) {
	svc := New(fixtureCatalog(), testParams(), zap.NewNop())

	results, err := svc.Discover(context.Background(), Filters{Limit: 2})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("len = %d, want 2", len(results))
	}
}

func TestDiscover_NoMatchesIsEmptyNotNil(t *testing.T) {
	svc := New(fixtureCatalog(), testParams(), zap.NewNop())

	results, err := svc.Discover(context.Background(), Filters{Genres: []string{"Horror"}})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if results == nil {
		t.Fatal("result must not be nil")
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %+v", results)
	}
}
