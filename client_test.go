package anirec

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	catalogrepo "github.com/otakulab/anirec/internal/repository/catalog"
)

func writeFixtures(t *testing.T, dir string) {
	t.Helper()
	files := map[string]string{
		catalogrepo.FileAnimeData: `[
			{"anime_id": 1, "Name": "Naruto", "Score": 7.9, "Genres": "Action, Adventure",
			 "Episodes": 220, "Studios": "Pierrot", "Rating": "PG-13",
			 "Synopsis": "A young ninja trains to protect his village."},
			{"anime_id": 2, "Name": "Naruto Shippuden", "Score": 8.2, "Genres": "Action, Adventure",
			 "Episodes": 500, "Studios": "Pierrot", "Rating": "PG-13",
			 "Synopsis": "The ninja returns to his village as war looms."},
			{"anime_id": 3, "Name": "Monster", "Score": "Unknown", "Genres": "Drama, Mystery",
			 "Episodes": 74, "Studios": "Madhouse", "Rating": "R",
			 "Synopsis": "A surgeon hunts the patient he once saved."}
		]`,
		catalogrepo.FileAnimeToIndex:  `{"Naruto": 0, "Naruto Shippuden": 1, "Monster": 2}`,
		catalogrepo.FileIndexToID:     `{"0": 1, "1": 2, "2": 3}`,
		catalogrepo.FileAnimeReviewer: `{"1": [100], "2": [100]}`,
		catalogrepo.FileReviewerAnime: `{"100": [1, 2]}`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write fixture %s: %v", name, err)
		}
	}
}

func newTestClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	dir := t.TempDir()
	writeFixtures(t, dir)

	client, err := New(context.Background(), append([]Option{WithDataDir(dir)}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(client.Close)
	return client
}

func TestNew_MissingDataDir(t *testing.T) {
	_, err := New(context.Background(), WithDataDir(filepath.Join(t.TempDir(), "nope")))
	if err == nil {
		t.Fatal("expected error for missing catalog files")
	}
}

func TestClient_Suggest(t *testing.T) {
	client := newTestClient(t)

	titles := client.Suggest(context.Background(), "nar")
	if len(titles) != 2 || titles[0] != "Naruto" || titles[1] != "Naruto Shippuden" {
		t.Errorf("Suggest = %v", titles)
	}

	if titles := client.Suggest(context.Background(), ""); titles == nil {
		t.Error("Suggest must not return nil")
	}
}

func TestClient_SuggestLimit(t *testing.T) {
	client := newTestClient(t, WithSuggestLimit(1))

	titles := client.Suggest(context.Background(), "nar")
	if len(titles) != 1 {
		t.Errorf("Suggest = %v, want a single title", titles)
	}
}

func TestClient_Recommend(t *testing.T) {
	client := newTestClient(t)

	recs, err := client.Recommend(context.Background(), "Naruto")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(recs) == 0 {
		t.Fatal("expected recommendations")
	}
	for _, r := range recs {
		if r.Name == "Naruto" {
			t.Error("query title leaked into recommendations")
		}
	}
	if recs[0].Name != "Naruto Shippuden" {
		t.Errorf("recs[0] = %q", recs[0].Name)
	}
	if len(recs[0].Genres) != 2 || recs[0].Genres[0] != "Action" {
		t.Errorf("Genres = %v", recs[0].Genres)
	}
	if recs[0].Score != 8.2 {
		t.Errorf("Score = %v", recs[0].Score)
	}
}

func TestClient_RecommendUnknownTitle(t *testing.T) {
	client := newTestClient(t)

	_, err := client.Recommend(context.Background(), "Bleach")
	if !errors.Is(err, ErrTitleNotFound) {
		t.Errorf("expected ErrTitleNotFound, got %v", err)
	}
}

func TestClient_Discover(t *testing.T) {
	client := newTestClient(t)

	results, err := client.Discover(context.Background(), DiscoverFilters{
		Ratings: []string{"R"},
	})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(results) != 1 || results[0].Name != "Monster" {
		t.Fatalf("Discover = %+v", results)
	}
	// unknown score maps to zero in the SDK view
	if results[0].Score != 0 {
		t.Errorf("Score = %v, want 0 for unknown", results[0].Score)
	}
	if results[0].FilterScore != 1.0 {
		t.Errorf("FilterScore = %v", results[0].FilterScore)
	}
}

func TestClient_Health(t *testing.T) {
	client := newTestClient(t)

	report := client.Health(context.Background())
	if report.Status != "ok" {
		t.Errorf("Status = %q", report.Status)
	}
	if report.Checks["catalog"] != "ok" || report.Checks["cache"] != "ok" {
		t.Errorf("Checks = %v", report.Checks)
	}
}
