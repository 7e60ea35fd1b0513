package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

const fixtureAnime = `[
	{"anime_id": 1, "Name": "Naruto", "Genres": "Action, Adventure", "Synopsis": "A young ninja."},
	{"anime_id": 2, "Name": "Naruto Shippuden", "Genres": "Action, Adventure", "Synopsis": "The ninja returns."},
	{"anime_id": 3, "Name": "Monster", "Genres": "Drama, Mystery", "Synopsis": "A surgeon's choice."}
]`

func writeFixtures(t *testing.T, dir string) {
	t.Helper()
	files := map[string]string{
		FileAnimeData:     fixtureAnime,
		FileAnimeToIndex:  `{"Naruto": 0, "Naruto Shippuden": 1, "Monster": 2}`,
		FileIndexToID:     `{"0": 1, "1": 2, "2": 3}`,
		FileAnimeReviewer: `{"1": [100, 101], "2": [101]}`,
		FileReviewerAnime: `{"100": [1, 2], "101": [1, 2, 3]}`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write fixture %s: %v", name, err)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir)

	loader := NewLoader(dir, false, nil, zap.NewNop())
	cat, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cat.Len() != 3 {
		t.Fatalf("Len = %d, want 3", cat.Len())
	}

	names := cat.Names()
	if names[0] != "Naruto" || names[2] != "Monster" {
		t.Errorf("unexpected name order: %v", names)
	}

	a, idx, ok := cat.ByTitle("Naruto Shippuden")
	if !ok {
		t.Fatal("ByTitle miss for known title")
	}
	if idx != 1 || a.ID != 2 {
		t.Errorf("ByTitle = idx %d id %d, want idx 1 id 2", idx, a.ID)
	}

	if _, _, ok := cat.ByTitle("Bleach"); ok {
		t.Error("ByTitle hit for unknown title")
	}

	if id, ok := cat.IDForIndex(2); !ok || id != 3 {
		t.Errorf("IDForIndex(2) = %d %v, want 3 true", id, ok)
	}

	if revs := cat.ReviewersFor(1); len(revs) != 2 {
		t.Errorf("ReviewersFor(1) = %v, want 2 reviewers", revs)
	}
	if anime := cat.AnimeForReviewer(101); len(anime) != 3 {
		t.Errorf("AnimeForReviewer(101) = %v, want 3 ids", anime)
	}
	if revs := cat.ReviewersFor(99); revs != nil {
		t.Errorf("ReviewersFor(99) = %v, want nil", revs)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	dir := t.TempDir()
	// only the catalog file, no index maps
	if err := os.WriteFile(filepath.Join(dir, FileAnimeData), []byte(fixtureAnime), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader(dir, false, nil, zap.NewNop())
	if _, err := loader.Load(context.Background()); err == nil {
		t.Fatal("expected error for missing index files")
	}
}

func TestLoad_Download(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir)
	// remove one file so the loader has to fetch it
	if err := os.Remove(filepath.Join(dir, FileAnimeToIndex)); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Naruto": 0, "Naruto Shippuden": 1, "Monster": 2}`))
	}))
	defer srv.Close()

	urls := map[string]string{FileAnimeToIndex: srv.URL}
	loader := NewLoader(dir, true, urls, zap.NewNop())

	cat, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load with download: %v", err)
	}
	if _, _, ok := cat.ByTitle("Monster"); !ok {
		t.Error("downloaded index not applied")
	}

	// file must have been persisted for the next start
	if _, err := os.Stat(filepath.Join(dir, FileAnimeToIndex)); err != nil {
		t.Errorf("downloaded file not persisted: %v", err)
	}
}

func TestLoad_RejectsHTMLPayload(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir)
	if err := os.Remove(filepath.Join(dir, FileAnimeToIndex)); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<!DOCTYPE html><html><body>Virus scan warning</body></html>"))
	}))
	defer srv.Close()

	urls := map[string]string{FileAnimeToIndex: srv.URL}
	loader := NewLoader(dir, true, urls, zap.NewNop())

	if _, err := loader.Load(context.Background()); err == nil {
		t.Fatal("expected error for HTML payload")
	}
	// the poisoned payload must not have been written
	if _, err := os.Stat(filepath.Join(dir, FileAnimeToIndex)); !os.IsNotExist(err) {
		t.Error("HTML payload was persisted to the data dir")
	}
}
