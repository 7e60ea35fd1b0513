package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/otakulab/anirec/internal/domain"
)

// Dataset file names. The loader reads each one from the data dir, optionally
// fetching it from a configured source URL first.
const (
	FileAnimeData     = "final_anime_data.json"
	FileAnimeToIndex  = "anime_to_index.json"
	FileIndexToID     = "index_to_anime_id.json"
	FileAnimeReviewer = "anime_to_reviewer.json"
	FileReviewerAnime = "reviewer_to_anime.json"
)

// Loader reads the five dataset files into a Catalog.
type Loader struct {
	dataDir    string
	download   bool
	sourceURLs map[string]string
	client     *http.Client
	logger     *zap.Logger
}

// NewLoader creates a Loader. sourceURLs maps dataset file names to HTTP
// sources and may be nil when download is disabled.
func NewLoader(dataDir string, download bool, sourceURLs map[string]string, logger *zap.Logger) *Loader {
	return &Loader{
		dataDir:    dataDir,
		download:   download,
		sourceURLs: sourceURLs,
		client:     &http.Client{Timeout: 2 * time.Minute},
		logger:     logger,
	}
}

// Load reads and indexes the dataset.
func (l *Loader) Load(ctx context.Context) (*Catalog, error) {
	var anime []domain.Anime
	if err := l.loadJSON(ctx, FileAnimeData, &anime); err != nil {
		return nil, err
	}
	if len(anime) == 0 {
		return nil, fmt.Errorf("%s: %w", FileAnimeData, domain.ErrCatalogNotLoaded)
	}

	var nameToIndex map[string]int
	if err := l.loadJSON(ctx, FileAnimeToIndex, &nameToIndex); err != nil {
		return nil, err
	}

	var rawIndexToID map[string]int
	if err := l.loadJSON(ctx, FileIndexToID, &rawIndexToID); err != nil {
		return nil, err
	}

	var rawAnimeToRev map[string][]int
	if err := l.loadJSON(ctx, FileAnimeReviewer, &rawAnimeToRev); err != nil {
		return nil, err
	}

	var rawRevToAnime map[string][]int
	if err := l.loadJSON(ctx, FileReviewerAnime, &rawRevToAnime); err != nil {
		return nil, err
	}

	indexToID, err := intKeys(rawIndexToID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", FileIndexToID, err)
	}
	animeToRev, err := intKeys(rawAnimeToRev)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", FileAnimeReviewer, err)
	}
	revToAnime, err := intKeys(rawRevToAnime)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", FileReviewerAnime, err)
	}

	names := make([]string, len(anime))
	for i, a := range anime {
		names[i] = a.Name
	}

	l.logger.Info("Catalog loaded",
		zap.Int("records", len(anime)),
		zap.Int("indexed_titles", len(nameToIndex)),
		zap.Int("reviewed_anime", len(animeToRev)),
		zap.Int("reviewers", len(revToAnime)),
	)

	return &Catalog{
		anime:       anime,
		names:       names,
		nameToIndex: nameToIndex,
		indexToID:   indexToID,
		animeToRev:  animeToRev,
		revToAnime:  revToAnime,
	}, nil
}

// loadJSON reads a dataset file from the data dir, downloading it first when
// it is missing and a source URL is configured.
func (l *Loader) loadJSON(ctx context.Context, name string, out any) error {
	path := filepath.Join(l.dataDir, name)

	if _, err := os.Stat(path); os.IsNotExist(err) && l.download {
		if err := l.fetch(ctx, name, path); err != nil {
			return fmt.Errorf("download %s: %w", name, err)
		}
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := validatePayload(data); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

// fetch downloads one dataset file to the data dir.
func (l *Loader) fetch(ctx context.Context, name, dest string) error {
	url, ok := l.sourceURLs[name]
	if !ok {
		return fmt.Errorf("no source URL configured")
	}

	l.logger.Info("Downloading dataset file", zap.String("file", name), zap.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	// A failed file-host download often returns an HTML error or interstitial
	// page with a 200 status. Reject it before it poisons the data dir.
	if err := validatePayload(body); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(dest, body, 0o644); err != nil {
		return err
	}

	l.logger.Info("Dataset file saved", zap.String("file", name), zap.Int("bytes", len(body)))
	return nil
}

// validatePayload rejects payloads that are HTML rather than JSON.
func validatePayload(data []byte) error {
	head := strings.ToLower(string(data[:min(len(data), 512)]))
	if strings.Contains(head, "<html") || strings.Contains(head, "<!doctype html") {
		return fmt.Errorf("payload is HTML, not JSON")
	}
	if !json.Valid(data) {
		return fmt.Errorf("payload is not valid JSON")
	}
	return nil
}

func intKeys[V any](in map[string]V) (map[int]V, error) {
	out := make(map[int]V, len(in))
	for k, v := range in {
		n, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("non-numeric key %q", k)
		}
		out[n] = v
	}
	return out, nil
}
