package catalog

import (
	"github.com/otakulab/anirec/internal/domain"
)

// Catalog is the in-memory anime dataset: the ordered record list plus the
// index maps and the reviewer graph. Immutable after Load.
type Catalog struct {
	anime       []domain.Anime
	names       []string
	nameToIndex map[string]int
	indexToID   map[int]int
	animeToRev  map[int][]int
	revToAnime  map[int][]int
}

// Len returns the number of catalog records.
func (c *Catalog) Len() int { return len(c.anime) }

// Names returns all titles in catalog order. The returned slice is shared;
// callers must not mutate it.
func (c *Catalog) Names() []string { return c.names }

// All returns all records in catalog order. The returned slice is shared;
// callers must not mutate it.
func (c *Catalog) All() []domain.Anime { return c.anime }

// ByTitle looks up a record and its row index by exact title.
func (c *Catalog) ByTitle(title string) (domain.Anime, int, bool) {
	idx, ok := c.nameToIndex[title]
	if !ok || idx < 0 || idx >= len(c.anime) {
		return domain.Anime{}, 0, false
	}
	return c.anime[idx], idx, true
}

// IDForIndex maps a row index to the anime id.
func (c *Catalog) IDForIndex(idx int) (int, bool) {
	id, ok := c.indexToID[idx]
	return id, ok
}

// ReviewersFor returns the reviewers who scored the given anime 9 or higher.
func (c *Catalog) ReviewersFor(animeID int) []int {
	return c.animeToRev[animeID]
}

// AnimeForReviewer returns the anime ids the given reviewer scored 9 or higher.
func (c *Catalog) AnimeForReviewer(reviewerID int) []int {
	return c.revToAnime[reviewerID]
}
