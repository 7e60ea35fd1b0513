package recommend

import (
	"context"

	"github.com/otakulab/anirec/internal/domain"
)

// Catalog is the dataset contract the pipeline reads from.
type Catalog interface {
	All() []domain.Anime
	ByTitle(title string) (domain.Anime, int, bool)
	IDForIndex(idx int) (int, bool)
	ReviewersFor(animeID int) []int
	AnimeForReviewer(reviewerID int) []int
}

// Cache stores computed recommendation lists per title.
type Cache interface {
	Get(ctx context.Context, title string) ([]domain.Recommendation, bool)
	Put(ctx context.Context, title string, recs []domain.Recommendation)
}
