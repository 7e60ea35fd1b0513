package discover

import "github.com/otakulab/anirec/internal/domain"

// Catalog is the dataset contract discovery reads from.
type Catalog interface {
	All() []domain.Anime
}
