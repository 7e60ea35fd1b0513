package anirec

import "github.com/otakulab/anirec/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrTitleNotFound    = domain.ErrTitleNotFound
	ErrCatalogNotLoaded = domain.ErrCatalogNotLoaded
)
