package health

import "context"

// CatalogChecker reports whether the anime catalog is loaded.
type CatalogChecker interface {
	Len() int
}

// CachePinger checks cache backend availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}
