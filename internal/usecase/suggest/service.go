package suggest

import (
	"context"
	"strings"
)

// Catalog provides the title list for autocomplete.
type Catalog interface {
	Names() []string
}

// Service answers autocomplete queries with case-insensitive prefix matches
// against catalog titles, in catalog order.
type Service struct {
	catalog Catalog
	limit   int
}

// New creates a suggestion service. limit caps the number of results;
// 0 means unlimited.
func New(catalog Catalog, limit int) *Service {
	return &Service{catalog: catalog, limit: limit}
}

// Suggest returns titles starting with the query. An empty query yields no
// suggestions. The result is never nil.
func (s *Service) Suggest(_ context.Context, query string) []string {
	matches := []string{}
	if query == "" {
		return matches
	}

	prefix := strings.ToLower(query)
	for _, name := range s.catalog.Names() {
		if strings.HasPrefix(strings.ToLower(name), prefix) {
			matches = append(matches, name)
			if s.limit > 0 && len(matches) >= s.limit {
				break
			}
		}
	}
	return matches
}
