package domain

import "errors"

var (
	// ErrTitleNotFound signals a title missing from the catalog index.
	ErrTitleNotFound = errors.New("title not found")
	// ErrCatalogNotLoaded signals that catalog data is unavailable.
	ErrCatalogNotLoaded = errors.New("catalog not loaded")
	// ErrNoVocabulary signals that vectorization produced no usable terms.
	ErrNoVocabulary = errors.New("empty vocabulary")
	// ErrTooFewDocuments signals a corpus too small to factorize.
	ErrTooFewDocuments = errors.New("too few documents")
)
