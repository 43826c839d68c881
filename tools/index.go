package tools

import "github.com/blevesearch/bleve/v2"

// Index abstracts the bleve.Index operations the search tools rely on,
// so tests can swap in a mock without touching the filesystem.
type Index interface {
	// Search executes a search request
	Search(req *bleve.SearchRequest) (*bleve.SearchResult, error)

	// DocCount returns the number of documents in the index
	DocCount() (uint64, error)

	// Close closes the index
	Close() error
}

// bleveIndex adapts a concrete bleve.Index to the Index interface.
type bleveIndex struct {
	index bleve.Index
}

func wrapIndex(index bleve.Index) Index {
	return &bleveIndex{index: index}
}

func (w *bleveIndex) Search(req *bleve.SearchRequest) (*bleve.SearchResult, error) {
	return w.index.Search(req)
}

func (w *bleveIndex) DocCount() (uint64, error) {
	return w.index.DocCount()
}

func (w *bleveIndex) Close() error {
	return w.index.Close()
}
