package tools

import (
	"fmt"
	"sync/atomic"

	"github.com/blevesearch/bleve/v2"
)

// mockIndex is an in-memory stand-in for the Index interface. It records the
// last search request so tests can assert on request shaping, and can serve
// a canned result for tests that exercise hit-to-chunk conversion.
type mockIndex struct {
	id          int
	docCount    uint64
	result      *bleve.SearchResult
	lastRequest *bleve.SearchRequest
	searchError error
	closeError  error
	closed      atomic.Bool
}

// newMockIndex creates a new mock index with the given ID
func newMockIndex(id int) *mockIndex {
	return &mockIndex{
		id:       id,
		docCount: 100, // Default doc count
	}
}

func (m *mockIndex) Search(req *bleve.SearchRequest) (*bleve.SearchResult, error) {
	if m.closed.Load() {
		return nil, fmt.Errorf("index closed")
	}
	m.lastRequest = req
	if m.searchError != nil {
		return nil, m.searchError
	}
	if m.result != nil {
		return m.result, nil
	}
	// Minimal valid result (nil hits is valid)
	return &bleve.SearchResult{
		Request: req,
		Total:   m.docCount,
	}, nil
}

func (m *mockIndex) DocCount() (uint64, error) {
	if m.closed.Load() {
		return 0, fmt.Errorf("index closed")
	}
	return m.docCount, nil
}

func (m *mockIndex) Close() error {
	if m.closed.Load() {
		return fmt.Errorf("already closed")
	}
	m.closed.Store(true)
	return m.closeError
}

// IsClosed returns true if the index has been closed
func (m *mockIndex) IsClosed() bool {
	return m.closed.Load()
}
