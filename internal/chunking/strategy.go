package chunking

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Strategy turns one document into chunks. Implementations are total: they
// degrade to GENERIC chunks on unrecognized input instead of failing, so a
// malformed abstract still gets indexed.
type Strategy interface {
	Chunk(content string, cfg Configuration, documentID, filename string) []Chunk
}

// NewStrategy resolves a StrategyType to its implementation. The strategy
// set is closed; anything else is ErrUnsupportedStrategy.
func NewStrategy(t StrategyType) (Strategy, error) {
	switch t {
	case StrategyHeaderBased:
		return headerBasedStrategy{}, nil
	case StrategyRecursive:
		return recursiveStrategy{}, nil
	case StrategyHybrid:
		return hybridStrategy{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedStrategy, t)
}

// ChunkDocument validates cfg, resolves its strategy and runs it over one
// document. This is the entry point the tools and the indexer use.
func ChunkDocument(content string, cfg Configuration, documentID, filename string) ([]Chunk, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	strategy, err := NewStrategy(cfg.Strategy)
	if err != nil {
		return nil, err
	}
	return strategy.Chunk(content, cfg, documentID, filename), nil
}

// chunkBuilder accumulates chunks for one document, numbering them in
// emission order. Document-level metadata is extracted once at construction
// and reused for every chunk.
type chunkBuilder struct {
	ctx    DocumentContext
	chunks []Chunk
}

func newBuilder(content, documentID, filename string) *chunkBuilder {
	return &chunkBuilder{ctx: NewDocumentContext(documentID, filename, content)}
}

func (b *chunkBuilder) add(content string, chunkType ChunkType, extra map[string]any) {
	content = strings.TrimSpace(content)
	if content == "" {
		return
	}
	b.chunks = append(b.chunks, newChunk(b.ctx, content, chunkType, len(b.chunks), extra))
}

// sectionText assembles the chunk content for a span, prefixing the header
// line when the configuration asks for it.
func sectionText(sec Section, includeHeaders bool) string {
	if !includeHeaders || sec.Header == "" {
		return sec.Content
	}
	if sec.Content == "" {
		return sec.Header
	}
	return sec.Header + "\n\n" + sec.Content
}

// sectionExtra carries the human-readable section name into chunk metadata.
func sectionExtra(sec Section) map[string]any {
	if sec.Header == "" {
		return nil
	}
	return map[string]any{"section": headerText(sec.Header)}
}

func headerText(header string) string {
	return strings.TrimSpace(strings.TrimLeft(header, "# "))
}

// headerBasedStrategy emits exactly one chunk per detected span, whatever
// its size.
type headerBasedStrategy struct{}

func (headerBasedStrategy) Chunk(content string, cfg Configuration, documentID, filename string) []Chunk {
	b := newBuilder(content, documentID, filename)
	for _, sec := range DetectSections(content, cfg.PreserveTables) {
		b.add(sectionText(sec, cfg.IncludeHeaders), sec.Label, sectionExtra(sec))
	}
	return b.chunks
}

// recursiveStrategy ignores document structure entirely and applies
// size-bounded windows over the raw text. Every chunk it emits is GENERIC.
type recursiveStrategy struct{}

func (recursiveStrategy) Chunk(content string, cfg Configuration, documentID, filename string) []Chunk {
	b := newBuilder(content, documentID, filename)
	for _, piece := range Split(content, cfg.MaxChunkSize, cfg.ChunkOverlap) {
		b.add(piece, TypeGeneric, nil)
	}
	return b.chunks
}

// hybridStrategy splits at span boundaries first, then size-bounds any span
// still wider than the configured maximum, excised tables included. Only the
// single-oversized-token escape in Split may exceed the bound. Sub-chunks of
// one span retain its label and carry a sub_chunk_index so callers can
// reassemble the span in order.
type hybridStrategy struct{}

func (hybridStrategy) Chunk(content string, cfg Configuration, documentID, filename string) []Chunk {
	b := newBuilder(content, documentID, filename)
	for _, sec := range DetectSections(content, cfg.PreserveTables) {
		text := sectionText(sec, cfg.IncludeHeaders)
		if utf8.RuneCountInString(text) <= cfg.MaxChunkSize {
			b.add(text, sec.Label, sectionExtra(sec))
			continue
		}
		pieces := Split(text, cfg.MaxChunkSize, cfg.ChunkOverlap)
		if len(pieces) == 1 {
			b.add(pieces[0], sec.Label, sectionExtra(sec))
			continue
		}
		for i, piece := range pieces {
			extra := map[string]any{"sub_chunk_index": i}
			if sec.Header != "" {
				extra["section"] = headerText(sec.Header)
			}
			b.add(piece, sec.Label, extra)
		}
	}
	return b.chunks
}
