package chunking

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// StrategyType selects which chunking strategy a pipeline runs. The set is
// closed; NewStrategy rejects anything else.
type StrategyType string

const (
	// StrategyHeaderBased splits purely at section boundaries.
	StrategyHeaderBased StrategyType = "HEADER_BASED"
	// StrategyRecursive ignores structure and applies size-bounded windows.
	StrategyRecursive StrategyType = "RECURSIVE"
	// StrategyHybrid splits at section boundaries, then size-bounds any
	// section that is still too large. This is the default.
	StrategyHybrid StrategyType = "HYBRID"
)

const (
	// DefaultMaxChunkSize is the maximum chunk length in characters.
	DefaultMaxChunkSize = 1000

	// DefaultChunkOverlap is how many characters consecutive sub-chunks
	// share when a section has to be split.
	DefaultChunkOverlap = 200
)

var (
	// ErrInvalidConfiguration is returned when configuration values are out
	// of range (sizes, overlap).
	ErrInvalidConfiguration = errors.New("invalid chunking configuration")

	// ErrUnsupportedStrategy is returned for a strategy name outside the
	// known set.
	ErrUnsupportedStrategy = errors.New("unsupported chunking strategy")
)

// Configuration holds the tunable parameters of a chunking run. Zero value
// is not usable; start from DefaultConfiguration or NewConfiguration.
type Configuration struct {
	Strategy       StrategyType `json:"strategy"`
	MaxChunkSize   int          `json:"max_chunk_size"`
	ChunkOverlap   int          `json:"chunk_overlap"`
	PreserveTables bool         `json:"preserve_tables"`
	IncludeHeaders bool         `json:"include_headers"`
}

// DefaultConfiguration returns the settings used when a caller supplies
// nothing: hybrid strategy, 1000-character chunks with 200 overlap, tables
// preserved, headers included.
func DefaultConfiguration() Configuration {
	return Configuration{
		Strategy:       StrategyHybrid,
		MaxChunkSize:   DefaultMaxChunkSize,
		ChunkOverlap:   DefaultChunkOverlap,
		PreserveTables: true,
		IncludeHeaders: true,
	}
}

// NewConfiguration builds a validated configuration. Out-of-range sizes are
// rejected here so strategies never see them.
func NewConfiguration(strategy StrategyType, maxChunkSize, chunkOverlap int, preserveTables, includeHeaders bool) (Configuration, error) {
	cfg := Configuration{
		Strategy:       strategy,
		MaxChunkSize:   maxChunkSize,
		ChunkOverlap:   chunkOverlap,
		PreserveTables: preserveTables,
		IncludeHeaders: includeHeaders,
	}
	if err := cfg.Validate(); err != nil {
		return Configuration{}, err
	}
	return cfg, nil
}

// Validate checks the numeric constraints: positive max size, non-negative
// overlap, and overlap strictly smaller than max size. Strategy membership
// is checked by NewStrategy, not here.
func (c Configuration) Validate() error {
	if c.MaxChunkSize <= 0 {
		return fmt.Errorf("%w: max_chunk_size must be positive, got %d", ErrInvalidConfiguration, c.MaxChunkSize)
	}
	if c.ChunkOverlap < 0 {
		return fmt.Errorf("%w: chunk_overlap must not be negative, got %d", ErrInvalidConfiguration, c.ChunkOverlap)
	}
	if c.ChunkOverlap >= c.MaxChunkSize {
		return fmt.Errorf("%w: chunk_overlap %d must be smaller than max_chunk_size %d", ErrInvalidConfiguration, c.ChunkOverlap, c.MaxChunkSize)
	}
	return nil
}

// ParseStrategy maps a user-supplied name onto a StrategyType. Matching is
// case-insensitive and tolerates "-" or " " in place of "_", so "header-based"
// and "Header Based" both resolve to HEADER_BASED.
func ParseStrategy(name string) (StrategyType, error) {
	normalized := strings.ToUpper(strings.TrimSpace(name))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	switch StrategyType(normalized) {
	case StrategyHeaderBased:
		return StrategyHeaderBased, nil
	case StrategyRecursive:
		return StrategyRecursive, nil
	case StrategyHybrid:
		return StrategyHybrid, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedStrategy, name)
}

// LoadConfiguration parses a JSON configuration document. Absent fields keep
// their defaults; present fields are validated the same way NewConfiguration
// validates them.
func LoadConfiguration(data []byte) (Configuration, error) {
	cfg := DefaultConfiguration()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Configuration{}, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	if cfg.Strategy != "" {
		parsed, err := ParseStrategy(string(cfg.Strategy))
		if err != nil {
			return Configuration{}, err
		}
		cfg.Strategy = parsed
	}
	if err := cfg.Validate(); err != nil {
		return Configuration{}, err
	}
	return cfg, nil
}
