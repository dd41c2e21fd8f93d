// Package cache provides pluggable storage for conversion results.
//
// # Architecture
//
// Conversions are pure functions of the input document and the conversion
// options, so results are cached under a content-addressed key derived from
// both. Three backends implement the same interface:
//
//   - FileCache: directory-backed, used by the CLI
//   - RedisCache: shared backend for the HTTP server
//   - NullCache: disables caching entirely
//
// Keys are produced by a Keyer so that callers never concatenate key strings
// by hand.
package cache

import (
	"context"
	"time"
)

// TTLConversion bounds how long cached conversion results live. Results
// never go stale for a given input, so the TTL only bounds storage growth.
const TTLConversion = 24 * time.Hour

// Cache stores opaque byte payloads under string keys.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present; a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// ConversionKeyOpts captures every option that affects conversion output.
// Two conversions with equal inputs and equal opts produce equal results,
// so all of this participates in the cache key.
type ConversionKeyOpts struct {
	Direction          string            `json:"direction"`
	Strict             bool              `json:"strict"`
	DropContainerEdges bool              `json:"drop_container_edges"`
	ShapeOverrides     map[string]string `json:"shape_overrides,omitempty"`
	ReservedWords      []string          `json:"reserved_words,omitempty"`
	Page               int               `json:"page"`
	AllPages           bool              `json:"all_pages"`
}

// Keyer generates cache keys.
type Keyer interface {
	// ConversionKey generates a key for a converted document. input is the
	// raw source bytes, before any decompression.
	ConversionKey(input []byte, opts ConversionKeyOpts) string
}

// DefaultKeyer is the standard key scheme.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// ConversionKey generates a key of the form "convert:<sha256>".
func (k *DefaultKeyer) ConversionKey(input []byte, opts ConversionKeyOpts) string {
	return hashKey("convert", Hash(input), opts)
}
