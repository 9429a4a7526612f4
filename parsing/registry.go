package parsing

import (
	"context"
	"slices"
	"sync"

	"github.com/parkho-ai/contentengine/core"
)

// Parser extracts text from one kind of content source.
// Implementations must be safe for concurrent use.
type Parser interface {
	// ContentType is the content type this parser handles.
	ContentType() core.ContentType

	// Parse extracts the content of source. A returned error marks the
	// source as failed; the coordinator fills in SourceIndex.
	Parse(ctx context.Context, source core.ContentSource) (core.ParseResult, error)
}

// Registry maps content types to parsers.
type Registry struct {
	mu      sync.RWMutex
	parsers map[core.ContentType]Parser
}

// NewRegistry creates a registry holding parsers. Later parsers replace
// earlier ones for the same content type.
func NewRegistry(parsers ...Parser) *Registry {
	r := &Registry{parsers: make(map[core.ContentType]Parser, len(parsers))}
	for _, p := range parsers {
		_ = r.Register(p)
	}
	return r
}

// Register adds or replaces the parser for p's content type.
func (r *Registry) Register(p Parser) error {
	if p == nil {
		return ErrNilParser
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parsers[p.ContentType()] = p
	return nil
}

// Resolve returns the parser for t.
func (r *Registry) Resolve(t core.ContentType) (Parser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.parsers[t]
	return p, ok
}

// Types returns the registered content types in a stable order.
func (r *Registry) Types() []core.ContentType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]core.ContentType, 0, len(r.parsers))
	for t := range r.parsers {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}
