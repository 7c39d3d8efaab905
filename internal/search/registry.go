package search

import (
	"sort"
	"sync"

	"github.com/helixir/paper-search-service/internal/domain"
)

// Registry resolves a bibliographic source to its search engine. Sources
// without a registered engine resolve to an UnsupportedSourceError; callers
// must surface that error, never fall back to a different source.
type Registry struct {
	mu      sync.RWMutex
	engines map[domain.SourceType]Engine
}

// NewRegistry creates an empty engine registry.
func NewRegistry() *Registry {
	return &Registry{
		engines: make(map[domain.SourceType]Engine),
	}
}

// Register adds an engine, replacing any previous engine for the same source.
func (r *Registry) Register(engine Engine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engines[engine.Source()] = engine
}

// Get returns the engine for the given source, or an UnsupportedSourceError
// when none is registered.
func (r *Registry) Get(source domain.SourceType) (Engine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	engine, ok := r.engines[source]
	if !ok {
		return nil, domain.NewUnsupportedSourceError(source)
	}
	return engine, nil
}

// Sources returns the registered source types in lexical order.
func (r *Registry) Sources() []domain.SourceType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sources := make([]domain.SourceType, 0, len(r.engines))
	for source := range r.engines {
		sources = append(sources, source)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })
	return sources
}
