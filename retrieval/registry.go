package retrieval

import (
	"sort"
	"sync"
)

// Registry maps document names to their bound adapters. It replaces
// session-global retriever state: the application owns a Registry and
// passes it by handle into the coordinator. Reads vastly outnumber writes,
// so it is guarded by an RWMutex; adapters themselves are stateless and
// shared freely across concurrent pipelines.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]*Adapter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]*Adapter)}
}

// Bind registers (or replaces) the adapter for a document name.
func (registry *Registry) Bind(document string, adapter *Adapter) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.adapters[document] = adapter
}

// Lookup returns the adapter bound to a document name.
func (registry *Registry) Lookup(document string) (*Adapter, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	adapter, found := registry.adapters[document]
	return adapter, found
}

// Remove unbinds a document.
func (registry *Registry) Remove(document string) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	delete(registry.adapters, document)
}

// Documents returns the bound document names in sorted order.
func (registry *Registry) Documents() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	documents := make([]string, 0, len(registry.adapters))
	for document := range registry.adapters {
		documents = append(documents, document)
	}
	sort.Strings(documents)
	return documents
}

// Len reports the number of bound documents.
func (registry *Registry) Len() int {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	return len(registry.adapters)
}
