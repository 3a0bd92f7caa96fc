package retrieval

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	adapter, err := NewAdapter(&fetcherBackend{})
	require.NoError(t, err)
	return adapter
}

func TestRegistryBindLookupRemove(t *testing.T) {
	registry := NewRegistry()
	adapter := newTestAdapter(t)

	_, found := registry.Lookup("bio.txt")
	assert.False(t, found)

	registry.Bind("bio.txt", adapter)
	bound, found := registry.Lookup("bio.txt")
	require.True(t, found)
	assert.Same(t, adapter, bound)
	assert.Equal(t, 1, registry.Len())

	registry.Remove("bio.txt")
	_, found = registry.Lookup("bio.txt")
	assert.False(t, found)
	assert.Equal(t, 0, registry.Len())
}

func TestRegistryDocumentsAreSorted(t *testing.T) {
	registry := NewRegistry()
	for _, name := range []string{"zoo.pdf", "bio.txt", "manual.html"} {
		registry.Bind(name, newTestAdapter(t))
	}

	assert.Equal(t, []string{"bio.txt", "manual.html", "zoo.pdf"}, registry.Documents())
}

func TestRegistryIsSafeForConcurrentUse(t *testing.T) {
	registry := NewRegistry()
	adapter := newTestAdapter(t)
	registry.Bind("shared.txt", adapter)

	var wg sync.WaitGroup
	for worker := 0; worker < 8; worker++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				if worker%2 == 0 {
					registry.Bind("shared.txt", adapter)
					continue
				}
				if bound, found := registry.Lookup("shared.txt"); found {
					_, _ = bound.Fetch(context.Background(), "q")
				}
			}
		}(worker)
	}
	wg.Wait()
}
