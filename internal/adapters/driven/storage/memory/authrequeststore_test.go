package memory

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/budget-mcp/internal/core/domain"
)

func TestAuthRequestStore_AddAndTake(t *testing.T) {
	store := NewAuthRequestStore()
	req := domain.AuthorizationRequest{State: "s1", Scope: domain.ScopeReadOnly, CreatedAt: time.Now()}

	assert.True(t, store.Add(req))
	assert.Equal(t, 1, store.Len())

	got, ok := store.Take("s1")
	require.True(t, ok)
	assert.Equal(t, "s1", got.State)
	assert.Equal(t, 0, store.Len())

	_, ok = store.Take("s1")
	assert.False(t, ok, "state is single use")
}

func TestAuthRequestStore_DuplicateStateRejected(t *testing.T) {
	store := NewAuthRequestStore()
	req := domain.AuthorizationRequest{State: "s1", CreatedAt: time.Now()}

	assert.True(t, store.Add(req))
	assert.False(t, store.Add(req))
	assert.Equal(t, 1, store.Len())
}

func TestAuthRequestStore_TakeUnknown(t *testing.T) {
	store := NewAuthRequestStore()

	got, ok := store.Take("missing")

	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestAuthRequestStore_Prune(t *testing.T) {
	store := NewAuthRequestStore()
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store.Add(domain.AuthorizationRequest{State: "old", CreatedAt: base})
	store.Add(domain.AuthorizationRequest{State: "edge", CreatedAt: base.Add(time.Minute)})
	store.Add(domain.AuthorizationRequest{State: "new", CreatedAt: base.Add(5 * time.Minute)})

	removed := store.Prune(base.Add(time.Minute))

	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, store.Len())
	_, ok := store.Take("new")
	assert.True(t, ok)
}

func TestAuthRequestStore_Clear(t *testing.T) {
	store := NewAuthRequestStore()
	store.Add(domain.AuthorizationRequest{State: "s1"})
	store.Add(domain.AuthorizationRequest{State: "s2"})

	store.Clear()

	assert.Equal(t, 0, store.Len())
}

func TestAuthRequestStore_ConcurrentTake(t *testing.T) {
	store := NewAuthRequestStore()
	store.Add(domain.AuthorizationRequest{State: "s1", CreatedAt: time.Now()})

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := store.Take("s1"); ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}
