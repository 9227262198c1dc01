package memory

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-response-cache/internal/models"
)

func payload(body string) models.Payload {
	return models.Payload{ContentType: "application/json", Body: []byte(body)}
}

func TestStore_PutAndGet(t *testing.T) {
	clk := clock.NewMock()
	store := NewStore(clk)

	store.Put("GET:/api/items", payload(`{"items":[1,2,3]}`))

	entry, found := store.Get("GET:/api/items")
	require.True(t, found)
	assert.Equal(t, []byte(`{"items":[1,2,3]}`), entry.Payload.Body)
	assert.Equal(t, "application/json", entry.Payload.ContentType)
	assert.Equal(t, clk.Now(), entry.StoredAt)
	assert.Equal(t, 1, store.Len())
}

func TestStore_Get_NotFound(t *testing.T) {
	store := NewStore(clock.NewMock())

	entry, found := store.Get("GET:/missing")
	assert.False(t, found)
	assert.Nil(t, entry)
}

func TestStore_Put_ReplacesEntry(t *testing.T) {
	clk := clock.NewMock()
	store := NewStore(clk)

	store.Put("GET:/a", payload(`1`))
	first, _ := store.Get("GET:/a")

	clk.Add(5 * time.Second)
	store.Put("GET:/a", payload(`2`))
	second, _ := store.Get("GET:/a")

	assert.Equal(t, []byte(`1`), first.Payload.Body, "previous entry must not be mutated")
	assert.Equal(t, []byte(`2`), second.Payload.Body)
	assert.Equal(t, 5*time.Second, second.StoredAt.Sub(first.StoredAt))
	assert.Equal(t, 1, store.Len())
}

func TestStore_PutEntry_KeepsStoredAt(t *testing.T) {
	clk := clock.NewMock()
	store := NewStore(clk)
	storedAt := clk.Now().Add(-40 * time.Second)

	store.PutEntry("GET:/a", &models.CacheEntry{Payload: payload(`1`), StoredAt: storedAt})

	entry, found := store.Get("GET:/a")
	require.True(t, found)
	assert.True(t, entry.StoredAt.Equal(storedAt))
}

func TestStore_DeleteIf(t *testing.T) {
	clk := clock.NewMock()
	store := NewStore(clk)

	store.Put("GET:/a", payload(`1`))
	old, _ := store.Get("GET:/a")
	clk.Add(time.Second)
	store.Put("GET:/a", payload(`2`))

	assert.False(t, store.DeleteIf("GET:/a", old.StoredAt), "a replaced entry must be kept")
	assert.Equal(t, 1, store.Len())

	current, _ := store.Get("GET:/a")
	assert.True(t, store.DeleteIf("GET:/a", current.StoredAt))
	assert.Equal(t, 0, store.Len())
	assert.False(t, store.DeleteIf("GET:/a", current.StoredAt))
}

func TestStore_Delete(t *testing.T) {
	store := NewStore(clock.NewMock())
	store.Put("GET:/a", payload(`1`))

	store.Delete("GET:/a")
	store.Delete("GET:/never-stored")

	_, found := store.Get("GET:/a")
	assert.False(t, found)
}

func TestStore_Invalidate(t *testing.T) {
	store := NewStore(clock.NewMock())
	store.Put("GET:/api/quizzes", payload(`[]`))
	store.Put("GET:/api/quizzes/1", payload(`{}`))
	store.Put("GET:/api/users", payload(`[]`))

	removed := store.Invalidate(func(key string) bool {
		return strings.Contains(key, "quizzes")
	})

	assert.Equal(t, 2, removed)
	_, found := store.Get("GET:/api/users")
	assert.True(t, found)
	assert.Equal(t, 1, store.Len())

	removed = store.Invalidate(func(key string) bool { return false })
	assert.Equal(t, 0, removed)
	assert.Equal(t, 1, store.Len())
}

func TestStore_Sweep(t *testing.T) {
	clk := clock.NewMock()
	store := NewStore(clk)

	store.Put("GET:/stale", payload(`1`))
	clk.Add(70 * time.Second)
	store.Put("GET:/fresh", payload(`2`))

	removed := store.Sweep(60 * time.Second)

	assert.Equal(t, 1, removed)
	_, found := store.Get("GET:/stale")
	assert.False(t, found)
	_, found = store.Get("GET:/fresh")
	assert.True(t, found)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := NewStore(clock.New())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("GET:/api/items?page=%d", i%5)
			store.Put(key, payload(`{}`))
			store.Get(key)
			store.Sweep(time.Hour)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 5, store.Len())
}
