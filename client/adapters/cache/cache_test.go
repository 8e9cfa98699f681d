package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yadro.com/comicsearch/client/core"
)

func TestNew_BadSize(t *testing.T) {
	_, err := New(0, time.Minute)
	require.Error(t, err)
}

func TestCache_GetAdd(t *testing.T) {
	c, err := New(2, 0)
	require.NoError(t, err)

	_, ok := c.Get("/search?q=a")
	assert.False(t, ok)

	c.Add("/search?q=a", core.SearchResult{Count: 1})
	c.Add("/search?q=b", core.SearchResult{Count: 2})
	c.Add("/search?q=c", core.SearchResult{Count: 3})

	_, ok = c.Get("/search?q=a")
	assert.False(t, ok, "oldest entry must be evicted")

	res, ok := c.Get("/search?q=c")
	require.True(t, ok)
	assert.Equal(t, 3, res.Count)
	assert.Equal(t, 2, c.Len())
}

func TestCache_TTL(t *testing.T) {
	c, err := New(4, time.Minute)
	require.NoError(t, err)

	now := time.Date(2022, 8, 30, 0, 0, 0, 0, time.UTC)
	c.clock = func() time.Time { return now }

	c.Add("/search?q=a", core.SearchResult{Count: 1})
	_, ok := c.Get("/search?q=a")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("/search?q=a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCache_Purge(t *testing.T) {
	c, err := New(4, 0)
	require.NoError(t, err)

	c.Add("/search?q=a", core.SearchResult{Count: 1})
	c.Purge()
	_, ok := c.Get("/search?q=a")
	assert.False(t, ok)
}
