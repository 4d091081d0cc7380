package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestNew_EmptyAddrDisablesCache(t *testing.T) {
	c := New("", "", 0)
	assert.Nil(t, c)
	assert.False(t, c.Enabled())

	ctx := context.Background()
	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, c.Delete(ctx, "k"))
	assert.NoError(t, c.Incr(ctx, "n"))
	assert.Zero(t, c.GetInt64(ctx, "n"))
	assert.NoError(t, c.Ping(ctx))
	assert.NoError(t, c.Close())

	var dst []string
	assert.False(t, c.GetJSON(ctx, "k", &dst))
}

func TestClient_UnreachableServerBehavesLikeMiss(t *testing.T) {
	// nothing listens on port 1
	c := NewFromRedis(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	}))
	defer c.Close()

	ctx := context.Background()
	assert.True(t, c.Enabled())
	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	got, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, c.Incr(ctx, "n"))
	assert.Zero(t, c.GetInt64(ctx, "n"))
	assert.Error(t, c.Ping(ctx))
}
