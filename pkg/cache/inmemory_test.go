package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type pendingState struct {
	Stage string
}

func TestGetAs(t *testing.T) {
	c := NewCache(time.Minute, time.Minute)
	c.Set("state:1", &pendingState{Stage: "awaiting_pin"}, time.Minute)
	c.Set("count:1", 3, time.Minute)

	state, ok := GetAs[*pendingState](c, "state:1")
	assert.True(t, ok)
	assert.Equal(t, "awaiting_pin", state.Stage)

	_, ok = GetAs[*pendingState](c, "count:1")
	assert.False(t, ok, "wrong type is a miss")

	_, ok = GetAs[*pendingState](c, "state:2")
	assert.False(t, ok)
}

func TestCache_Expiry(t *testing.T) {
	c := NewCache(time.Minute, time.Minute)
	c.Set("short", "value", 10*time.Millisecond)

	time.Sleep(30 * time.Millisecond)

	_, ok := c.Get("short")
	assert.False(t, ok)
}

func TestCache_Delete(t *testing.T) {
	c := NewCache(time.Minute, time.Minute)
	c.Set("key", "value", time.Minute)
	c.Delete("key")

	_, ok := c.Get("key")
	assert.False(t, ok)
}
