package discord

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserLimiter(t *testing.T) {
	l := newUserLimiter(2*time.Second, 2)
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, l.AllowAt("u1", t0))
	assert.True(t, l.AllowAt("u1", t0))
	assert.False(t, l.AllowAt("u1", t0), "burst agotado")
	assert.True(t, l.AllowAt("u2", t0), "cada usuario tiene su bucket")

	assert.True(t, l.AllowAt("u1", t0.Add(2*time.Second)), "recupera un token")
	assert.False(t, l.AllowAt("u1", t0.Add(2*time.Second)))
}

func TestUserLimiterPrune(t *testing.T) {
	l := newUserLimiter(time.Second, 1)
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	l.AllowAt("u1", t0)
	l.AllowAt("u2", t0.Add(5*time.Second))

	assert.Equal(t, 1, l.Prune(t0.Add(5*time.Second)))
	assert.Len(t, l.users, 1)
}
