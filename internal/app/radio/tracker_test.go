package radio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStaleUsesStrictThreshold(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tr := NewTracker()
	tr.Touch("a", now.Add(-5*time.Minute))
	tr.Touch("b", now.Add(-5*time.Minute-time.Millisecond))
	tr.Touch("c", now)

	assert.Equal(t, []string{"b"}, tr.Stale(now, 5*time.Minute))
}

func TestTouchNeverMovesBackwards(t *testing.T) {
	now := time.Now()
	tr := NewTracker()
	tr.Touch("a", now)
	tr.Touch("a", now.Add(-time.Hour))

	at, ok := tr.LastActive("a")
	assert.True(t, ok)
	assert.Equal(t, now, at)
}

func TestRemove(t *testing.T) {
	tr := NewTracker()
	tr.Touch("a", time.Now())
	tr.Remove("a")
	tr.Remove("missing")
	assert.Zero(t, tr.Len())
}
