package discord

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	cases := []struct {
		in       string
		wantName string
		wantArgs []string
		wantOK   bool
	}{
		{"!ping", "ping", []string{}, true},
		{"  !Weather  New   York ", "weather", []string{"New", "York"}, true},
		{"<@42> remind 5 tea", "remind", []string{"5", "tea"}, true},
		{"<@!42> poll", "poll", []string{}, true},
		{"<@7> ping", "", nil, false},
		{"hello", "", nil, false},
		{"!", "", nil, false},
	}
	for _, c := range cases {
		name, args, ok := parseCommand(c.in, "!", "42")
		assert.Equal(t, c.wantOK, ok, c.in)
		if c.wantOK {
			assert.Equal(t, c.wantName, name, c.in)
			assert.Equal(t, c.wantArgs, args, c.in)
		}
	}
}

func TestParseMinutes(t *testing.T) {
	d, ok := parseMinutes("15")
	assert.True(t, ok)
	assert.Equal(t, 15*time.Minute, d)

	d, ok = parseMinutes("1h30m")
	assert.True(t, ok)
	assert.Equal(t, 90*time.Minute, d)

	for _, bad := range []string{"0", "-3", "soon", "-1m"} {
		_, ok := parseMinutes(bad)
		assert.False(t, ok, bad)
	}
}

func TestPongArgs(t *testing.T) {
	asked := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	args := pongArgs(42*time.Millisecond, asked, asked.Add(180*time.Millisecond))
	assert.Equal(t, map[string]any{"api": int64(42), "message": int64(180)}, args)

	// relojes de Discord desfasados: nunca una latencia negativa
	args = pongArgs(0, asked, asked.Add(-5*time.Millisecond))
	assert.Equal(t, int64(0), args["message"])
}
