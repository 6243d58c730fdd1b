// Package radio lleva la última actividad de cada sesión de radio (canal de voz -> timestamp).
// Vive en memoria: una entrada existe mientras creemos que hay conexión de voz en ese canal.
package radio

import (
	"sort"
	"sync"
	"time"
)

type Tracker struct {
	mu   sync.Mutex
	last map[string]time.Time
}

func NewTracker() *Tracker {
	return &Tracker{last: map[string]time.Time{}}
}

// Touch marca actividad en el canal (crea la entrada si no existe).
func (t *Tracker) Touch(channelID string, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if prev, ok := t.last[channelID]; ok && prev.After(at) {
		return
	}
	t.last[channelID] = at
}

func (t *Tracker) Remove(channelID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.last, channelID)
}

func (t *Tracker) LastActive(channelID string) (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	at, ok := t.last[channelID]
	return at, ok
}

// Stale devuelve los canales con más de threshold sin actividad, ordenados.
func (t *Tracker) Stale(now time.Time, threshold time.Duration) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []string
	for id, at := range t.last {
		if now.Sub(at) > threshold {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.last)
}
