package discord

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// userLimiter: un token bucket por usuario.
type userLimiter struct {
	mu    sync.Mutex
	users map[string]*rate.Limiter
	every time.Duration
	burst int
}

func newUserLimiter(every time.Duration, burst int) *userLimiter {
	return &userLimiter{users: map[string]*rate.Limiter{}, every: every, burst: burst}
}

func (l *userLimiter) Allow(userID string) bool {
	return l.AllowAt(userID, time.Now())
}

func (l *userLimiter) AllowAt(userID string, now time.Time) bool {
	l.mu.Lock()
	lim, ok := l.users[userID]
	if !ok {
		lim = rate.NewLimiter(rate.Every(l.every), l.burst)
		l.users[userID] = lim
	}
	l.mu.Unlock()
	return lim.AllowN(now, 1)
}

// Prune olvida los limiters que ya se llenaron (usuarios inactivos).
func (l *userLimiter) Prune(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for id, lim := range l.users {
		if lim.TokensAt(now) >= float64(l.burst) {
			delete(l.users, id)
			n++
		}
	}
	return n
}
