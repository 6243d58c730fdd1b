package scheduler

import (
	"context"
	"time"

	"github.com/jose-valero/shardbot/internal/domain"
)

// Lo implementa internal/infra/storage.JobRepo
type JobStore interface {
	List(ctx context.Context) ([]domain.Job, error)
	// Delete devuelve true sólo si esta llamada borró la fila.
	Delete(ctx context.Context, id string) (bool, error)
}

// Lo implementa internal/infra/storage.CallRepo
type CallStore interface {
	ListIdle(ctx context.Context, before time.Time) ([]domain.Call, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// Lo implementa internal/infra/storage.SettingsRepo (storage.ErrNotFound si no existe)
type SettingsStore interface {
	Get(ctx context.Context, id string) (domain.Settings, error)
}

// Lo implementan internal/adapters/discord.Platform y Handlers
type ShardInfo interface {
	ShardID() int
	ShardForGuild(guildID string) int
}

type VoiceControl interface {
	// Connected: el bot tiene una conexión de voz viva en el canal.
	Connected(channelID string) bool
	// Listening: hay alguien (no bot) escuchando en el canal.
	Listening(channelID string) bool
	// Disconnect devuelve false si no había conexión para ese canal.
	Disconnect(ctx context.Context, channelID string) (bool, error)
}

type Notifier interface {
	SendMessage(ctx context.Context, channelID, content string) error
}

type JobHandlers interface {
	ResolvePoll(ctx context.Context, job domain.Job) error
	DeliverReminder(ctx context.Context, job domain.Job) error
}

// Lo implementa internal/app/service.FeedService
type FeedProcessor interface {
	Process(ctx context.Context) error
}

type Translator interface {
	Translate(locale, key string, args map[string]any) string
}

// Lo implementa internal/infra/report.Reporter
type FaultReporter interface {
	Report(ctx context.Context, err error)
}
