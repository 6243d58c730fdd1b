package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/jose-valero/shardbot/internal/app/pagination"
	"github.com/jose-valero/shardbot/internal/domain"
)

type Translator interface {
	Translate(locale, key string, args map[string]any) string
}

// Lo implementa internal/infra/storage.SettingsRepo
type SettingsReader interface {
	Get(ctx context.Context, id string) (domain.Settings, error)
}

// Lo implementa internal/infra/storage.BotRepo
type BotState interface {
	PendingReboot(ctx context.Context) (domain.Reboot, bool, error)
	ClearReboot(ctx context.Context) error
}

// Lo implementa internal/app/pagination.Engine
type Menus interface {
	Create(ctx context.Context, req pagination.Request) (*pagination.Instance, error)
	HandleReaction(ctx context.Context, r pagination.Reaction)
}

// Lo implementa internal/app/scheduler.Scheduler
type ReadyFlag interface {
	SetReady(v bool)
	Ready() bool
}

// Lo implementa *discordgo.Session
type Presence interface {
	UpdateGameStatus(idle int, name string) error
}

// Lo implementa internal/app/service.CleanupService
type Cleanup interface {
	ChannelDeleted(ctx context.Context, guildID, channelID string) error
}

// Lo implementa internal/infra/storage.CallRepo
type CallActivity interface {
	Touch(ctx context.Context, channelID string) error
}

// Lo implementa internal/infra/report.Reporter
type Faults interface {
	Report(ctx context.Context, err error)
	Recover(where string)
	Info(ctx context.Context, msg string)
	Go(where string, fn func())
}

// Ctx es lo que recibe cada comando de prefijo.
type Ctx struct {
	Log      zerolog.Logger
	Session  *discordgo.Session
	Message  *discordgo.Message
	Settings domain.Settings
	Prefix   string
	Args     []string
	tr       Translator
}

// T traduce en el locale del guild (o del DM).
func (c *Ctx) T(key string, args map[string]any) string {
	return c.tr.Translate(c.Settings.Locale, key, args)
}

type CommandHandler func(ctx context.Context, c *Ctx) error

type Command struct {
	Name      string
	GuildOnly bool
	Handler   CommandHandler
}
