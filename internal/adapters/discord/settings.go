package discord

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/jose-valero/shardbot/internal/domain"
	"github.com/jose-valero/shardbot/internal/infra/storage"
)

// Defaults para guilds/DMs sin documento de settings.
type Defaults struct {
	Locale string
	Prefix string
}

type settingsResolver struct {
	store    SettingsReader
	defaults Defaults
	log      zerolog.Logger
}

// settingsFor nunca falla: sin documento (o con la DB caída) usa los defaults.
func (r settingsResolver) settingsFor(ctx context.Context, id string) domain.Settings {
	def := domain.DefaultSettings(id, r.defaults.Locale, r.defaults.Prefix)
	if id == "" || r.store == nil {
		return def
	}
	s, err := r.store.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			r.log.Warn().Err(err).Str("settings", id).Msg("settings no disponibles, uso defaults")
		}
		return def
	}
	if s.Locale == "" {
		s.Locale = def.Locale
	}
	if s.Prefix == "" {
		s.Prefix = def.Prefix
	}
	return s
}

// settingsID: el guild, o el canal en DMs.
func settingsID(guildID, channelID string) string {
	if guildID != "" {
		return guildID
	}
	return channelID
}
