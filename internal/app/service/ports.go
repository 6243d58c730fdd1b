package service

import (
	"context"

	"github.com/jose-valero/shardbot/internal/adapters/weather"
	"github.com/jose-valero/shardbot/internal/domain"
)

// Lo implementa internal/adapters/weather.Client
type WeatherAPI interface {
	Locate(ctx context.Context, query string) (weather.Location, error)
	Forecast(ctx context.Context, lat, lon float64, lang string) (weather.Forecast, error)
	Vigilance(ctx context.Context, department string) (weather.Vigilance, error)
}

// Lo implementa internal/infra/storage.JobRepo
type JobRepo interface {
	Upsert(ctx context.Context, j domain.Job) error
}

// Lo implementa internal/infra/storage.FeedRepo
type FeedRepo interface {
	List(ctx context.Context) ([]domain.Feed, error)
	SetLastItem(ctx context.Context, id, item string) error
	DeleteByChannel(ctx context.Context, channelID string) (int64, error)
}

// Lo implementa internal/infra/storage.CallRepo
type CallRepo interface {
	DeleteByChannel(ctx context.Context, channelID string) (int64, error)
}

// Lo implementa internal/infra/storage.SettingsRepo
type SettingsRepo interface {
	ForgetChannel(ctx context.Context, guildID, channelID string) error
}

// Lo implementa internal/adapters/discord.Platform
type Poster interface {
	SendMessage(ctx context.Context, channelID, content string) error
}

// Lo implementa internal/app/pagination.Engine
type MenuDropper interface {
	DropChannel(channelID string) int
}

// Lo implementa internal/app/radio.Tracker
type RadioForgetter interface {
	Remove(channelID string)
}

type Translator interface {
	Translate(locale, key string, args map[string]any) string
}
