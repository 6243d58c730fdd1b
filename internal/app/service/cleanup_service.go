package service

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// CleanupService olvida todo lo que referencia a un canal borrado.
type CleanupService struct {
	settings SettingsRepo
	calls    CallRepo
	feeds    FeedRepo
	menus    MenuDropper
	radio    RadioForgetter
	log      zerolog.Logger
}

func NewCleanupService(settings SettingsRepo, calls CallRepo, feeds FeedRepo, menus MenuDropper, radio RadioForgetter, log zerolog.Logger) *CleanupService {
	return &CleanupService{
		settings: settings,
		calls:    calls,
		feeds:    feeds,
		menus:    menus,
		radio:    radio,
		log:      log.With().Str("component", "cleanup").Logger(),
	}
}

// ChannelDeleted: cada paso es independiente; un fallo no frena a los demás.
func (s *CleanupService) ChannelDeleted(ctx context.Context, guildID, channelID string) error {
	var failed []error

	if n := s.menus.DropChannel(channelID); n > 0 {
		s.log.Debug().Str("channel", channelID).Int("menus", n).Msg("menús descartados")
	}
	s.radio.Remove(channelID)

	if guildID != "" {
		if err := s.settings.ForgetChannel(ctx, guildID, channelID); err != nil {
			failed = append(failed, errors.Wrap(err, "settings"))
		}
	}
	if n, err := s.calls.DeleteByChannel(ctx, channelID); err != nil {
		failed = append(failed, errors.Wrap(err, "calls"))
	} else if n > 0 {
		s.log.Info().Str("channel", channelID).Int64("calls", n).Msg("llamadas cortadas por canal borrado")
	}
	if n, err := s.feeds.DeleteByChannel(ctx, channelID); err != nil {
		failed = append(failed, errors.Wrap(err, "feeds"))
	} else if n > 0 {
		s.log.Info().Str("channel", channelID).Int64("feeds", n).Msg("feeds borrados por canal borrado")
	}

	if len(failed) == 0 {
		return nil
	}
	err := failed[0]
	for _, e := range failed[1:] {
		err = errors.CombineErrors(err, e)
	}
	return errors.Wrapf(err, "limpiando canal %s", channelID)
}
