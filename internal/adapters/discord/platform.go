package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/jose-valero/shardbot/internal/app/pagination"
	"github.com/jose-valero/shardbot/internal/textutil"
)

// Platform es el cliente de Discord que ven los paquetes de app
// (menús, scheduler, reporter). Un Platform por shard.
type Platform struct {
	s          *discordgo.Session
	shardID    int
	shardCount int
	log        zerolog.Logger
}

func NewPlatform(s *discordgo.Session, shardID, shardCount int, log zerolog.Logger) *Platform {
	if shardCount < 1 {
		shardCount = 1
	}
	return &Platform{
		s:          s,
		shardID:    shardID,
		shardCount: shardCount,
		log:        log.With().Str("component", "discord").Logger(),
	}
}

func toEmbed(e pagination.Embed) *discordgo.MessageEmbed {
	em := &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: e.Description,
		Color:       textutil.Color(e.Title),
	}
	if e.Footer != "" {
		em.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer}
	}
	if e.Thumbnail != "" {
		em.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: e.Thumbnail}
	}
	return em
}

func (p *Platform) SendMenu(ctx context.Context, channelID, content string, e pagination.Embed) (string, error) {
	m, err := p.s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: content,
		Embeds:  []*discordgo.MessageEmbed{toEmbed(e)},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", errors.Wrapf(err, "send menu en %s", channelID)
	}
	return m.ID, nil
}

func (p *Platform) EditMenu(ctx context.Context, channelID, messageID string, e pagination.Embed) error {
	em := []*discordgo.MessageEmbed{toEmbed(e)}
	_, err := p.s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel: channelID,
		ID:      messageID,
		Embeds:  &em,
	}, discordgo.WithContext(ctx))
	return errors.Wrapf(err, "edit menu %s", messageID)
}

func (p *Platform) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	return errors.Wrapf(p.s.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx)), "delete %s", messageID)
}

func (p *Platform) AddReaction(ctx context.Context, channelID, messageID, emoji string) error {
	return errors.Wrapf(p.s.MessageReactionAdd(channelID, messageID, emoji, discordgo.WithContext(ctx)), "react %s", emoji)
}

// SendMessage: texto plano; lo usan el scheduler (avisos) y el servicio RSS.
func (p *Platform) SendMessage(ctx context.Context, channelID, content string) error {
	_, err := p.s.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	return errors.Wrapf(err, "send en %s", channelID)
}

// SendDM abre (o reutiliza) el canal privado y manda el mensaje.
func (p *Platform) SendDM(ctx context.Context, userID, content string) error {
	ch, err := p.s.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return errors.Wrapf(err, "dm channel %s", userID)
	}
	return p.SendMessage(ctx, ch.ID, content)
}
