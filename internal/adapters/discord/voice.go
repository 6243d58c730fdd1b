package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/cockroachdb/errors"
)

func (p *Platform) safeGetChannel(id string) (*discordgo.Channel, error) {
	if ch, err := p.s.State.Channel(id); err == nil && ch != nil {
		return ch, nil
	}
	ch, err := p.s.Channel(id)
	if err != nil {
		return nil, err
	}
	_ = p.s.State.ChannelAdd(ch)
	return ch, nil
}

// Listening: hay al menos un humano (no bot) en el canal de voz.
func (p *Platform) Listening(channelID string) bool {
	ch, err := p.safeGetChannel(channelID)
	if err != nil || ch.GuildID == "" {
		return false
	}
	g, err := p.s.State.Guild(ch.GuildID)
	if err != nil {
		return false
	}

	p.s.State.RLock()
	users := make([]string, 0, len(g.VoiceStates))
	for _, vs := range g.VoiceStates {
		if vs.ChannelID == channelID {
			users = append(users, vs.UserID)
		}
	}
	p.s.State.RUnlock()

	for _, uid := range users {
		if !p.isBot(ch.GuildID, uid) {
			return true
		}
	}
	return false
}

func (p *Platform) isBot(guildID, userID string) bool {
	if p.s.State.User != nil && userID == p.s.State.User.ID {
		return true
	}
	m, err := p.s.State.Member(guildID, userID)
	if err != nil || m.User == nil {
		// sin cache del miembro lo contamos como oyente
		return false
	}
	return m.User.Bot
}

// connectionFor busca la conexión de voz que está en ese canal.
func (p *Platform) connectionFor(channelID string) *discordgo.VoiceConnection {
	p.s.RLock()
	defer p.s.RUnlock()
	for _, vc := range p.s.VoiceConnections {
		vc.RLock()
		in := vc.ChannelID == channelID
		vc.RUnlock()
		if in {
			return vc
		}
	}
	return nil
}

// Connected: el bot tiene una conexión de voz en el canal.
func (p *Platform) Connected(channelID string) bool { return p.connectionFor(channelID) != nil }

// Disconnect devuelve false (sin error) si no había conexión en ese canal.
func (p *Platform) Disconnect(_ context.Context, channelID string) (bool, error) {
	vc := p.connectionFor(channelID)
	if vc == nil {
		return false, nil
	}
	if err := vc.Disconnect(); err != nil {
		return false, errors.Wrapf(err, "voice disconnect %s", channelID)
	}
	return true, nil
}

// JoinVoice conecta el bot (sordo) al canal de voz del guild.
func (p *Platform) JoinVoice(_ context.Context, guildID, channelID string) error {
	if p.connectionFor(channelID) != nil {
		return nil
	}
	_, err := p.s.ChannelVoiceJoin(guildID, channelID, false, true)
	return errors.Wrapf(err, "voice join %s", channelID)
}
