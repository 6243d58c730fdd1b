package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/cockroachdb/errors"
)

func (p *Platform) botPermissions(channelID string) (int64, error) {
	if p.s.State.User == nil {
		return 0, errors.New("session sin usuario (¿antes de READY?)")
	}
	perms, err := p.s.State.UserChannelPermissions(p.s.State.User.ID, channelID)
	if err != nil {
		return 0, errors.Wrapf(err, "permisos en %s", channelID)
	}
	return perms, nil
}

func hasPerm(perms, want int64) bool {
	return perms&discordgo.PermissionAdministrator != 0 || perms&want == want
}

// CanManageMessages: el bot puede borrar mensajes ajenos en el canal.
func (p *Platform) CanManageMessages(_ context.Context, channelID string) (bool, error) {
	perms, err := p.botPermissions(channelID)
	if err != nil {
		return false, err
	}
	return hasPerm(perms, discordgo.PermissionManageMessages), nil
}

// CanConnect: el bot puede entrar al canal de voz.
func (p *Platform) CanConnect(channelID string) bool {
	perms, err := p.botPermissions(channelID)
	if err != nil {
		return false
	}
	return hasPerm(perms, discordgo.PermissionVoiceConnect|discordgo.PermissionViewChannel)
}
