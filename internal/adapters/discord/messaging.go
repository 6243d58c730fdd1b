package discord

import (
	"github.com/bwmarrin/discordgo"
	"github.com/cockroachdb/errors"
)

const (
	codeUnknownChannel = 10003
	codeUnknownMessage = 10008
)

// IsPlatformError: errores REST propios de Discord (permisos, rate limits,
// recursos borrados). El reporter los cuenta pero no molesta al operador.
func IsPlatformError(err error) bool {
	var re *discordgo.RESTError
	return errors.As(err, &re)
}

func isRESTCode(err error, code int) bool {
	var re *discordgo.RESTError
	return errors.As(err, &re) && re.Message != nil && re.Message.Code == code
}

// isGone: el canal o el mensaje ya no existen.
func isGone(err error) bool {
	return isRESTCode(err, codeUnknownMessage) || isRESTCode(err, codeUnknownChannel)
}

func (r *Router) reply(m *discordgo.Message, content string) {
	if _, err := r.s.ChannelMessageSendReply(m.ChannelID, content, m.Reference()); err != nil {
		r.log.Warn().Err(err).Str("channel", m.ChannelID).Msg("reply falló")
	}
}
