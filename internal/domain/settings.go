package domain

import "time"

type Settings struct {
	ID           string
	Locale       string
	Prefix       string
	Ignored      []string // canales donde el bot no responde
	RadioChannel string
	UpdatedAt    time.Time
}

// DefaultSettings construye el documento por defecto cuando no existe en la DB.
func DefaultSettings(id, locale, prefix string) Settings {
	return Settings{ID: id, Locale: locale, Prefix: prefix, Ignored: []string{}}
}

// IsIgnored reporta si el canal está en la lista de ignorados.
func (s Settings) IsIgnored(channelID string) bool {
	for _, id := range s.Ignored {
		if id == channelID {
			return true
		}
	}
	return false
}

// Feed es una suscripción RSS atada a un canal.
type Feed struct {
	ID        string
	GuildID   string
	ChannelID string
	URL       string
	LastItem  string
	CreatedAt time.Time
}

// Reboot: mensaje "reiniciando..." que se completa en el Ready siguiente.
type Reboot struct {
	ChannelID string
	MessageID string
}
