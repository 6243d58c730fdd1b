package domain

import "time"

type JobType string

const (
	JobPoll   JobType = "poll"
	JobRemind JobType = "remind"
)

// Job es trabajo diferido con fecha de vencimiento (polls, reminders).
// Nunca se muta: se crea, se lee y se borra una sola vez cuando vence.
type Job struct {
	ID        string
	Type      JobType
	End       time.Time
	GuildID   string
	ChannelID string
	MessageID string // mensaje del poll (solo poll)
	AuthorID  string
	Content   string
	CreatedAt time.Time
}

// Due: vencido cuando End <= now.
func (j Job) Due(now time.Time) bool { return !j.End.After(now) }

// Participant: una punta de la llamada. SettingsID apunta al documento de settings (guild o DM).
type Participant struct {
	ChannelID  string
	SettingsID string
}

type Call struct {
	ID       string
	Sender   Participant
	Receiver Participant
	Activity time.Time
}

func (c Call) Idle(now time.Time, threshold time.Duration) bool {
	return now.Sub(c.Activity) > threshold
}
