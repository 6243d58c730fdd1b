package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/jose-valero/shardbot/internal/domain"
)

const (
	pollYes = "👍"
	pollNo  = "👎"
)

// JobHandlers ejecuta los jobs vencidos que el scheduler ya reclamó.
type JobHandlers struct {
	p        *Platform
	tr       Translator
	settings settingsResolver
	log      zerolog.Logger
}

func NewJobHandlers(p *Platform, store SettingsReader, tr Translator, defaults Defaults, log zerolog.Logger) *JobHandlers {
	log = log.With().Str("component", "jobs").Logger()
	return &JobHandlers{
		p:        p,
		tr:       tr,
		settings: settingsResolver{store: store, defaults: defaults, log: log},
		log:      log,
	}
}

func (h *JobHandlers) locale(ctx context.Context, job domain.Job) string {
	return h.settings.settingsFor(ctx, settingsID(job.GuildID, job.ChannelID)).Locale
}

// ResolvePoll cuenta las reacciones del mensaje del poll y publica el resultado.
func (h *JobHandlers) ResolvePoll(ctx context.Context, job domain.Job) error {
	lang := h.locale(ctx, job)
	msg, err := h.p.s.ChannelMessage(job.ChannelID, job.MessageID, discordgo.WithContext(ctx))
	if isRESTCode(err, codeUnknownChannel) {
		h.log.Debug().Str("job", job.ID).Msg("canal del poll borrado")
		return nil
	}
	if isRESTCode(err, codeUnknownMessage) {
		return h.p.SendMessage(ctx, job.ChannelID, h.tr.Translate(lang, "poll.deleted", nil))
	}
	if err != nil {
		return errors.Wrapf(err, "leyendo poll %s", job.MessageID)
	}

	yes, no := countVotes(msg.Reactions)
	content := h.tr.Translate(lang, "poll.results", map[string]any{
		"question": job.Content,
		"yes":      yes,
		"no":       no,
	})
	_, err = h.p.s.ChannelMessageSendReply(job.ChannelID, content, msg.Reference(), discordgo.WithContext(ctx))
	return errors.Wrap(err, "publicando resultado del poll")
}

// countVotes descuenta la reacción inicial del bot.
func countVotes(reactions []*discordgo.MessageReactions) (yes, no int) {
	for _, r := range reactions {
		if r == nil || r.Emoji == nil {
			continue
		}
		n := r.Count
		if r.Me {
			n--
		}
		switch r.Emoji.Name {
		case pollYes:
			yes = n
		case pollNo:
			no = n
		}
	}
	return yes, no
}

// DeliverReminder menciona al autor en el canal de origen; si el canal ya no existe, va por DM.
func (h *JobHandlers) DeliverReminder(ctx context.Context, job domain.Job) error {
	content := h.tr.Translate(h.locale(ctx, job), "remind.delivery", map[string]any{
		"user":    mention(job.AuthorID),
		"content": job.Content,
	})
	err := h.p.SendMessage(ctx, job.ChannelID, content)
	if err == nil || !isGone(err) || job.AuthorID == "" {
		return err
	}
	return h.p.SendDM(ctx, job.AuthorID, content)
}
