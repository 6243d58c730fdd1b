package discord

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/cockroachdb/errors"

	"github.com/jose-valero/shardbot/internal/app/service"
)

func (r *Router) commands() map[string]Command {
	list := []Command{
		{Name: "ping", Handler: r.cmdPing},
		{Name: "weather", Handler: r.cmdWeather},
		{Name: "remind", Handler: r.cmdRemind},
		{Name: "poll", GuildOnly: true, Handler: r.cmdPoll},
		{Name: "radio", GuildOnly: true, Handler: r.cmdRadio},
	}
	out := make(map[string]Command, len(list))
	for _, c := range list {
		out[c.Name] = c
	}
	return out
}

// cmdPing responde y edita la respuesta con la latencia del gateway y la del ida y vuelta.
func (r *Router) cmdPing(ctx context.Context, c *Ctx) error {
	sent, err := r.s.ChannelMessageSendReply(c.Message.ChannelID, c.T("ping.pending", nil),
		c.Message.Reference(), discordgo.WithContext(ctx))
	if err != nil {
		return errors.Wrap(err, "ping")
	}
	args := pongArgs(c.Session.HeartbeatLatency(), c.Message.Timestamp, sent.Timestamp)
	if _, err := r.s.ChannelMessageEdit(sent.ChannelID, sent.ID, c.T("ping.pong", args), discordgo.WithContext(ctx)); err != nil {
		return errors.Wrap(err, "ping edit")
	}
	return nil
}

// pongArgs: "message" es el tiempo entre el comando y nuestra respuesta según Discord.
func pongArgs(heartbeat time.Duration, asked, answered time.Time) map[string]any {
	rtt := answered.Sub(asked)
	if rtt < 0 {
		rtt = 0
	}
	return map[string]any{"api": heartbeat.Milliseconds(), "message": rtt.Milliseconds()}
}

func (r *Router) cmdWeather(ctx context.Context, c *Ctx) error {
	req, err := r.weather.Forecast(ctx, strings.Join(c.Args, " "), c.Settings.Locale)
	switch {
	case errors.Is(err, service.ErrEmptyQuery):
		r.reply(c.Message, c.T("weather.usage", map[string]any{"prefix": c.Prefix}))
		return nil
	case errors.Is(err, service.ErrQueryTooLong):
		r.reply(c.Message, c.T("weather.too_long", nil))
		return nil
	case errors.Is(err, service.ErrUnknownPlace):
		r.reply(c.Message, c.T("weather.not_found", nil))
		return nil
	case errors.Is(err, service.ErrWeatherFailed):
		c.Log.Warn().Err(err).Msg("weather provider")
		r.reply(c.Message, c.T("global.unknown_error", nil))
		return nil
	case err != nil:
		return err
	}

	req.ChannelID = c.Message.ChannelID
	req.GuildID = c.Message.GuildID
	req.AuthorID = c.Message.Author.ID
	req.AuthorMessageID = c.Message.ID
	_, err = r.menus.Create(ctx, req)
	return err
}

func (r *Router) cmdRemind(ctx context.Context, c *Ctx) error {
	usage := c.T("remind.usage", map[string]any{"prefix": c.Prefix})
	if len(c.Args) < 2 {
		r.reply(c.Message, usage)
		return nil
	}
	in, ok := parseMinutes(c.Args[0])
	if !ok || !service.ValidDelay(in) {
		r.reply(c.Message, usage)
		return nil
	}
	_, err := r.jobs.Remind(ctx, service.RemindInput{
		GuildID:   c.Message.GuildID,
		ChannelID: c.Message.ChannelID,
		AuthorID:  c.Message.Author.ID,
		Content:   strings.Join(c.Args[1:], " "),
		In:        in,
	})
	if errors.Is(err, service.ErrEmptyContent) {
		r.reply(c.Message, usage)
		return nil
	}
	if err != nil {
		return err
	}
	r.reply(c.Message, c.T("remind.created", map[string]any{"minutes": int(in.Minutes())}))
	return nil
}

func (r *Router) cmdPoll(ctx context.Context, c *Ctx) error {
	usage := c.T("poll.usage", map[string]any{"prefix": c.Prefix})
	if len(c.Args) < 2 {
		r.reply(c.Message, usage)
		return nil
	}
	in, ok := parseMinutes(c.Args[0])
	if !ok || !service.ValidDelay(in) {
		r.reply(c.Message, usage)
		return nil
	}
	question := strings.Join(c.Args[1:], " ")

	msg, err := r.s.ChannelMessageSend(c.Message.ChannelID, c.T("poll.created", map[string]any{
		"question": question,
		"minutes":  int(in.Minutes()),
	}), discordgo.WithContext(ctx))
	if err != nil {
		return errors.Wrap(err, "publicando poll")
	}
	for _, e := range []string{pollYes, pollNo} {
		if err := r.platform.AddReaction(ctx, msg.ChannelID, msg.ID, e); err != nil {
			c.Log.Warn().Err(err).Msg("reacción del poll")
			break
		}
	}

	_, err = r.jobs.Poll(ctx, service.PollInput{
		GuildID:   c.Message.GuildID,
		ChannelID: msg.ChannelID,
		MessageID: msg.ID,
		AuthorID:  c.Message.Author.ID,
		Question:  question,
		In:        in,
	})
	if err != nil {
		// sin job el poll nunca cierra: mejor no dejarlo publicado
		_ = r.platform.DeleteMessage(ctx, msg.ChannelID, msg.ID)
		return err
	}
	return nil
}

func (r *Router) cmdRadio(ctx context.Context, c *Ctx) error {
	ch := c.Settings.RadioChannel
	if ch == "" {
		r.reply(c.Message, c.T("radio.not_configured", nil))
		return nil
	}
	if !r.platform.CanConnect(ch) {
		r.reply(c.Message, c.T("global.no_permission", nil))
		return nil
	}
	if err := r.platform.JoinVoice(ctx, c.Message.GuildID, ch); err != nil {
		return err
	}
	r.tracker.Touch(ch, r.now())
	r.reply(c.Message, c.T("radio.joined", map[string]any{"channel": "<#" + ch + ">"}))
	return nil
}
