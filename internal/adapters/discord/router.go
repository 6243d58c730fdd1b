package discord

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/jose-valero/shardbot/internal/app/pagination"
	"github.com/jose-valero/shardbot/internal/app/radio"
	"github.com/jose-valero/shardbot/internal/app/service"
	"github.com/jose-valero/shardbot/internal/infra/metrics"
)

const (
	commandTimeout = 15 * time.Second
	eventTimeout   = 10 * time.Second
	// una escritura de actividad por canal y minuto alcanza con el umbral de 5 min
	callTouchEvery = time.Minute
	presenceEvery  = 10 * time.Second
)

type Deps struct {
	Session    *discordgo.Session
	Platform   *Platform
	Menus      Menus
	Tracker    *radio.Tracker
	Ready      ReadyFlag
	Cleanup    Cleanup
	Calls      CallActivity // opcional
	Jobs       *service.JobService
	Weather    *service.WeatherService
	Settings   SettingsReader
	Bot        BotState
	Faults     Faults
	Translator Translator
}

type Options struct {
	Defaults      Defaults
	CommandEvery  time.Duration // un comando cada CommandEvery por usuario...
	CommandBurst  int           // ...con ráfagas de hasta CommandBurst
	PresenceEvery time.Duration
}

type Router struct {
	s        *discordgo.Session
	platform *Platform
	menus    Menus
	tracker  *radio.Tracker
	ready    ReadyFlag
	cleanup  Cleanup
	calls    CallActivity
	jobs     *service.JobService
	weather  *service.WeatherService
	bot      BotState
	faults   Faults
	tr       Translator

	settings settingsResolver
	limiter  *userLimiter
	touched  sync.Map // channelID -> time.Time del último Touch
	cmds     map[string]Command
	now      func() time.Time
	log      zerolog.Logger

	presence      Presence
	presenceEvery time.Duration
	presenceOnce  sync.Once
	life          context.Context
}

func NewRouter(d Deps, opts Options, log zerolog.Logger) *Router {
	if opts.CommandEvery <= 0 {
		opts.CommandEvery = 3 * time.Second
	}
	if opts.CommandBurst <= 0 {
		opts.CommandBurst = 3
	}
	if opts.PresenceEvery <= 0 {
		opts.PresenceEvery = presenceEvery
	}
	log = log.With().Str("component", "router").Logger()
	r := &Router{
		s:        d.Session,
		platform: d.Platform,
		menus:    d.Menus,
		tracker:  d.Tracker,
		ready:    d.Ready,
		cleanup:  d.Cleanup,
		calls:    d.Calls,
		jobs:     d.Jobs,
		weather:  d.Weather,
		bot:      d.Bot,
		faults:   d.Faults,
		tr:       d.Translator,
		settings: settingsResolver{store: d.Settings, defaults: opts.Defaults, log: log},
		limiter:  newUserLimiter(opts.CommandEvery, opts.CommandBurst),
		now:      time.Now,
		log:      log,

		presence:      d.Session,
		presenceEvery: opts.PresenceEvery,
		life:          context.Background(),
	}
	r.cmds = r.commands()
	return r
}

// Handlers registra todos los eventos en la sesión. Cada handler corre bajo Recover.
// ctx acota los loops que arrancan los eventos (presencia).
func (r *Router) Handlers(ctx context.Context) {
	r.life = ctx
	r.s.AddHandler(func(s *discordgo.Session, e *discordgo.MessageReactionAdd) {
		r.onReaction(s, e.MessageReaction)
	})
	r.s.AddHandler(func(s *discordgo.Session, e *discordgo.MessageReactionRemove) {
		r.onReaction(s, e.MessageReaction)
	})
	r.s.AddHandler(r.onMessageCreate)
	r.s.AddHandler(r.onChannelDelete)
	r.s.AddHandler(r.onReady)
	r.s.AddHandler(r.onDisconnect)
	r.s.AddHandler(r.onVoiceStateUpdate)
}

func (r *Router) isSelf(s *discordgo.Session, userID string) bool {
	return s.State.User != nil && s.State.User.ID == userID
}

func (r *Router) onReaction(s *discordgo.Session, mr *discordgo.MessageReaction) {
	defer r.faults.Recover("discord.reaction")
	if mr == nil || r.isSelf(s, mr.UserID) {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()
	r.menus.HandleReaction(ctx, pagination.Reaction{
		MessageID: mr.MessageID,
		UserID:    mr.UserID,
		Emoji:     mr.Emoji.Name,
	})
}

func (r *Router) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	defer r.faults.Recover("discord.message")
	if m.Author == nil || m.Author.Bot {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	r.touchCall(ctx, m.ChannelID)
	if m.Content == "" {
		return
	}

	settings := r.settings.settingsFor(ctx, settingsID(m.GuildID, m.ChannelID))
	if settings.IsIgnored(m.ChannelID) {
		return
	}
	botID := ""
	if s.State.User != nil {
		botID = s.State.User.ID
	}
	name, args, ok := parseCommand(m.Content, settings.Prefix, botID)
	if !ok {
		return
	}
	cmd, ok := r.cmds[name]
	if !ok || (cmd.GuildOnly && m.GuildID == "") {
		return
	}

	c := &Ctx{
		Log:      r.log.With().Str("cmd", name).Str("user", m.Author.ID).Logger(),
		Session:  s,
		Message:  m.Message,
		Settings: settings,
		Prefix:   settings.Prefix,
		Args:     args,
		tr:       r.tr,
	}
	if !r.limiter.Allow(m.Author.ID) {
		metrics.Commands.WithLabelValues(name, "limited").Inc()
		r.reply(m.Message, c.T("global.slow_down", map[string]any{"user": mention(m.Author.ID)}))
		return
	}

	done := step(c.Log, "cmd "+name)
	err := cmd.Handler(ctx, c)
	done()
	if err != nil {
		metrics.Commands.WithLabelValues(name, "error").Inc()
		r.reply(m.Message, c.T("global.unknown_error", nil))
		r.faults.Report(ctx, errors.Wrapf(err, "comando %s", name))
		return
	}
	metrics.Commands.WithLabelValues(name, "ok").Inc()
}

// touchCall refresca la llamada del canal, como mucho una vez cada callTouchEvery.
func (r *Router) touchCall(ctx context.Context, channelID string) {
	if r.calls == nil {
		return
	}
	now := r.now()
	if last, ok := r.touched.Load(channelID); ok && now.Sub(last.(time.Time)) < callTouchEvery {
		return
	}
	r.touched.Store(channelID, now)
	if err := r.calls.Touch(ctx, channelID); err != nil {
		r.log.Warn().Err(err).Str("channel", channelID).Msg("call touch")
	}
}

func (r *Router) onChannelDelete(_ *discordgo.Session, e *discordgo.ChannelDelete) {
	defer r.faults.Recover("discord.channel_delete")
	if e.Channel == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()
	if err := r.cleanup.ChannelDeleted(ctx, e.GuildID, e.ID); err != nil {
		r.faults.Report(ctx, err)
	}
}

func (r *Router) onReady(s *discordgo.Session, e *discordgo.Ready) {
	defer r.faults.Recover("discord.ready")
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	r.faults.Info(ctx, fmt.Sprintf("Shard %d READY (%d guilds)", r.platform.ShardID(), len(e.Guilds)))
	r.completeReboot(ctx, s)
	r.ready.SetReady(true)

	r.refreshPresence()
	// los READY de cada reconexión reusan el mismo loop
	r.presenceOnce.Do(func() {
		r.faults.Go("discord.presence", func() { r.Presence(r.life, r.presenceEvery) })
	})
}

// Presence refresca el estado "jugando a" mientras el shard esté listo.
func (r *Router) Presence(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.refreshPresence()
		}
	}
}

func (r *Router) refreshPresence() {
	if r.presence == nil || !r.ready.Ready() {
		return
	}
	if err := r.presence.UpdateGameStatus(0, r.presenceText()); err != nil {
		r.log.Debug().Err(err).Msg("presence")
	}
}

func (r *Router) presenceText() string {
	guilds := 0
	if r.s != nil && r.s.State != nil {
		r.s.State.RLock()
		guilds = len(r.s.State.Guilds)
		r.s.State.RUnlock()
	}
	return fmt.Sprintf("%shelp | %d guilds | shard %d/%d",
		r.settings.defaults.Prefix, guilds, r.platform.ShardID()+1, r.platform.ShardCount())
}

// completeReboot edita el "reiniciando..." si el canal es de este shard.
func (r *Router) completeReboot(ctx context.Context, s *discordgo.Session) {
	if r.bot == nil {
		return
	}
	rb, ok, err := r.bot.PendingReboot(ctx)
	if err != nil {
		r.log.Warn().Err(err).Msg("reboot pendiente")
		return
	}
	if !ok {
		return
	}
	ch, err := s.State.Channel(rb.ChannelID)
	if err != nil {
		// canal de otro shard
		return
	}
	started, err := discordgo.SnowflakeTimestamp(rb.MessageID)
	if err != nil {
		started = r.now()
	}
	lang := r.settings.settingsFor(ctx, settingsID(ch.GuildID, ch.ID)).Locale
	content := r.tr.Translate(lang, "reboot.done", map[string]any{
		"seconds": fmt.Sprintf("%.1f", r.now().Sub(started).Seconds()),
	})
	if _, err := s.ChannelMessageEdit(rb.ChannelID, rb.MessageID, content, discordgo.WithContext(ctx)); err != nil && !isGone(err) {
		r.log.Warn().Err(err).Msg("completando reboot")
		return
	}
	if err := r.bot.ClearReboot(ctx); err != nil {
		r.log.Warn().Err(err).Msg("limpiando reboot")
	}
}

func (r *Router) onDisconnect(_ *discordgo.Session, _ *discordgo.Disconnect) {
	defer r.faults.Recover("discord.disconnect")
	r.ready.SetReady(false)
	r.log.Warn().Int("shard", r.platform.ShardID()).Msg("gateway desconectado; scheduler en pausa")
}

// onVoiceStateUpdate mantiene vivo el tracker de la radio mientras haya oyentes.
func (r *Router) onVoiceStateUpdate(s *discordgo.Session, vs *discordgo.VoiceStateUpdate) {
	defer r.faults.Recover("discord.voice_state")
	if vs.VoiceState == nil {
		return
	}
	before := ""
	if vs.BeforeUpdate != nil {
		before = vs.BeforeUpdate.ChannelID
	}
	now := r.now()

	if r.isSelf(s, vs.UserID) {
		if before != "" && before != vs.ChannelID {
			r.tracker.Remove(before)
		}
		if vs.ChannelID != "" {
			r.tracker.Touch(vs.ChannelID, now)
		}
		return
	}

	for _, ch := range []string{vs.ChannelID, before} {
		if ch == "" || !r.platform.Connected(ch) {
			continue
		}
		if r.platform.Listening(ch) {
			r.tracker.Touch(ch, now)
		}
	}
}

// Janitor poda rate limiters y marcas de llamadas viejas hasta que ctx termina.
func (r *Router) Janitor(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := r.limiter.Prune(now); n > 0 {
				r.log.Debug().Int("pruned", n).Msg("rate limiters")
			}
			r.touched.Range(func(k, v any) bool {
				if now.Sub(v.(time.Time)) >= callTouchEvery {
					r.touched.Delete(k)
				}
				return true
			})
		}
	}
}
