// Package scheduler corre el barrido periódico: jobs vencidos (polls/reminders), sesiones de
// radio inactivas, el disparo horario de RSS y las llamadas inactivas.
//
// Cada tick ejecuta los cuatro barridos en orden. Cada barrido, y cada ítem dentro de él, está
// aislado: un error o un panic en uno no corta a los demás.
package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/jose-valero/shardbot/internal/app/radio"
	"github.com/jose-valero/shardbot/internal/domain"
	"github.com/jose-valero/shardbot/internal/infra/metrics"
	"github.com/jose-valero/shardbot/internal/infra/storage"
)

type Config struct {
	Interval            time.Duration // ~10s
	InactivityThreshold time.Duration // radio y llamadas (300000 ms)
	OwnerShard          int           // shard dueño de RSS y llamadas
	ReminderShard       int           // shard dueño global de los reminders
	RSSMinute           int           // minuto de cada hora en que se disparan los feeds
	DefaultLocale       string
	DefaultPrefix       string
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = 10 * time.Second
	}
	if c.InactivityThreshold <= 0 {
		c.InactivityThreshold = 300000 * time.Millisecond
	}
	if c.DefaultLocale == "" {
		c.DefaultLocale = "en-US"
	}
	return c
}

type Deps struct {
	Jobs       JobStore
	Calls      CallStore
	Settings   SettingsStore
	Shards     ShardInfo
	Voice      VoiceControl
	Notifier   Notifier
	Handlers   JobHandlers
	Feeds      FeedProcessor // opcional
	Tracker    *radio.Tracker
	Translator Translator
	Faults     FaultReporter // opcional
}

type Scheduler struct {
	d   Deps
	cfg Config
	log zerolog.Logger
	now func() time.Time

	ready        atomic.Bool
	lastFeedHour time.Time // sólo lo toca el goroutine del tick
}

func New(d Deps, cfg Config, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		d:   d,
		cfg: cfg.withDefaults(),
		log: log.With().Str("component", "scheduler").Logger(),
		now: time.Now,
	}
}

// SetReady: true en Ready, false en Disconnect. Sin conexión no se barre.
func (s *Scheduler) SetReady(v bool) { s.ready.Store(v) }

func (s *Scheduler) Ready() bool { return s.ready.Load() }

// Run dispara Tick cada Interval hasta que ctx se cancele. Un tick lento nunca se solapa con el siguiente.
func (s *Scheduler) Run(ctx context.Context) error {
	t := time.NewTicker(s.cfg.Interval)
	defer t.Stop()
	s.log.Info().Dur("interval", s.cfg.Interval).Int("shard", s.d.Shards.ShardID()).Msg("scheduler started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if !s.Ready() {
				continue
			}
			s.Tick(ctx, s.now())
		}
	}
}

// Tick corre los cuatro barridos en orden fijo.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) {
	start := time.Now()
	defer func() { metrics.TickDuration.Observe(time.Since(start).Seconds()) }()

	s.isolate(ctx, "sweep jobs", func() { s.sweepJobs(ctx, now) })
	s.isolate(ctx, "sweep radio", func() { s.sweepRadio(ctx, now) })
	s.isolate(ctx, "dispatch feeds", func() { s.dispatchFeeds(ctx, now) })
	s.isolate(ctx, "sweep calls", func() { s.sweepCalls(ctx, now) })
}

// isolate atrapa un panic, lo reporta y deja seguir al resto.
func (s *Scheduler) isolate(ctx context.Context, where string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			err := errors.Newf("%s: panic: %v", where, rec)
			if s.d.Faults != nil {
				s.d.Faults.Report(ctx, err)
				return
			}
			s.log.Error().Err(err).Msg("recovered")
		}
	}()
	fn()
}

// ---------- jobs ----------

func (s *Scheduler) sweepJobs(ctx context.Context, now time.Time) {
	jobs, err := s.d.Jobs.List(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("list jobs")
		return
	}
	for _, job := range jobs {
		if !job.Due(now) {
			continue
		}
		// no es nuestro: seguimos con el próximo (nunca cortar el tick)
		if !s.ownsJob(job) {
			continue
		}
		s.isolate(ctx, "job "+job.ID, func() { s.runJob(ctx, job) })
	}
}

func (s *Scheduler) ownsJob(job domain.Job) bool {
	shard := s.d.Shards.ShardID()
	switch job.Type {
	case domain.JobPoll:
		return s.d.Shards.ShardForGuild(job.GuildID) == shard
	case domain.JobRemind:
		return shard == s.cfg.ReminderShard
	default:
		return shard == s.cfg.OwnerShard
	}
}

// runJob borra primero y despacha sólo si este proceso fue el que borró.
func (s *Scheduler) runJob(ctx context.Context, job domain.Job) {
	log := s.log.With().Str("job", job.ID).Str("type", string(job.Type)).Logger()

	deleted, err := s.d.Jobs.Delete(ctx, job.ID)
	if err != nil {
		log.Warn().Err(err).Msg("delete job")
		return
	}
	if !deleted {
		log.Debug().Msg("job already claimed")
		return
	}

	switch job.Type {
	case domain.JobPoll:
		err = s.d.Handlers.ResolvePoll(ctx, job)
	case domain.JobRemind:
		err = s.d.Handlers.DeliverReminder(ctx, job)
	default:
		log.Warn().Msg("unknown job type dropped")
		return
	}
	metrics.JobsDispatched.WithLabelValues(string(job.Type)).Inc()
	if err != nil {
		log.Warn().Err(err).Msg("job handler")
	}
}

// ---------- radio ----------

func (s *Scheduler) sweepRadio(ctx context.Context, now time.Time) {
	if s.d.Tracker == nil {
		return
	}
	for _, channelID := range s.d.Tracker.Stale(now, s.cfg.InactivityThreshold) {
		s.isolate(ctx, "radio "+channelID, func() { s.expireRadio(ctx, channelID, now) })
	}
}

func (s *Scheduler) expireRadio(ctx context.Context, channelID string, now time.Time) {
	// sólo se renueva una sesión viva; una entrada sin conexión se descarta aunque haya gente en el canal
	if s.d.Voice.Connected(channelID) && s.d.Voice.Listening(channelID) {
		s.d.Tracker.Touch(channelID, now)
		return
	}
	disconnected, err := s.d.Voice.Disconnect(ctx, channelID)
	if err != nil {
		s.log.Warn().Err(err).Str("channel", channelID).Msg("radio disconnect")
	}
	if disconnected {
		metrics.RadioDisconnects.Inc()
		s.log.Info().Str("channel", channelID).Msg("radio left for inactivity")
	}
	// sin conexión viva la entrada se descarta igual
	s.d.Tracker.Remove(channelID)
}

// ---------- rss ----------

func (s *Scheduler) dispatchFeeds(ctx context.Context, now time.Time) {
	if s.d.Feeds == nil || s.d.Shards.ShardID() != s.cfg.OwnerShard {
		return
	}
	if now.Minute() != s.cfg.RSSMinute {
		return
	}
	hour := now.Truncate(time.Hour)
	if hour.Equal(s.lastFeedHour) {
		return
	}
	s.lastFeedHour = hour

	if err := s.d.Feeds.Process(ctx); err != nil {
		s.log.Warn().Err(err).Msg("rss processing")
	}
}

// ---------- calls ----------

func (s *Scheduler) sweepCalls(ctx context.Context, now time.Time) {
	if s.d.Shards.ShardID() != s.cfg.OwnerShard {
		return
	}
	calls, err := s.d.Calls.ListIdle(ctx, now.Add(-s.cfg.InactivityThreshold))
	if err != nil {
		s.log.Warn().Err(err).Msg("list idle calls")
		return
	}
	for _, call := range calls {
		if !call.Idle(now, s.cfg.InactivityThreshold) {
			continue
		}
		s.isolate(ctx, "call "+call.ID, func() { s.expireCall(ctx, call) })
	}
}

func (s *Scheduler) expireCall(ctx context.Context, call domain.Call) {
	deleted, err := s.d.Calls.Delete(ctx, call.ID)
	if err != nil {
		s.log.Warn().Err(err).Str("call", call.ID).Msg("delete call")
		return
	}
	if !deleted {
		return
	}
	metrics.CallsExpired.Inc()

	for _, p := range []domain.Participant{call.Sender, call.Receiver} {
		s.isolate(ctx, "call notice "+p.ChannelID, func() { s.notifyInactivity(ctx, p) })
	}
}

func (s *Scheduler) notifyInactivity(ctx context.Context, p domain.Participant) {
	locale := s.localeFor(ctx, p.SettingsID)
	msg := s.d.Translator.Translate(locale, "call.inactivity", nil)
	if err := s.d.Notifier.SendMessage(ctx, p.ChannelID, msg); err != nil {
		s.log.Warn().Err(err).Str("channel", p.ChannelID).Msg("call inactivity notice")
	}
}

func (s *Scheduler) localeFor(ctx context.Context, settingsID string) string {
	st, err := s.d.Settings.Get(ctx, settingsID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Warn().Err(err).Str("settings", settingsID).Msg("settings lookup")
		}
		st = domain.DefaultSettings(settingsID, s.cfg.DefaultLocale, s.cfg.DefaultPrefix)
	}
	if st.Locale == "" {
		return s.cfg.DefaultLocale
	}
	return st.Locale
}
