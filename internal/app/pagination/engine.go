// Package pagination mantiene los menús paginados vivos: un registro de máquinas de estado
// por mensaje, navegadas con reacciones por su autor y destruidas con ⏹ o por inactividad.
package pagination

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/jose-valero/shardbot/internal/infra/metrics"
)

const (
	defaultEntriesPerPage = 10
	defaultTimeout        = 2 * time.Minute
	platformCallMax       = 10 * time.Second
)

var ErrNoEntries = errors.New("pagination: no entries")

// Reason de por qué se cerró un menú.
type Reason string

const (
	ReasonStopped        Reason = "stop"
	ReasonTimeout        Reason = "timeout"
	ReasonChannelDeleted Reason = "channel_deleted"
)

// Lo implementa internal/adapters/discord.Platform
type Platform interface {
	SendMenu(ctx context.Context, channelID, content string, e Embed) (string, error)
	EditMenu(ctx context.Context, channelID, messageID string, e Embed) error
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	AddReaction(ctx context.Context, channelID, messageID, emoji string) error
	CanManageMessages(ctx context.Context, channelID string) (bool, error)
}

type Translator interface {
	Translate(locale, key string, args map[string]any) string
}

type Page struct {
	Title     string
	Thumbnail string
}

type Config struct {
	EntriesPerPage int
	Timeout        time.Duration // inactividad antes del stop forzado
	Footer         string
}

func (c Config) withDefaults(timeout time.Duration) Config {
	if c.EntriesPerPage <= 0 {
		c.EntriesPerPage = defaultEntriesPerPage
	}
	if c.Timeout <= 0 {
		c.Timeout = timeout
	}
	return c
}

// Request son los argumentos de createMenu.
type Request struct {
	ChannelID       string
	GuildID         string // vacío en DMs
	AuthorID        string
	AuthorMessageID string
	Locale          string
	Header          string
	Pages           []Page
	Entries         []string
	Config          Config
}

type Reaction struct {
	MessageID string
	UserID    string
	Emoji     string
}

// Instance es el estado de un menú. Entries y Pages tienen siempre el mismo largo.
type Instance struct {
	ChannelID       string
	GuildID         string
	AuthorID        string
	AuthorMessageID string
	MessageID       string
	Lang            string
	Footer          string
	Entries         []string
	Pages           []Page
	CurrentPage     int
	CreatedAt       time.Time

	timeout    time.Duration
	lastActive time.Time
	timer      Timer
}

// Timer es lo que usamos de *time.Timer.
type Timer interface {
	Stop() bool
	Reset(d time.Duration) bool
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// WithAfterFunc permite reemplazar time.AfterFunc (tests).
func WithAfterFunc(f func(d time.Duration, fn func()) Timer) Option {
	return func(e *Engine) { e.afterFunc = f }
}

func WithDefaultTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

type Engine struct {
	p   Platform
	tr  Translator
	log zerolog.Logger

	now       func() time.Time
	afterFunc func(d time.Duration, fn func()) Timer
	timeout   time.Duration

	mu    sync.Mutex
	menus map[string]*Instance // messageID -> instance
}

func NewEngine(p Platform, tr Translator, log zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		p:       p,
		tr:      tr,
		log:     log.With().Str("component", "pagination").Logger(),
		now:     time.Now,
		timeout: defaultTimeout,
		afterFunc: func(d time.Duration, fn func()) Timer {
			return time.AfterFunc(d, fn)
		},
		menus: map[string]*Instance{},
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Chunk agrupa entries en páginas de per elementos, respetando el orden.
func Chunk(entries []string, per int) []string {
	if per <= 0 {
		per = defaultEntriesPerPage
	}
	out := make([]string, 0, (len(entries)+per-1)/per)
	for start := 0; start < len(entries); start += per {
		end := min(start+per, len(entries))
		out = append(out, strings.Join(entries[start:end], "\n"))
	}
	return out
}

// alignPages deja len(pages) == n (relleno sin metadata o recorte).
func alignPages(pages []Page, n int) []Page {
	out := make([]Page, n)
	copy(out, pages)
	return out
}

// Create construye el menú, lo envía, agrega las reacciones y lo registra por el id del mensaje.
func (e *Engine) Create(ctx context.Context, req Request) (*Instance, error) {
	cfg := req.Config.withDefaults(e.timeout)
	entries := Chunk(req.Entries, cfg.EntriesPerPage)
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}

	now := e.now()
	inst := &Instance{
		ChannelID:       req.ChannelID,
		GuildID:         req.GuildID,
		AuthorID:        req.AuthorID,
		AuthorMessageID: req.AuthorMessageID,
		Lang:            req.Locale,
		Footer:          cfg.Footer,
		Entries:         entries,
		Pages:           alignPages(req.Pages, len(entries)),
		CreatedAt:       now,
		timeout:         cfg.Timeout,
		lastActive:      now,
	}

	msgID, err := e.p.SendMenu(ctx, inst.ChannelID, req.Header, Render(inst, e.tr))
	if err != nil {
		e.log.Warn().Err(err).Str("channel", inst.ChannelID).Msg("menu send failed")
		return nil, errors.Wrap(err, "pagination: send")
	}
	inst.MessageID = msgID

	e.mu.Lock()
	e.menus[msgID] = inst
	inst.timer = e.afterFunc(inst.timeout, func() { e.expire(msgID) })
	n := len(e.menus)
	e.mu.Unlock()
	metrics.MenusActive.Set(float64(n))

	for _, sym := range Symbols {
		if err := e.p.AddReaction(ctx, inst.ChannelID, msgID, string(sym)); err != nil {
			// sin reacciones no hay navegación, pero el menú sigue registrado
			e.log.Warn().Err(err).Str("message", msgID).Msg("menu reactions failed")
			break
		}
	}

	e.log.Debug().Str("message", msgID).Str("author", inst.AuthorID).Int("pages", len(entries)).Msg("menu created")
	return inst, nil
}

// HandleReaction aplica la transición si la reacción es del autor sobre un menú vivo.
func (e *Engine) HandleReaction(ctx context.Context, r Reaction) {
	e.mu.Lock()
	inst, ok := e.menus[r.MessageID]
	if !ok || r.UserID != inst.AuthorID {
		e.mu.Unlock()
		return
	}
	sym, ok := ParseSymbol(r.Emoji)
	if !ok {
		e.mu.Unlock()
		return
	}

	next, stop := Transition(sym, len(inst.Entries), inst.CurrentPage)
	if stop {
		e.removeLocked(inst)
		e.mu.Unlock()
		metrics.MenuTransitions.WithLabelValues(string(sym)).Inc()
		e.finish(ctx, inst, ReasonStopped)
		return
	}

	inst.CurrentPage = next
	inst.lastActive = e.now()
	if inst.timer != nil {
		inst.timer.Reset(inst.timeout)
	}
	embed := Render(inst, e.tr)
	channelID, messageID := inst.ChannelID, inst.MessageID
	e.mu.Unlock()

	metrics.MenuTransitions.WithLabelValues(string(sym)).Inc()
	if err := e.p.EditMenu(ctx, channelID, messageID, embed); err != nil {
		e.log.Warn().Err(err).Str("message", messageID).Msg("menu edit failed")
	}
}

// Stop cierra el menú. El registro se libera aunque fallen las llamadas a la plataforma.
// Devuelve false si el menú ya no estaba registrado.
func (e *Engine) Stop(ctx context.Context, inst *Instance, reason Reason) bool {
	e.mu.Lock()
	cur, ok := e.menus[inst.MessageID]
	if !ok || cur != inst {
		e.mu.Unlock()
		return false
	}
	e.removeLocked(inst)
	e.mu.Unlock()

	e.finish(ctx, inst, reason)
	return true
}

func (e *Engine) removeLocked(inst *Instance) {
	delete(e.menus, inst.MessageID)
	if inst.timer != nil {
		inst.timer.Stop()
	}
	metrics.MenusActive.Set(float64(len(e.menus)))
}

// finish hace el trabajo de plataforma de un menú ya removido del registro.
func (e *Engine) finish(ctx context.Context, inst *Instance, reason Reason) {
	metrics.MenusStopped.WithLabelValues(string(reason)).Inc()

	if err := e.p.DeleteMessage(ctx, inst.ChannelID, inst.MessageID); err != nil {
		e.log.Warn().Err(err).Str("message", inst.MessageID).Msg("menu delete failed")
	}
	e.log.Debug().Str("message", inst.MessageID).Str("reason", string(reason)).Msg("menu stopped")

	// mensaje del autor: solo en guild y con Manage Messages
	if inst.GuildID == "" || inst.AuthorMessageID == "" {
		return
	}
	can, err := e.p.CanManageMessages(ctx, inst.ChannelID)
	if err != nil || !can {
		return
	}
	if err := e.p.DeleteMessage(ctx, inst.ChannelID, inst.AuthorMessageID); err != nil {
		e.log.Debug().Err(err).Str("message", inst.AuthorMessageID).Msg("author message delete failed")
	}
}

// expire corre en el timer. Si hubo navegación después de armarlo, se re-arma por lo que falta.
func (e *Engine) expire(messageID string) {
	e.mu.Lock()
	inst, ok := e.menus[messageID]
	if !ok {
		e.mu.Unlock()
		return
	}
	if idle := e.now().Sub(inst.lastActive); idle < inst.timeout {
		inst.timer.Reset(inst.timeout - idle)
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), platformCallMax)
	defer cancel()
	e.Stop(ctx, inst, ReasonTimeout)
}

// DropChannel olvida los menús de un canal borrado, sin tocar la plataforma.
func (e *Engine) DropChannel(channelID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, inst := range e.menus {
		if inst.ChannelID == channelID {
			e.removeLocked(inst)
			metrics.MenusStopped.WithLabelValues(string(ReasonChannelDeleted)).Inc()
			n++
		}
	}
	return n
}

// Get devuelve una copia del estado del menú.
func (e *Engine) Get(messageID string) (Instance, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	inst, ok := e.menus[messageID]
	if !ok {
		return Instance{}, false
	}
	return *inst, true
}

func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.menus)
}
