// Package report captura fallas no manejadas en los bordes async (handlers, ticks) y las
// reporta al operador y al sink central sin tirar el proceso.
package report

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/jose-valero/shardbot/internal/infra/metrics"
)

const (
	EventLog   = "log"
	EventError = "error"

	maxDMLen  = 1900
	reportMax = 5 * time.Second
)

// Event es lo que se publica al sink central (el "sharder").
type Event struct {
	Type    string    `json:"type"`
	Shard   int       `json:"shard"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

type Sink interface {
	Publish(ctx context.Context, e Event) error
}

// Lo implementa internal/adapters/discord.Platform
type OperatorDM interface {
	SendDM(ctx context.Context, userID, content string) error
}

type Option func(*Reporter)

func WithSink(s Sink) Option { return func(r *Reporter) { r.sink = s } }

func WithOperator(dm OperatorDM, userID string) Option {
	return func(r *Reporter) { r.dm, r.operatorID = dm, userID }
}

// WithSuppress: fallas "esperables" de la plataforma que no se notifican.
func WithSuppress(f func(error) bool) Option { return func(r *Reporter) { r.suppress = f } }

func WithClock(now func() time.Time) Option { return func(r *Reporter) { r.now = now } }

type Reporter struct {
	log        zerolog.Logger
	shard      int
	sink       Sink
	dm         OperatorDM
	operatorID string
	suppress   func(error) bool
	now        func() time.Time
}

func New(log zerolog.Logger, shard int, opts ...Option) *Reporter {
	r := &Reporter{
		log:      log.With().Str("component", "report").Logger(),
		shard:    shard,
		suppress: func(error) bool { return false },
		now:      time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Report notifica una falla no manejada. Nunca devuelve error: si el reporte falla, se loguea.
func (r *Reporter) Report(ctx context.Context, err error) {
	if err == nil {
		return
	}
	if r.suppress(err) {
		metrics.Faults.WithLabelValues("suppressed").Inc()
		r.log.Debug().Err(err).Msg("platform fault suppressed")
		return
	}
	metrics.Faults.WithLabelValues("reported").Inc()
	r.log.Error().Err(err).Int("shard", r.shard).Msg("unhandled fault")

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reportMax)
	defer cancel()

	stack := fmt.Sprintf("%+v", err)
	if r.sink != nil {
		e := Event{Type: EventError, Shard: r.shard, Message: stack, At: r.now()}
		if perr := r.sink.Publish(ctx, e); perr != nil {
			r.log.Warn().Err(perr).Msg("sink publish failed")
		}
	}
	if r.dm != nil && r.operatorID != "" {
		msg := fmt.Sprintf("`[%s]` ⚠ **Unhandled fault** on shard **%d** ⚠\n```\n%s```",
			r.now().Format("15:04:05"), r.shard, truncate(stack, maxDMLen))
		if derr := r.dm.SendDM(ctx, r.operatorID, msg); derr != nil {
			r.log.Warn().Err(derr).Msg("operator dm failed")
		}
	}
}

// Recover se usa como `defer rep.Recover("where")`.
func (r *Reporter) Recover(where string) {
	rec := recover()
	if rec == nil {
		return
	}
	var err error
	if e, ok := rec.(error); ok {
		err = errors.WithStack(e)
	} else {
		err = errors.Newf("panic: %v", rec)
	}
	r.Report(context.Background(), errors.Wrapf(err, "%s", where))
}

// Go corre fn en una goroutine protegida.
func (r *Reporter) Go(where string, fn func()) {
	go func() {
		defer r.Recover(where)
		fn()
	}()
}

// Info publica una línea informativa al sink (ej: shard READY).
func (r *Reporter) Info(ctx context.Context, msg string) {
	r.log.Info().Int("shard", r.shard).Msg(msg)
	if r.sink == nil {
		return
	}
	if err := r.sink.Publish(ctx, Event{Type: EventLog, Shard: r.shard, Message: msg, At: r.now()}); err != nil {
		r.log.Warn().Err(err).Msg("sink publish failed")
	}
}

// truncate corta a n bytes como máximo sin partir una runa.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "…"
}
