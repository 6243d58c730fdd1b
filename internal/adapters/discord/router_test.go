package discord

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jose-valero/shardbot/internal/app/pagination"
	"github.com/jose-valero/shardbot/internal/app/radio"
)

type fakeMenus struct{ got []pagination.Reaction }

func (m *fakeMenus) Create(context.Context, pagination.Request) (*pagination.Instance, error) {
	return nil, nil
}
func (m *fakeMenus) HandleReaction(_ context.Context, r pagination.Reaction) {
	m.got = append(m.got, r)
}

type fakeFaults struct {
	reported []error
	infos    []string
	started  []string
}

func (f *fakeFaults) Report(_ context.Context, err error) { f.reported = append(f.reported, err) }
func (f *fakeFaults) Recover(string)                      { _ = recover() }
func (f *fakeFaults) Info(_ context.Context, msg string)  { f.infos = append(f.infos, msg) }

// Go sólo registra: los loops se prueban llamándolos directo.
func (f *fakeFaults) Go(where string, _ func()) { f.started = append(f.started, where) }

type fakeReady struct{ v bool }

func (r *fakeReady) SetReady(v bool) { r.v = v }
func (r *fakeReady) Ready() bool     { return r.v }

type fakePresence struct {
	statuses []string
	err      error
}

func (p *fakePresence) UpdateGameStatus(_ int, name string) error {
	p.statuses = append(p.statuses, name)
	return p.err
}

type fakeCleanup struct {
	calls []string
	err   error
}

func (c *fakeCleanup) ChannelDeleted(_ context.Context, guildID, channelID string) error {
	c.calls = append(c.calls, guildID+"/"+channelID)
	return c.err
}

type fakeCalls struct{ touched []string }

func (c *fakeCalls) Touch(_ context.Context, channelID string) error {
	c.touched = append(c.touched, channelID)
	return nil
}

type routerHarness struct {
	r        *Router
	s        *discordgo.Session
	menus    *fakeMenus
	faults   *fakeFaults
	ready    *fakeReady
	cleanup  *fakeCleanup
	calls    *fakeCalls
	presence *fakePresence
	tracker  *radio.Tracker
	now      time.Time
}

func newRouterHarness(t *testing.T) *routerHarness {
	t.Helper()
	s := &discordgo.Session{State: discordgo.NewState(), VoiceConnections: map[string]*discordgo.VoiceConnection{}}
	s.State.User = &discordgo.User{ID: "bot"}

	h := &routerHarness{
		s:        s,
		menus:    &fakeMenus{},
		faults:   &fakeFaults{},
		ready:    &fakeReady{v: true},
		cleanup:  &fakeCleanup{},
		calls:    &fakeCalls{},
		presence: &fakePresence{},
		tracker:  radio.NewTracker(),
		now:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	h.r = NewRouter(Deps{
		Session:  s,
		Platform: NewPlatform(s, 0, 1, zerolog.Nop()),
		Menus:    h.menus,
		Tracker:  h.tracker,
		Ready:    h.ready,
		Cleanup:  h.cleanup,
		Calls:    h.calls,
		Faults:   h.faults,
	}, Options{Defaults: Defaults{Locale: "en-US", Prefix: "!"}}, zerolog.Nop())
	h.r.now = func() time.Time { return h.now }
	h.r.presence = h.presence
	return h
}

func TestReactionsAreForwardedExceptOwn(t *testing.T) {
	h := newRouterHarness(t)

	h.r.onReaction(h.s, &discordgo.MessageReaction{UserID: "bot", MessageID: "m1", Emoji: discordgo.Emoji{Name: "▶"}})
	h.r.onReaction(h.s, &discordgo.MessageReaction{UserID: "u1", MessageID: "m1", Emoji: discordgo.Emoji{Name: "▶"}})

	require.Len(t, h.menus.got, 1)
	assert.Equal(t, pagination.Reaction{MessageID: "m1", UserID: "u1", Emoji: "▶"}, h.menus.got[0])
}

func TestChannelDeleteRunsCleanupAndReportsFailure(t *testing.T) {
	h := newRouterHarness(t)
	h.cleanup.err = errors.New("db down")

	h.r.onChannelDelete(h.s, &discordgo.ChannelDelete{Channel: &discordgo.Channel{ID: "c1", GuildID: "g1"}})

	assert.Equal(t, []string{"g1/c1"}, h.cleanup.calls)
	require.Len(t, h.faults.reported, 1)
}

func TestReadyStartsPresenceOnceAndRefreshesOnlyWhileReady(t *testing.T) {
	h := newRouterHarness(t)
	h.ready.v = false
	h.s.State.Guilds = []*discordgo.Guild{{ID: "g1"}, {ID: "g2"}}

	h.r.onReady(h.s, &discordgo.Ready{})
	h.r.onReady(h.s, &discordgo.Ready{})

	assert.True(t, h.ready.v)
	assert.Equal(t, []string{"discord.presence"}, h.faults.started, "un solo loop aunque haya varios READY")
	assert.Equal(t, []string{"!help | 2 guilds | shard 1/1", "!help | 2 guilds | shard 1/1"}, h.presence.statuses)

	h.r.onDisconnect(h.s, &discordgo.Disconnect{})
	h.r.refreshPresence()
	assert.Len(t, h.presence.statuses, 2, "sin sesión lista no se toca la presencia")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h.r.Presence(ctx, time.Millisecond)
	assert.Len(t, h.presence.statuses, 2)
}

func TestDisconnectPausesScheduler(t *testing.T) {
	h := newRouterHarness(t)
	h.r.onDisconnect(h.s, &discordgo.Disconnect{})
	assert.False(t, h.ready.v)
}

func TestBotVoiceMovesUpdateTracker(t *testing.T) {
	h := newRouterHarness(t)

	h.r.onVoiceStateUpdate(h.s, &discordgo.VoiceStateUpdate{
		VoiceState: &discordgo.VoiceState{UserID: "bot", ChannelID: "v1"},
	})
	_, ok := h.tracker.LastActive("v1")
	assert.True(t, ok)

	h.r.onVoiceStateUpdate(h.s, &discordgo.VoiceStateUpdate{
		VoiceState:   &discordgo.VoiceState{UserID: "bot", ChannelID: ""},
		BeforeUpdate: &discordgo.VoiceState{UserID: "bot", ChannelID: "v1"},
	})
	assert.Equal(t, 0, h.tracker.Len())
}

func TestListenerUpdateWithoutConnectionIsIgnored(t *testing.T) {
	h := newRouterHarness(t)
	h.r.onVoiceStateUpdate(h.s, &discordgo.VoiceStateUpdate{
		VoiceState: &discordgo.VoiceState{UserID: "u1", ChannelID: "v9"},
	})
	assert.Equal(t, 0, h.tracker.Len())
}

func TestCallActivityIsThrottledPerChannel(t *testing.T) {
	h := newRouterHarness(t)
	msg := func(ch string, bot bool) *discordgo.MessageCreate {
		return &discordgo.MessageCreate{Message: &discordgo.Message{
			ChannelID: ch,
			Author:    &discordgo.User{ID: "u1", Bot: bot},
		}}
	}

	h.r.onMessageCreate(h.s, msg("c1", false))
	h.r.onMessageCreate(h.s, msg("c1", false))
	h.r.onMessageCreate(h.s, msg("c2", false))
	h.r.onMessageCreate(h.s, msg("c3", true))
	assert.Equal(t, []string{"c1", "c2"}, h.calls.touched)

	h.now = h.now.Add(callTouchEvery)
	h.r.onMessageCreate(h.s, msg("c1", false))
	assert.Equal(t, []string{"c1", "c2", "c1"}, h.calls.touched)
}

func TestHandlerPanicIsRecovered(t *testing.T) {
	h := newRouterHarness(t)
	assert.NotPanics(t, func() {
		// ChannelDelete sin cleanup configurado explota dentro del handler
		h.r.cleanup = nil
		h.r.onChannelDelete(h.s, &discordgo.ChannelDelete{Channel: &discordgo.Channel{ID: "c1"}})
	})
}
