package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jose-valero/shardbot/internal/adapters/weather"
	"github.com/jose-valero/shardbot/internal/domain"
)

// keyTranslator devuelve "key" o "key{a=1,b=2}" para poder afirmar sobre los args.
type keyTranslator struct{}

func (keyTranslator) Translate(_ string, key string, args map[string]any) string {
	if len(args) == 0 {
		return key
	}
	parts := make([]string, 0, len(args))
	for k, v := range args {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	sort.Strings(parts)
	return key + "{" + strings.Join(parts, ",") + "}"
}

// ---- weather ----

type fakeWeather struct {
	loc       weather.Location
	locErr    error
	fc        weather.Forecast
	fcErr     error
	gotLang   string
	locateHit int
	vig       weather.Vigilance
	vigErr    error
	vigCode   string
}

func (f *fakeWeather) Locate(_ context.Context, _ string) (weather.Location, error) {
	f.locateHit++
	return f.loc, f.locErr
}

func (f *fakeWeather) Forecast(_ context.Context, _, _ float64, lang string) (weather.Forecast, error) {
	f.gotLang = lang
	return f.fc, f.fcErr
}

func (f *fakeWeather) Vigilance(_ context.Context, department string) (weather.Vigilance, error) {
	f.vigCode = department
	return f.vig, f.vigErr
}

func TestWeatherService_BuildsOnePagePerDayPlusCurrent(t *testing.T) {
	api := &fakeWeather{loc: weather.Location{City: "Paris", Region: "IdF", Country: "France"}}
	api.fc.Timezone = "UTC"
	api.fc.Currently = weather.DataPoint{Summary: "Clear", Icon: "clear-day", Temperature: 20.7}
	// 2024-05-01 (miércoles), 02, 03 (viernes)
	for _, day := range []int64{1714521600, 1714608000, 1714694400} {
		api.fc.Daily.Data = append(api.fc.Daily.Data, weather.DataPoint{Time: day, Icon: "rain"})
	}

	svc := NewWeatherService(api, keyTranslator{})
	req, err := svc.Forecast(context.Background(), "  Paris ", "fr-FR")
	require.NoError(t, err)

	assert.Equal(t, "fr-FR", api.gotLang)
	require.Len(t, req.Pages, 4)
	require.Len(t, req.Entries, 4)
	assert.Equal(t, 1, req.Config.EntriesPerPage)
	assert.Equal(t, "weather.footer", req.Config.Footer)
	assert.Equal(t, "weather.title{location=**Paris** (IdF, France)}", req.Header)

	assert.Equal(t, "weather.currently", req.Pages[0].Title)
	assert.Equal(t, "https://cdn.shardbot.dev/assets/weather/clear-day.png", req.Pages[0].Thumbnail)
	assert.Equal(t, "weather.today", req.Pages[1].Title)
	assert.Equal(t, "weather.tomorrow", req.Pages[2].Title)
	assert.Equal(t, "weekday.5 3", req.Pages[3].Title)

	assert.Contains(t, req.Entries[0], "weather.line.temperature{c=20,f=69}")
	assert.Contains(t, req.Entries[1], "weather.line.sun{rise=00:00,set=00:00}")
}

func TestWeatherService_Errors(t *testing.T) {
	ctx := context.Background()

	api := &fakeWeather{}
	svc := NewWeatherService(api, keyTranslator{})
	_, err := svc.Forecast(ctx, "   ", "en-US")
	assert.ErrorIs(t, err, ErrEmptyQuery)
	_, err = svc.Forecast(ctx, strings.Repeat("x", 65), "en-US")
	assert.ErrorIs(t, err, ErrQueryTooLong)
	assert.Zero(t, api.locateHit, "validación antes de llamar al proveedor")

	api.locErr = errors.Wrap(weather.ErrNotFound, "bing")
	_, err = svc.Forecast(ctx, "nowhere", "en-US")
	assert.ErrorIs(t, err, ErrUnknownPlace)

	api.locErr = &weather.APIError{Service: "bing", Status: 500}
	_, err = svc.Forecast(ctx, "Paris", "en-US")
	assert.ErrorIs(t, err, ErrWeatherFailed)

	api.locErr = nil
	api.fcErr = &weather.APIError{Service: "darksky", Status: 403}
	_, err = svc.Forecast(ctx, "Paris", "en-US")
	assert.ErrorIs(t, err, ErrWeatherFailed)
}

func TestWeatherService_VigilanceLineForFrenchDepartments(t *testing.T) {
	ctx := context.Background()
	api := &fakeWeather{
		loc: weather.Location{City: "Bordeaux", Department: "Gironde", Country: "France"},
		vig: weather.Vigilance{Department: "33", Level: 3, Risk: []int{3, 1, 2, 1, 1, 1, 1, 1, 1}},
	}
	api.fc.Timezone = "UTC"
	svc := NewWeatherService(api, keyTranslator{})

	req, err := svc.Forecast(ctx, "Bordeaux", "fr-FR")
	require.NoError(t, err)
	assert.Equal(t, "33", api.vigCode)
	assert.Contains(t, req.Entries[0],
		"weather.line.vigilance{alerts=weather.vigilance.wind (weather.vigilance.level.3) - weather.vigilance.storm (weather.vigilance.level.2),department=33}")

	// boletín caído: el resto del pronóstico sale igual, sin la línea
	api.vigErr = &weather.APIError{Service: "meteofrance", Status: 503}
	req, err = svc.Forecast(ctx, "Bordeaux", "fr-FR")
	require.NoError(t, err)
	assert.NotContains(t, req.Entries[0], "weather.line.vigilance")

	// fuera de Francia no se consulta
	api.vigCode = ""
	api.vigErr = nil
	api.loc = weather.Location{City: "Madrid", Department: "Madrid", Country: "Spain"}
	req, err = svc.Forecast(ctx, "Madrid", "es-ES")
	require.NoError(t, err)
	assert.Empty(t, api.vigCode)
	assert.NotContains(t, req.Entries[0], "weather.line.vigilance")
}

func TestWeatherHelpers(t *testing.T) {
	assert.Equal(t, 0, WindDirection(0))
	assert.Equal(t, 0, WindDirection(355))
	assert.Equal(t, 4, WindDirection(90))
	assert.Equal(t, 8, WindDirection(180))
	assert.Equal(t, 15, WindDirection(337.5))

	assert.Equal(t, "low", UVLevel(0))
	assert.Equal(t, "medium", UVLevel(5))
	assert.Equal(t, "high", UVLevel(6))
	assert.Equal(t, "very_high", UVLevel(10))
	assert.Equal(t, "extreme", UVLevel(11))

	_, name := MoonPhase(0.5)
	assert.Equal(t, "full", name)
	_, name = MoonPhase(0.99)
	assert.Equal(t, "new", name)
	_, name = MoonPhase(0.75)
	assert.Equal(t, "last_quarter", name)

	tr := func(key string, _ map[string]any) string { return key }
	assert.Equal(t, "weather.vigilance.none", VigilanceAlerts(weather.Vigilance{Risk: []int{1, 1, 1}}, tr))
	assert.Equal(t, "weather.vigilance.heat (weather.vigilance.level.4)",
		VigilanceAlerts(weather.Vigilance{Risk: []int{1, 1, 1, 1, 1, 4, 1, 1, 1, 2}}, tr), "índices fuera de RiskTypes se ignoran")
}

// ---- jobs ----

type memJobRepo struct {
	saved []domain.Job
	err   error
}

func (m *memJobRepo) Upsert(_ context.Context, j domain.Job) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, j)
	return nil
}

func TestJobService_Remind(t *testing.T) {
	repo := &memJobRepo{}
	svc := NewJobService(repo)
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return t0 }

	j, err := svc.Remind(context.Background(), RemindInput{ChannelID: "c1", AuthorID: "u1", Content: " tea ", In: 10 * time.Minute})
	require.NoError(t, err)
	assert.Equal(t, domain.JobRemind, j.Type)
	assert.Equal(t, "tea", j.Content)
	assert.Equal(t, t0.Add(10*time.Minute), j.End)
	assert.NotEmpty(t, j.ID)
	require.Len(t, repo.saved, 1)
	assert.Equal(t, j, repo.saved[0])
}

func TestJobService_Validation(t *testing.T) {
	repo := &memJobRepo{}
	svc := NewJobService(repo)
	ctx := context.Background()

	_, err := svc.Remind(ctx, RemindInput{Content: "x", In: 0})
	assert.ErrorIs(t, err, ErrInvalidDelay)
	_, err = svc.Remind(ctx, RemindInput{Content: "x", In: 31 * 24 * time.Hour})
	assert.ErrorIs(t, err, ErrInvalidDelay)
	_, err = svc.Remind(ctx, RemindInput{Content: "  ", In: time.Minute})
	assert.ErrorIs(t, err, ErrEmptyContent)
	_, err = svc.Poll(ctx, PollInput{Question: "q?", In: time.Minute})
	assert.ErrorIs(t, err, ErrGuildOnly)
	assert.Empty(t, repo.saved)

	j, err := svc.Poll(ctx, PollInput{GuildID: "g1", ChannelID: "c1", MessageID: "m1", Question: "q?", In: time.Minute})
	require.NoError(t, err)
	assert.Equal(t, domain.JobPoll, j.Type)
	assert.Equal(t, "m1", j.MessageID)

	repo.err = errors.New("db down")
	_, err = svc.Remind(ctx, RemindInput{Content: "x", In: time.Minute})
	assert.Error(t, err)
}

// ---- cleanup ----

type cleanupFakes struct {
	forgot    []string
	callsErr  error
	feedsDel  []string
	dropped   []string
	radioGone []string
}

func (f *cleanupFakes) ForgetChannel(_ context.Context, guildID, channelID string) error {
	f.forgot = append(f.forgot, guildID+"/"+channelID)
	return nil
}

type callsByChannel struct{ f *cleanupFakes }

func (c callsByChannel) DeleteByChannel(context.Context, string) (int64, error) {
	return 1, c.f.callsErr
}

func (f *cleanupFakes) List(context.Context) ([]domain.Feed, error)       { return nil, nil }
func (f *cleanupFakes) SetLastItem(context.Context, string, string) error { return nil }
func (f *cleanupFakes) DeleteByChannel(_ context.Context, ch string) (int64, error) {
	f.feedsDel = append(f.feedsDel, ch)
	return 1, nil
}
func (f *cleanupFakes) DropChannel(ch string) int { f.dropped = append(f.dropped, ch); return 1 }
func (f *cleanupFakes) Remove(ch string)          { f.radioGone = append(f.radioGone, ch) }

func TestCleanupService_ChannelDeleted(t *testing.T) {
	f := &cleanupFakes{}
	svc := NewCleanupService(f, callsByChannel{f}, f, f, f, zerolog.Nop())

	require.NoError(t, svc.ChannelDeleted(context.Background(), "g1", "c1"))
	assert.Equal(t, []string{"g1/c1"}, f.forgot)
	assert.Equal(t, []string{"c1"}, f.feedsDel)
	assert.Equal(t, []string{"c1"}, f.dropped)
	assert.Equal(t, []string{"c1"}, f.radioGone)
}

func TestCleanupService_DMChannelAndPartialFailure(t *testing.T) {
	f := &cleanupFakes{callsErr: errors.New("db down")}
	svc := NewCleanupService(f, callsByChannel{f}, f, f, f, zerolog.Nop())

	err := svc.ChannelDeleted(context.Background(), "", "dm1")
	require.Error(t, err)
	assert.Empty(t, f.forgot, "sin guild no hay settings que tocar")
	assert.Equal(t, []string{"dm1"}, f.feedsDel, "el fallo de calls no frena a feeds")
}

// ---- rss ----

type memFeeds struct {
	mu    sync.Mutex
	feeds []domain.Feed
	last  map[string]string
}

func (m *memFeeds) List(context.Context) ([]domain.Feed, error) { return m.feeds, nil }
func (m *memFeeds) SetLastItem(_ context.Context, id, item string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last[id] = item
	return nil
}
func (m *memFeeds) DeleteByChannel(context.Context, string) (int64, error) { return 0, nil }

type memPoster struct{ sent []string }

func (p *memPoster) SendMessage(_ context.Context, ch, content string) error {
	p.sent = append(p.sent, ch+"|"+content)
	return nil
}

const rssBody = `<?xml version="1.0"?>
<rss version="2.0"><channel><title>News</title>
<item><title>Three</title><link>https://n/3</link><guid>3</guid></item>
<item><title>Two</title><link>https://n/2</link><guid>2</guid></item>
<item><title>One</title><link>https://n/1</link><guid>1</guid></item>
</channel></rss>`

func TestFeedService_PostsOnlyNewItemsOldestFirst(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(rssBody))
	}))
	defer srv.Close()

	feeds := &memFeeds{
		feeds: []domain.Feed{
			{ID: "f1", ChannelID: "c1", URL: srv.URL + "/rss", LastItem: "1"},
			{ID: "f2", ChannelID: "c2", URL: srv.URL + "/broken", LastItem: "1"},
			{ID: "f3", ChannelID: "c3", URL: srv.URL + "/rss"},
		},
		last: map[string]string{},
	}
	poster := &memPoster{}
	svc := NewFeedService(feeds, poster, zerolog.Nop())
	svc.http = srv.Client()

	err := svc.Process(context.Background())
	require.Error(t, err, "el feed roto se reporta")

	assert.Equal(t, []string{
		"c1|📰 **Two**\nhttps://n/2",
		"c1|📰 **Three**\nhttps://n/3",
	}, poster.sent, "f3 es nuevo: no publica el historial")
	assert.Equal(t, map[string]string{"f1": "3", "f3": "3"}, feeds.last)
}

const atomBody = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom"><title>Blog</title>
<entry><title>Beta</title><link href="https://b/2"/><id>urn:b:2</id><updated>2024-05-02T00:00:00Z</updated></entry>
<entry><title>Alpha</title><link href="https://b/1"/><id>urn:b:1</id><updated>2024-05-01T00:00:00Z</updated></entry>
</feed>`

func TestFeedService_ReadsAtomFeeds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/atom+xml")
		_, _ = w.Write([]byte(atomBody))
	}))
	defer srv.Close()

	feeds := &memFeeds{
		feeds: []domain.Feed{{ID: "f1", ChannelID: "c1", URL: srv.URL, LastItem: "urn:b:1"}},
		last:  map[string]string{},
	}
	poster := &memPoster{}
	svc := NewFeedService(feeds, poster, zerolog.Nop())
	svc.http = srv.Client()

	require.NoError(t, svc.Process(context.Background()))
	assert.Equal(t, []string{"c1|📰 **Beta**\nhttps://b/2"}, poster.sent)
	assert.Equal(t, map[string]string{"f1": "urn:b:2"}, feeds.last)
}
