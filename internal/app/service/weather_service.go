package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/jose-valero/shardbot/internal/adapters/weather"
	"github.com/jose-valero/shardbot/internal/app/pagination"
)

const (
	maxWeatherQuery    = 64
	defaultWeatherIcon = "https://cdn.shardbot.dev/assets/weather/%s.png"
)

var (
	ErrEmptyQuery    = errors.New("weather: empty query")
	ErrQueryTooLong  = errors.New("weather: query too long")
	ErrUnknownPlace  = errors.New("weather: unknown location")
	ErrWeatherFailed = errors.New("weather: provider failure")
)

type WeatherService struct {
	api     WeatherAPI
	tr      Translator
	iconURL string // formato con %s = icono de DarkSky
}

func NewWeatherService(api WeatherAPI, tr Translator) *WeatherService {
	return &WeatherService{api: api, tr: tr, iconURL: defaultWeatherIcon}
}

// Forecast arma el cuerpo del menú: una página para "ahora" y una por día.
// Fallas del proveedor salen como ErrUnknownPlace o ErrWeatherFailed.
func (s *WeatherService) Forecast(ctx context.Context, query, locale string) (pagination.Request, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return pagination.Request{}, ErrEmptyQuery
	}
	if len(query) > maxWeatherQuery {
		return pagination.Request{}, ErrQueryTooLong
	}

	loc, err := s.api.Locate(ctx, query)
	if errors.Is(err, weather.ErrNotFound) {
		return pagination.Request{}, ErrUnknownPlace
	}
	if err != nil {
		return pagination.Request{}, errors.Mark(errors.Wrap(err, "locate"), ErrWeatherFailed)
	}
	fc, err := s.api.Forecast(ctx, loc.Lat, loc.Lon, locale)
	if err != nil {
		return pagination.Request{}, errors.Mark(errors.Wrap(err, "forecast"), ErrWeatherFailed)
	}

	tz, err := time.LoadLocation(fc.Timezone)
	if err != nil {
		tz = time.UTC
	}
	t := func(key string, args map[string]any) string { return s.tr.Translate(locale, key, args) }

	pages := []pagination.Page{{Title: t("weather.currently", nil), Thumbnail: s.icon(fc.Currently.Icon)}}
	entries := []string{s.current(fc.Currently, s.vigilance(ctx, loc, t), t)}

	for i, day := range fc.Daily.Data {
		var title string
		switch i {
		case 0:
			title = t("weather.today", nil)
		case 1:
			title = t("weather.tomorrow", nil)
		default:
			d := time.Unix(day.Time, 0).In(tz)
			title = fmt.Sprintf("%s %d", t("weekday."+strconv.Itoa(int(d.Weekday())), nil), d.Day())
		}
		pages = append(pages, pagination.Page{Title: title, Thumbnail: s.icon(day.Icon)})
		entries = append(entries, s.daily(day, tz, t))
	}

	city := loc.City
	if city == "" {
		city = t("global.unknown", nil)
	}
	place := "**" + city + "**"
	if region := joinNonEmpty(", ", loc.Region, loc.Country); region != "" {
		place += " (" + region + ")"
	}

	return pagination.Request{
		Locale:  locale,
		Header:  t("weather.title", map[string]any{"location": place}),
		Pages:   pages,
		Entries: entries,
		Config: pagination.Config{
			EntriesPerPage: 1,
			Footer:         t("weather.footer", nil),
		},
	}, nil
}

func (s *WeatherService) icon(name string) string {
	if name == "" {
		return ""
	}
	return fmt.Sprintf(s.iconURL, name)
}

type tfunc func(key string, args map[string]any) string

func (s *WeatherService) current(p weather.DataPoint, vigilance string, t tfunc) string {
	uv := int(math.Floor(p.UVIndex))
	lines := []string{
		t("weather.line.summary", map[string]any{"value": p.Summary}),
		t("weather.line.temperature", map[string]any{"c": floor(p.Temperature), "f": fahrenheit(p.Temperature)}),
		t("weather.line.feels_like", map[string]any{"c": floor(p.ApparentTemperature), "f": fahrenheit(p.ApparentTemperature)}),
		wind(p, t),
		t("weather.line.uv", map[string]any{"index": uv, "level": t("weather.uv."+UVLevel(uv), nil)}),
		t("weather.line.pressure", map[string]any{"value": floor(p.Pressure)}),
		t("weather.line.humidity", map[string]any{"value": floor(p.Humidity * 100)}),
		t("weather.line.clouds", map[string]any{"value": floor(p.CloudCover * 100)}),
	}
	if vigilance != "" {
		lines = append(lines, vigilance)
	}
	return strings.Join(lines, "\n")
}

// vigilance: línea de alertas de Météo-France, sólo para departamentos franceses.
// Cualquier falla del boletín deja la línea vacía.
func (s *WeatherService) vigilance(ctx context.Context, loc weather.Location, t tfunc) string {
	if loc.Country != "France" {
		return ""
	}
	code, ok := weather.DepartmentCode(loc.Department)
	if !ok {
		return ""
	}
	v, err := s.api.Vigilance(ctx, code)
	if err != nil {
		return ""
	}
	return t("weather.line.vigilance", map[string]any{"department": v.Department, "alerts": VigilanceAlerts(v, t)})
}

// VigilanceAlerts lista los riesgos en amarillo o peor; sin ninguno, el texto "verde".
func VigilanceAlerts(v weather.Vigilance, t tfunc) string {
	var alerts []string
	for i, level := range v.Risk {
		if i >= len(weather.RiskTypes) || level < 2 || level > 4 {
			continue
		}
		alerts = append(alerts, t("weather.vigilance."+weather.RiskTypes[i], nil)+" ("+t("weather.vigilance.level."+strconv.Itoa(level), nil)+")")
	}
	if len(alerts) == 0 {
		return t("weather.vigilance.none", nil)
	}
	return strings.Join(alerts, " - ")
}

func (s *WeatherService) daily(p weather.DataPoint, tz *time.Location, t tfunc) string {
	uv := int(math.Floor(p.UVIndex))
	emoji, phase := MoonPhase(p.MoonPhase)
	return strings.Join([]string{
		t("weather.line.summary", map[string]any{"value": p.Summary}),
		t("weather.line.temperatures", map[string]any{
			"min": floor(p.TemperatureMin), "max": floor(p.TemperatureMax),
			"minF": fahrenheit(p.TemperatureMin), "maxF": fahrenheit(p.TemperatureMax),
		}),
		wind(p, t),
		t("weather.line.uv", map[string]any{"index": uv, "level": t("weather.uv."+UVLevel(uv), nil)}),
		t("weather.line.humidity", map[string]any{"value": floor(p.Humidity * 100)}),
		t("weather.line.pressure", map[string]any{"value": floor(p.Pressure)}),
		t("weather.line.sun", map[string]any{
			"rise": time.Unix(p.SunriseTime, 0).In(tz).Format("15:04"),
			"set":  time.Unix(p.SunsetTime, 0).In(tz).Format("15:04"),
		}),
		t("weather.line.moon", map[string]any{"emoji": emoji, "phase": t("weather.moon."+phase, nil)}),
	}, "\n")
}

func wind(p weather.DataPoint, t tfunc) string {
	return t("weather.line.wind", map[string]any{
		"direction": t("weather.wind."+strconv.Itoa(WindDirection(p.WindBearing)), nil),
		"kph":       floor(p.WindSpeed),
		"mph":       floor(p.WindSpeed / 1.609),
	})
}

// WindDirection: índice 0..15 de la rosa de 16 rumbos (0 = N, 4 = E).
func WindDirection(bearing float64) int {
	return int(math.Floor(bearing/22.5+0.5)) % 16
}

func UVLevel(index int) string {
	switch {
	case index <= 2:
		return "low"
	case index <= 5:
		return "medium"
	case index <= 7:
		return "high"
	case index <= 10:
		return "very_high"
	default:
		return "extreme"
	}
}

// MoonPhase: DarkSky da la fracción del ciclo lunar en [0, 1).
func MoonPhase(f float64) (emoji, name string) {
	switch {
	case f > 0.95 || f <= 0.05:
		return "🌑", "new"
	case f <= 0.20:
		return "🌒", "waxing_crescent"
	case f <= 0.30:
		return "🌓", "first_quarter"
	case f <= 0.45:
		return "🌔", "waxing_gibbous"
	case f <= 0.55:
		return "🌕", "full"
	case f <= 0.70:
		return "🌖", "waning_gibbous"
	case f <= 0.80:
		return "🌗", "last_quarter"
	default:
		return "🌘", "waning_crescent"
	}
}

func floor(v float64) int      { return int(math.Floor(v)) }
func fahrenheit(c float64) int { return int(math.Floor(c*1.8 + 32)) }

func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
