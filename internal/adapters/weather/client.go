package weather

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Locate geocodifica la búsqueda con Bing Maps. Sin resultados → ErrNotFound.
func (c *Client) Locate(ctx context.Context, query string) (Location, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("maxResults", "1")
	q.Set("key", c.bingKey)

	var dto locationsDTO
	if err := c.doJSON(ctx, "bing", c.bingBase, "/Locations", q, &dto); err != nil {
		return Location{}, err
	}
	if len(dto.ResourceSets) == 0 || dto.ResourceSets[0].EstimatedTotal == 0 || len(dto.ResourceSets[0].Resources) == 0 {
		return Location{}, ErrNotFound
	}
	r := dto.ResourceSets[0].Resources[0]
	if len(r.Point.Coordinates) < 2 {
		return Location{}, ErrNotFound
	}
	city := r.Address.Locality
	if city == "" {
		city = r.Address.FormattedAddress
	}
	return Location{
		City:       city,
		Department: r.Address.AdminDistrict2,
		Region:     r.Address.AdminDistrict,
		Country:    r.Address.CountryRegion,
		Lat:        r.Point.Coordinates[0],
		Lon:        r.Point.Coordinates[1],
	}, nil
}

// Forecast pide el pronóstico de DarkSky; lang es el idioma ("fr" de "fr-FR").
func (c *Client) Forecast(ctx context.Context, lat, lon float64, lang string) (Forecast, error) {
	q := url.Values{}
	q.Set("units", "ca")
	q.Set("exclude", "minutely,hourly,alerts,flags")
	if l, _, _ := strings.Cut(lang, "-"); l != "" {
		q.Set("lang", l)
	}
	path := fmt.Sprintf("/forecast/%s/%g,%g", url.PathEscape(c.darkskyKey), lat, lon)

	var f Forecast
	if err := c.doJSON(ctx, "darksky", c.darkskyBase, path, q, &f); err != nil {
		return Forecast{}, err
	}
	return f, nil
}

// Vigilance trae el nivel de alerta de Météo-France del departamento (código "33", "2A"...).
// Departamento ausente del boletín → ErrNotFound.
func (c *Client) Vigilance(ctx context.Context, department string) (Vigilance, error) {
	var dto vigilanceDTO
	if err := c.doJSON(ctx, "meteofrance", c.meteoBase, "/vigilance.json", nil, &dto); err != nil {
		return Vigilance{}, err
	}
	for _, d := range dto.Data {
		if d.Department == department {
			return Vigilance{Department: d.Department, Level: d.Level, Risk: d.Risk}, nil
		}
	}
	return Vigilance{}, ErrNotFound
}
