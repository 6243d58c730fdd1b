package weather

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

const (
	defaultBingBase    = "https://dev.virtualearth.net/REST/v1"
	defaultDarkSkyBase = "https://api.darksky.net"
	defaultMeteoBase   = "http://api.meteofrance.com/files/vigilance"
)

type Client struct {
	bingKey     string
	darkskyKey  string
	http        *http.Client
	bingBase    string
	darkskyBase string
	meteoBase   string
}

func New(bingKey, darkskyKey string, opts ...Option) *Client {
	c := &Client{
		bingKey:     bingKey,
		darkskyKey:  darkskyKey,
		http:        &http.Client{Timeout: 10 * time.Second},
		bingBase:    defaultBingBase,
		darkskyBase: defaultDarkSkyBase,
		meteoBase:   defaultMeteoBase,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// doJSON: GET + decode, 404 → ErrNotFound, 429 con Retry-After reintenta una sola vez.
func (c *Client) doJSON(ctx context.Context, service, base, path string, q url.Values, out any) error {
	return c.do(ctx, service, base, path, q, out, true)
}

func (c *Client) do(ctx context.Context, service, base, path string, q url.Values, out any, retry bool) error {
	u := base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return errors.Wrap(err, service)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s http", service)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusTooManyRequests && retry {
		if sec, _ := strconv.Atoi(res.Header.Get("Retry-After")); sec > 0 {
			select {
			case <-time.After(time.Duration(sec) * time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
			return c.do(ctx, service, base, path, q, out, false)
		}
	}

	if res.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return &APIError{Service: service, Status: res.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	return errors.Wrapf(json.NewDecoder(res.Body).Decode(out), "%s decode", service)
}
