package weather

import "net/http"

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}
func WithBingBaseURL(u string) Option {
	return func(c *Client) { c.bingBase = u }
}
func WithDarkSkyBaseURL(u string) Option {
	return func(c *Client) { c.darkskyBase = u }
}
func WithMeteoFranceBaseURL(u string) Option {
	return func(c *Client) { c.meteoBase = u }
}
