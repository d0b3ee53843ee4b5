package ratelimit

import (
	nethttp "net/http"
)

// Transport takes a token from Limiter before every round trip, so
// retried requests are paced too.
type Transport struct {
	Base    nethttp.RoundTripper
	Limiter *RateLimiter
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *nethttp.Request) (*nethttp.Response, error) {
	if err := t.Limiter.Wait(req.Context()); err != nil {
		if req.Body != nil {
			req.Body.Close()
		}
		return nil, err
	}
	base := t.Base
	if base == nil {
		base = nethttp.DefaultTransport
	}
	return base.RoundTrip(req)
}
