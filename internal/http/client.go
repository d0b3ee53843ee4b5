package http

import (
	"crypto/tls"
	nethttp "net/http"
	"os"

	"golang.org/x/net/http2"

	"github.com/minidrive/minidrive/internal/config"
	"github.com/minidrive/minidrive/internal/logging"
	"github.com/minidrive/minidrive/internal/ratelimit"
)

// NewClient creates the base HTTP client used for every backend call.
//
// Key features:
//   - Proxy support (ConfigureHTTPClient)
//   - HTTP/2 when talking directly to the backend, HTTP/1.1 through proxies
//   - Request pacing when cfg.RequestsPerSecond > 0
//
// Mutations use this client as-is. Idempotent reads wrap it with NewRetryingClient.
func NewClient(cfg *config.Config, logger *logging.Logger) (*nethttp.Client, error) {
	client, err := ConfigureHTTPClient(cfg, logger)
	if err != nil {
		return nil, err
	}

	// NTLM mode wraps the transport in ntlmssp.Negotiator; leave it alone
	if tr, ok := client.Transport.(*nethttp.Transport); ok {
		configureHTTP2(tr, cfg)
	}

	if cfg.RequestsPerSecond > 0 {
		burst := float64(cfg.RequestBurst)
		if burst < 1 {
			burst = 1
		}
		client.Transport = &ratelimit.Transport{
			Base:    client.Transport,
			Limiter: ratelimit.NewRateLimiter(cfg.RequestsPerSecond, burst, logger),
		}
	}

	return client, nil
}

func configureHTTP2(tr *nethttp.Transport, cfg *config.Config) {
	tr.ForceAttemptHTTP2 = true
	_ = http2.ConfigureTransport(tr)

	// Set DISABLE_HTTP2=true to force HTTP/1.1
	disable := os.Getenv("DISABLE_HTTP2") == "true"

	// Proxies often mishandle HTTP/2 multiplexing; FORCE_HTTP2=true overrides
	if cfg.ProxyActive() && os.Getenv("FORCE_HTTP2") != "true" {
		disable = true
	}

	if disable {
		tr.ForceAttemptHTTP2 = false
		tr.TLSNextProto = make(map[string]func(string, *tls.Conn) nethttp.RoundTripper)
	}
}
