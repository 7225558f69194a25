package probe

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	// DefaultExpectedStatus applies when Config.ExpectedStatus is zero.
	DefaultExpectedStatus = http.StatusOK
	// DefaultUserAgent is sent when Config.UserAgent is empty.
	DefaultUserAgent = "httpprobe/1.0"
)

// Config describes a single probe target and how to reach it.
type Config struct {
	URL string
	// ExpectedStatus is matched exactly. Zero means DefaultExpectedStatus,
	// which is unambiguous because 0 is never a valid HTTP status.
	ExpectedStatus int
	// Timeout bounds one probe end to end. Zero leaves the request without
	// a deadline.
	Timeout         time.Duration
	UserAgent       string
	Insecure        bool
	MinTLS          uint16 // tls.VersionTLS1x; zero means TLS 1.2
	ForceHTTP2      bool
	FollowRedirects bool
	// Proxy accepts http, https, socks5 and socks5h URLs.
	Proxy string
	// Interface binds outgoing sockets to a network device (linux only).
	Interface string
}

// Expected returns the effective expected status code.
func (c Config) Expected() int {
	if c.ExpectedStatus == 0 {
		return DefaultExpectedStatus
	}
	return c.ExpectedStatus
}

func (c Config) withDefaults() Config {
	c.ExpectedStatus = c.Expected()
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.MinTLS == 0 {
		c.MinTLS = tls.VersionTLS12
	}
	return c
}

// Prober issues one uncached GET per Probe call and times it.
type Prober struct {
	cfg    Config
	client *http.Client
}

func New(cfg Config) (*Prober, error) {
	cfg = cfg.withDefaults()
	if cfg.ExpectedStatus < 100 || cfg.ExpectedStatus > 599 {
		return nil, fmt.Errorf("%w: expected status %d out of range", ErrInvalidConfig, cfg.ExpectedStatus)
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("%w: negative timeout", ErrInvalidConfig)
	}
	if cfg.MinTLS < tls.VersionTLS10 || cfg.MinTLS > tls.VersionTLS13 {
		return nil, fmt.Errorf("%w: unknown tls version %#x", ErrInvalidConfig, cfg.MinTLS)
	}

	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Prober{cfg: cfg, client: client}, nil
}

func (p *Prober) Config() Config { return p.cfg }

// Probe performs exactly one GET and returns the elapsed milliseconds between
// dispatch and the end of the response body. A status other than the
// expected one yields *StatusMismatchError; anything that stops the exchange
// yields *TransportError. Nothing is retried.
func (p *Prober) Probe(ctx context.Context) (int64, error) {
	target := p.cfg.URL
	if err := checkURL(target); err != nil {
		return 0, &TransportError{URL: target, Op: "build", Kind: KindRequest, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, &TransportError{URL: target, Op: "build", Kind: KindRequest, Err: err}
	}
	req.Close = true // Connection: close
	req.Header.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("User-Agent", p.cfg.UserAgent)

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, NewTransportError(target, "get", err)
	}
	defer resp.Body.Close()

	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return 0, NewTransportError(target, "read", err)
	}
	elapsed := time.Since(start)

	if resp.StatusCode != p.cfg.ExpectedStatus {
		return 0, &StatusMismatchError{Observed: resp.StatusCode, Expected: p.cfg.ExpectedStatus}
	}

	ms := elapsed.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	return ms, nil
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}
