package probe

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"golang.org/x/net/proxy"
)

// newClient builds a client dedicated to one Prober. Keep-alives are off so
// every probe pays for its own connection.
func newClient(cfg Config) (*http.Client, error) {
	dialer := &net.Dialer{Timeout: cfg.Timeout}
	if cfg.Interface != "" {
		if err := bindToInterface(dialer, cfg.Interface); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}

	tr := &http.Transport{
		DialContext: dialer.DialContext,
		TLSClientConfig: &tls.Config{
			MinVersion:         cfg.MinTLS,
			MaxVersion:         tls.VersionTLS13,
			InsecureSkipVerify: cfg.Insecure,
		},
		ForceAttemptHTTP2:     cfg.ForceHTTP2,
		DisableKeepAlives:     true,
		TLSHandshakeTimeout:   cfg.Timeout,
		ResponseHeaderTimeout: cfg.Timeout,
	}

	if cfg.Proxy != "" {
		if err := applyProxy(tr, dialer, cfg.Proxy); err != nil {
			return nil, err
		}
	}

	c := &http.Client{
		Transport: tr,
		Timeout:   cfg.Timeout,
	}
	if !cfg.FollowRedirects {
		c.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return c, nil
}

func applyProxy(tr *http.Transport, dialer *net.Dialer, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: proxy %q: %v", ErrInvalidConfig, raw, err)
	}

	switch u.Scheme {
	case "http", "https":
		tr.Proxy = http.ProxyURL(u)
	case "socks5", "socks5h":
		d, err := proxy.FromURL(u, dialer)
		if err != nil {
			return fmt.Errorf("%w: proxy %q: %v", ErrInvalidConfig, raw, err)
		}
		if cd, ok := d.(proxy.ContextDialer); ok {
			tr.DialContext = cd.DialContext
		} else {
			tr.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
				return d.Dial(network, addr)
			}
		}
	default:
		return fmt.Errorf("%w: unsupported proxy scheme %q", ErrInvalidConfig, u.Scheme)
	}
	return nil
}
