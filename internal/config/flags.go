package config

import (
	"crypto/tls"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hamed0406/httpprobe/internal/probe"
	"github.com/hamed0406/httpprobe/internal/runner"
)

// CLI holds the command-line options of httpprobe.
type CLI struct {
	URL       string
	Status    int
	Count     int
	Timeout   time.Duration
	UserAgent string
	Insecure  bool
	TLS       string
	HTTP2     bool
	Follow    bool
	Proxy     string
	Interface string

	JSON         bool
	Progress     bool
	SlackWebhook string
	LogDir       string
	Verbose      bool
	Version      bool
}

var tlsVersions = map[string]uint16{
	"1.0": tls.VersionTLS10,
	"1.1": tls.VersionTLS11,
	"1.2": tls.VersionTLS12,
	"1.3": tls.VersionTLS13,
}

// ParseFlags parses args (without the program name). The URL may be given
// with -url or as the first positional argument.
func ParseFlags(name string, args []string, output io.Writer) (CLI, error) {
	var c CLI
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	if output != nil {
		fs.SetOutput(output)
	}

	fs.StringVar(&c.URL, "url", "", "URL to probe")
	fs.IntVar(&c.Status, "status", probe.DefaultExpectedStatus, "expected status code")
	fs.IntVar(&c.Count, "count", runner.DefaultCount, "number of sequential probes (0 issues none)")
	fs.DurationVar(&c.Timeout, "timeout", 0, "per-probe timeout, 0 for none")
	fs.StringVar(&c.UserAgent, "ua", probe.DefaultUserAgent, "User-Agent header")
	fs.BoolVar(&c.Insecure, "insecure", false, "skip TLS verification")
	fs.StringVar(&c.TLS, "tls", "1.2", "minimum TLS version: 1.0, 1.1, 1.2 or 1.3")
	fs.BoolVar(&c.HTTP2, "http2", false, "force attempt HTTP/2")
	fs.BoolVar(&c.Follow, "follow", false, "follow redirects before checking the status")
	fs.StringVar(&c.Proxy, "proxy", "", "http://127.0.0.1:1081 socks5://127.0.0.1:1080 socks5h://127.0.0.1:1080")
	fs.StringVar(&c.Interface, "interface", "", "bind to a network interface (linux)")
	fs.BoolVar(&c.JSON, "json", false, "print the run report as JSON")
	fs.BoolVar(&c.Progress, "progress", false, "show a progress bar on stderr")
	fs.StringVar(&c.SlackWebhook, "slack-webhook", "", "also post the sequence to a Slack webhook")
	fs.StringVar(&c.LogDir, "log-dir", "", "write JSON logs to this directory")
	fs.BoolVar(&c.Verbose, "verbose", false, "debug logs on stderr")
	fs.BoolVar(&c.Version, "version", false, "print version and exit")

	// flag stops at the first positional argument; resume after it so
	// "httpprobe URL -count 0" reads the trailing flags too.
	var positional []string
	rest := args
	for {
		if err := fs.Parse(rest); err != nil {
			return c, err
		}
		if fs.NArg() == 0 {
			break
		}
		positional = append(positional, fs.Arg(0))
		rest = fs.Args()[1:]
	}

	switch {
	case len(positional) > 1:
		return c, fmt.Errorf("unexpected arguments: %s", strings.Join(positional[1:], " "))
	case len(positional) == 1 && c.URL != "":
		return c, fmt.Errorf("url given both with -url and as argument %q", positional[0])
	case len(positional) == 1:
		c.URL = positional[0]
	}
	return c, nil
}

func (c CLI) Validate() error {
	var errs []string
	if strings.TrimSpace(c.URL) == "" {
		errs = append(errs, "url is required")
	}
	if c.Count < 0 {
		errs = append(errs, fmt.Sprintf("count must be >= 0, got %d", c.Count))
	}
	if c.Timeout < 0 {
		errs = append(errs, "timeout must be >= 0")
	}
	if _, ok := tlsVersions[c.TLS]; !ok {
		errs = append(errs, fmt.Sprintf("unknown tls version %q", c.TLS))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Runner maps the options onto a run configuration.
func (c CLI) Runner() runner.Config {
	return runner.Config{
		Probe: probe.Config{
			URL:             c.URL,
			ExpectedStatus:  c.Status,
			Timeout:         c.Timeout,
			UserAgent:       c.UserAgent,
			Insecure:        c.Insecure,
			MinTLS:          tlsVersions[c.TLS],
			ForceHTTP2:      c.HTTP2,
			FollowRedirects: c.Follow,
			Proxy:           c.Proxy,
			Interface:       c.Interface,
		},
		Count: c.Count,
	}
}
