// cmd/preflight/main.go
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/hamed0406/httpprobe/internal/config"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	if strings.Contains(os.Getenv("API_KEYS"), " ") {
		warn("API_KEYS contains spaces; they are trimmed, but prefer key1,key2")
	}

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		fail(err.Error())
	}
	ok("API_ADDR=" + cfg.Addr)

	if len(cfg.APIKeys) == 0 {
		warn("API_KEYS empty: /api/probe is open to anyone who can reach API_ADDR.")
	} else {
		ok(fmt.Sprintf("%d API key(s) configured", len(cfg.APIKeys)))
	}

	if cfg.RPM <= 0 {
		warn("RATE_RPM <= 0: rate limiting disabled.")
	} else {
		ok(fmt.Sprintf("rate limit %d/min burst %d", cfg.RPM, cfg.Burst))
	}

	if len(cfg.TrustedProxies) > 0 {
		ok(fmt.Sprintf("X-Forwarded-For honored from %d proxy address(es)", len(cfg.TrustedProxies)))
	}

	if cfg.ProbeTimeout == 0 {
		warn("PROBE_TIMEOUT_MS=0: a hanging target will hold a request open indefinitely.")
	} else {
		ok("probe timeout " + cfg.ProbeTimeout.String())
	}
	ok(fmt.Sprintf("max count per run %d", cfg.MaxCount))

	if cfg.SlackWebhook == "" {
		warn("SLACK_WEBHOOK_URL empty: runs are only logged.")
	} else {
		ok("SLACK_WEBHOOK_URL present")
	}

	ok("preflight passed")
}
