package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the environment configuration of the probe API server.
type Config struct {
	Addr         string        // API bind address, e.g. "127.0.0.1:8080" or ":8080" in Docker
	LogDir       string        // logs directory
	APIKeys      []string      // accepted keys; empty leaves the API open
	RPM          int           // per-IP requests per minute on /api/probe; 0 disables
	Burst        int           // rate limit burst
	ProbeTimeout time.Duration // per-probe deadline for API-triggered runs
	MaxCount     int           // upper bound on ?count=
	SlackWebhook string        // optional; each successful run is posted there

	TrustedProxies []string // peer IPs whose X-Forwarded-For is honored
}

func FromEnv() Config {
	addr := os.Getenv("API_ADDR")
	if addr == "" {
		addr = "127.0.0.1:8080"
	}

	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}

	probeTimeout := 10 * time.Second
	if v := os.Getenv("PROBE_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			probeTimeout = time.Duration(ms) * time.Millisecond
		}
	}

	return Config{
		Addr:         addr,
		LogDir:       logDir,
		APIKeys:      splitList(os.Getenv("API_KEYS")),
		RPM:          envInt("RATE_RPM", 60),
		Burst:        envInt("RATE_BURST", 10),
		ProbeTimeout: probeTimeout,
		MaxCount:     envInt("PROBE_MAX_COUNT", 20),
		SlackWebhook: strings.TrimSpace(os.Getenv("SLACK_WEBHOOK_URL")),

		TrustedProxies: splitList(os.Getenv("TRUSTED_PROXIES")),
	}
}

func (c Config) Validate() error {
	var errs []string
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, "API_ADDR is required")
	}
	if c.RPM > 0 && c.Burst < 1 {
		errs = append(errs, "RATE_BURST must be >= 1 when RATE_RPM is set")
	}
	if c.MaxCount < 0 {
		errs = append(errs, "PROBE_MAX_COUNT must be >= 0")
	}
	if c.SlackWebhook != "" && !strings.HasPrefix(c.SlackWebhook, "https://") {
		errs = append(errs, "SLACK_WEBHOOK_URL must be an https URL")
	}
	for _, p := range c.TrustedProxies {
		if net.ParseIP(p) == nil {
			errs = append(errs, fmt.Sprintf("TRUSTED_PROXIES: %q is not an IP address", p))
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
