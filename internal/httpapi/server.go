package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	apimw "github.com/hamed0406/httpprobe/internal/httpapi/middleware"
	"github.com/hamed0406/httpprobe/internal/probe"
	"github.com/hamed0406/httpprobe/internal/report"
	"github.com/hamed0406/httpprobe/internal/runner"
)

type Server struct {
	Logger       *zap.Logger
	Sink         report.Sink
	ProbeTimeout time.Duration
	MaxCount     int

	// TrustedProxies are peers whose X-Forwarded-For keys the rate limit.
	TrustedProxies []string
}

func NewServer(l *zap.Logger, sink report.Sink, probeTimeout time.Duration, maxCount int) *Server {
	if l == nil {
		l = zap.NewNop()
	}
	return &Server{Logger: l, Sink: sink, ProbeTimeout: probeTimeout, MaxCount: maxCount}
}

func (s *Server) Router(keys []string, rpm, burst int) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(apimw.RateLimit(rpm, burst, s.TrustedProxies))
		r.Use(apimw.RequireKey(keys))
		r.Get("/api/probe", s.handleProbe)
	})

	return r
}

type errorBody struct {
	Error    string `json:"error"`
	Observed int    `json:"observed,omitempty"`
	Kind     string `json:"kind,omitempty"`
	Message  string `json:"message,omitempty"`
}

func (s *Server) handleProbe(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	target := strings.TrimSpace(q.Get("url"))
	if !isValidHTTPURL(target) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad_request", Message: "url must be an absolute http(s) URL"})
		return
	}

	status, err := intParam(q.Get("status"), probe.DefaultExpectedStatus)
	if err != nil || status < 100 || status > 599 {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad_request", Message: "status must be 100-599"})
		return
	}

	count, err := intParam(q.Get("count"), runner.DefaultCount)
	if err != nil || count < 0 || count > s.MaxCount {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad_request", Message: "count must be 0-" + strconv.Itoa(s.MaxCount)})
		return
	}

	run, err := runner.New(runner.Config{
		Probe: probe.Config{URL: target, ExpectedStatus: status, Timeout: s.ProbeTimeout},
		Count: count,
	}, runner.WithLogger(s.Logger))
	if err != nil {
		s.Logger.Warn("probe_setup_error", zap.String("url", target), zap.Error(err))
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad_request", Message: err.Error()})
		return
	}

	rep, err := run.Run(r.Context())
	if err != nil {
		writeRunError(w, err)
		return
	}

	if s.Sink != nil {
		if err := s.Sink.Report(r.Context(), rep); err != nil {
			s.Logger.Warn("report_error", zap.String("run_id", string(rep.RunID)), zap.Error(err))
		}
	}
	writeJSON(w, http.StatusOK, rep)
}

func writeRunError(w http.ResponseWriter, err error) {
	if observed, ok := probe.IsStatusMismatch(err); ok {
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "status_mismatch", Observed: observed, Message: err.Error()})
		return
	}
	var te *probe.TransportError
	if errors.As(err, &te) {
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "transport", Kind: string(te.Kind), Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal", Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

// isValidHTTPURL accepts absolute http and https URLs with a host.
func isValidHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
