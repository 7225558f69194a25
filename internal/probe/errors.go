package probe

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/url"
	"syscall"
)

// ErrInvalidConfig is returned by New when the probe cannot be set up.
var ErrInvalidConfig = errors.New("invalid probe config")

// StatusMismatchError reports a response whose status code differs from the
// expected one. Observed carries the code as data so callers can branch on it.
type StatusMismatchError struct {
	Observed int
	Expected int
}

func (e *StatusMismatchError) Error() string {
	return fmt.Sprintf("status %d, expected %d", e.Observed, e.Expected)
}

// Kind classifies a transport failure.
type Kind string

const (
	KindRequest  Kind = "request" // malformed URL or unsupported scheme
	KindDNS      Kind = "dns"
	KindRefused  Kind = "refused"
	KindTimeout  Kind = "timeout"
	KindTLS      Kind = "tls"
	KindCanceled Kind = "canceled"
	KindOther    Kind = "other"
)

// TransportError is returned when the request could not be completed.
type TransportError struct {
	URL  string
	Op   string // "build", "get" or "read"
	Kind Kind
	Err  error
}

func (e *TransportError) Error() string {
	cause := e.Err
	// *url.Error repeats the method and URL already printed here.
	var ue *url.Error
	if errors.As(cause, &ue) {
		cause = ue.Err
	}
	return fmt.Sprintf("%s %s: %s: %v", e.Op, e.URL, e.Kind, cause)
}

func (e *TransportError) Unwrap() error { return e.Err }

// NewTransportError wraps err and classifies it.
func NewTransportError(target, op string, err error) *TransportError {
	return &TransportError{URL: target, Op: op, Kind: classify(err), Err: err}
}

// IsStatusMismatch reports the observed status code if err carries a
// *StatusMismatchError anywhere in its chain.
func IsStatusMismatch(err error) (observed int, ok bool) {
	var sm *StatusMismatchError
	if errors.As(err, &sm) {
		return sm.Observed, true
	}
	return 0, false
}

// IsTransport reports whether err carries a *TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

func classify(err error) Kind {
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}

	var de *net.DNSError
	if errors.As(err, &de) {
		return KindDNS
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return KindTimeout
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return KindRefused
	}

	var rhe tls.RecordHeaderError
	if errors.As(err, &rhe) {
		return KindTLS
	}
	var cve *tls.CertificateVerificationError
	if errors.As(err, &cve) {
		return KindTLS
	}

	return KindOther
}
