package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"syscall"
	"testing"
)

func TestClassify(t *testing.T) {
	refused := &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"dns", &url.Error{Op: "Get", URL: "http://x", Err: &net.DNSError{Err: "no such host", Name: "x", IsNotFound: true}}, KindDNS},
		{"refused", &url.Error{Op: "Get", URL: "http://x", Err: refused}, KindRefused},
		{"deadline", fmt.Errorf("wrapped: %w", context.DeadlineExceeded), KindTimeout},
		{"canceled", &url.Error{Op: "Get", URL: "http://x", Err: context.Canceled}, KindCanceled},
		{"other", errors.New("boom"), KindOther},
	}
	for _, c := range cases {
		if got := classify(c.err); got != c.want {
			t.Fatalf("%s: classify=%s want %s", c.name, got, c.want)
		}
	}
}

func TestErrorMessages(t *testing.T) {
	sm := &StatusMismatchError{Observed: 404, Expected: 200}
	if sm.Error() != "status 404, expected 200" {
		t.Fatalf("unexpected message %q", sm.Error())
	}

	cause := errors.New("boom")
	te := NewTransportError("http://x", "get", cause)
	if !errors.Is(te, cause) {
		t.Fatalf("transport error must unwrap to its cause")
	}
	if te.Kind != KindOther {
		t.Fatalf("want kind other, got %s", te.Kind)
	}
}

func TestTransportError_URLPrintedOnce(t *testing.T) {
	cause := &url.Error{Op: "Get", URL: "http://x/ok", Err: errors.New("dial tcp 127.0.0.1:1: connection refused")}
	te := NewTransportError("http://x/ok", "get", cause)
	want := "get http://x/ok: other: dial tcp 127.0.0.1:1: connection refused"
	if te.Error() != want {
		t.Fatalf("got %q, want %q", te.Error(), want)
	}
	if !errors.Is(te, cause) {
		t.Fatal("url.Error must stay in the chain")
	}
}
