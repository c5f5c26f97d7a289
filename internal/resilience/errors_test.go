package resilience

import (
	"errors"
	"fmt"
	"syscall"
	"testing"
)

func TestIsTransient_ExplicitTransientError(t *testing.T) {
	if !IsTransient(NewTransientError(errors.New("server overloaded"), 503)) {
		t.Error("expected TransientError to be transient")
	}
}

func TestIsTransient_WrappedTransientError(t *testing.T) {
	wrapped := fmt.Errorf("fetch failed: %w", NewTransientError(errors.New("rate limited"), 429))
	if !IsTransient(wrapped) {
		t.Error("expected wrapped TransientError to be transient")
	}
}

func TestIsTransient_Nil(t *testing.T) {
	if IsTransient(nil) {
		t.Error("nil error should not be transient")
	}
}

func TestIsTransient_Regular(t *testing.T) {
	if IsTransient(errors.New("status 404")) {
		t.Error("regular error should not be transient")
	}
}

func TestIsTransient_Syscalls(t *testing.T) {
	for _, e := range []error{syscall.ECONNRESET, syscall.ECONNREFUSED, syscall.ECONNABORTED} {
		if !IsTransient(fmt.Errorf("dial tcp: %w", e)) {
			t.Errorf("%v should be transient", e)
		}
	}
}

func TestIsTransient_Patterns(t *testing.T) {
	if !IsTransient(errors.New("read tcp: i/o timeout")) {
		t.Error("i/o timeout should be transient")
	}
	if !IsTransient(errors.New("net/http: TLS handshake timeout")) {
		t.Error("tls handshake timeout should be transient")
	}
}

func TestIsTransient_BlockedNeverTransient(t *testing.T) {
	err := fmt.Errorf("wrap: %w", &BlockedError{URL: "https://x.test", Reason: "cloudflare"})
	if IsTransient(err) {
		t.Error("blocked error should not be transient")
	}
	if !IsBlocked(err) {
		t.Error("expected IsBlocked")
	}
	if got := err.Error(); got != "wrap: blocked (cloudflare): https://x.test" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 425, 429, 500, 502, 503, 504} {
		if !IsTransientHTTPStatus(code) {
			t.Errorf("%d should be transient", code)
		}
	}
	for _, code := range []int{200, 301, 400, 401, 403, 404, 410} {
		if IsTransientHTTPStatus(code) {
			t.Errorf("%d should not be transient", code)
		}
	}
}
