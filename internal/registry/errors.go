package registry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Sentinel errors for the registry error taxonomy. Callers match them with
// errors.Is; only ErrUnavailable is ever retried.
var (
	ErrUnavailable  = errors.New("registry unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

var retryableErrorSubstrings = []string{
	"timeout",
	"i/o timeout",
	"tls handshake timeout",
	"eof",
	"unexpected eof",
	"broken pipe",
	"connection reset",
	"connection refused",
	"connection aborted",
	"connection closed",
	"use of closed network connection",
	"network is unreachable",
	"no route to host",
	"no such host",
}

// classifyStatus maps an HTTP status to the registry error taxonomy.
// 2xx maps to nil.
func classifyStatus(code int, body string) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrUnauthorized, code)
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: status %d", ErrNotFound, code)
	case code == http.StatusConflict:
		return fmt.Errorf("%w: status %d", ErrConflict, code)
	case code == http.StatusRequestTimeout || code == http.StatusTooManyRequests || code >= 500:
		return fmt.Errorf("%w: status %d", ErrUnavailable, code)
	default:
		if body != "" {
			return fmt.Errorf("unexpected status %d: %s", code, body)
		}
		return fmt.Errorf("unexpected status %d", code)
	}
}

// isRetryableError reports whether err is worth another attempt. Auth,
// not-found and conflict outcomes surface immediately.
func isRetryableError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) {
		return false
	}

	if errors.Is(err, ErrUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	errText := strings.ToLower(err.Error())
	for _, marker := range retryableErrorSubstrings {
		if strings.Contains(errText, marker) {
			return true
		}
	}

	return false
}

// Kind names the taxonomy class of err for per-target reporting.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timed out"
	default:
		return "error"
	}
}
