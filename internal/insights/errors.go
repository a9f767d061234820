package insights

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"
)

// ErrorKind classifies why an insights request failed.
type ErrorKind string

const (
	KindNetwork      ErrorKind = "network"
	KindAuth         ErrorKind = "auth"
	KindQuota        ErrorKind = "quota"
	KindProvider     ErrorKind = "provider"
	KindUnconfigured ErrorKind = "unconfigured"
)

// AIProviderError describes a failed insights request. It never aborts an
// analysis run; it is reported alongside the computed results.
type AIProviderError struct {
	Kind       ErrorKind `json:"kind" yaml:"kind"`
	Provider   string    `json:"provider" yaml:"provider"`
	StatusCode int       `json:"status_code,omitempty" yaml:"status_code,omitempty"`
	Message    string    `json:"message" yaml:"message"`
	Err        error     `json:"-" yaml:"-"`
}

func (e *AIProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("insights: %s %s error (status %d): %s", e.Provider, e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("insights: %s %s error: %s", e.Provider, e.Kind, e.Message)
}

func (e *AIProviderError) Unwrap() error {
	return e.Err
}

// statusCoder is implemented by the provider clients' API error types.
type statusCoder interface {
	HTTPStatus() int
}

// networkPatterns catch transport failures that arrive as plain strings
// from HTTP client wrappers.
var networkPatterns = []string{
	"connection reset by peer",
	"connection refused",
	"broken pipe",
	"temporary failure in name resolution",
	"no such host",
	"tls handshake timeout",
	"i/o timeout",
	"server closed idle connection",
	"transport connection broken",
	"context deadline exceeded",
}

// Classify wraps err as an AIProviderError for provider. An existing
// AIProviderError in the chain is returned as is.
func Classify(provider string, err error) *AIProviderError {
	if err == nil {
		return nil
	}

	var existing *AIProviderError
	if errors.As(err, &existing) {
		return existing
	}

	e := &AIProviderError{Provider: provider, Message: err.Error(), Err: err}

	var sc statusCoder
	if errors.As(err, &sc) {
		e.StatusCode = sc.HTTPStatus()
		e.Kind = KindForStatus(e.StatusCode)
		return e
	}

	e.Kind = KindProvider
	if isNetworkError(err) {
		e.Kind = KindNetwork
	}
	return e
}

// KindForStatus maps an HTTP status code to an error kind.
func KindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusTooManyRequests, status == http.StatusPaymentRequired:
		return KindQuota
	case status == http.StatusRequestTimeout, status == http.StatusGatewayTimeout:
		return KindNetwork
	default:
		return KindProvider
	}
}

// Unconfigured reports a provider that cannot be used because settings are
// missing.
func Unconfigured(provider, message string) *AIProviderError {
	return &AIProviderError{Kind: KindUnconfigured, Provider: provider, Message: message}
}

func isNetworkError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range networkPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
