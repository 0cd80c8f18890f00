package apperror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// StatusError is a raw provider failure that carries an HTTP status code.
// Provider adapters convert their SDK errors into it so the classifier can
// map the status before falling back to message matching.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %d: %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("http %d: %s", e.Code, e.Message)
}

// StatusCode returns the HTTP status.
func (e *StatusError) StatusCode() int { return e.Code }

// statusCoder is satisfied by any error exposing an HTTP status.
type statusCoder interface {
	StatusCode() int
}

// messageRules are matched in order against the lower-cased message. Quota and
// rate-limit rules come first since provider messages often mention the key
// they were charged to. Key rules precede the generic auth rules.
var messageRules = []struct {
	typ     Type
	needles []string
}{
	{TypeAPIQuotaExceeded, []string{"quota", "insufficient_quota", "billing"}},
	{TypeAPIRateLimited, []string{"rate limit", "rate_limit", "too many requests", "resource_exhausted"}},
	{TypeAPIKeyInvalid, []string{"invalid api key", "incorrect api key", "api key not valid", "api key is invalid", "invalid_api_key", "api_key_invalid"}},
	{TypeAuthExpired, []string{"unauthorized", "unauthorised", "token expired", "session expired", "expired token"}},
	{TypeAuthPermissionDenied, []string{"forbidden", "permission denied", "access denied"}},
	{TypeAuthInvalid, []string{"invalid token", "invalid credentials", "authentication failed"}},
	{TypeAuthMissing, []string{"not logged in", "missing credentials", "no credentials", "login required"}},
	{TypeAPIContextTooLong, []string{"context length", "context_length_exceeded", "maximum context", "too many tokens"}},
	{TypeAPIServiceDown, []string{"service unavailable", "overloaded", "bad gateway", "internal server error"}},
	{TypeNetworkTimeout, []string{"timeout", "timed out", "deadline exceeded"}},
	{TypeNetworkDNSFailure, []string{"no such host", "dns"}},
	{TypeNetworkOffline, []string{"offline", "network is unreachable", "no internet"}},
	{TypeNetworkConnection, []string{"fetch failed", "connection refused", "connection reset", "network error", "broken pipe"}},
	{TypeTranscriptNotFound, []string{"transcript not found", "no transcript", "captions not found"}},
	{TypeTranscriptTooLarge, []string{"too large", "payload too large", "too long"}},
	{TypeTranscriptEmpty, []string{"empty transcript", "transcript is empty"}},
	{TypeJSONParse, []string{"json", "unexpected token", "invalid character", "unexpected end of"}},
}

// Normalize classifies err. Order: an existing *Error is returned as is, then
// an HTTP status, then Go-native error types, then message substrings.
func Normalize(err error) *Error {
	if err == nil {
		return nil
	}

	var domain *Error
	if errors.As(err, &domain) {
		return domain
	}

	var sc statusCoder
	if errors.As(err, &sc) {
		if t, ok := typeForStatus(sc.StatusCode()); ok {
			return Wrap(t, err, "").WithContext("status", sc.StatusCode())
		}
	}

	if t, ok := typeForNative(err); ok {
		return Wrap(t, err, "")
	}

	return Wrap(typeForMessage(err.Error()), err, "")
}

func typeForStatus(code int) (Type, bool) {
	switch {
	case code == http.StatusUnauthorized:
		return TypeAuthExpired, true
	case code == http.StatusForbidden:
		return TypeAuthPermissionDenied, true
	case code == http.StatusNotFound:
		return TypeTranscriptNotFound, true
	case code == http.StatusTooManyRequests:
		return TypeAPIRateLimited, true
	case code == http.StatusRequestEntityTooLarge:
		return TypeTranscriptTooLarge, true
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		return TypeNetworkTimeout, true
	case code >= 500 && code <= 599:
		return TypeAPIServiceDown, true
	default:
		return "", false
	}
}

func typeForNative(err error) (Type, bool) {
	if errors.Is(err, context.DeadlineExceeded) {
		return TypeNetworkTimeout, true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return TypeNetworkDNSFailure, true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return TypeNetworkTimeout, true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return TypeNetworkConnection, true
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return TypeJSONParse, true
	}

	return "", false
}

func typeForMessage(msg string) Type {
	lower := strings.ToLower(msg)
	for _, rule := range messageRules {
		for _, needle := range rule.needles {
			if strings.Contains(lower, needle) {
				return rule.typ
			}
		}
	}
	return TypeUnknown
}
