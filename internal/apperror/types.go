package apperror

// Type is the stable, enumerated identifier of a failure. The string values are
// part of the public contract: UI layers key localized rendering on them.
type Type string

const (
	TypeAuthExpired          Type = "AUTH_EXPIRED"
	TypeAuthInvalid          Type = "AUTH_INVALID"
	TypeAuthMissing          Type = "AUTH_MISSING"
	TypeAuthPermissionDenied Type = "AUTH_PERMISSION_DENIED"

	TypeAPIKeyInvalid     Type = "API_KEY_INVALID"
	TypeAPIRateLimited    Type = "API_RATE_LIMITED"
	TypeAPIQuotaExceeded  Type = "API_QUOTA_EXCEEDED"
	TypeAPIServiceDown    Type = "API_SERVICE_DOWN"
	TypeAPIContextTooLong Type = "API_CONTEXT_TOO_LONG"

	TypeNetworkConnection Type = "NETWORK_CONNECTION"
	TypeNetworkTimeout    Type = "NETWORK_TIMEOUT"
	TypeNetworkDNSFailure Type = "NETWORK_DNS_FAILURE"
	TypeNetworkOffline    Type = "NETWORK_OFFLINE"

	TypeTranscriptNotFound           Type = "TRANSCRIPT_NOT_FOUND"
	TypeTranscriptTooLarge           Type = "TRANSCRIPT_TOO_LARGE"
	TypeTranscriptEmpty              Type = "TRANSCRIPT_EMPTY"
	TypeTranscriptMalformedTimestamp Type = "TRANSCRIPT_MALFORMED_TIMESTAMPS"
	TypeTranscriptMissingSpeakers    Type = "TRANSCRIPT_MISSING_SPEAKERS"
	TypeJSONParse                    Type = "JSON_PARSE_ERROR"

	TypeUnknown Type = "UNKNOWN"
)

// Category groups types for severity and reporting.
type Category string

const (
	CategoryAuthentication Category = "AUTHENTICATION"
	CategoryAPI            Category = "API"
	CategoryNetwork        Category = "NETWORK"
	CategoryData           Category = "DATA"
	CategoryUnknown        Category = "UNKNOWN"
)

// Severity tells the UI how loudly to surface a failure.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityError    Severity = "error"
	SeverityWarning  Severity = "warning"
)

// AllTypes lists every Type. Tests walk it to prove each switch below is total.
func AllTypes() []Type {
	return []Type{
		TypeAuthExpired, TypeAuthInvalid, TypeAuthMissing, TypeAuthPermissionDenied,
		TypeAPIKeyInvalid, TypeAPIRateLimited, TypeAPIQuotaExceeded, TypeAPIServiceDown, TypeAPIContextTooLong,
		TypeNetworkConnection, TypeNetworkTimeout, TypeNetworkDNSFailure, TypeNetworkOffline,
		TypeTranscriptNotFound, TypeTranscriptTooLarge, TypeTranscriptEmpty,
		TypeTranscriptMalformedTimestamp, TypeTranscriptMissingSpeakers, TypeJSONParse,
		TypeUnknown,
	}
}

// Category maps a type to its category.
func (t Type) Category() Category {
	switch t {
	case TypeAuthExpired, TypeAuthInvalid, TypeAuthMissing, TypeAuthPermissionDenied:
		return CategoryAuthentication
	case TypeAPIKeyInvalid, TypeAPIRateLimited, TypeAPIQuotaExceeded, TypeAPIServiceDown, TypeAPIContextTooLong:
		return CategoryAPI
	case TypeNetworkConnection, TypeNetworkTimeout, TypeNetworkDNSFailure, TypeNetworkOffline:
		return CategoryNetwork
	case TypeTranscriptNotFound, TypeTranscriptTooLarge, TypeTranscriptEmpty,
		TypeTranscriptMalformedTimestamp, TypeTranscriptMissingSpeakers, TypeJSONParse:
		return CategoryData
	default:
		return CategoryUnknown
	}
}

// Retryable is fixed per type: transient provider and network failures only.
func (t Type) Retryable() bool {
	switch t {
	case TypeAPIRateLimited, TypeAPIServiceDown,
		TypeNetworkConnection, TypeNetworkTimeout, TypeNetworkDNSFailure, TypeNetworkOffline:
		return true
	default:
		return false
	}
}

// Severity is derived from the category, with invalid keys promoted to
// critical and rate limiting demoted to a warning.
func (t Type) Severity() Severity {
	switch {
	case t == TypeAPIKeyInvalid || t.Category() == CategoryAuthentication:
		return SeverityCritical
	case t == TypeAPIRateLimited:
		return SeverityWarning
	default:
		return SeverityError
	}
}

// Valid reports whether t is one of the enumerated types.
func (t Type) Valid() bool {
	for _, known := range AllTypes() {
		if t == known {
			return true
		}
	}
	return false
}
