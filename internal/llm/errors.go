package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"google.golang.org/api/googleapi"
)

// Kind classifies a failed model invocation. Every error leaving this
// package carries exactly one kind and one user-facing message.
type Kind string

const (
	KindConfigurationMissing Kind = "CONFIGURATION_MISSING"
	KindOverloaded           Kind = "OVERLOADED"
	KindRequestRejected      Kind = "REQUEST_REJECTED"
	KindEmptyResponse        Kind = "EMPTY_RESPONSE"
	KindMalformedResponse    Kind = "MALFORMED_RESPONSE"
	KindNetworkFailure       Kind = "NETWORK_FAILURE"
)

const (
	msgMissingKey = "La API key de Google no está configurada en el servidor."
	msgOverloaded = "El servicio de IA está saturado en este momento. Inténtalo de nuevo en unos minutos."
	msgNetwork    = "No se pudo contactar con el servicio de IA. Inténtalo de nuevo."
	msgEmpty      = "La respuesta del modelo de IA estaba vacía."
	msgRejected   = "El servicio de IA rechazó la petición: "
)

// rawDetailLimit bounds how much raw upstream text is retained for
// diagnostics. The full payload is never surfaced to the end user.
const rawDetailLimit = 200

// Error is the single error shape surfaced by the invocation layer.
// Message is the user-facing text; Detail is bounded diagnostic context for
// logs only.
type Error struct {
	Kind    Kind
	Message string
	Detail  string
}

func (e *Error) Error() string {
	return e.Message
}

// Retryable reports whether the failure is a transient upstream condition
// eligible for backoff retry.
func (e *Error) Retryable() bool {
	return e.Kind == KindOverloaded || e.Kind == KindNetworkFailure
}

// IsRetryable reports whether err is a retryable invocation failure.
func IsRetryable(err error) bool {
	var le *Error
	return errors.As(err, &le) && le.Retryable()
}

// KindOf extracts the error kind, or "" for foreign errors.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return ""
}

// Truncate returns a bounded prefix of raw upstream text, safe to keep in
// error details and logs.
func Truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= rawDetailLimit {
		return s
	}
	return s[:rawDetailLimit] + "…"
}

// Normalize collapses the heterogeneous failure shapes of the upstream
// provider into a single classified *Error. Inputs may be an HTTP error with
// a nested provider error object, a flat message object, unrecognized JSON,
// non-JSON text, or a plain transport failure.
func Normalize(err error) *Error {
	if err == nil {
		return nil
	}

	var le *Error
	if errors.As(err, &le) {
		return le
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return normalizeStatus(gerr)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindOverloaded, Message: msgOverloaded, Detail: err.Error()}
	}

	// Anything else is a transport-level failure (connection reset, DNS, ...).
	return &Error{Kind: KindNetworkFailure, Message: msgNetwork, Detail: Truncate(err.Error())}
}

// Retryable status category: overload and timeout conditions. Permanent
// server errors (500) and client request errors fail on first occurrence.
func normalizeStatus(gerr *googleapi.Error) *Error {
	detail := providerDetail(gerr)

	switch gerr.Code {
	case 408, 429, 503, 504:
		// Known overload conditions get a fixed friendly message instead of
		// the raw provider text.
		return &Error{Kind: KindOverloaded, Message: msgOverloaded, Detail: detail}
	default:
		return &Error{Kind: KindRequestRejected, Message: msgRejected + detail, Detail: detail}
	}
}

// providerDetail decodes the error body by sequential best-effort attempts:
// nested provider error object first, then a flat message object, then a
// truncated raw-text fallback for unrecognized JSON or non-JSON bodies.
func providerDetail(gerr *googleapi.Error) string {
	body := strings.TrimSpace(gerr.Body)

	var nested struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(body), &nested); err == nil && nested.Error.Message != "" {
		return Truncate(nested.Error.Message)
	}

	var flat struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(body), &flat); err == nil && flat.Message != "" {
		return Truncate(flat.Message)
	}

	if gerr.Message != "" {
		return Truncate(gerr.Message)
	}
	if body != "" {
		return Truncate(body)
	}
	return gerr.Error()
}
