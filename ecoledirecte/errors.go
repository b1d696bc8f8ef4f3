package ecoledirecte

import (
	"errors"
	"fmt"
)

// Kind classifies an API or transport failure so callers can branch without
// string-matching server messages.
type Kind int

const (
	// KindNetwork covers transport-level failures: connection refused,
	// timeouts, DNS. Never retried automatically.
	KindNetwork Kind = iota + 1
	// KindMalformedResponse means the body was not valid JSON.
	KindMalformedResponse
	// KindAuthenticationFailed maps HTTP 401/403.
	KindAuthenticationFailed
	// KindResourceNotFound maps HTTP 404.
	KindResourceNotFound
	// KindServerError maps HTTP >= 500.
	KindServerError
	// KindUnexpectedHTTPStatus covers any other non-200 HTTP status.
	KindUnexpectedHTTPStatus
	// KindInvalidCredentials maps API code 505.
	KindInvalidCredentials
	// KindTokenExpired maps API codes 520 and 525.
	KindTokenExpired
	// KindAPIError is any other non-200 API code, message attached.
	KindAPIError
	// KindCredentialsLost: an MFA answer was submitted without a prior
	// Login call caching the credentials needed for the re-login.
	KindCredentialsLost
	// KindUnknownAccountType: the login payload's primary account carries a
	// type code this client does not recognize.
	KindUnknownAccountType
	// KindNoAccounts: the login payload contains an empty account list.
	KindNoAccounts
	// KindMFAVerificationFailed: the verification response did not include
	// the device-token pair.
	KindMFAVerificationFailed
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network error"
	case KindMalformedResponse:
		return "malformed response"
	case KindAuthenticationFailed:
		return "authentication failed"
	case KindResourceNotFound:
		return "resource not found"
	case KindServerError:
		return "server error"
	case KindUnexpectedHTTPStatus:
		return "unexpected http status"
	case KindInvalidCredentials:
		return "invalid credentials or session"
	case KindTokenExpired:
		return "token invalid or expired"
	case KindAPIError:
		return "api error"
	case KindCredentialsLost:
		return "credentials lost"
	case KindUnknownAccountType:
		return "unknown account type"
	case KindNoAccounts:
		return "no accounts in response"
	case KindMFAVerificationFailed:
		return "mfa verification failed"
	default:
		return "unknown error"
	}
}

// Error is the single error type surfaced by the client. HTTPStatus and Code
// are zero when not applicable.
type Error struct {
	Kind       Kind
	HTTPStatus int
	Code       int // API-level "code" field
	Message    string
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("ecoledirecte: %s", e.Kind)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	switch {
	case e.HTTPStatus != 0 && e.Code != 0:
		msg += fmt.Sprintf(" (http %d, code %d)", e.HTTPStatus, e.Code)
	case e.HTTPStatus != 0:
		msg += fmt.Sprintf(" (http %d)", e.HTTPStatus)
	case e.Code != 0:
		msg += fmt.Sprintf(" (code %d)", e.Code)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is (or wraps) an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}
