package ecoledirecte

import (
	"encoding/json"
	"net/http"
)

// API-level status codes carried in the response body's "code" field.
const (
	codeOK             = 200
	codeMFARequired    = 250
	codeInvalidSession = 505
	codeTokenInvalid   = 520
	codeTokenExpired   = 525
)

// envelope is the JSON body every endpoint returns. Data keeps the
// server-shaped payload untouched.
type envelope struct {
	Code    int             `json:"code"`
	Token   string          `json:"token"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// classifyHTTP applies the transport-level rules, first match wins:
// invalid JSON, 401/403, 404, >=500, any other non-200 status. A nil error
// means the caller holds a parsed envelope whose API code still needs
// checking (see apiErr).
func classifyHTTP(status int, body []byte) (*envelope, *Error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &Error{Kind: KindMalformedResponse, HTTPStatus: status, Err: err}
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return nil, &Error{Kind: KindAuthenticationFailed, HTTPStatus: status, Message: env.Message}
	case status == http.StatusNotFound:
		return nil, &Error{Kind: KindResourceNotFound, HTTPStatus: status, Message: env.Message}
	case status >= 500:
		return nil, &Error{Kind: KindServerError, HTTPStatus: status, Message: env.Message}
	case status != http.StatusOK:
		return nil, &Error{Kind: KindUnexpectedHTTPStatus, HTTPStatus: status, Message: env.Message}
	}
	return &env, nil
}

// apiErr applies the API-code rules to an already-parsed envelope. Code 250
// is only meaningful during login, where the auth flow branches on it before
// calling this; anywhere else it degrades to a generic API error.
func (e *envelope) apiErr() *Error {
	switch e.Code {
	case codeOK:
		return nil
	case codeInvalidSession:
		return &Error{Kind: KindInvalidCredentials, Code: e.Code, Message: e.Message}
	case codeTokenInvalid, codeTokenExpired:
		return &Error{Kind: KindTokenExpired, Code: e.Code, Message: e.Message}
	default:
		return &Error{Kind: KindAPIError, Code: e.Code, Message: e.Message}
	}
}

// classify runs both stages in order. For data calls an MFA-required code is
// an anomaly, not control flow, so it falls through to the generic API error.
func classify(status int, body []byte) (*envelope, *Error) {
	env, cerr := classifyHTTP(status, body)
	if cerr != nil {
		return nil, cerr
	}
	if aerr := env.apiErr(); aerr != nil {
		return nil, aerr
	}
	return env, nil
}
