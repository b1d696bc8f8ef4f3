package ecoledirecte

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is the live API root.
	DefaultBaseURL = "https://api.ecoledirecte.com/v3"
	// DefaultAPIVersion is sent as the "v" query parameter on every call.
	DefaultAPIVersion = "4.90.1"

	defaultTimeout = 30 * time.Second

	headerToken = "x-token"
	headerGTK   = "x-gtk"
	gtkCookie   = "GTK"
)

// The portal rejects clients that don't look like its web frontend.
var defaultHeaders = map[string]string{
	"Accept":           "application/json, text/plain, */*",
	"Accept-Language":  "fr-FR,fr;q=0.9",
	"Content-Type":     "application/x-www-form-urlencoded",
	"Origin":           "https://www.ecoledirecte.com",
	"Referer":          "https://www.ecoledirecte.com/",
	"User-Agent":       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.3",
	"X-Requested-With": "XMLHttpRequest",
}

// AuthState tracks where the login flow currently stands.
type AuthState int

const (
	StateUnauthenticated AuthState = iota
	StateAwaitingMFA
	StateAuthenticated
)

// DeviceTokens is the opaque pair issued after a successful MFA
// verification. Presenting it on a later login skips the challenge.
type DeviceTokens struct {
	CN string `json:"cn"`
	CV string `json:"cv"`
}

// authContext is the auth material derived into request headers at dispatch
// time. It is replaced wholesale, never mutated; at most one of the two
// values is the active credential (a new bearer drops the gtk).
type authContext struct {
	bearer string
	gtk    string
}

func (a authContext) apply(h http.Header) {
	if a.bearer != "" {
		h.Set(headerToken, a.bearer)
	}
	if a.gtk != "" {
		h.Set(headerGTK, a.gtk)
	}
}

// Client talks to the portal's private API. It owns a single logical
// session; authentication calls must not run concurrently on the same
// instance. Data accessors are safe to issue concurrently once
// authenticated, each reads the bearer token at call time.
type Client struct {
	baseURL    string
	apiVersion string
	httpClient *http.Client
	log        zerolog.Logger
	validate   *validator.Validate

	// mu guards auth: the server rotates the bearer on any response, so
	// concurrent data calls race on it without the lock. The remaining
	// fields are only written during the serialized auth flow.
	mu   sync.Mutex
	auth authContext

	state        AuthState
	creds        *credentials
	deviceTokens *DeviceTokens
	deviceUUID   string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root (useful against a test server).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithAPIVersion overrides the "v" query parameter value.
func WithAPIVersion(v string) Option {
	return func(c *Client) { c.apiVersion = v }
}

// WithTimeout sets the per-request timeout (default 30s).
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithHTTPClient swaps the underlying transport. A cookie jar is attached if
// the client has none; the anti-automation cookie rides on it.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc.Jar == nil {
			hc.Jar, _ = cookiejar.New(nil)
		}
		c.httpClient = hc
	}
}

// WithLogger attaches a zerolog logger; the default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithDeviceTokens seeds a persisted device-token pair so the next login can
// bypass the MFA challenge.
func WithDeviceTokens(cn, cv string) Option {
	return func(c *Client) {
		if cn != "" && cv != "" {
			c.deviceTokens = &DeviceTokens{CN: cn, CV: cv}
		}
	}
}

// WithDeviceUUID sets the device identifier sent alongside device tokens.
// The portal accepts an empty value, which is the default.
func WithDeviceUUID(id string) Option {
	return func(c *Client) { c.deviceUUID = id }
}

// NewClient builds an unauthenticated client.
func NewClient(opts ...Option) *Client {
	jar, _ := cookiejar.New(nil)
	c := &Client{
		baseURL:    DefaultBaseURL,
		apiVersion: DefaultAPIVersion,
		httpClient: &http.Client{Timeout: defaultTimeout, Jar: jar},
		log:        zerolog.Nop(),
		validate:   validator.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current authentication state.
func (c *Client) State() AuthState { return c.state }

// authSnapshot returns the auth context under the lock. Every read outside
// the lock goes through here so a concurrent rotation is seen whole or not
// at all.
func (c *Client) authSnapshot() authContext {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.auth
}

// Token returns the current bearer token, empty before authentication.
func (c *Client) Token() string { return c.authSnapshot().bearer }

// Devices returns the device-token pair, if one was seeded or earned through
// an MFA verification. Callers persist it to skip future challenges.
func (c *Client) Devices() (DeviceTokens, bool) {
	if c.deviceTokens == nil {
		return DeviceTokens{}, false
	}
	return *c.deviceTokens, true
}

// TokenExpiry extracts the expiry from the bearer token, which the portal
// issues in JWT shape. The signature is not verified; this is only for
// proactively detecting an expired session client-side.
func (c *Client) TokenExpiry() (time.Time, bool) {
	bearer := c.Token()
	if bearer == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(bearer, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Close releases idle transport connections. The session itself needs no
// teardown; discarding the client discards the tokens.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// updateToken rotates the bearer token. Same value is a no-op; a new value
// replaces the whole auth context, dropping the anti-automation token, which
// the server invalidates as soon as a bearer token exists.
func (c *Client) updateToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if token == "" || token == c.auth.bearer {
		return
	}
	c.auth = authContext{bearer: token}
}

// fetchGTK obtains a fresh anti-automation token from the login endpoint's
// GTK cookie. Absence of the cookie is not an error; the server doesn't
// always require it. Called immediately before every top-level login
// attempt, since the token is tied to short-lived session cookies.
func (c *Client) fetchGTK(ctx context.Context) error {
	params := url.Values{"v": {c.apiVersion}, "gtk": {"1"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/login.awp?"+params.Encode(), nil)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: "building gtk request", Err: err}
	}
	for k, v := range defaultHeaders {
		req.Header.Set(k, v)
	}
	// Stale gtk values are dropped either way; only the bearer carries over.
	authContext{bearer: c.Token()}.apply(req.Header)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: "fetching anti-automation token", Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	gtk := ""
	for _, ck := range resp.Cookies() {
		if ck.Name == gtkCookie {
			gtk = ck.Value
			break
		}
	}
	c.mu.Lock()
	c.auth = authContext{bearer: c.auth.bearer, gtk: gtk}
	c.mu.Unlock()
	c.log.Debug().Bool("gtk_present", gtk != "").Msg("anti-automation token refreshed")
	return nil
}

// do is the transport choke point: every call derives its auth headers from
// the current context, captures bearer rotation from the x-token response
// header, and runs HTTP-level classification. API-code classification is
// left to the caller, which may branch on it (MFA handshake).
func (c *Client) do(ctx context.Context, path string, params url.Values, body string) (*envelope, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(body))
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Message: "building request", Err: err}
	}
	for k, v := range defaultHeaders {
		req.Header.Set(k, v)
	}
	c.authSnapshot().apply(req.Header)

	requestID := uuid.NewString()
	c.log.Debug().Str("request_id", requestID).Str("path", path).Msg("dispatching request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Message: "reading response", Err: err}
	}

	// The server rotates bearer tokens throughout the MFA handshake, so the
	// header is honored regardless of the API code in the body.
	if token := resp.Header.Get(headerToken); token != "" {
		c.updateToken(token)
	}

	env, cerr := classifyHTTP(resp.StatusCode, data)
	if cerr != nil {
		c.log.Debug().Str("request_id", requestID).Int("status", resp.StatusCode).Msg("request rejected")
		return nil, cerr
	}
	c.log.Debug().Str("request_id", requestID).Int("status", resp.StatusCode).Int("code", env.Code).Msg("request completed")
	return env, nil
}

// Request dispatches an authenticated data call. The payload is serialized
// into the form-encoded "data" field with the bearer token injected, the way
// the portal expects; the server-shaped response payload is returned as-is.
func (c *Client) Request(ctx context.Context, path string, params url.Values, args map[string]any) (json.RawMessage, error) {
	payload := make(map[string]any, len(args)+1)
	for k, v := range args {
		payload[k] = v
	}
	if bearer := c.Token(); bearer != "" {
		payload["token"] = bearer
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request payload: %w", err)
	}

	merged := url.Values{"v": {c.apiVersion}}
	for k, vs := range params {
		merged[k] = vs
	}

	env, derr := c.do(ctx, path, merged, "data="+string(body))
	if derr != nil {
		return nil, derr
	}
	if aerr := env.apiErr(); aerr != nil {
		return nil, aerr
	}
	return env.Data, nil
}
