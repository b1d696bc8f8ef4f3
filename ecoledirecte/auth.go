package ecoledirecte

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
)

type credentials struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// MFAChallenge is the question/multiple-choice verification the server may
// impose at login. Both fields arrive base64-encoded and are decoded here;
// a challenge is consumed by exactly one SubmitAnswer call.
type MFAChallenge struct {
	Question string
	Choices  []string
}

// LoginOutcome is the tagged result of a login attempt. Exactly one field is
// set: Session once authenticated, Challenge when the server wants an MFA
// answer first (answer it with SubmitAnswer).
type LoginOutcome struct {
	Session   Session
	Challenge *MFAChallenge
}

// Login authenticates with the portal. The credentials are retained for the
// duration of a possible MFA detour, since the device-token re-login must
// replay them. If a device-token pair was seeded (WithDeviceTokens or an
// earlier verification), it is presented to bypass the challenge.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginOutcome, error) {
	creds := &credentials{Username: username, Password: password}
	if err := c.validate.Struct(creds); err != nil {
		return nil, fmt.Errorf("validating credentials: %w", err)
	}
	c.creds = creds
	return c.loginAttempt(ctx)
}

// SubmitAnswer answers a pending MFA challenge. On success the server hands
// back a device-token pair, which is stored on the client and used to
// re-enter the login path; the bearer token and session come out of that
// second login. Valid from AwaitingMFA, or statelessly whenever credentials
// are cached; the server does not track challenge continuity beyond the
// anti-automation cookie.
func (c *Client) SubmitAnswer(ctx context.Context, answer string) (*LoginOutcome, error) {
	if c.creds == nil {
		return nil, &Error{Kind: KindCredentialsLost, Message: "no credentials cached from a prior login"}
	}

	encoded := base64.StdEncoding.EncodeToString([]byte(answer))
	params := url.Values{"verbe": {"post"}, "v": {c.apiVersion}}
	env, err := c.do(ctx, "/connexion/doubleauth.awp", params, `data={"choix": "`+encoded+`"}`)
	if err != nil {
		return nil, err
	}
	if aerr := env.apiErr(); aerr != nil {
		return nil, aerr
	}

	// An absent or null payload means no pair was issued, which is a
	// verification failure, not a malformed response.
	var tokens DeviceTokens
	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, &tokens); err != nil {
			return nil, &Error{Kind: KindMalformedResponse, Message: "decoding verification payload", Err: err}
		}
	}
	if tokens.CN == "" || tokens.CV == "" {
		return nil, &Error{Kind: KindMFAVerificationFailed, Message: "verification response missing device token pair"}
	}
	c.deviceTokens = &tokens

	return c.loginAttempt(ctx)
}

// loginAttempt runs one full pass of the login path: fresh anti-automation
// token, hand-built body, dispatch, branch on the MFA code, resolve the
// account. Any failure leaves the state untouched at Unauthenticated (or
// AwaitingMFA during a detour).
func (c *Client) loginAttempt(ctx context.Context) (*LoginOutcome, error) {
	if err := c.fetchGTK(ctx); err != nil {
		return nil, err
	}

	params := url.Values{"v": {c.apiVersion}}
	env, err := c.do(ctx, "/login.awp", params, c.loginBody())
	if err != nil {
		return nil, err
	}

	if env.Code == codeMFARequired {
		challenge, cerr := c.fetchChallenge(ctx)
		if cerr != nil {
			return nil, cerr
		}
		c.state = StateAwaitingMFA
		return &LoginOutcome{Challenge: challenge}, nil
	}
	if aerr := env.apiErr(); aerr != nil {
		return nil, aerr
	}

	session, rerr := c.resolveAccount(env.Data)
	if rerr != nil {
		return nil, rerr
	}
	c.state = StateAuthenticated
	c.log.Info().Msg("authenticated")
	return &LoginOutcome{Session: session}, nil
}

// loginBody builds the form body by hand. The payload is a literal
// JSON-looking string inside a form-encoded field, not output of a JSON
// serializer; see encodeString for why. With device tokens present the pair
// is sent both flat and in the nested "fa" array, the two shapes the server
// accepts.
func (c *Client) loginBody() string {
	user := encodeString(c.creds.Username)
	pass := encodeString(c.creds.Password)
	if c.deviceTokens != nil {
		d := c.deviceTokens
		return fmt.Sprintf(
			`data={"identifiant":"%s", "motdepasse":"%s", "isRelogin": false, "cn":"%s", "cv":"%s", "uuid": "%s", "fa": [{"cn": "%s", "cv": "%s"}]}`,
			user, pass, d.CN, d.CV, c.deviceUUID, d.CN, d.CV,
		)
	}
	return fmt.Sprintf(`data={"identifiant":"%s", "motdepasse":"%s", "isRelogin": false}`, user, pass)
}

// fetchChallenge retrieves and decodes the pending MFA question. The
// endpoint is POST with GET semantics ("verbe=get") and an empty-object
// body.
func (c *Client) fetchChallenge(ctx context.Context) (*MFAChallenge, *Error) {
	params := url.Values{"verbe": {"get"}, "v": {c.apiVersion}}
	env, err := c.do(ctx, "/connexion/doubleauth.awp", params, "data={}")
	if err != nil {
		if apiErr, ok := err.(*Error); ok {
			return nil, apiErr
		}
		return nil, &Error{Kind: KindNetwork, Err: err}
	}
	if aerr := env.apiErr(); aerr != nil {
		return nil, aerr
	}

	var payload struct {
		Question     string   `json:"question"`
		Propositions []string `json:"propositions"`
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		return nil, &Error{Kind: KindMalformedResponse, Message: "decoding challenge payload", Err: err}
	}

	question, err := base64.StdEncoding.DecodeString(payload.Question)
	if err != nil {
		return nil, &Error{Kind: KindMalformedResponse, Message: "decoding challenge question", Err: err}
	}
	choices := make([]string, 0, len(payload.Propositions))
	for _, p := range payload.Propositions {
		choice, err := base64.StdEncoding.DecodeString(p)
		if err != nil {
			return nil, &Error{Kind: KindMalformedResponse, Message: "decoding challenge choice", Err: err}
		}
		choices = append(choices, string(choice))
	}

	return &MFAChallenge{Question: string(question), Choices: choices}, nil
}
