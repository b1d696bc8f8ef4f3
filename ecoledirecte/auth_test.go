package ecoledirecte

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// authServer scripts the three endpoints the login flow touches.
type authServer struct {
	t *testing.T

	loginResponse      func(w http.ResponseWriter, body string)
	challengeResponse  func(w http.ResponseWriter)
	verifyResponse     func(w http.ResponseWriter, body string)
	loginBodies        []string
	loginEndpointCalls int
}

func (s *authServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/login.awp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			// Anti-automation token fetch.
			http.SetCookie(w, &http.Cookie{Name: "GTK", Value: "test-gtk"})
			w.Write([]byte(`{"code": 200}`))
			return
		}
		s.loginEndpointCalls++
		body, _ := io.ReadAll(r.Body)
		s.loginBodies = append(s.loginBodies, string(body))
		if r.Header.Get("x-gtk") != "test-gtk" {
			s.t.Errorf("login call missing anti-automation header, got %q", r.Header.Get("x-gtk"))
		}
		s.loginResponse(w, string(body))
	})
	mux.HandleFunc("/connexion/doubleauth.awp", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		switch r.URL.Query().Get("verbe") {
		case "get":
			s.challengeResponse(w)
		case "post":
			s.verifyResponse(w, string(body))
		default:
			s.t.Errorf("unexpected verbe %q", r.URL.Query().Get("verbe"))
		}
	})
	return mux
}

func b64(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }

func TestLogin(t *testing.T) {
	t.Run("single account resolves to a student session", func(t *testing.T) {
		srv := &authServer{t: t}
		srv.loginResponse = func(w http.ResponseWriter, body string) {
			if !strings.Contains(body, `"identifiant":"alice"`) {
				t.Errorf("login body missing encoded username: %s", body)
			}
			w.Header().Set("x-token", "bearer-1")
			w.Write([]byte(`{"code": 200, "token": "bearer-1", "data": {"accounts": [{"id": 12345, "typeCompte": "E", "prenom": "Alice"}]}}`))
		}
		server := httptest.NewServer(srv.handler())
		defer server.Close()

		c := NewClient(WithBaseURL(server.URL))
		out, err := c.Login(context.Background(), "alice", "secret")
		if err != nil {
			t.Fatalf("Login returned error: %v", err)
		}
		if out.Challenge != nil {
			t.Fatal("unexpected MFA challenge")
		}
		student, ok := out.Session.(*StudentSession)
		if !ok {
			t.Fatalf("expected *StudentSession, got %T", out.Session)
		}
		if student.ID != 12345 {
			t.Errorf("student id = %d, want 12345", student.ID)
		}
		if c.Token() != "bearer-1" {
			t.Errorf("token = %q, want bearer-1", c.Token())
		}
		if c.State() != StateAuthenticated {
			t.Errorf("state = %v, want StateAuthenticated", c.State())
		}
	})

	t.Run("code 250 surfaces the decoded challenge", func(t *testing.T) {
		srv := &authServer{t: t}
		srv.loginResponse = func(w http.ResponseWriter, body string) {
			w.Header().Set("x-token", "handshake-token")
			w.Write([]byte(`{"code": 250, "message": "double authentification requise"}`))
		}
		srv.challengeResponse = func(w http.ResponseWriter) {
			resp := map[string]any{
				"code": 200,
				"data": map[string]any{
					"question":     "V2hhdCBjaXR5Pw==",
					"propositions": []string{"UGFyaXM="},
				},
			}
			_ = json.NewEncoder(w).Encode(resp)
		}
		server := httptest.NewServer(srv.handler())
		defer server.Close()

		c := NewClient(WithBaseURL(server.URL))
		out, err := c.Login(context.Background(), "alice", "secret")
		if err != nil {
			t.Fatalf("Login returned error: %v", err)
		}
		if out.Challenge == nil {
			t.Fatal("expected an MFA challenge")
		}
		if out.Challenge.Question != "What city?" {
			t.Errorf("question = %q, want %q", out.Challenge.Question, "What city?")
		}
		if len(out.Challenge.Choices) != 1 || out.Challenge.Choices[0] != "Paris" {
			t.Errorf("choices = %v, want [Paris]", out.Challenge.Choices)
		}
		if c.State() != StateAwaitingMFA {
			t.Errorf("state = %v, want StateAwaitingMFA", c.State())
		}
		// The handshake still rotates the bearer token.
		if c.Token() != "handshake-token" {
			t.Errorf("token = %q, want handshake-token", c.Token())
		}
	})

	t.Run("answer submission re-logs in with device tokens", func(t *testing.T) {
		srv := &authServer{t: t}
		srv.loginResponse = func(w http.ResponseWriter, body string) {
			if strings.Contains(body, `"cn":"X"`) {
				w.Header().Set("x-token", "final-token")
				w.Write([]byte(`{"code": 200, "data": {"accounts": [{"id": 7, "typeCompte": "E"}]}}`))
				return
			}
			w.Write([]byte(`{"code": 250}`))
		}
		srv.challengeResponse = func(w http.ResponseWriter) {
			w.Write([]byte(`{"code": 200, "data": {"question": "` + b64("What city?") + `", "propositions": ["` + b64("Paris") + `"]}}`))
		}
		srv.verifyResponse = func(w http.ResponseWriter, body string) {
			if !strings.Contains(body, `"choix": "`+b64("Paris")+`"`) {
				t.Errorf("verify body missing encoded answer: %s", body)
			}
			w.Write([]byte(`{"code": 200, "data": {"cn": "X", "cv": "Y"}}`))
		}
		server := httptest.NewServer(srv.handler())
		defer server.Close()

		c := NewClient(WithBaseURL(server.URL))
		out, err := c.Login(context.Background(), "alice", "secret")
		if err != nil {
			t.Fatalf("Login returned error: %v", err)
		}
		if out.Challenge == nil {
			t.Fatal("expected an MFA challenge")
		}

		out, err = c.SubmitAnswer(context.Background(), "Paris")
		if err != nil {
			t.Fatalf("SubmitAnswer returned error: %v", err)
		}
		if out.Session == nil {
			t.Fatal("expected an authenticated session")
		}
		if c.State() != StateAuthenticated {
			t.Errorf("state = %v, want StateAuthenticated", c.State())
		}

		tokens, ok := c.Devices()
		if !ok || tokens.CN != "X" || tokens.CV != "Y" {
			t.Errorf("device tokens = %+v (ok=%v), want cn=X cv=Y", tokens, ok)
		}

		relogin := srv.loginBodies[len(srv.loginBodies)-1]
		for _, fragment := range []string{`"cn":"X"`, `"cv":"Y"`, `"fa": [{"cn": "X", "cv": "Y"}]`} {
			if !strings.Contains(relogin, fragment) {
				t.Errorf("re-login body missing %s: %s", fragment, relogin)
			}
		}
		if c.Token() != "final-token" {
			t.Errorf("token = %q, want final-token", c.Token())
		}
	})

	t.Run("answer without prior login fails before any network call", func(t *testing.T) {
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.Write([]byte(`{"code": 200}`))
		}))
		defer server.Close()

		c := NewClient(WithBaseURL(server.URL))
		_, err := c.SubmitAnswer(context.Background(), "Paris")
		if !IsKind(err, KindCredentialsLost) {
			t.Fatalf("expected KindCredentialsLost, got %v", err)
		}
		if calls != 0 {
			t.Errorf("expected no network calls, got %d", calls)
		}
	})

	t.Run("code 505 leaves the session unauthenticated", func(t *testing.T) {
		srv := &authServer{t: t}
		srv.loginResponse = func(w http.ResponseWriter, body string) {
			w.Write([]byte(`{"code": 505, "message": "identifiants invalides"}`))
		}
		server := httptest.NewServer(srv.handler())
		defer server.Close()

		c := NewClient(WithBaseURL(server.URL))
		_, err := c.Login(context.Background(), "alice", "wrong")
		if !IsKind(err, KindInvalidCredentials) {
			t.Fatalf("expected KindInvalidCredentials, got %v", err)
		}
		if c.State() != StateUnauthenticated {
			t.Errorf("state = %v, want StateUnauthenticated", c.State())
		}
		if c.Token() != "" {
			t.Errorf("token = %q, want empty", c.Token())
		}
	})

	t.Run("seeded device tokens are sent on the first attempt", func(t *testing.T) {
		srv := &authServer{t: t}
		srv.loginResponse = func(w http.ResponseWriter, body string) {
			w.Write([]byte(`{"code": 200, "data": {"accounts": [{"id": 7, "typeCompte": "E"}]}}`))
		}
		server := httptest.NewServer(srv.handler())
		defer server.Close()

		c := NewClient(WithBaseURL(server.URL), WithDeviceTokens("saved-cn", "saved-cv"))
		if _, err := c.Login(context.Background(), "alice", "secret"); err != nil {
			t.Fatalf("Login returned error: %v", err)
		}
		if !strings.Contains(srv.loginBodies[0], `"cn":"saved-cn"`) {
			t.Errorf("login body missing seeded device tokens: %s", srv.loginBodies[0])
		}
	})

	t.Run("rejects empty credentials locally", func(t *testing.T) {
		c := NewClient()
		if _, err := c.Login(context.Background(), "", "secret"); err == nil {
			t.Fatal("expected validation error for empty username")
		}
	})

	t.Run("missing device tokens after verification fail the flow", func(t *testing.T) {
		srv := &authServer{t: t}
		srv.loginResponse = func(w http.ResponseWriter, body string) {
			w.Write([]byte(`{"code": 250}`))
		}
		srv.challengeResponse = func(w http.ResponseWriter) {
			w.Write([]byte(`{"code": 200, "data": {"question": "` + b64("Q?") + `", "propositions": []}}`))
		}
		srv.verifyResponse = func(w http.ResponseWriter, body string) {
			w.Write([]byte(`{"code": 200, "data": {}}`))
		}
		server := httptest.NewServer(srv.handler())
		defer server.Close()

		c := NewClient(WithBaseURL(server.URL))
		if _, err := c.Login(context.Background(), "alice", "secret"); err != nil {
			t.Fatalf("Login returned error: %v", err)
		}
		_, err := c.SubmitAnswer(context.Background(), "whatever")
		if !IsKind(err, KindMFAVerificationFailed) {
			t.Fatalf("expected KindMFAVerificationFailed, got %v", err)
		}
	})

	t.Run("verification response without a payload is a verification failure", func(t *testing.T) {
		srv := &authServer{t: t}
		srv.loginResponse = func(w http.ResponseWriter, body string) {
			w.Write([]byte(`{"code": 250}`))
		}
		srv.challengeResponse = func(w http.ResponseWriter) {
			w.Write([]byte(`{"code": 200, "data": {"question": "` + b64("Q?") + `", "propositions": []}}`))
		}
		srv.verifyResponse = func(w http.ResponseWriter, body string) {
			w.Write([]byte(`{"code": 200}`))
		}
		server := httptest.NewServer(srv.handler())
		defer server.Close()

		c := NewClient(WithBaseURL(server.URL))
		if _, err := c.Login(context.Background(), "alice", "secret"); err != nil {
			t.Fatalf("Login returned error: %v", err)
		}
		_, err := c.SubmitAnswer(context.Background(), "whatever")
		if !IsKind(err, KindMFAVerificationFailed) {
			t.Fatalf("expected KindMFAVerificationFailed, got %v", err)
		}
	})
}

func TestResolveAccount(t *testing.T) {
	t.Run("guardian account collects linked learners in order", func(t *testing.T) {
		srv := &authServer{t: t}
		srv.loginResponse = func(w http.ResponseWriter, body string) {
			w.Write([]byte(`{"code": 200, "data": {"accounts": [{
				"id": 1, "typeCompte": "1",
				"profile": {"eleves": [
					{"id": 101, "prenom": "Léa"},
					{"id": 102, "prenom": "Hugo"}
				]}
			}]}}`))
		}
		server := httptest.NewServer(srv.handler())
		defer server.Close()

		c := NewClient(WithBaseURL(server.URL))
		out, err := c.Login(context.Background(), "parent", "secret")
		if err != nil {
			t.Fatalf("Login returned error: %v", err)
		}
		family, ok := out.Session.(*FamilySession)
		if !ok {
			t.Fatalf("expected *FamilySession, got %T", out.Session)
		}
		students := family.Students()
		if len(students) != 2 || students[0].ID != 101 || students[1].ID != 102 {
			t.Errorf("unexpected learner order: %+v", students)
		}
	})

	t.Run("legacy guardian marker is accepted", func(t *testing.T) {
		c := NewClient()
		session, err := c.resolveAccount(json.RawMessage(`{"accounts": [{"id": 1, "typeCompte": "Famille", "profile": {"eleves": [{"id": 5}]}}]}`))
		if err != nil {
			t.Fatalf("resolveAccount returned error: %v", err)
		}
		if _, ok := session.(*FamilySession); !ok {
			t.Fatalf("expected *FamilySession, got %T", session)
		}
	})

	t.Run("empty account list", func(t *testing.T) {
		c := NewClient()
		_, err := c.resolveAccount(json.RawMessage(`{"accounts": []}`))
		if err == nil || err.Kind != KindNoAccounts {
			t.Fatalf("expected KindNoAccounts, got %v", err)
		}
	})

	t.Run("unknown type code", func(t *testing.T) {
		c := NewClient()
		_, err := c.resolveAccount(json.RawMessage(`{"accounts": [{"id": 1, "typeCompte": "Z"}]}`))
		if err == nil || err.Kind != KindUnknownAccountType {
			t.Fatalf("expected KindUnknownAccountType, got %v", err)
		}
	})
}
