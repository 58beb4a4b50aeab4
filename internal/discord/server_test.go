package discord

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalbodeule/calbot/internal/bot"
	"github.com/dalbodeule/calbot/internal/schedule"
)

type testEndpoint struct {
	server *Server
	priv   ed25519.PrivateKey
}

func newTestEndpoint(t *testing.T) *testEndpoint {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	handler := bot.New(schedule.NewService(nil, time.UTC), nil)
	server, err := NewServer(handler, nil, hex.EncodeToString(pub))
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return &testEndpoint{server: server, priv: priv}
}

func (e *testEndpoint) post(t *testing.T, body []byte, sign bool) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/interactions", bytes.NewReader(body))
	ts := "1700000000"
	req.Header.Set("X-Signature-Timestamp", ts)
	if sign {
		sig := ed25519.Sign(e.priv, append([]byte(ts), body...))
		req.Header.Set("X-Signature-Ed25519", hex.EncodeToString(sig))
	} else {
		req.Header.Set("X-Signature-Ed25519", strings.Repeat("00", ed25519.SignatureSize))
	}

	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func TestInteractionsRejectsBadSignature(t *testing.T) {
	e := newTestEndpoint(t)
	rec := e.post(t, []byte(`{"type":1}`), false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestInteractionsPingPong(t *testing.T) {
	e := newTestEndpoint(t)
	rec := e.post(t, []byte(`{"type":1}`), true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Type int `json:"type"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Type != responsePong {
		t.Fatalf("response type = %d, want pong", resp.Type)
	}
}

func TestInteractionsDispatchesScheduleHelp(t *testing.T) {
	e := newTestEndpoint(t)
	body := []byte(`{
		"type": 2,
		"channel_id": "c1",
		"member": {"user": {"id": "u1", "username": "tester"}},
		"data": {"name": "schedule"}
	}`)

	rec := e.post(t, body, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Type int `json:"type"`
		Data struct {
			Content string `json:"content"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Type != responseChannelMessage {
		t.Fatalf("response type = %d, want channel message", resp.Type)
	}
	if !strings.Contains(resp.Data.Content, "/schedule view") {
		t.Fatalf("content = %q, want help text", resp.Data.Content)
	}
}

func TestInteractionsDispatchesSubcommandOptions(t *testing.T) {
	e := newTestEndpoint(t)
	// Provider is nil in the test handler, so any schedule subcommand must
	// come back with the unavailable message, proving the routing worked.
	body := []byte(`{
		"type": 2,
		"channel_id": "c1",
		"member": {"user": {"id": "u1"}},
		"data": {
			"name": "schedule",
			"options": [{
				"name": "view", "type": 1,
				"options": [{"name": "day", "type": 3, "value": "tomorrow"}]
			}]
		}
	}`)

	rec := e.post(t, body, true)
	var resp struct {
		Data struct {
			Content string `json:"content"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.Content != "Error: Google Calendar connection is not available." {
		t.Fatalf("content = %q", resp.Data.Content)
	}
}

func TestInteractionsRejectsNonPost(t *testing.T) {
	e := newTestEndpoint(t)
	req := httptest.NewRequest(http.MethodGet, "/interactions", nil)
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	e := newTestEndpoint(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestNewServerValidatesPublicKey(t *testing.T) {
	handler := bot.New(schedule.NewService(nil, time.UTC), nil)
	if _, err := NewServer(handler, nil, "nothex"); err == nil {
		t.Fatal("expected error for non-hex key")
	}
	if _, err := NewServer(handler, nil, "abcd"); err == nil {
		t.Fatal("expected error for short key")
	}
}

func TestOptionHelpers(t *testing.T) {
	opts := []Option{
		{Name: "day", Type: 3, Value: json.RawMessage(`"tomorrow"`)},
		{Name: "id", Type: 4, Value: json.RawMessage(`3`)},
	}

	if got := stringOption(opts, "day"); got != "tomorrow" {
		t.Fatalf("stringOption = %q", got)
	}
	if got := stringOption(opts, "missing"); got != "" {
		t.Fatalf("stringOption(missing) = %q", got)
	}
	if got := intOption(opts, "id", 0); got != 3 {
		t.Fatalf("intOption = %d", got)
	}
	if got := intOption(opts, "missing", 7); got != 7 {
		t.Fatalf("intOption default = %d", got)
	}
}
