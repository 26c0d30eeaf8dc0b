package handlers

import (
	"net/http"
	"testing"

	"copystudio/internal/domain"
	"copystudio/internal/session"
)

func TestGenerateReturnsEntryAndUpdatedUser(t *testing.T) {
	user := authedUser()
	user.Credits = 490
	user.UsageThisMonth = 120
	ws := &fakeWorkspace{entry: domain.GenerationHistory{ID: "1", Type: domain.ContentBlog, Topic: "remote work", Content: "text"}}
	sessions := &fakeSessions{state: session.StateAuthenticated, user: user}
	app := newTestApp(nil, sessions, ws, nil)

	rec := doJSON(t, app.Generate, http.MethodPost, "/api/generate", `{"type":"Blog Post","topic":"remote work","tone":"Casual"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	entry := body["entry"].(map[string]any)
	if entry["id"] != "1" {
		t.Fatalf("entry = %v", entry)
	}
	respUser := body["user"].(map[string]any)
	if respUser["credits"] != float64(490) || respUser["usage_this_month"] != float64(120) {
		t.Fatalf("user = %v, want the updated counters", respUser)
	}
	if ws.tone != "Casual" {
		t.Fatalf("tone = %q", ws.tone)
	}
}

func TestGenerateDefaultsTone(t *testing.T) {
	ws := &fakeWorkspace{entry: domain.GenerationHistory{ID: "1"}}
	app := newTestApp(nil, &fakeSessions{state: session.StateAuthenticated, user: authedUser()}, ws, nil)

	rec := doJSON(t, app.Generate, http.MethodPost, "/api/generate", `{"type":"Blog Post","topic":"x"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if ws.tone != "Professional" {
		t.Fatalf("tone = %q, want the Professional default", ws.tone)
	}
}

func TestGenerateMissingFieldsRejected(t *testing.T) {
	ws := &fakeWorkspace{}
	app := newTestApp(nil, nil, ws, nil)
	rec := doJSON(t, app.Generate, http.MethodPost, "/api/generate", `{"topic":"x"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if ws.calls != 0 {
		t.Fatal("workspace must not run for invalid payloads")
	}
}

func TestGenerateErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "empty topic", err: domain.ErrEmptyTopic, want: http.StatusBadRequest},
		{name: "invalid type", err: domain.ErrInvalidContentType, want: http.StatusBadRequest},
		{name: "auth required", err: domain.ErrAuthRequired, want: http.StatusUnauthorized},
		{name: "over limit", err: domain.ErrUsageLimitReached, want: http.StatusForbidden},
		{name: "in flight", err: domain.ErrGenerationInFlight, want: http.StatusConflict},
		{name: "provider failure", err: domain.ErrGenerationFailed, want: http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := &fakeWorkspace{err: tt.err}
			app := newTestApp(nil, &fakeSessions{state: session.StateAuthenticated, user: authedUser()}, ws, nil)
			rec := doJSON(t, app.Generate, http.MethodPost, "/api/generate", `{"type":"Blog Post","topic":"x"}`)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestGenerateLimitMessageSuggestsUpgrade(t *testing.T) {
	ws := &fakeWorkspace{err: domain.ErrUsageLimitReached}
	app := newTestApp(nil, &fakeSessions{state: session.StateAuthenticated, user: authedUser()}, ws, nil)
	rec := doJSON(t, app.Generate, http.MethodPost, "/api/generate", `{"type":"Blog Post","topic":"x"}`)
	if body := decodeBody(t, rec); body["message"] != "Monthly word limit reached. Upgrade to keep generating." {
		t.Fatalf("message = %v", body["message"])
	}
}
