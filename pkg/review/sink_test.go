package review

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"florence-hq/vesta/pkg/review/eligibility"
)

func TestLogSink_EmitsStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	sink := NewLogSink(logger)

	err := sink.Present(context.Background(), Candidate{
		EngagementID: "eng-1",
		Role:         RoleInitiator,
		Context:      PresentingContext{"screen": "summary"},
	})
	if err != nil {
		t.Fatalf("Present: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"engagement_id":"eng-1"`) {
		t.Errorf("log line missing engagement_id: %s", out)
	}
	if !strings.Contains(out, `"role":"initiator"`) {
		t.Errorf("log line missing role: %s", out)
	}
}

func TestWebhookSink_PostsCandidate(t *testing.T) {
	var (
		gotMethod      string
		gotContentType string
		gotBody        []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r.Body)
		gotBody = buf.Bytes()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := NewWebhookSink(srv.URL, time.Second)
	candidate := Candidate{
		EngagementID: "eng-7",
		Role:         RoleParticipant,
		Engagement:   eligibility.Engagement{ID: "eng-7", Completed: true},
	}

	if err := sink.Present(context.Background(), candidate); err != nil {
		t.Fatalf("Present: %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("method = %q, want POST", gotMethod)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}

	var decoded Candidate
	if err := json.Unmarshal(gotBody, &decoded); err != nil {
		t.Fatalf("decode delivered body: %v", err)
	}
	if decoded.EngagementID != "eng-7" {
		t.Errorf("delivered engagement_id = %q, want %q", decoded.EngagementID, "eng-7")
	}
	if decoded.Role != RoleParticipant {
		t.Errorf("delivered role = %q, want %q", decoded.Role, RoleParticipant)
	}
}

func TestWebhookSink_Non2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	sink := NewWebhookSink(srv.URL, time.Second)
	err := sink.Present(context.Background(), Candidate{EngagementID: "eng-1"})
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error does not carry status: %v", err)
	}
}

func TestWebhookSink_UnreachableEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	sink := NewWebhookSink(srv.URL, 100*time.Millisecond)
	if err := sink.Present(context.Background(), Candidate{EngagementID: "eng-1"}); err == nil {
		t.Fatal("expected error for closed endpoint")
	}
}
