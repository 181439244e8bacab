package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brightpath-edu/retention-service/pkg/nudge"
	"github.com/brightpath-edu/retention-service/pkg/risk"
)

func validMessage() *nudge.Message {
	now := time.Now()
	return &nudge.Message{
		ID:            "n1",
		StudentID:     "s1",
		Trigger:       nudge.TriggerInactive,
		Celebration:   "Welcome back!",
		Encouragement: "We missed you.",
		CallToAction:  "Try a session today.",
		Priority:      risk.LevelMedium,
		CreatedAt:     now,
		ExpiresAt:     now.Add(24 * time.Hour),
	}
}

func TestHTTPClient_CheckNudge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/nudges" || r.Method != http.MethodGet {
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if r.URL.Query().Get("studentId") != "s1" {
			t.Errorf("Expected studentId query, got %s", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(map[string]any{"nudge": validMessage()})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, nil)
	msg, err := client.CheckNudge(context.Background(), "s1", false)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if msg == nil || msg.ID != "n1" {
		t.Errorf("Unexpected message: %+v", msg)
	}
}

func TestHTTPClient_CheckNudge_Force(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/nudges/force" || r.Method != http.MethodPost {
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{"nudge": nil})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, nil)
	msg, err := client.CheckNudge(context.Background(), "s1", true)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if msg != nil {
		t.Errorf("Expected nil message for null nudge, got %+v", msg)
	}
}

func TestHTTPClient_CheckNudge_ErrorClasses(t *testing.T) {
	tests := []struct {
		name            string
		status          int
		body            string
		expectTransient bool
		expectInvalid   bool
	}{
		{"server error retries", http.StatusInternalServerError, "", true, false},
		{"bad gateway retries", http.StatusBadGateway, "", true, false},
		{"client error permanent", http.StatusBadRequest, "", false, false},
		{"garbage json invalid", http.StatusOK, "{not json", false, true},
		{"invalid nudge payload", http.StatusOK, `{"nudge":{"id":""}}`, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewHTTPClient(srv.URL, nil)
			_, err := client.CheckNudge(context.Background(), "s1", false)
			if err == nil {
				t.Fatal("Expected error")
			}
			if IsTransient(err) != tt.expectTransient {
				t.Errorf("Expected transient=%v, got %v (%v)", tt.expectTransient, IsTransient(err), err)
			}
			if errors.Is(err, ErrInvalidNudge) != tt.expectInvalid {
				t.Errorf("Expected invalid=%v, got %v (%v)", tt.expectInvalid, errors.Is(err, ErrInvalidNudge), err)
			}
		})
	}
}

func TestHTTPClient_CheckNudge_ConnectionRefused(t *testing.T) {
	// Point at a server that is already closed.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewHTTPClient(srv.URL, nil)
	_, err := client.CheckNudge(context.Background(), "s1", false)
	if err == nil {
		t.Fatal("Expected error")
	}
	if !IsTransient(err) {
		t.Errorf("Expected connection failure to be transient, got %v", err)
	}
}

func TestHTTPClient_RecordInteraction(t *testing.T) {
	var got Interaction
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/nudges" || r.Method != http.MethodPost {
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]bool{"recorded": true})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, nil)
	in := Interaction{StudentID: "s1", NudgeID: "n1", Action: nudge.ActionDismissed, Trigger: nudge.TriggerInactive}
	if err := client.RecordInteraction(context.Background(), in); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got.NudgeID != "n1" || got.Action != nudge.ActionDismissed {
		t.Errorf("Unexpected posted interaction: %+v", got)
	}
}
