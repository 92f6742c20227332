package functions

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tripdesk/backoffice/internal/config"
	"github.com/tripdesk/backoffice/internal/domain"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validAgentInput() CreateAgentInput {
	return CreateAgentInput{
		Email:     "maria@tripdesk.example",
		Password:  "s3cure-pass",
		FirstName: "Maria",
		LastName:  "Lopez",
		Role:      domain.RoleAgent,
	}
}

func TestClient_CreateAgent_Success(t *testing.T) {
	t.Parallel()

	agentID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/create-agent" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer svc-key" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("apikey"); got != "svc-key" {
			t.Errorf("apikey = %q", got)
		}

		var in map[string]string
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if in["firstName"] != "Maria" || in["role"] != "agent" {
			t.Errorf("unexpected body: %v", in)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"user":    map[string]any{"id": agentID, "email": in["email"], "firstName": "Maria", "lastName": "Lopez", "role": "agent"},
		})
	}))
	defer srv.Close()

	c := NewClientWithURL(srv.URL, "svc-key", newTestLogger())
	agent, err := c.CreateAgent(context.Background(), validAgentInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if agent.ID != agentID || agent.Role != domain.RoleAgent {
		t.Errorf("unexpected agent: %+v", agent)
	}
}

func TestClient_CreateAgent_ValidationFailsBeforeRequest(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	in := validAgentInput()
	in.Email = "not-an-email"
	in.Password = "short"
	in.Role = "owner"

	c := NewClientWithURL(srv.URL, "", newTestLogger())
	_, err := c.CreateAgent(context.Background(), in)

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Errors) != 3 {
		t.Errorf("expected 3 field errors, got %+v", verr.Errors)
	}
	if verr.Errors[0].Field != "email" {
		t.Errorf("first field = %q, want email", verr.Errors[0].Field)
	}
	if calls.Load() != 0 {
		t.Errorf("expected no HTTP calls, got %d", calls.Load())
	}
}

func TestClient_CreateAgent_ErrorBody(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"conflict", http.StatusConflict, domain.ErrAlreadyExists},
		{"bad request", http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error":"User already registered"}`))
			}))
			defer srv.Close()

			c := NewClientWithURL(srv.URL, "", newTestLogger())
			_, err := c.CreateAgent(context.Background(), validAgentInput())
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestClient_RecalculateVendorRating(t *testing.T) {
	t.Parallel()

	vendorID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/update-vendor-ratings" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in["vendor_id"] != vendorID.String() {
			t.Errorf("vendor_id = %q, body = %v", in["vendor_id"], in)
		}
		w.Write([]byte(`{"success":true,"rating":4.25}`))
	}))
	defer srv.Close()

	c := NewClientWithURL(srv.URL, "", newTestLogger())
	rating, err := c.RecalculateVendorRating(context.Background(), vendorID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rating != "4.25" {
		t.Errorf("rating = %q, want 4.25", rating)
	}
}

func TestClient_RecalculateVendorRating_NoReviews(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"rating":null}`))
	}))
	defer srv.Close()

	c := NewClientWithURL(srv.URL, "", newTestLogger())
	rating, err := c.RecalculateVendorRating(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rating != "" {
		t.Errorf("rating = %q, want empty", rating)
	}
}

func TestClient_RecalculateVendorRating_NotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"error":"Vendor not found"}`))
	}))
	defer srv.Close()

	c := NewClientWithURL(srv.URL, "", newTestLogger())
	_, err := c.RecalculateVendorRating(context.Background(), uuid.New())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClient_RecalculateVendorRating_NilID(t *testing.T) {
	t.Parallel()

	c := NewClientWithURL("http://127.0.0.1:0", "", newTestLogger())
	_, err := c.RecalculateVendorRating(context.Background(), uuid.Nil)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestClient_RetryOn5xx(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"success":true,"rating":"3.50"}`))
	}))
	defer srv.Close()

	c := NewClientWithURL(srv.URL, "", newTestLogger())
	rating, err := c.RecalculateVendorRating(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rating != "3.50" {
		t.Errorf("rating = %q", rating)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
}

func TestClient_RetryExhausted(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"error":"boom"}`))
	}))
	defer srv.Close()

	c, err := NewClient(config.FunctionsConfig{BaseURL: srv.URL, Timeout: time.Second, MaxRetries: 2}, newTestLogger())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := c.RecalculateVendorRating(context.Background(), uuid.New()); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 calls, got %d", calls.Load())
	}
}

func TestClient_CreateAgent_NotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"success":false,"error":"upstream timeout"}`))
	}))
	defer srv.Close()

	c, err := NewClient(config.FunctionsConfig{BaseURL: srv.URL, Timeout: time.Second, MaxRetries: 3}, newTestLogger())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := c.CreateAgent(context.Background(), validAgentInput()); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}
}

func TestNewClient_Disabled(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(config.FunctionsConfig{}, newTestLogger()); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}
