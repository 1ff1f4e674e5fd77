package platformapi_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"sanchaar/internal/services/platformapi"
)

func TestPostJSONSendsBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected auth header %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("unexpected content type %q", got)
		}
		_, _ = w.Write([]byte(`{"id":"42"}`))
	}))
	defer server.Close()

	client := platformapi.New(server.URL+"/", "secret", nil, time.Second)
	var out struct {
		ID string `json:"id"`
	}
	if err := client.PostJSON(context.Background(), client.Endpoint("posts"), map[string]string{"a": "b"}, &out); err != nil {
		t.Fatalf("PostJSON failed: %v", err)
	}
	if out.ID != "42" {
		t.Fatalf("unexpected response %+v", out)
	}
}

func TestStatusErrorDecodesGraphMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid OAuth access token","code":190}}`))
	}))
	defer server.Close()

	client := platformapi.New(server.URL, "", nil, time.Second)
	err := client.PostForm(context.Background(), client.Endpoint("media"), url.Values{"a": {"b"}}, nil)
	var statusErr *platformapi.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusBadRequest || statusErr.Message != "Invalid OAuth access token" {
		t.Fatalf("unexpected status error %+v", statusErr)
	}
}

func TestEndpointEscapesSegments(t *testing.T) {
	client := platformapi.New("https://graph.example.com/v18.0/", "", nil, time.Second)
	if got := client.Endpoint("123", "/messages/"); got != "https://graph.example.com/v18.0/123/messages" {
		t.Fatalf("unexpected endpoint %q", got)
	}
}
