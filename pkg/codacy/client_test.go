package codacy

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 3,
		WaitMin:    time.Millisecond,
		WaitMax:    2 * time.Millisecond,
	}
}

func testClient(url string) *Client {
	return NewClient(url, "gh", "acme", "secret", 5*time.Second, testPolicy())
}

func TestTransientFailureRetriedThreeTimes(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.Error(w, `{"error": "unavailable"}`, http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, _, attempts, err := testClient(server.URL).CreateStandard("std", []string{"Javascript"})
	if err == nil {
		t.Fatal("expected error after retry exhaustion")
	}
	if hits != 4 {
		t.Fatalf("expected 4 attempts (1 + 3 retries), server saw %d", hits)
	}
	if attempts != 4 {
		t.Fatalf("expected attempts = 4, got %d", attempts)
	}
}

func TestPermanentFailureNotRetried(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.Error(w, `{"error": "bad payload"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	_, _, attempts, err := testClient(server.URL).CreateStandard("std", []string{"Javascript"})
	if err == nil {
		t.Fatal("expected error")
	}
	if hits != 1 {
		t.Fatalf("4xx must be attempted exactly once, server saw %d", hits)
	}
	if attempts != 1 {
		t.Fatalf("expected attempts = 1, got %d", attempts)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %s", err, err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("wrong status: %d", apiErr.StatusCode)
	}
	if !strings.Contains(apiErr.Body, "bad payload") {
		t.Fatalf("error must carry the full response body, got %q", apiErr.Body)
	}
}

func TestTransientFailureRecoversOnThirdRetry(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits <= 3 {
			http.Error(w, "upstream down", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"data": {"id": "std-42"}}`))
	}))
	defer server.Close()

	id, _, attempts, err := testClient(server.URL).CreateStandard("std", []string{"Javascript"})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if id != "std-42" {
		t.Fatalf("wrong standard id: %q", id)
	}
	if attempts != 4 {
		t.Fatalf("expected attempts = 4, got %d", attempts)
	}
}

func TestAuthHeaderAndPayload(t *testing.T) {
	var (
		gotToken  string
		gotBody   string
		gotPath   string
		gotMethod string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("api-token")
		gotPath = r.URL.Path
		gotMethod = r.Method
		buf, _ := io.ReadAll(r.Body)
		gotBody = string(buf)
		w.Write([]byte(`{"data": {"id": "std-1"}}`))
	}))
	defer server.Close()

	_, _, _, err := testClient(server.URL).CreateStandard("My Standard", []string{"Javascript", "TypeScript"})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if gotToken != "secret" {
		t.Fatalf("api-token header not sent, got %q", gotToken)
	}
	if gotMethod != http.MethodPost || gotPath != "/organizations/gh/acme/coding-standards" {
		t.Fatalf("wrong request: %s %s", gotMethod, gotPath)
	}
	if !strings.Contains(gotBody, `"name":"My Standard"`) || !strings.Contains(gotBody, `"TypeScript"`) {
		t.Fatalf("unexpected payload: %s", gotBody)
	}
}

func TestCreateResponseWithoutID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {}}`))
	}))
	defer server.Close()

	_, _, _, err := testClient(server.URL).CreateStandard("std", nil)
	if err == nil {
		t.Fatal("expected error for response without standard id")
	}
}

func TestHTMLErrorPageTitle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("<html><head><title>Access denied</title></head><body>blocked</body></html>"))
	}))
	defer server.Close()

	_, _, err := testClient(server.URL).PromoteStandard("std-1")
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Title != "Access denied" {
		t.Fatalf("expected HTML title extraction, got %q", apiErr.Title)
	}
	if !strings.Contains(apiErr.Error(), "Access denied") {
		t.Fatalf("error string should surface the title: %s", apiErr.Error())
	}
}

func TestListTools(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [{"uuid": "tool-a"}, {"uuid": "tool-b"}]}`))
	}))
	defer server.Close()

	tools, _, err := testClient(server.URL).ListTools("std-1")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(tools) != 2 || tools[0].UUID != "tool-a" {
		t.Fatalf("unexpected tools: %+v", tools)
	}
}
