package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newClientFor(url string) *Client {
	return NewClient(Config{APIURL: url, Model: "test-model", Timeout: 5 * time.Second})
}

func TestGenerateSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected application/json, got %q", ct)
		}
		w.Write([]byte(`{"response": "  A fraction names part of a whole.  "}`))
	}))
	defer srv.Close()

	answer, err := newClientFor(srv.URL).Generate(context.Background(), "what is a fraction?")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if answer != "A fraction names part of a whole." {
		t.Errorf("expected trimmed answer, got %q", answer)
	}
}

func TestGenerateUnreachableServer(t *testing.T) {
	// A server started and immediately closed yields a refused connection
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newClientFor(url).Generate(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "cannot reach llm server at "+url) {
		t.Errorf("unexpected error: %v", err)
	}
	if !strings.Contains(err.Error(), "is the model runtime up?") {
		t.Errorf("expected the runtime hint in the error, got: %v", err)
	}
}

func TestGenerateHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`model "missing" not found`))
	}))
	defer srv.Close()

	_, err := newClientFor(srv.URL).Generate(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "llm api error: http 404") {
		t.Errorf("unexpected error: %v", err)
	}
	if !strings.Contains(err.Error(), `model "missing" not found`) {
		t.Errorf("expected the upstream body in the error, got: %v", err)
	}
}

func TestGenerateMalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway error</html>"))
	}))
	defer srv.Close()

	_, err := newClientFor(srv.URL).Generate(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "failed to decode llm response as json") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestGenerateMissingResponseField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": "something else entirely"}`))
	}))
	defer srv.Close()

	_, err := newClientFor(srv.URL).Generate(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "llm response is missing the response field") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestGenerateEmptyAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response": "   "}`))
	}))
	defer srv.Close()

	_, err := newClientFor(srv.URL).Generate(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "llm returned an empty answer") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestClientDefaults(t *testing.T) {
	client := NewClient(Config{})
	if client.APIURL() != DefaultAPIURL {
		t.Errorf("expected default url %q, got %q", DefaultAPIURL, client.APIURL())
	}
	if client.Model() != DefaultModel {
		t.Errorf("expected default model %q, got %q", DefaultModel, client.Model())
	}
}

func TestTestConnectionReportsParsedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response": "Hi, I am a local model.", "done": true}`))
	}))
	defer srv.Close()

	result := newClientFor(srv.URL).TestConnection(context.Background())

	if result.APIURL != srv.URL {
		t.Errorf("expected url %q, got %q", srv.URL, result.APIURL)
	}
	if result.Model != "test-model" {
		t.Errorf("expected model test-model, got %q", result.Model)
	}
	if result.HTTPStatus != http.StatusOK {
		t.Errorf("expected 200, got %d", result.HTTPStatus)
	}
	if result.TransportError != "" {
		t.Errorf("unexpected transport error: %s", result.TransportError)
	}
	if result.Response["response"] != "Hi, I am a local model." {
		t.Errorf("unexpected parsed response: %+v", result.Response)
	}
}

func TestTestConnectionReportsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	result := newClientFor(url).TestConnection(context.Background())

	if result.TransportError == "" {
		t.Error("expected a transport error for a closed server")
	}
	if result.HTTPStatus != 0 {
		t.Errorf("expected no http status, got %d", result.HTTPStatus)
	}
}

func TestTestConnectionKeepsRawOnMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream is down"))
	}))
	defer srv.Close()

	result := newClientFor(srv.URL).TestConnection(context.Background())

	if result.HTTPStatus != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", result.HTTPStatus)
	}
	if result.RawResponse != "upstream is down" {
		t.Errorf("expected the raw body to be preserved, got %q", result.RawResponse)
	}
	if result.Response != nil {
		t.Errorf("expected no parsed response, got %+v", result.Response)
	}
}
