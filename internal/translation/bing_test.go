package translation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newBingTestServer(t *testing.T, authCalls *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth":
			*authCalls++
			_, _ = w.Write([]byte("edge-token"))
		case "/translate":
			if got := r.Header.Get("Authorization"); got != "Bearer edge-token" {
				t.Errorf("unexpected auth header %q", got)
			}
			_ = json.NewEncoder(w).Encode([]map[string]any{{
				"detectedLanguage": map[string]any{"language": "en", "score": 1.0},
				"translations":     []map[string]string{{"text": "Bonjour le monde", "to": "fr"}},
			}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
}

func TestBingTranslatorCachesAuthToken(t *testing.T) {
	t.Parallel()

	authCalls := 0
	server := newBingTestServer(t, &authCalls)
	defer server.Close()

	translator := &BingTranslator{
		authURL:     server.URL + "/auth",
		endpointURL: server.URL + "/translate",
		client:      &http.Client{Timeout: 5 * time.Second},
	}

	for i := 0; i < 3; i++ {
		resp, err := translator.Translate(context.Background(), TranslateRequest{
			Text:       "Hello world",
			TargetLang: "fr",
		})
		if err != nil {
			t.Fatalf("translate %d: %v", i, err)
		}
		if resp.Text != "Bonjour le monde" {
			t.Fatalf("unexpected translation %q", resp.Text)
		}
		if resp.ProviderName != ProviderBing {
			t.Fatalf("unexpected provider %s", resp.ProviderName)
		}
	}

	if authCalls != 1 {
		t.Fatalf("auth endpoint called %d times, want 1 (token cached)", authCalls)
	}
}

func TestBingTranslatorInvalidatesTokenOnAuthFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth":
			_, _ = w.Write([]byte("edge-token"))
		case "/translate":
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer server.Close()

	translator := &BingTranslator{
		authURL:     server.URL + "/auth",
		endpointURL: server.URL + "/translate",
		client:      &http.Client{Timeout: 5 * time.Second},
	}

	if _, err := translator.Translate(context.Background(), testRequest()); err == nil {
		t.Fatalf("expected unauthorized error")
	}
	if translator.token != "" {
		t.Fatalf("token was not invalidated after 401")
	}
}
