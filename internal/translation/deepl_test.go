package translation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDeepLTranslatorEndpoints(t *testing.T) {
	t.Parallel()

	paid := NewDeepLTranslator("paid-key", 0, "", 0)
	if paid.endpointURL != DefaultDeepLEndpoint+"/v2/translate" {
		t.Fatalf("paid key routed to %s", paid.endpointURL)
	}

	free := NewDeepLTranslator("free-key:fx", 0, "", 0)
	if free.endpointURL != DefaultDeepLFreeEndpoint+"/v2/translate" {
		t.Fatalf("free key routed to %s", free.endpointURL)
	}

	custom := NewDeepLTranslator("free-key:fx", 0, "https://example.test/", 0)
	if custom.endpointURL != "https://example.test/v2/translate" {
		t.Fatalf("custom endpoint routed to %s", custom.endpointURL)
	}
}

func TestDeepLTranslatorTranslate(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v2/translate" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "DeepL-Auth-Key test-key" {
			t.Errorf("unexpected auth header %q", got)
		}

		var payload deepLRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(payload.Text) != 1 || payload.Text[0] != "Hello world" {
			t.Errorf("unexpected text %v", payload.Text)
		}
		if payload.TargetLang != "ZH" {
			t.Errorf("unexpected target lang %s", payload.TargetLang)
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"translations": []map[string]string{{
				"detected_source_language": "EN",
				"text":                     "你好，世界",
			}},
		})
	}))
	defer server.Close()

	translator := NewDeepLTranslator("test-key", 2, server.URL, 5*time.Second)
	resp, err := translator.Translate(context.Background(), TranslateRequest{
		Text:       "Hello world",
		TargetLang: "zh",
	})
	if err != nil {
		t.Fatalf("translate: %v", err)
	}

	if resp.Text != "你好，世界" {
		t.Fatalf("unexpected translation %q", resp.Text)
	}
	if resp.SourceLang != "en" {
		t.Fatalf("detected source %q, want en", resp.SourceLang)
	}
	if resp.ProviderName != ProviderDeepL || resp.KeyIndex != 2 {
		t.Fatalf("unexpected provider/key %s/%d", resp.ProviderName, resp.KeyIndex)
	}
}

func TestDeepLTranslatorStatusErrors(t *testing.T) {
	t.Parallel()

	status := http.StatusTooManyRequests
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	}))
	defer server.Close()

	translator := NewDeepLTranslator("test-key", 0, server.URL, 5*time.Second)

	if _, err := translator.Translate(context.Background(), testRequest()); err == nil {
		t.Fatalf("expected rate limit error")
	}

	status = 456
	if _, err := translator.Translate(context.Background(), testRequest()); err == nil {
		t.Fatalf("expected quota error")
	}
}
