package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	bingAuthURL      = "https://edge.microsoft.com/translate/auth"
	bingTranslateURL = "https://api-edge.cognitive.microsofttranslator.com/translate"

	defaultBingTimeout = 15 * time.Second
	// Edge auth tokens are valid for ten minutes; refresh before expiry.
	bingTokenTTL = 8 * time.Minute
)

// BingTranslator calls the Microsoft Edge translation endpoint using the
// keyless auth token flow. The token is fetched lazily and cached; the
// translate API itself matches the Azure Translator v3 wire shape.
type BingTranslator struct {
	authURL     string
	endpointURL string
	client      *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewBingTranslator(timeout time.Duration) *BingTranslator {
	if timeout <= 0 {
		timeout = defaultBingTimeout
	}
	return &BingTranslator{
		authURL:     bingAuthURL,
		endpointURL: bingTranslateURL,
		client:      &http.Client{Timeout: timeout},
	}
}

func (t *BingTranslator) Provider() string {
	return ProviderBing
}

func (t *BingTranslator) Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error) {
	if t == nil {
		return nil, fmt.Errorf("bing translator is nil")
	}

	targetLang := normalizeLangCode(req.TargetLang)
	if targetLang == "" {
		return nil, fmt.Errorf("target language is required")
	}

	token, err := t.authToken(ctx)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("api-version", azureAPIVersion)
	query.Set("to", targetLang)
	if source := normalizeLangCode(req.SourceLang); source != "" {
		query.Set("from", source)
	}

	body, err := json.Marshal([]azureTextItem{{Text: req.Text}})
	if err != nil {
		return nil, fmt.Errorf("marshal bing request: %w", err)
	}

	started := time.Now()
	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		t.endpointURL+"?"+query.Encode(),
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, fmt.Errorf("build bing request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send bing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read bing response: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		t.invalidateToken()
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("bing status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var parsed []azureTranslateResult
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode bing response: %w", err)
	}
	if len(parsed) == 0 || len(parsed[0].Translations) == 0 {
		return nil, fmt.Errorf("bing response missing translations")
	}

	translated := strings.TrimSpace(parsed[0].Translations[0].Text)
	if translated == "" {
		return nil, fmt.Errorf("bing translation was empty")
	}

	sourceLang := normalizeLangCode(parsed[0].DetectedLanguage.Language)
	if sourceLang == "" {
		sourceLang = normalizeLangCode(req.SourceLang)
	}

	return &TranslateResponse{
		Text:         translated,
		SourceLang:   sourceLang,
		TargetLang:   targetLang,
		ProviderName: t.Provider(),
		LatencyMs:    time.Since(started).Milliseconds(),
	}, nil
}

func (t *BingTranslator) authToken(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token != "" && time.Now().Before(t.tokenExpiry) {
		return t.token, nil
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, t.authURL, nil)
	if err != nil {
		return "", fmt.Errorf("build bing auth request: %w", err)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("send bing auth request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read bing auth response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("bing auth status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	token := strings.TrimSpace(string(body))
	if token == "" {
		return "", fmt.Errorf("bing auth token was empty")
	}

	t.token = token
	t.tokenExpiry = time.Now().Add(bingTokenTTL)
	return token, nil
}

func (t *BingTranslator) invalidateToken() {
	t.mu.Lock()
	t.token = ""
	t.tokenExpiry = time.Time{}
	t.mu.Unlock()
}
