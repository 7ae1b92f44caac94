package translation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	googleTranslateURL   = "https://translate.googleapis.com/translate_a/single"
	defaultGoogleTimeout = 15 * time.Second
)

// GoogleTranslator calls the keyless Google web translation endpoint. No
// credential is required; the provider group holds a single instance.
type GoogleTranslator struct {
	endpointURL string
	client      *http.Client
}

func NewGoogleTranslator(timeout time.Duration) *GoogleTranslator {
	if timeout <= 0 {
		timeout = defaultGoogleTimeout
	}
	return &GoogleTranslator{
		endpointURL: googleTranslateURL,
		client:      &http.Client{Timeout: timeout},
	}
}

func (t *GoogleTranslator) Provider() string {
	return ProviderGoogle
}

func (t *GoogleTranslator) Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error) {
	if t == nil {
		return nil, fmt.Errorf("google translator is nil")
	}

	targetLang := normalizeLangCode(req.TargetLang)
	if targetLang == "" {
		return nil, fmt.Errorf("target language is required")
	}

	sourceLang := normalizeLangCode(req.SourceLang)
	if sourceLang == "" {
		sourceLang = "auto"
	}

	query := url.Values{}
	query.Set("client", "gtx")
	query.Set("sl", sourceLang)
	query.Set("tl", targetLang)
	query.Set("dt", "t")
	query.Set("q", req.Text)

	started := time.Now()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpointURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build google request: %w", err)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send google request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read google response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("google status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	translated, detected, err := parseGoogleResponse(respBody)
	if err != nil {
		return nil, err
	}

	if detected == "" {
		detected = normalizeLangCode(req.SourceLang)
	}

	return &TranslateResponse{
		Text:         translated,
		SourceLang:   detected,
		TargetLang:   targetLang,
		ProviderName: t.Provider(),
		LatencyMs:    time.Since(started).Milliseconds(),
	}, nil
}

// parseGoogleResponse decodes the gtx payload: a nested array whose first
// element holds [translated, original, ...] segments and whose third element
// is the detected source language.
func parseGoogleResponse(body []byte) (string, string, error) {
	var payload []json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", "", fmt.Errorf("decode google response: %w", err)
	}
	if len(payload) == 0 {
		return "", "", fmt.Errorf("google response was empty")
	}

	var segments [][]json.RawMessage
	if err := json.Unmarshal(payload[0], &segments); err != nil {
		return "", "", fmt.Errorf("decode google segments: %w", err)
	}

	var sb strings.Builder
	for _, segment := range segments {
		if len(segment) == 0 {
			continue
		}
		var part string
		if err := json.Unmarshal(segment[0], &part); err != nil {
			continue
		}
		sb.WriteString(part)
	}

	translated := strings.TrimSpace(sb.String())
	if translated == "" {
		return "", "", fmt.Errorf("google translation was empty")
	}

	detected := ""
	if len(payload) > 2 {
		var lang string
		if err := json.Unmarshal(payload[2], &lang); err == nil {
			detected = normalizeLangCode(lang)
		}
	}

	return translated, detected, nil
}
