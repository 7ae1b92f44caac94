package batch

import (
	"encoding/json"
	"testing"
)

func TestValidateRequestAcceptsGoodPayload(t *testing.T) {
	t.Parallel()

	payload := json.RawMessage(`{
		"payload_version": "v1",
		"target_lang": "de",
		"source_lang": "en",
		"items": [
			{"text": "Hello world"},
			{"text": "Goodbye", "source_lang": "en"}
		]
	}`)

	req, err := ValidateRequest(payload)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	if req.PayloadVersion != "v1" {
		t.Fatalf("got payload_version %q", req.PayloadVersion)
	}
	if req.TargetLang != "de" || req.SourceLang != "en" {
		t.Fatalf("got langs %s/%s", req.SourceLang, req.TargetLang)
	}
	if len(req.Items) != 2 || req.Items[0].Text != "Hello world" {
		t.Fatalf("unexpected items %+v", req.Items)
	}
}

func TestValidateRequestRejectsBadPayloads(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"empty payload":     ``,
		"not an object":     `[]`,
		"trailing content":  `{"payload_version":"v1","target_lang":"de","items":[{"text":"x"}]} extra`,
		"wrong version":     `{"payload_version":"v2","target_lang":"de","items":[{"text":"x"}]}`,
		"missing items":     `{"payload_version":"v1","target_lang":"de"}`,
		"empty items":       `{"payload_version":"v1","target_lang":"de","items":[]}`,
		"missing target":    `{"payload_version":"v1","items":[{"text":"x"}]}`,
		"unknown property":  `{"payload_version":"v1","target_lang":"de","items":[{"text":"x"}],"mode":"fast"}`,
		"item missing text": `{"payload_version":"v1","target_lang":"de","items":[{"source_lang":"en"}]}`,
	}

	for name, payload := range cases {
		if _, err := ValidateRequest(json.RawMessage(payload)); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestValidateRequestRejectsInvalidLanguageTags(t *testing.T) {
	t.Parallel()

	payload := json.RawMessage(`{
		"payload_version": "v1",
		"target_lang": "x1",
		"items": [{"text": "Hello"}]
	}`)
	if _, err := ValidateRequest(payload); err == nil {
		t.Fatalf("expected error for invalid target_lang")
	}

	payload = json.RawMessage(`{
		"payload_version": "v1",
		"target_lang": "de",
		"items": [{"text": "   "}]
	}`)
	if _, err := ValidateRequest(payload); err == nil {
		t.Fatalf("expected error for blank item text")
	}
}
