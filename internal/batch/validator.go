// Package batch validates batch translation request files against the
// embedded v1 JSON Schema.
package batch

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"horse.fit/lingo/internal/language"
)

//go:embed schema/batch_request.schema.json
var batchRequestSchemaJSON string

// Request is one validated batch translation request.
type Request struct {
	PayloadVersion string `json:"payload_version"`
	TargetLang     string `json:"target_lang"`
	SourceLang     string `json:"source_lang,omitempty"`
	Items          []Item `json:"items"`
}

// Item is one text to translate within a batch request.
type Item struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang,omitempty"`
}

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

// ValidateRequest checks a raw batch payload against the schema plus the
// semantic rules the schema cannot express, and returns the decoded request.
func ValidateRequest(payload json.RawMessage) (*Request, error) {
	value, err := decodeStrictJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("decode batch JSON: %w", err)
	}

	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	if err := schema.Validate(value); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("normalize batch JSON: %w", err)
	}

	var req Request
	if err := json.Unmarshal(normalized, &req); err != nil {
		return nil, fmt.Errorf("unmarshal batch request: %w", err)
	}

	if err := validateSemantics(&req); err != nil {
		return nil, err
	}

	return &req, nil
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020

		if err := compiler.AddResource("batch_request.schema.json", strings.NewReader(batchRequestSchemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}

		schema, err := compiler.Compile("batch_request.schema.json")
		if err != nil {
			compiledSchemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}

		compiledSchema = schema
	})

	if compiledSchemaErr != nil {
		return nil, compiledSchemaErr
	}
	if compiledSchema == nil {
		return nil, fmt.Errorf("schema not initialized")
	}
	return compiledSchema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("payload is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("payload contains trailing content")
	}

	return value, nil
}

func validateSemantics(req *Request) error {
	if req == nil {
		return fmt.Errorf("request is nil")
	}

	if language.NormalizeCode(req.TargetLang) == "" {
		return fmt.Errorf("target_lang %q is not a valid language tag", req.TargetLang)
	}
	if req.SourceLang != "" && language.NormalizeCode(req.SourceLang) == "" {
		return fmt.Errorf("source_lang %q is not a valid language tag", req.SourceLang)
	}

	for i, item := range req.Items {
		if strings.TrimSpace(item.Text) == "" {
			return fmt.Errorf("items[%d].text must not be blank", i)
		}
		if item.SourceLang != "" && language.NormalizeCode(item.SourceLang) == "" {
			return fmt.Errorf("items[%d].source_lang %q is not a valid language tag", i, item.SourceLang)
		}
	}

	return nil
}
