package payloadschema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed translate_request.schema.json
var translateRequestSchemaJSON string

const translateRequestSchemaName = "translate_request.schema.json"

// TranslateRequest is the body of POST /api/translate.
type TranslateRequest struct {
	Caption   string            `json:"caption"`
	Languages []string          `json:"languages"`
	Options   *TranslateOptions `json:"options,omitempty"`
}

// TranslateOptions overrides the configured batch behavior for one request.
type TranslateOptions struct {
	BatchSize  *int  `json:"batch_size,omitempty"`
	Concurrent *bool `json:"concurrent,omitempty"`
	Pipelined  *bool `json:"pipelined,omitempty"`
}

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

// ValidateTranslateRequest checks the body against the embedded schema and
// decodes it. Language codes are only shape-checked here; support is decided
// by the translation package.
func ValidateTranslateRequest(payload json.RawMessage) (*TranslateRequest, error) {
	value, err := decodeStrictJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("decode payload JSON: %w", err)
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
		return nil, fmt.Errorf("normalize payload JSON: %w", err)
	}

	var req TranslateRequest
	if err := json.Unmarshal(normalized, &req); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}

	if strings.TrimSpace(req.Caption) == "" {
		return nil, fmt.Errorf("caption must not be empty")
	}
	for i, lang := range req.Languages {
		if strings.TrimSpace(lang) == "" {
			return nil, fmt.Errorf("languages[%d] must not be empty", i)
		}
	}

	return &req, nil
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true

		if err := compiler.AddResource(translateRequestSchemaName, strings.NewReader(translateRequestSchemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}

		schema, err := compiler.Compile(translateRequestSchemaName)
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
