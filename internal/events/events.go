// Package events defines the invocation payloads exchanged between pipeline
// stages and validates them against JSON Schemas before dispatch.
package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Sakshi281205/sleeppeddlers/pkg/trigger"
)

// Invocation targets.
const (
	TargetObjectCreated = "object_created"
	TargetClassify      = "classify"
	TargetSummarize     = "summarize"
)

// ErrInvalidPayload indicates a payload failed schema validation.
var ErrInvalidPayload = errors.New("invalid payload")

// ClassifyRequest routes the Classification stage to one artifact.
type ClassifyRequest struct {
	Bucket   string `json:"bucket"`
	ImageKey string `json:"image_key"`
	JobID    string `json:"job_id"`
	JobKey   string `json:"job_key"`
}

// SummarizeRequest routes the Summarization stage to one analysis.
type SummarizeRequest struct {
	Bucket       string `json:"bucket"`
	AIResultsKey string `json:"ai_results_key"`
	JobKey       string `json:"job_key"`
	JobID        string `json:"job_id,omitempty"`
}

var schemas = map[string]map[string]any{
	TargetObjectCreated: {
		"type":     "object",
		"required": []string{"bucket", "key"},
		"properties": map[string]any{
			"bucket":       map[string]any{"type": "string"},
			"key":          map[string]any{"type": "string", "minLength": 1},
			"content_type": map[string]any{"type": "string"},
			"size":         map[string]any{"type": "integer", "minimum": 0},
		},
	},
	TargetClassify: {
		"type":     "object",
		"required": []string{"bucket", "image_key", "job_id", "job_key"},
		"properties": map[string]any{
			"bucket":    map[string]any{"type": "string"},
			"image_key": map[string]any{"type": "string", "pattern": "^uploads/.+"},
			"job_id":    map[string]any{"type": "string", "minLength": 1},
			"job_key":   map[string]any{"type": "string", "pattern": "^jobs/.+\\.json$"},
		},
	},
	TargetSummarize: {
		"type":     "object",
		"required": []string{"bucket", "ai_results_key", "job_key"},
		"properties": map[string]any{
			"bucket":         map[string]any{"type": "string"},
			"ai_results_key": map[string]any{"type": "string", "pattern": "^ai-results/.+\\.json$"},
			"job_key":        map[string]any{"type": "string", "pattern": "^jobs/.+\\.json$"},
			"job_id":         map[string]any{"type": "string"},
		},
	},
}

// Validator holds the compiled payload schema for each target.
type Validator struct {
	compiled map[string]*jsonschema.Schema
}

// NewValidator compiles the built-in schemas.
func NewValidator() (*Validator, error) {
	v := &Validator{compiled: make(map[string]*jsonschema.Schema, len(schemas))}

	for target, schema := range schemas {
		b, err := json.Marshal(schema)
		if err != nil {
			return nil, fmt.Errorf("marshal %s schema: %w", target, err)
		}

		url := target + ".json"
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(url, bytes.NewReader(b)); err != nil {
			return nil, fmt.Errorf("add %s schema: %w", target, err)
		}
		compiled, err := compiler.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("compile %s schema: %w", target, err)
		}
		v.compiled[target] = compiled
	}

	return v, nil
}

// Validate checks payload against the schema for target.
func (v *Validator) Validate(target string, payload []byte) error {
	schema, ok := v.compiled[target]
	if !ok {
		return fmt.Errorf("%w: %s", trigger.ErrUnknownTarget, target)
	}

	var doc any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidPayload, target, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidPayload, target, err)
	}
	return nil
}

// Handle adapts a typed stage entry point into a trigger.Handler that
// validates and decodes the payload first.
func Handle[T any](v *Validator, target string, fn func(context.Context, T) error) trigger.Handler {
	return func(ctx context.Context, payload json.RawMessage) error {
		if err := v.Validate(target, payload); err != nil {
			return err
		}

		var req T
		if err := json.Unmarshal(payload, &req); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidPayload, target, err)
		}
		return fn(ctx, req)
	}
}
