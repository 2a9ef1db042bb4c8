// Package synthesis is the boundary around the external content-generation
// service. A Gateway builds prompts, calls a Provider once per user action and
// validates the response before it reaches the data model.
package synthesis

import (
	"context"
	"fmt"
)

// Provider is a swappable LLM backend.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

// Request is one call to the content service.
type Request struct {
	System      string
	User        string
	History     []Turn
	Schema      *Schema // nil for free text
	Grounded    bool    // allow the provider to consult live web search
	Temperature *float32
}

// Turn is a prior conversational message. Role is "user" or "model".
type Turn struct {
	Role string
	Text string
}

// SchemaType enumerates the JSON types used by response schemas.
type SchemaType string

const (
	TypeObject  SchemaType = "object"
	TypeArray   SchemaType = "array"
	TypeString  SchemaType = "string"
	TypeNumber  SchemaType = "number"
	TypeInteger SchemaType = "integer"
)

// Schema is a provider-neutral subset of JSON Schema.
type Schema struct {
	Type        SchemaType
	Description string
	Properties  map[string]*Schema
	Required    []string
	Items       *Schema
	Enum        []string
	MinItems    *int64
	MaxItems    *int64
	Minimum     *float64
	Maximum     *float64
}

// JSONSchema renders the schema as a JSON Schema document.
func (s *Schema) JSONSchema() map[string]any {
	if s == nil {
		return nil
	}
	out := map[string]any{"type": string(s.Type)}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for name, p := range s.Properties {
			props[name] = p.JSONSchema()
		}
		out["properties"] = props
	}
	if len(s.Required) > 0 {
		out["required"] = s.Required
	}
	if s.Items != nil {
		out["items"] = s.Items.JSONSchema()
	}
	if len(s.Enum) > 0 {
		out["enum"] = s.Enum
	}
	if s.MinItems != nil {
		out["minItems"] = *s.MinItems
	}
	if s.MaxItems != nil {
		out["maxItems"] = *s.MaxItems
	}
	if s.Minimum != nil {
		out["minimum"] = *s.Minimum
	}
	if s.Maximum != nil {
		out["maximum"] = *s.Maximum
	}
	return out
}

func ptr[T any](v T) *T { return &v }

// ProviderConfig selects and configures a Provider.
type ProviderConfig struct {
	Name          string // gemini, openai or empty
	Model         string
	GoogleAPIKey  string
	OpenAIAPIKey  string
	OpenAIBaseURL string
}

// NewProvider builds the configured provider. A provider without its key
// resolves to Unconfigured so the service still starts.
func NewProvider(ctx context.Context, cfg ProviderConfig) (Provider, error) {
	switch cfg.Name {
	case "gemini":
		if cfg.GoogleAPIKey == "" {
			return Unconfigured{}, nil
		}
		return NewGemini(ctx, cfg.GoogleAPIKey, cfg.Model)
	case "openai", "groq":
		if cfg.OpenAIAPIKey == "" {
			return Unconfigured{}, nil
		}
		return NewOpenAI(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.Model, nil), nil
	case "", "none":
		return Unconfigured{}, nil
	default:
		return nil, fmt.Errorf("unknown synthesis provider %q", cfg.Name)
	}
}
