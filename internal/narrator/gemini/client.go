// Package gemini implements the narrative generator against the
// Google Gemini API.
package gemini

import (
	"bytes"
	"context"
	_ "embed"
	"log/slog"
	"text/template"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/storyloom/trpg-api/internal/errors"
	"github.com/storyloom/trpg-api/internal/narrator"
)

//go:embed prompts/turn.txt
var turnPrompt string

// DefaultModel is used when no model is configured
const DefaultModel = "gemini-2.5-flash"

// Config holds the configuration for the Gemini generator
type Config struct {
	APIKey string
	Model  string
}

// Validate ensures all required settings are provided
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.InvalidArgument("API key is required")
	}
	return nil
}

// Generator calls Gemini to produce story turns
type Generator struct {
	client *genai.Client
	model  *genai.GenerativeModel
	tmpl   *template.Template
}

// New creates a Gemini-backed narrative generator
func New(ctx context.Context, cfg *Config) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create genai client")
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = DefaultModel
	}

	tmpl, err := template.New("turn").Parse(turnPrompt)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse turn prompt template")
	}

	return &Generator{
		client: client,
		model:  client.GenerativeModel(modelName),
		tmpl:   tmpl,
	}, nil
}

var _ narrator.Generator = (*Generator)(nil)

// Close releases the underlying API client
func (g *Generator) Close() {
	g.client.Close()
}

// Generate produces one turn of narrative. Transport failures are
// surfaced as unavailable; undecodable output degrades to a fallback
// response rather than failing the turn.
func (g *Generator) Generate(ctx context.Context, req *narrator.TurnRequest) (*narrator.TurnResponse, error) {
	var buf bytes.Buffer
	if err := g.tmpl.Execute(&buf, req); err != nil {
		return nil, errors.Wrap(err, "failed to render turn prompt")
	}

	resp, err := g.model.GenerateContent(ctx, genai.Text(buf.String()))
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "narrative generator unavailable")
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, errors.Unavailable("narrative generator returned no content")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, errors.Unavailable("narrative generator returned a non-text part")
	}

	parsed, err := narrator.ParseResponse(string(text))
	if err != nil {
		slog.Warn("generator response not decodable, using fallback",
			"turn", req.Turn,
			"error", err,
		)
		return narrator.Fallback(string(text)), nil
	}

	return parsed, nil
}
