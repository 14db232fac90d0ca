package reply

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/avdeeva/oporabot/internal/config"
	"github.com/avdeeva/oporabot/internal/tips"
)

// completer is the external text-completion call behind the generative
// strategy. Modeling it as a result-returning interface keeps the fallback
// an explicit branch in Generate rather than a blanket recover.
type completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Gemini is the generative strategy: it builds a prompt from the
// participant's recent messages and asks Gemini for an empathetic reply.
// Any failure of the external call, and any empty completion, degrades to a
// random catalog tip; Generate itself never fails.
type Gemini struct {
	completer completer
	log       *slog.Logger
}

// NewGemini creates the generative reply generator backed by the Gemini API.
func NewGemini(ctx context.Context, cfg config.AIConfig, log *slog.Logger) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if log == nil {
		log = slog.Default()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	temperature := cfg.Temperature
	contentConfig := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: cfg.MaxOutputTokens,
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: SystemInstruction}},
		},
	}

	logger := log.With("component", "gemini_generator")
	logger.Info("Gemini generator initialized", "model", cfg.Model)

	return &Gemini{
		completer: &genaiCompleter{
			client:        client,
			model:         cfg.Model,
			contentConfig: contentConfig,
		},
		log: logger,
	}, nil
}

// Generate returns a Gemini completion for the participant's history, or a
// random catalog tip when the call fails or produces empty text.
func (g *Gemini) Generate(ctx context.Context, history []string) string {
	prompt := buildPrompt(history)

	text, err := g.completer.Complete(ctx, prompt)
	if err != nil {
		g.log.WarnContext(ctx, "Completion failed, falling back to canned tip", "error", err)
		return tips.Random()
	}

	text = strings.TrimSpace(text)
	if text == "" {
		g.log.WarnContext(ctx, "Empty completion, falling back to canned tip")
		return tips.Random()
	}

	return text
}

// genaiCompleter wraps the Gemini SDK call with the fixed persona and
// generation parameters.
type genaiCompleter struct {
	client        *genai.Client
	model         string
	contentConfig *genai.GenerateContentConfig
}

func (c *genaiCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, c.contentConfig)
	if err != nil {
		return "", fmt.Errorf("gemini API call failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no content")
	}

	return resp.Text(), nil
}
