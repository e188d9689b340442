// Package llm calls the Gemini API to turn free customer text into the
// semi-structured directive the extractor parses. The model output is
// untrusted: downstream parsing treats it as hostile input.
package llm

import (
	"context"
	"fmt"

	"mesero/pkg/config"
	"mesero/pkg/logger"

	"google.golang.org/genai"
)

const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Turn is one prior message in the conversation window.
type Turn struct {
	Role string
	Text string
}

// Director produces the directive text for the latest customer turn.
type Director interface {
	Direct(ctx context.Context, history []Turn) (string, error)
}

type GeminiDirector struct {
	client       *genai.Client
	model        string
	systemPrompt string
	cfg          *config.Config
	log          *logger.Logger
}

func NewGeminiDirector(ctx context.Context, cfg *config.Config) (*GeminiDirector, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiDirector{
		client:       client,
		model:        cfg.GeminiModel,
		systemPrompt: BuildSystemPrompt(cfg.RiceMenu),
		cfg:          cfg,
		log:          cfg.Log,
	}, nil
}

// Direct sends the conversation window and returns the raw directive text.
// The call is bounded by the configured timeout; a timeout surfaces as an
// error and the conversation re-asks its pending question.
func (d *GeminiDirector) Direct(ctx context.Context, history []Turn) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.GeminiTimeout)
	defer cancel()

	contents := make([]*genai.Content, 0, len(history))
	for _, turn := range history {
		role := genai.Role(genai.RoleUser)
		if turn.Role == RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, role))
	}

	resp, err := d.client.Models.GenerateContent(ctx, d.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(d.systemPrompt, genai.RoleUser),
	})
	if err != nil {
		return "", fmt.Errorf("directive generation failed: %w", err)
	}

	directive := resp.Text()
	d.log.Debug("Directive generated", "length", len(directive))
	return directive, nil
}
