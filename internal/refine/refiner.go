/*
Package refine provides the optional LLM-backed narrative refiner.

A refiner may rewrite the recommendation prose of a decision; it can never
change scores, windows, plans, or flags, and any failure falls back to the
deterministic text. The engine works identically with no refiner installed.
*/
package refine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/quitswarm/quitswarm/internal/swarm"
)

const (
	defaultModel     = "claude-3-5-haiku-latest"
	defaultMaxTokens = 512
	defaultTimeout   = 20 * time.Second

	systemPrompt = "You are a pragmatic career transition advisor. " +
		"Refine the swarm recommendation conservatively. " +
		"Reply with a single short paragraph of recommendation text and nothing else. " +
		"Never change the numeric scores, windows, or verdicts."
)

// AnthropicRefiner implements swarm.Refiner using the Anthropic SDK.
type AnthropicRefiner struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	timeout   time.Duration
}

// Config holds settings for the Anthropic refiner.
type Config struct {
	APIKey string

	// Model defaults to a small fast model when empty.
	Model string

	// Timeout bounds each refinement call; defaults to 20s.
	Timeout time.Duration
}

// NewAnthropicRefiner creates a refiner from config.
func NewAnthropicRefiner(cfg Config) (*AnthropicRefiner, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required for the anthropic refiner")
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	client := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))

	return &AnthropicRefiner{
		client:    client,
		model:     cfg.Model,
		maxTokens: defaultMaxTokens,
		timeout:   cfg.Timeout,
	}, nil
}

// RefineRecommendation asks the model for a conservative rewrite of the
// recommendation prose, giving it the full decision as context.
func (r *AnthropicRefiner) RefineRecommendation(ctx context.Context, d swarm.Decision) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	decisionJSON, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal decision: %w", err)
	}

	userPrompt := fmt.Sprintf(
		"Use this swarm decision to produce the final recommendation text.\n\nSwarm decision:\n%s\n",
		decisionJSON)

	resp, err := r.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(r.model),
		MaxTokens: r.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("anthropic response contained no text")
	}

	return text, nil
}
