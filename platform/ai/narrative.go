// Package ai provides the Gemini-backed narrative generator.
// It is an optional collaborator: the analysis engine works fully without it,
// and any failure here degrades to an absent narrative, never an error.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/genai"
)

const defaultTimeout = 20 * time.Second

// NarrativeClient generates short prose summaries of detected revenue leaks.
type NarrativeClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewNarrativeClient creates a Gemini client for narrative generation.
func NewNarrativeClient(ctx context.Context, apiKey, model string) (*NarrativeClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}

	return &NarrativeClient{
		client:  client,
		model:   model,
		timeout: defaultTimeout,
	}, nil
}

// Narrate produces a short narrative for the given leak findings. The findings
// payload is serialized as JSON context for the model; the returned text is an
// opaque passthrough for the caller and is never parsed downstream.
func (n *NarrativeClient) Narrate(ctx context.Context, findings interface{}) (string, error) {
	payload, err := json.Marshal(findings)
	if err != nil {
		return "", fmt.Errorf("marshal findings: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	prompt := "You are a sales operations analyst. Summarize the following " +
		"revenue leak findings in at most four sentences, leading with the " +
		"single most expensive problem. Findings JSON:\n" + string(payload)

	resp, err := n.client.Models.GenerateContent(ctx, n.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate narrative: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty narrative response")
	}
	return text, nil
}
