package llm

import (
	"context"
	"fmt"

	"braid/internal/domain"

	"google.golang.org/genai"
)

// VertexClient implements domain.StreamClient on Vertex AI (Gemini).
type VertexClient struct {
	client       *genai.Client
	defaultModel string
}

func NewVertexClient(ctx context.Context, projectID, location, defaultModel string) (*VertexClient, error) {
	if projectID == "" || location == "" {
		return nil, fmt.Errorf("project and location are required for Vertex AI")
	}
	if defaultModel == "" {
		defaultModel = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Vertex AI client: %w", err)
	}

	return &VertexClient{
		client:       client,
		defaultModel: defaultModel,
	}, nil
}

// StreamCompletion implements domain.StreamClient. Deltas are forwarded as
// they arrive; a non-nil return from onDelta aborts the stream.
func (v *VertexClient) StreamCompletion(
	ctx context.Context,
	req domain.CompletionRequest,
	onDelta func(delta string) error,
) error {
	var contents []*genai.Content
	for _, m := range req.Messages {
		var role genai.Role = genai.RoleUser
		if m.Role == domain.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}

	temp := float32(0.7)
	topP := float32(0.9)
	outputTokens := int32(8192)

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
		Temperature:       &temp,
		TopP:              &topP,
		MaxOutputTokens:   outputTokens,
	}

	model := req.Model
	if model == "" {
		model = v.defaultModel
	}

	for resp, err := range v.client.Models.GenerateContentStream(ctx, model, contents, cfg) {
		if err != nil {
			return fmt.Errorf("vertex stream: %w", err)
		}
		if text := resp.Text(); text != "" {
			if err := onDelta(text); err != nil {
				return err
			}
		}
	}
	return nil
}
