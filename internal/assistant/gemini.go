package assistant

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-3-flash-preview"

const systemInstruction = "You are a helpful, witty, and concise chat assistant. You can receive text, images, and audio. If you receive audio, transcribe or summarize it if relevant. Keep messages short and friendly."

// Gemini generates replies through the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini generator.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Generate sends the history plus the new prompt and returns the text.
func (g *Gemini) Generate(ctx context.Context, req Request) (string, error) {
	contents := buildContents(req)

	temp := float32(0.8)
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}},
		Temperature:       &temp,
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func buildContents(req Request) []*genai.Content {
	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, t := range req.History {
		contents = append(contents, &genai.Content{
			Role:  t.Role,
			Parts: []*genai.Part{{Text: t.Text}},
		})
	}

	parts := []*genai.Part{{Text: req.Prompt}}
	if req.Audio != nil {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{Data: req.Audio.Data, MIMEType: req.Audio.MIMEType},
		})
	}
	return append(contents, &genai.Content{Role: RoleUser, Parts: parts})
}
