package llm

import (
	"context"
	"errors"
	"time"

	vertexgenai "cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"
)

// generateTimeout bounds every generation call; on expiry the caller sees a
// context error and takes its fallback path.
const generateTimeout = 10 * time.Second

type VertexGemini struct {
	client *vertexgenai.Client
	model  *vertexgenai.GenerativeModel
}

func NewVertexGemini(ctx context.Context, projectID, location, modelName string, opts ...option.ClientOption) (*VertexGemini, error) {
	c, err := vertexgenai.NewClient(ctx, projectID, location, opts...)
	if err != nil {
		return nil, err
	}

	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	m := c.GenerativeModel(modelName)
	m.SetTemperature(0.7)
	m.SetMaxOutputTokens(1024)
	m.SetTopP(0.95)
	m.SetTopK(40)
	m.SafetySettings = []*vertexgenai.SafetySetting{
		{Category: vertexgenai.HarmCategoryHarassment, Threshold: vertexgenai.HarmBlockMediumAndAbove},
		{Category: vertexgenai.HarmCategoryHateSpeech, Threshold: vertexgenai.HarmBlockMediumAndAbove},
		{Category: vertexgenai.HarmCategorySexuallyExplicit, Threshold: vertexgenai.HarmBlockMediumAndAbove},
		{Category: vertexgenai.HarmCategoryDangerousContent, Threshold: vertexgenai.HarmBlockMediumAndAbove},
	}

	return &VertexGemini{client: c, model: m}, nil
}

func (v *VertexGemini) Close() error { return v.client.Close() }

func (v *VertexGemini) GenerateText(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	resp, err := v.model.GenerateContent(ctx, vertexgenai.Text(prompt))
	if err != nil {
		return "", err
	}
	return candidateText(resp)
}

func (v *VertexGemini) GenerateConversation(ctx context.Context, system string, turns []Turn) (string, error) {
	if len(turns) == 0 {
		return "", errors.New("empty conversation")
	}

	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	cs := v.model.StartChat()
	cs.History = []*vertexgenai.Content{{
		Role:  "user",
		Parts: []vertexgenai.Part{vertexgenai.Text(system)},
	}}
	for _, t := range turns[:len(turns)-1] {
		cs.History = append(cs.History, &vertexgenai.Content{
			Role:  t.Role,
			Parts: []vertexgenai.Part{vertexgenai.Text(t.Content)},
		})
	}

	resp, err := cs.SendMessage(ctx, vertexgenai.Text(turns[len(turns)-1].Content))
	if err != nil {
		return "", err
	}
	return candidateText(resp)
}

// candidateText pulls the first text part out of the first candidate; a
// response without one is a malformed-reply error, not an empty string.
func candidateText(resp *vertexgenai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no candidates in generation response")
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(vertexgenai.Text); ok && string(t) != "" {
			return string(t), nil
		}
	}
	return "", errors.New("no text part in generation response")
}
