package aisvc

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/pkg/errors"
	"google.golang.org/api/option"

	"github.com/trezcool/amss/core"
	"github.com/trezcool/amss/core/advisor"
)

type geminiClient struct {
	model *genai.GenerativeModel
}

var _ advisor.Client = (*geminiClient)(nil)

func NewGeminiClient(ctx context.Context, conf *core.Config) (*geminiClient, func(), error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(conf.GoogleAIAPIKey))
	if err != nil {
		return nil, nil, errors.Wrap(err, "creating genai client")
	}
	cleanup := func() { _ = client.Close() }
	return &geminiClient{model: client.GenerativeModel("gemini-pro")}, cleanup, nil
}

func (c *geminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", errors.Wrap(err, "generating content")
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				sb.WriteString(string(txt))
			}
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("empty model response")
	}
	return sb.String(), nil
}
