package aisvc

import (
	"context"

	"github.com/trezcool/amss/core/advisor"
)

// DummyClient echoes a canned response; used in tests and when no API key is
// configured.
type DummyClient struct {
	Response string
	Prompts  []string
}

var _ advisor.Client = (*DummyClient)(nil)

func NewDummyClient(response string) *DummyClient {
	if response == "" {
		response = "mathematics, algebra, worksheets"
	}
	return &DummyClient{Response: response}
}

func (c *DummyClient) GenerateText(_ context.Context, prompt string) (string, error) {
	c.Prompts = append(c.Prompts, prompt)
	return c.Response, nil
}
