package openai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kbase-cloud/kbsearch/internal/domain"
)

// Composer drafts a first-reply message for a support ticket from candidate
// knowledge-base articles via a chat-completion call.
type Composer struct {
	client *openai.Client
	model  string
}

// ComposerConfig holds the chat provider settings.
type ComposerConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// NewComposer creates a chat-completion reply composer.
func NewComposer(cfg *ComposerConfig) *Composer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Composer{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}
}

const composerSystemPrompt = "You are a support assistant. Draft a short, polite first reply " +
	"to the customer's message using only the knowledge-base excerpts provided. " +
	"If the excerpts do not cover the question, say a human agent will follow up."

// Compose drafts a reply referencing the candidate articles.
func (c *Composer) Compose(ctx context.Context, ticketText string, candidates []domain.SearchResult) (string, error) {
	var b strings.Builder
	b.WriteString("Customer message:\n")
	b.WriteString(ticketText)
	b.WriteString("\n\nKnowledge-base excerpts:\n")
	for i, cand := range candidates {
		fmt.Fprintf(&b, "%d. %s\n%s\n\n", i+1, cand.Title, cand.Content)
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: composerSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: b.String()},
		},
	})
	if err != nil {
		return "", parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response: %w", domain.ErrEmbeddingProviderError)
	}
	return resp.Choices[0].Message.Content, nil
}
