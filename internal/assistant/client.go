// Package assistant fronts the Groq-hosted chat model that answers questions
// about the user's ledger. The model gets a pre-computed analytics digest in
// its system prompt instead of tool access, and every answer runs through the
// sanitizer before it leaves the process.
package assistant

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"pesatrack/internal/core"
	"pesatrack/internal/ledger"
	"pesatrack/internal/log"
)

// Options configures the assistant client.
type Options struct {
	APIKey        string
	BaseURL       string // OpenAI-compatible endpoint, e.g. Groq's
	Model         string
	Temperature   float32
	MaxTokens     int
	HideReasoning bool
	Sanitizer     Sanitizer
}

// Client calls the chat model and cleans its answers.
type Client struct {
	api           *openai.Client
	model         string
	temperature   float32
	maxTokens     int
	hideReasoning bool
	sanitizer     Sanitizer
	store         *ledger.Store
	logger        *log.Logger
}

// NewClient builds an assistant client over the given ledger store.
func NewClient(opts Options, store *ledger.Store, logger *log.Logger) *Client {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	return &Client{
		api:           openai.NewClientWithConfig(cfg),
		model:         opts.Model,
		temperature:   opts.Temperature,
		maxTokens:     opts.MaxTokens,
		hideReasoning: opts.HideReasoning,
		sanitizer:     opts.Sanitizer,
		store:         store,
		logger:        logger.WithComponent(log.ComponentAssistant),
	}
}

// Chat sends the user's message with the current analytics digest and returns
// the sanitized answer. Upstream failures propagate unwrapped in meaning; the
// caller maps them to a gateway error.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.systemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
	})
	if err != nil {
		return "", fmt.Errorf("assistant completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("assistant completion: empty response")
	}

	answer := c.sanitizer.Sanitize(resp.Choices[0].Message.Content, c.hideReasoning)
	c.logger.InfoContext(ctx, "chat answered",
		log.FieldOperation, log.OpChat,
		log.FieldModel, c.model,
	)
	return answer, nil
}

// systemPrompt embeds the ledger analytics so the model answers from real
// figures rather than hallucinating them.
func (c *Client) systemPrompt() string {
	records := c.store.All()
	summary, _ := core.Summarize(records)
	rollups, _ := core.RollupByCategory(records)
	top, _ := core.TopExpenses(records, 5)
	fuliza, _ := core.FulizaUsage(records)

	var b strings.Builder
	b.WriteString("You are an M-PESA financial advisor. You help the user understand ")
	b.WriteString("their spending habits from their transaction history. Use KES for all ")
	b.WriteString("currency values. Be encouraging but honest about bad spending habits. ")
	b.WriteString("Keep answers concise and formatted with sections and bullet points.\n\n")

	fmt.Fprintf(&b, "Ledger summary: inflow KES %.2f, lifestyle outflow KES %.2f, net KES %.2f, "+
		"Fuliza used KES %.2f, Fuliza repaid KES %.2f, merchant spend KES %.2f.\n",
		summary.TotalInflow, summary.LifestyleOutflow, summary.Net,
		summary.FulizaUsed, summary.FulizaRepaid, summary.MerchantSpend)

	if len(rollups) > 0 {
		b.WriteString("Spending by category:\n")
		for _, ru := range rollups {
			fmt.Fprintf(&b, "- %s: KES %.2f across %d transactions\n", ru.Category, ru.Total, ru.Count)
		}
	}
	if len(top) > 0 {
		b.WriteString("Largest expenses:\n")
		for _, r := range top {
			fmt.Fprintf(&b, "- %s on %s: KES %.2f (%s)\n",
				r.Code, r.Timestamp.Format("2006-01-02"), -r.Amount, r.Category)
		}
	}
	fmt.Fprintf(&b, "Fuliza: drawn KES %.2f over %d transactions, repaid KES %.2f, ratio of inflow %.4f.\n",
		fuliza.UsedTotal, fuliza.UsedCount, fuliza.RepaidTotal, fuliza.Ratio)
	return b.String()
}
