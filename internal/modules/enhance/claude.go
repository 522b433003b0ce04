package enhance

import (
	"context"
	"net/http"
	"strings"
	"time"
)

const (
	claudeMessagesEndpoint = "https://api.anthropic.com/v1/messages"
	claudeAPIVersion       = "2023-06-01"
)

type claudeClient struct {
	endpoint string
	apiKey   string
	model    string
	http     *http.Client
}

func newClaudeClient(p ResolvedProvider) ProviderClient {
	endpoint := strings.TrimSpace(p.Endpoint)
	if endpoint == "" {
		endpoint = claudeMessagesEndpoint
	}
	model := strings.TrimSpace(p.Model)
	if model == "" {
		model = "claude-haiku-4-5-20251001"
	}
	return &claudeClient{
		endpoint: endpoint,
		apiKey:   p.APIKey,
		model:    model,
		// Claude is the slowest of the four to first byte on long inputs.
		http: defaultHTTPClient(clientTimeout(p, 60*time.Second)),
	}
}

func (c *claudeClient) Name() string { return "claude" }

func (c *claudeClient) Complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return "", newError(KindMissingCredentials, "claude provider has no api key")
	}

	payload := map[string]interface{}{
		"model":      c.model,
		"max_tokens": chatMaxTokens,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}
	if strings.TrimSpace(systemPrompt) != "" {
		payload["system"] = systemPrompt
	}
	headers := map[string]string{
		"x-api-key":         strings.TrimSpace(c.apiKey),
		"anthropic-version": claudeAPIVersion,
	}

	body, err := postJSON(ctx, c.http, c.endpoint, headers, payload)
	if err != nil {
		return "", err
	}
	return extractText("claude", body)
}
