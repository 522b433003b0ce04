package enhance

import (
	"context"
	"net/http"
	"strings"
	"time"
)

const (
	openAIChatEndpoint = "https://api.openai.com/v1/chat/completions"
	grokChatEndpoint   = "https://api.x.ai/v1/chat/completions"

	chatMaxTokens = 1024
)

// chatCompletionsClient speaks the OpenAI chat completions protocol,
// which Grok shares.
type chatCompletionsClient struct {
	name     string
	endpoint string
	apiKey   string
	model    string
	http     *http.Client
}

func newOpenAIClient(p ResolvedProvider) ProviderClient {
	endpoint := strings.TrimSpace(p.Endpoint)
	if endpoint == "" {
		endpoint = openAIChatEndpoint
	}
	model := strings.TrimSpace(p.Model)
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &chatCompletionsClient{
		name:     "openai",
		endpoint: endpoint,
		apiKey:   p.APIKey,
		model:    model,
		http:     defaultHTTPClient(clientTimeout(p, 30*time.Second)),
	}
}

func newGrokClient(p ResolvedProvider) ProviderClient {
	endpoint := strings.TrimSpace(p.Endpoint)
	if endpoint == "" {
		endpoint = grokChatEndpoint
	}
	model := strings.TrimSpace(p.Model)
	if model == "" {
		model = "grok-2-latest"
	}
	return &chatCompletionsClient{
		name:     "grok",
		endpoint: endpoint,
		apiKey:   p.APIKey,
		model:    model,
		http:     defaultHTTPClient(clientTimeout(p, 30*time.Second)),
	}
}

func (c *chatCompletionsClient) Name() string { return c.name }

func (c *chatCompletionsClient) Complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return "", newError(KindMissingCredentials, c.name+" provider has no api key")
	}

	messages := make([]map[string]string, 0, 2)
	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, map[string]string{"role": "system", "content": systemPrompt})
	}
	messages = append(messages, map[string]string{"role": "user", "content": prompt})

	payload := map[string]interface{}{
		"model":      c.model,
		"messages":   messages,
		"max_tokens": chatMaxTokens,
	}
	headers := map[string]string{
		"Authorization": "Bearer " + strings.TrimSpace(c.apiKey),
	}

	body, err := postJSON(ctx, c.http, c.endpoint, headers, payload)
	if err != nil {
		return "", err
	}
	return extractText(c.name, body)
}
