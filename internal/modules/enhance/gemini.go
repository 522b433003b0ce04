package enhance

import (
	"context"
	"fmt"
	"net/http"
	neturl "net/url"
	"strings"
	"time"
)

const geminiBaseEndpoint = "https://generativelanguage.googleapis.com/v1"

type geminiClient struct {
	base   string
	apiKey string
	model  string
	http   *http.Client
}

func newGeminiClient(p ResolvedProvider) ProviderClient {
	base := strings.TrimRight(strings.TrimSpace(p.Endpoint), "/")
	if base == "" {
		base = geminiBaseEndpoint
	}
	model := strings.TrimSpace(p.Model)
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &geminiClient{
		base:   base,
		apiKey: p.APIKey,
		model:  model,
		http:   defaultHTTPClient(clientTimeout(p, 30*time.Second)),
	}
}

func (c *geminiClient) Name() string { return "gemini" }

func (c *geminiClient) Complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return "", newError(KindMissingCredentials, "gemini provider has no api key")
	}

	// The v1 generateContent API has no separate system role, so the
	// system prompt is folded into the user text.
	text := prompt
	if strings.TrimSpace(systemPrompt) != "" {
		text = systemPrompt + "\n\n" + prompt
	}

	payload := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]string{
					{"text": text},
				},
			},
		},
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		c.base, neturl.PathEscape(c.model), neturl.QueryEscape(strings.TrimSpace(c.apiKey)))

	body, err := postJSON(ctx, c.http, url, nil, payload)
	if err != nil {
		return "", err
	}
	return extractText("gemini", body)
}
