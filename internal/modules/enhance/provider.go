package enhance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ResolvedProvider is a provider entry from the runtime config with the
// API key already decrypted and the feature's model override applied.
type ResolvedProvider struct {
	ID             string
	Name           string
	Type           string
	APIKey         string
	Endpoint       string
	Model          string
	TimeoutSeconds int
}

// clientTimeout returns the configured request timeout or the vendor
// client's fallback.
func clientTimeout(p ResolvedProvider, fallback time.Duration) time.Duration {
	if p.TimeoutSeconds > 0 {
		return time.Duration(p.TimeoutSeconds) * time.Second
	}
	return fallback
}

// ProviderClient generates a single completion from one LLM vendor.
type ProviderClient interface {
	Name() string
	Complete(ctx context.Context, systemPrompt, prompt string) (string, error)
}

type clientFactory func(p ResolvedProvider) ProviderClient

var clientFactories = map[string]clientFactory{
	"openai": newOpenAIClient,
	"grok":   newGrokClient,
	"claude": newClaudeClient,
	"gemini": newGeminiClient,
}

var providerTypeAliases = map[string]string{
	"openai-compatible": "openai",
	"openaicompatible":  "openai",
	"anthropic":         "claude",
	"google":            "gemini",
	"xai":               "grok",
}

// NewProviderClient builds a vendor client for the given provider entry.
func NewProviderClient(p ResolvedProvider) (ProviderClient, error) {
	t := normalizeProviderType(p.Type)
	if alias, ok := providerTypeAliases[t]; ok {
		t = alias
	}
	factory, ok := clientFactories[t]
	if !ok {
		return nil, newError(KindNoProviderConfigured, fmt.Sprintf("unsupported provider type %q", p.Type))
	}
	return factory(p), nil
}

func normalizeProviderType(raw string) string {
	t := strings.ToLower(strings.TrimSpace(raw))
	t = strings.ReplaceAll(t, "_", "-")
	t = strings.ReplaceAll(t, " ", "")
	return t
}

// postJSON performs the vendor call and returns the raw response body.
// Transport failures and non-2xx statuses come back as classified
// *Error values.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		if strings.TrimSpace(v) == "" {
			continue
		}
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, newError(KindTransientNetwork, fmt.Sprintf("provider request failed: %v", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(KindTransientNetwork, fmt.Sprintf("read provider response: %v", err))
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, classifyUpstream(resp.StatusCode, respBody, resp.Header.Get("Retry-After"))
	}
	return respBody, nil
}

// classifyUpstream maps a vendor error response to an error kind.
func classifyUpstream(status int, body []byte, retryAfterHeader string) *Error {
	message := extractVendorMessage(body)

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &Error{
			Kind:    KindInvalidCredentials,
			Message: fmt.Sprintf("provider rejected credentials: %s", message),
			Status:  status,
		}
	case looksLikeQuotaError(body):
		return &Error{
			Kind:    KindQuotaExceeded,
			Message: fmt.Sprintf("provider quota exhausted: %s", message),
			Status:  status,
		}
	case status == http.StatusTooManyRequests:
		return &Error{
			Kind:       KindRateLimited,
			Message:    fmt.Sprintf("provider rate limited: %s", message),
			Status:     status,
			RetryAfter: parseRetryAfter(retryAfterHeader),
		}
	case status == http.StatusBadRequest:
		return &Error{
			Kind:    KindBadRequest,
			Message: fmt.Sprintf("provider rejected request: %s", message),
			Status:  status,
		}
	default:
		return &Error{
			Kind:    KindTransientNetwork,
			Message: fmt.Sprintf("provider returned status %d: %s", status, message),
			Status:  status,
		}
	}
}

func looksLikeQuotaError(body []byte) bool {
	lowered := strings.ToLower(string(body))
	return strings.Contains(lowered, "quota") ||
		strings.Contains(lowered, "resource_exhausted") ||
		strings.Contains(lowered, "insufficient_quota")
}

func parseRetryAfter(header string) int {
	v, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// extractVendorMessage pulls a human-readable error out of the vendor
// body. All four vendors use a variant of {"error": {"message": ...}}.
func extractVendorMessage(body []byte) string {
	var envelope struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Error != nil && strings.TrimSpace(envelope.Error.Message) != "" {
			return strings.TrimSpace(envelope.Error.Message)
		}
		if strings.TrimSpace(envelope.Message) != "" {
			return strings.TrimSpace(envelope.Message)
		}
	}

	raw := strings.TrimSpace(string(body))
	if raw == "" {
		return "(empty body)"
	}
	return truncateText(raw, 300)
}

func defaultHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
