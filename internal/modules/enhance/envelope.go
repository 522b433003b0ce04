package enhance

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Each vendor wraps the generated text differently. The extractors map
// keys on the same names the client factories register under.
var envelopeExtractors = map[string]func([]byte) (string, bool){
	"openai": extractChatCompletionsText,
	"grok":   extractChatCompletionsText,
	"claude": extractClaudeText,
	"gemini": extractGeminiText,
}

// extractText pulls the completion text out of a 2xx vendor response.
// A response that parses but lacks the expected field is malformed.
func extractText(provider string, body []byte) (string, error) {
	extractor, ok := envelopeExtractors[provider]
	if !ok {
		return "", newError(KindMalformedResponse, fmt.Sprintf("no envelope extractor for provider %q", provider))
	}
	text, ok := extractor(body)
	if !ok || strings.TrimSpace(text) == "" {
		return "", newError(KindMalformedResponse, fmt.Sprintf("%s response is missing completion text", provider))
	}
	return text, nil
}

// choices[0].message.content
func extractChatCompletionsText(body []byte) (string, bool) {
	var envelope struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", false
	}
	if len(envelope.Choices) == 0 {
		return "", false
	}
	return envelope.Choices[0].Message.Content, true
}

// content[0].text
func extractClaudeText(body []byte) (string, bool) {
	var envelope struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", false
	}
	if len(envelope.Content) == 0 {
		return "", false
	}
	return envelope.Content[0].Text, true
}

// candidates[0].content.parts[0].text
func extractGeminiText(body []byte) (string, bool) {
	var envelope struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", false
	}
	if len(envelope.Candidates) == 0 || len(envelope.Candidates[0].Content.Parts) == 0 {
		return "", false
	}
	return envelope.Candidates[0].Content.Parts[0].Text, true
}
