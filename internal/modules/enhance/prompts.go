package enhance

import (
	"encoding/json"
	"fmt"
	"strings"
)

const maxPromptTextLength = 6000

func buildFAQPrompt(lang, title, text string) (string, string) {
	system := "You are an editorial assistant for a publishing platform. " +
		"You answer with JSON only, no prose and no markdown fences."

	prompt := fmt.Sprintf(`Generate a FAQ list for the following article.

Return a JSON array of 3 to 6 objects, each with exactly two string fields: "question" and "answer".
%s

Title: %s

Article:
%s`, languageInstruction(lang), title, truncateText(text, maxPromptTextLength))

	return system, prompt
}

func buildSummaryPrompt(lang, title, text string) (string, string) {
	system := "You are an editorial assistant for a publishing platform. " +
		"You answer with the summary text only, no preamble and no markdown fences."

	prompt := fmt.Sprintf(`Summarize the following article in at most 150 words.
%s

Title: %s

Article:
%s`, languageInstruction(lang), title, truncateText(text, maxPromptTextLength))

	return system, prompt
}

func buildLinksPrompt(title, text string, candidates []linkCandidate) (string, string) {
	system := "You are an editorial assistant for a publishing platform. " +
		"You answer with JSON only, no prose and no markdown fences."

	candidateJSON, _ := json.Marshal(candidates)

	prompt := fmt.Sprintf(`Suggest internal cross-links for the following article.

Pick at most 5 entries from the candidate list that a reader of this article would want to visit next.
Return a JSON array of objects with fields: "target_id" (the candidate id), "keyword" (an exact phrase from the article to anchor the link on), "reason" (one short sentence) and "relevance" (integer 1-10).
Only use ids that appear in the candidate list.

Title: %s

Article:
%s

Candidates:
%s`, title, truncateText(text, maxPromptTextLength), string(candidateJSON))

	return system, prompt
}

func languageInstruction(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" || strings.EqualFold(lang, "auto") {
		return "Write in the same language as the article."
	}
	return fmt.Sprintf("Write in %s.", lang)
}

func truncateText(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen]) + "..."
}
