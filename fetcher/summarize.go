package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"newsdesk/logger"
)

// aiInputBudget caps how many characters of body text are sent to the model.
const aiInputBudget = 8000

// Content is the normalized (title, summary, description) triple the
// summarizer produces for every article. FromAI marks whether the model
// produced it or a local fallback did.
type Content struct {
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
	FromAI      bool   `json:"-"`
}

const aiPromptTemplate = `Based *only* on the following article text, please perform these three tasks:
1. Create a new, concise, and factual headline.
2. Write a brief one-paragraph summary.
3. Write a detailed, multi-paragraph description.
Guidelines:
- The tone must be strictly neutral and informative.
- Do NOT add any interpretation, opinion, or information not present in the text.
- Base all output exclusively on the provided content.
- Format the output as a JSON object with three keys: "title", "summary", and "description".
Original Title: %q
Article Text: --- %s ---`

// summarize turns (title, body) into a Content triple. It never fails:
// with no AI credential it returns the deterministic local fallback, and
// a failed AI call or unparseable response degrades to a fallback whose
// title carries an "AI Fallback:" prefix so the two outcomes stay
// distinguishable downstream.
func (f *Fetcher) summarize(ctx context.Context, title, body string) Content {
	if f.generate == nil {
		return fallbackContent(title, body)
	}

	prompt := fmt.Sprintf(aiPromptTemplate, title, firstChars(body, aiInputBudget))

	raw, err := f.generate(ctx, prompt)
	if err != nil {
		logger.Log.Warnf("ai summarization failed: %v", err)
		return aiFailureContent(title, body, err)
	}

	content, err := parseAIContent(raw)
	if err != nil {
		logger.Log.Warnf("ai response unusable: %v", err)
		return aiFailureContent(title, body, err)
	}
	return content
}

// parseAIContent decodes the model's JSON reply, tolerating markdown code
// fences around it.
func parseAIContent(raw string) (Content, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var c Content
	if err := json.Unmarshal([]byte(cleaned), &c); err != nil {
		return Content{}, fmt.Errorf("decode ai response: %w", err)
	}
	if c.Title == "" || c.Summary == "" || c.Description == "" {
		return Content{}, fmt.Errorf("ai response missing required keys")
	}
	c.FromAI = true
	return c, nil
}

// fallbackContent is the "never tried" local summary used when no AI
// credential is configured.
func fallbackContent(title, body string) Content {
	return Content{
		Title:       "Summary of: " + title,
		Summary:     firstChars(body, 200) + "...",
		Description: firstChars(body, 1000) + "...",
	}
}

// aiFailureContent is the "tried and failed" variant; the summary embeds
// the failure reason for observability.
func aiFailureContent(title, body string, err error) Content {
	return Content{
		Title:       "AI Fallback: " + title,
		Summary:     fmt.Sprintf("AI processing failed: %v. %s...", err, firstChars(body, 150)),
		Description: body,
	}
}

// firstChars returns the first n characters of s, counting runes.
func firstChars(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n])
}
