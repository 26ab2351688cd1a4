// ABOUTME: Prompt assembly for retrieval-augmented generation
// ABOUTME: Labels context fragments and appends the question and answer cue
package generate

import (
	"fmt"
	"strings"
)

// answerInstruction is the role preamble for answer generation
const answerInstruction = "You are a helpful assistant. Answer the question using only the " +
	"provided document excerpts. If the excerpts do not contain the answer, say so."

// continuationMarkers cut off generated text that runs past the answer into
// a new question or another document label
var continuationMarkers = []string{"Question:", "[Document"}

// BuildPrompt assembles the generation prompt: instruction preamble, the
// retrieved contexts labeled [Document 1], [Document 2], ..., then the
// question and the answer cue.
func BuildPrompt(query string, contexts []string) string {
	var b strings.Builder
	b.WriteString(answerInstruction)
	b.WriteString("\n\n")

	for i, ctx := range contexts {
		fmt.Fprintf(&b, "[Document %d]\n%s\n\n", i+1, ctx)
	}

	fmt.Fprintf(&b, "Question: %s\nAnswer:", query)
	return b.String()
}

// BuildPromptBudget assembles the same prompt but caps the number of
// contexts and the length of each one, for models with small windows.
// Non-positive caps mean no cap.
func BuildPromptBudget(query string, contexts []string, maxContexts, maxContextLen int) string {
	if maxContexts > 0 && len(contexts) > maxContexts {
		contexts = contexts[:maxContexts]
	}
	if maxContextLen > 0 {
		capped := make([]string, len(contexts))
		for i, ctx := range contexts {
			runes := []rune(ctx)
			if len(runes) > maxContextLen {
				ctx = string(runes[:maxContextLen])
			}
			capped[i] = ctx
		}
		contexts = capped
	}
	return BuildPrompt(query, contexts)
}

// postProcess cleans decoded generation output: strips a verbatim prompt
// echo, cuts at the first continuation marker, and trims whitespace.
func postProcess(text, prompt string) string {
	if prompt != "" && strings.HasPrefix(text, prompt) {
		text = text[len(prompt):]
	}

	for _, marker := range continuationMarkers {
		if idx := strings.Index(text, marker); idx >= 0 {
			text = text[:idx]
		}
	}

	return strings.TrimSpace(text)
}

// parseNumberedList pulls numbered lines ("1. ...", "2. ...") out of
// generated text. Malformed input yields an empty list.
func parseNumberedList(text string, max int) []string {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 3 {
			continue
		}
		if line[0] < '1' || line[0] > '9' || line[1] != '.' {
			continue
		}
		item := strings.TrimSpace(line[2:])
		if item == "" {
			continue
		}
		items = append(items, item)
		if max > 0 && len(items) == max {
			break
		}
	}
	return items
}
