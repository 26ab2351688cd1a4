// ABOUTME: Generation request/result models for the text generation engine
// ABOUTME: Carries the query, ordered context strings, and token budget
package models

// GenerationRequest asks the generation engine for an answer grounded in contexts
type GenerationRequest struct {
	Query     string   `json:"query"`
	Contexts  []string `json:"contexts"`
	MaxTokens int      `json:"max_tokens"`
}

// GenerationResult is the engine's output
type GenerationResult struct {
	Text       string `json:"text"`
	TokensUsed int    `json:"tokens_used"`
}
