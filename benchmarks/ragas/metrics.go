// ABOUTME: RAGAS metrics implementation for faithfulness, recall, and precision
// ABOUTME: Simplified deterministic evaluation based on ground truth comparison

package ragas

import (
	"fmt"
	"strings"
)

// MetricsCalculator computes RAGAS scores for benchmark tests
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// CalculateFaithfulness computes faithfulness score (0.0-1.0) by containment:
// all expected strings must appear in the answer and no forbidden string may.
func (m *MetricsCalculator) CalculateFaithfulness(
	answer string,
	expectedInAnswer []string,
	forbiddenInAnswer []string,
) (float64, string) {
	answerUpper := strings.ToUpper(answer)

	// Check all expected items are present
	missingItems := []string{}
	for _, expected := range expectedInAnswer {
		if !strings.Contains(answerUpper, strings.ToUpper(expected)) {
			missingItems = append(missingItems, expected)
		}
	}

	// Check no forbidden items are present
	forbiddenFound := []string{}
	for _, forbidden := range forbiddenInAnswer {
		if strings.Contains(answerUpper, strings.ToUpper(forbidden)) {
			forbiddenFound = append(forbiddenFound, forbidden)
		}
	}

	if len(missingItems) == 0 && len(forbiddenFound) == 0 {
		return 1.0, "Perfect faithfulness - answer matches expected ground truth"
	}

	if len(missingItems) > 0 && len(forbiddenFound) > 0 {
		return 0.0, fmt.Sprintf(
			"Faithfulness failure - missing expected items: %v, forbidden items found: %v",
			missingItems, forbiddenFound,
		)
	}

	if len(missingItems) > 0 {
		return 0.5, fmt.Sprintf("Partial faithfulness - missing expected items: %v", missingItems)
	}

	return 0.5, fmt.Sprintf("Partial faithfulness - forbidden items found: %v", forbiddenFound)
}

// CalculateGrounding computes faithfulness for sampled answers (0.0-1.0).
// The local model can only be faithful by construction when every word of
// the answer occurs somewhere in the corpus, so the score is the fraction
// of answer words found in the corpus vocabulary.
func (m *MetricsCalculator) CalculateGrounding(answer string, corpusTexts []string) (float64, string) {
	answerWords := tokenizeWords(answer)
	if len(answerWords) == 0 {
		return 0.0, "Grounding failure - empty answer"
	}

	vocab := map[string]bool{}
	for _, text := range corpusTexts {
		for _, word := range tokenizeWords(text) {
			vocab[word] = true
		}
	}

	grounded := 0
	ungrounded := []string{}
	for _, word := range answerWords {
		if vocab[word] {
			grounded++
		} else {
			ungrounded = append(ungrounded, word)
		}
	}

	score := float64(grounded) / float64(len(answerWords))
	if score == 1.0 {
		return 1.0, "Perfect grounding - every answer word occurs in the corpus"
	}
	return score, fmt.Sprintf("Partial grounding (%.2f) - words outside the corpus: %v", score, ungrounded)
}

// CalculateContextRecall computes context recall score (0.0-1.0):
// the proportion of expected items present in the retrieved fragments.
func (m *MetricsCalculator) CalculateContextRecall(
	retrievedContext []string,
	expectedContextItems []string,
) (float64, string) {
	if len(expectedContextItems) == 0 {
		return 1.0, "No context retrieval required"
	}

	allContext := strings.ToUpper(strings.Join(retrievedContext, " "))

	foundCount := 0
	missingItems := []string{}
	for _, expectedItem := range expectedContextItems {
		if strings.Contains(allContext, strings.ToUpper(expectedItem)) {
			foundCount++
		} else {
			missingItems = append(missingItems, expectedItem)
		}
	}

	recall := float64(foundCount) / float64(len(expectedContextItems))
	if recall == 1.0 {
		return 1.0, "Perfect context recall - all expected items retrieved"
	}

	return recall, fmt.Sprintf("Partial context recall (%.2f) - missing items: %v", recall, missingItems)
}

// CalculateContextPrecision computes context precision score (0.0-1.0):
// the proportion of forbidden items kept out of the retrieved fragments.
func (m *MetricsCalculator) CalculateContextPrecision(
	retrievedContext []string,
	forbiddenContextItems []string,
) (float64, string) {
	if len(forbiddenContextItems) == 0 {
		return 1.0, "No context exclusions required"
	}

	allContext := strings.ToUpper(strings.Join(retrievedContext, " "))

	leaked := []string{}
	for _, forbiddenItem := range forbiddenContextItems {
		if strings.Contains(allContext, strings.ToUpper(forbiddenItem)) {
			leaked = append(leaked, forbiddenItem)
		}
	}

	precision := 1.0 - float64(len(leaked))/float64(len(forbiddenContextItems))
	if precision == 1.0 {
		return 1.0, "Perfect context precision - no off-topic fragments retrieved"
	}

	return precision, fmt.Sprintf("Partial context precision (%.2f) - leaked items: %v", precision, leaked)
}

// CalculateSourceAccuracy scores the citations (0.0-1.0): the best-ranked
// source must be the expected file and its fragment must contain the
// expected strings.
func (m *MetricsCalculator) CalculateSourceAccuracy(
	truth GroundTruth,
	outcome RunOutcome,
) (float64, string) {
	if truth.RequireSources && !outcome.SourcesFound {
		return 0.0, "Source failure - report carries no citations"
	}
	if truth.ExpectedTopSource == "" && len(truth.ExpectedInTopFragment) == 0 {
		return 1.0, "No source expectations"
	}

	checks := 0
	passed := 0
	failures := []string{}

	if truth.ExpectedTopSource != "" {
		checks++
		if outcome.TopSource == truth.ExpectedTopSource {
			passed++
		} else {
			failures = append(failures, fmt.Sprintf("top source is %q, want %q", outcome.TopSource, truth.ExpectedTopSource))
		}
	}

	topFragmentUpper := strings.ToUpper(outcome.TopFragment)
	for _, expected := range truth.ExpectedInTopFragment {
		checks++
		if strings.Contains(topFragmentUpper, strings.ToUpper(expected)) {
			passed++
		} else {
			failures = append(failures, fmt.Sprintf("top fragment missing %q", expected))
		}
	}

	score := float64(passed) / float64(checks)
	if score == 1.0 {
		return 1.0, "Perfect source accuracy - best citation matches ground truth"
	}
	return score, fmt.Sprintf("Partial source accuracy (%.2f) - %s", score, strings.Join(failures, "; "))
}

// EvaluateTest runs full RAGAS evaluation for one pipeline run
func (m *MetricsCalculator) EvaluateTest(scenario TestScenario, outcome RunOutcome) TestResult {
	truth := scenario.GroundTruth

	// Canned answers are checked by containment, sampled answers by grounding
	var faithfulness float64
	var faithfulnessDetail string
	if len(truth.ExpectedInAnswer) > 0 || len(truth.ForbiddenInAnswer) > 0 {
		faithfulness, faithfulnessDetail = m.CalculateFaithfulness(
			outcome.Answer, truth.ExpectedInAnswer, truth.ForbiddenInAnswer)
	} else {
		faithfulness, faithfulnessDetail = m.CalculateGrounding(outcome.Answer, outcome.CorpusTexts)
	}

	recall, recallDetail := m.CalculateContextRecall(outcome.RetrievedContext, truth.ExpectedInContext)
	precision, precisionDetail := m.CalculateContextPrecision(outcome.RetrievedContext, truth.ForbiddenInContext)
	sources, sourcesDetail := m.CalculateSourceAccuracy(truth, outcome)

	overallScore := (faithfulness + recall + precision + sources) / 4.0

	// Production quality requires >= 0.9 on every metric
	status := "FAIL"
	if faithfulness >= 0.9 && recall >= 0.9 && precision >= 0.9 && sources >= 0.9 {
		status = "PASS"
	}

	return TestResult{
		TestID:                scenario.ID,
		TestName:              scenario.Name,
		FaithfulnessScore:     faithfulness,
		ContextRecallScore:    recall,
		ContextPrecisionScore: precision,
		SourceAccuracyScore:   sources,
		OverallScore:          overallScore,
		Status:                status,
		Details: map[string]interface{}{
			"faithfulness_detail": faithfulnessDetail,
			"recall_detail":       recallDetail,
			"precision_detail":    precisionDetail,
			"sources_detail":      sourcesDetail,
			"answer_preview":      trimPreview(outcome.Answer, 200),
			"context_items":       len(outcome.RetrievedContext),
		},
	}
}

// tokenizeWords lowercases text and splits it into alphanumeric words
func tokenizeWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		isLetter := r >= 'a' && r <= 'z'
		isDigit := r >= '0' && r <= '9'
		return !isLetter && !isDigit
	})
}

// trimPreview truncates a string for inclusion in result details
func trimPreview(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
