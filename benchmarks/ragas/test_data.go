// ABOUTME: Test scenario data structures for RAGAS benchmarks
// ABOUTME: Defines document corpora, queries, and ground truth for each test

package ragas

// TestScenario represents a complete RAGAS benchmark test
type TestScenario struct {
	ID          string
	Name        string
	Description string
	Corpus      []CorpusFile
	Updates     []CorpusFile // Optional second indexing pass with edited content
	Query       string
	GroundTruth GroundTruth
}

// CorpusFile is a document written into the scenario's corpus directory
type CorpusFile struct {
	Name    string
	Content string
}

// GroundTruth defines expected outcomes for RAGAS evaluation
type GroundTruth struct {
	// Answer expectations. When either list is set, faithfulness is
	// measured by containment; otherwise by vocabulary grounding.
	ExpectedInAnswer  []string // Strings that MUST appear in the answer
	ForbiddenInAnswer []string // Strings that MUST NOT appear in the answer

	// Context retrieval expectations
	ExpectedInContext  []string // Strings that must appear in retrieved fragments
	ForbiddenInContext []string // Strings that must not appear in retrieved fragments

	// Citation expectations
	ExpectedTopSource     string   // File name of the best-ranked citation
	ExpectedInTopFragment []string // Strings the best-ranked fragment must contain
	RequireSources        bool     // Whether the report must carry citations
}

// RunOutcome captures everything a pipeline run produced for evaluation
type RunOutcome struct {
	Answer           string
	TopSource        string
	TopFragment      string
	SourcesFound     bool
	RetrievedContext []string
	CorpusTexts      []string
}

// TestResult represents the outcome of a benchmark test
type TestResult struct {
	TestID                string
	TestName              string
	FaithfulnessScore     float64
	ContextRecallScore    float64
	ContextPrecisionScore float64
	SourceAccuracyScore   float64
	OverallScore          float64
	Status                string // "PASS" or "FAIL"
	Details               map[string]interface{}
	ErrorMessage          string
}

// GetVerbatimRecallTest returns the verbatim recall scenario: a query that
// restates a sentence from one document must rank that document first.
func GetVerbatimRecallTest() TestScenario {
	return TestScenario{
		ID:          "verbatim_recall",
		Name:        "Verbatim Recall",
		Description: "A query restating an indexed sentence must retrieve its document at the top",
		Corpus: []CorpusFile{
			{
				Name:    "sky.txt",
				Content: "The sky appears blue because short wavelengths of sunlight scatter far more strongly than long red wavelengths. Sunsets turn red since light crosses extra air on its way down.",
			},
			{
				Name:    "tides.txt",
				Content: "Ocean tides rise and fall twice daily, pulled by the gravity of our moon. Spring tides follow new and full moons.",
			},
			{
				Name:    "bread.md",
				Content: "# Sourdough notes\n\nA sourdough starter stays healthy when you feed it fresh flour and water every day. Keep the jar somewhere warm so wild yeast can grow.",
			},
		},
		Query: "The sky appears blue because short wavelengths of sunlight scatter far more strongly than long red wavelengths.",
		GroundTruth: GroundTruth{
			ExpectedInContext:     []string{"wavelengths"},
			ForbiddenInContext:    []string{"sourdough"},
			ExpectedTopSource:     "sky.txt",
			ExpectedInTopFragment: []string{"scatter"},
			RequireSources:        true,
		},
	}
}

// GetDistractorRejectionTest returns the distractor rejection scenario: a
// query sharing no vocabulary with off-topic documents must not retrieve them.
func GetDistractorRejectionTest() TestScenario {
	base := GetVerbatimRecallTest()
	return TestScenario{
		ID:          "distractor_rejection",
		Name:        "Distractor Rejection",
		Description: "Off-topic documents with disjoint vocabulary must stay below the similarity threshold",
		Corpus:      base.Corpus,
		Query:       "How do you keep a sourdough starter healthy?",
		GroundTruth: GroundTruth{
			ExpectedInContext:     []string{"flour"},
			ForbiddenInContext:    []string{"wavelengths", "gravity"},
			ExpectedTopSource:     "bread.md",
			ExpectedInTopFragment: []string{"sourdough starter"},
			RequireSources:        true,
		},
	}
}

// GetEmptyCorpusTest returns the empty corpus scenario: with nothing indexed
// the pipeline must answer honestly instead of inventing text.
func GetEmptyCorpusTest() TestScenario {
	return TestScenario{
		ID:          "empty_corpus",
		Name:        "Empty Corpus Honesty",
		Description: "With no indexed documents the answer must state that nothing was found",
		Corpus:      nil,
		Query:       "What is the maintenance schedule?",
		GroundTruth: GroundTruth{
			ExpectedInAnswer: []string{"No relevant information found"},
			RequireSources:   false,
		},
	}
}

// GetReindexUpdateTest returns the incremental update scenario: after a file
// changes and is reindexed, retrieval must reflect only the new content.
func GetReindexUpdateTest() TestScenario {
	return TestScenario{
		ID:          "reindex_update",
		Name:        "Reindex Reflects Edits",
		Description: "Tests that reindexing an edited file atomically replaces its old fragments",
		Corpus: []CorpusFile{
			{
				Name:    "deploy.txt",
				Content: "The deployment target is the staging cluster. Releases ship every Friday afternoon.",
			},
		},
		Updates: []CorpusFile{
			{
				Name:    "deploy.txt",
				Content: "The deployment target is the production cluster. Releases ship every Friday afternoon.",
			},
		},
		Query: "Which cluster is the deployment target?",
		GroundTruth: GroundTruth{
			ForbiddenInAnswer:  []string{"staging"},
			ExpectedInContext:  []string{"production"},
			ForbiddenInContext: []string{"staging"},
			ExpectedTopSource:  "deploy.txt",
			RequireSources:     true,
		},
	}
}

// GetSectionRecallTest returns the long document scenario: a query about one
// section of a chunked document must surface the fragment holding it.
func GetSectionRecallTest() TestScenario {
	return TestScenario{
		ID:          "section_recall",
		Name:        "Long Document Sections",
		Description: "A query about one section of a multi-fragment document must rank that fragment first",
		Corpus: []CorpusFile{
			{
				Name: "handbook.md",
				Content: "# Team Handbook\n\n" +
					"New hires pair with a buddy for their first two weeks and ship something small in week one.\n\n" +
					"Expenses under fifty dollars need no approval. File receipts within thirty days of purchase.\n\n" +
					"During an incident the on-call engineer carries the pager and leads the response until handoff. " +
					"Escalate to the service owner if mitigation stalls past thirty minutes.",
			},
		},
		Query: "Who carries the pager and leads the incident response?",
		GroundTruth: GroundTruth{
			ExpectedInContext:     []string{"on-call"},
			ExpectedTopSource:     "handbook.md",
			ExpectedInTopFragment: []string{"pager"},
			RequireSources:        true,
		},
	}
}

// GetAllTests returns all RAGAS benchmark tests
func GetAllTests() []TestScenario {
	return []TestScenario{
		GetVerbatimRecallTest(),
		GetDistractorRejectionTest(),
		GetEmptyCorpusTest(),
		GetReindexUpdateTest(),
		GetSectionRecallTest(),
	}
}
