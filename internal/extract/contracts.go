// Package extract defines the inputs and candidate outputs of the two
// extraction strategies, and implements the deterministic pattern fallback.
package extract

// Source identifies which strategy produced a candidate.
type Source string

const (
	SourceCompletion Source = "completion"
	SourcePattern    Source = "pattern"
)

// Default confidence attributed to each strategy. Completion output may carry
// its own confidence; pattern extraction is anchored on explicit table
// structure and gets the higher prior.
const (
	CompletionConfidence = 0.70
	PatternConfidence    = 0.85
)

// RawDocumentText owns the free-form text of one document and, when the
// container had table structure (spreadsheets), its tabular rows. Read-only
// to the pipeline.
type RawDocumentText struct {
	Text string
	Rows [][]string
}

// CandidateExtraction is one strategy's field mapping for one document.
// Transient: it lives only until the reconciler merges candidates into a
// ReconciledRecord.
type CandidateExtraction struct {
	Source     Source
	Confidence float64
	Fields     map[string]any
	RawText    string // kept for fallback re-derivation
}
