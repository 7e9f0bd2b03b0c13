// Package pipeline wires the per-document stages together: classify, run both
// extraction strategies, reconcile into one record.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/taxsahaj/taxsahaj/constants"
	"github.com/taxsahaj/taxsahaj/internal/classify"
	"github.com/taxsahaj/taxsahaj/internal/common"
	"github.com/taxsahaj/taxsahaj/internal/entity"
	"github.com/taxsahaj/taxsahaj/internal/extract"
	"github.com/taxsahaj/taxsahaj/internal/llm"
	"github.com/taxsahaj/taxsahaj/internal/reconcile"
	"github.com/taxsahaj/taxsahaj/internal/schema"
)

const defaultCompletionTimeout = 45 * time.Second

// Analyzer runs the full per-document pipeline. The completer is optional;
// without one the pattern strategy carries extraction alone.
type Analyzer struct {
	Logger            *slog.Logger
	Completer         llm.Completer
	Patterns          *extract.PatternExtractor
	Reconciler        *reconcile.Reconciler
	CompletionTimeout time.Duration
}

func NewAnalyzer(completer llm.Completer, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		Logger:            logger,
		Completer:         completer,
		Patterns:          extract.NewPatternExtractor(logger),
		Reconciler:        reconcile.NewReconciler(logger),
		CompletionTimeout: defaultCompletionTimeout,
	}
}

// Analyze classifies one document and produces its reconciled record. The
// returned error is reserved for context cancellation; every other failure is
// absorbed into the record's provenance.
func (a *Analyzer) Analyze(ctx context.Context, doc extract.RawDocumentText, filename string) (entity.ReconciledRecord, error) {
	cat := classify.Classify(filename, doc.Text)
	a.Logger.Info("pipeline.classify",
		"source_file", filename,
		"category", string(cat),
	)

	if cat == constants.Unknown {
		return entity.ReconciledRecord{
			Category:         constants.Unknown,
			ExtractionMethod: reconcile.MethodNone,
			Errors:           []string{"document did not match any known category"},
			SourceFile:       filename,
			RawExcerpt:       excerpt(doc.Text),
		}, nil
	}

	completion := a.completionCandidate(ctx, cat, doc, filename)
	if err := ctx.Err(); err != nil {
		return entity.ReconciledRecord{}, err
	}
	pattern := a.Patterns.Extract(cat, doc)

	return a.Reconciler.Reconcile(cat, completion, pattern, filename), nil
}

// completionCandidate runs the completion strategy end to end. Any failure
// along the way yields nil: the candidate is simply absent.
func (a *Analyzer) completionCandidate(ctx context.Context, cat constants.DocCategory, doc extract.RawDocumentText, filename string) *extract.CandidateExtraction {
	if a.Completer == nil {
		return nil
	}
	s, ok := schema.Lookup(cat)
	if !ok {
		return nil
	}

	prompt, err := llm.BuildExtractionPrompt(llm.ExtractRequest{
		Category: cat,
		Text:     doc.Text,
		Filename: filename,
	})
	if err != nil {
		a.Logger.Warn("pipeline.prompt_error", "source_file", filename, "error", err)
		return nil
	}

	timeout := a.CompletionTimeout
	if timeout <= 0 {
		timeout = defaultCompletionTimeout
	}
	cctx, cancel := common.WithTimeout(ctx, timeout)
	defer cancel()

	raw, err := a.Completer.Complete(cctx, prompt)
	if err != nil {
		a.Logger.Warn("pipeline.completion_failed",
			"source_file", filename,
			"category", string(cat),
			"error", err,
		)
		return nil
	}

	fields, ok := llm.ParseCompletion(raw, s.FieldNames())
	if !ok {
		a.Logger.Warn("pipeline.completion_unparseable",
			"source_file", filename,
			"category", string(cat),
			"raw_len", len(raw),
		)
		return nil
	}
	fields = llm.NormalizeFields(fields, s, a.Logger)

	if err := llm.ValidateAgainstSchema(llm.BuildFieldJSONSchema(s), fields); err != nil {
		// reconciliation enforces the hard minimums; the schema check is
		// advisory once normalization has run
		a.Logger.Warn("pipeline.schema_mismatch",
			"source_file", filename,
			"category", string(cat),
			"error", err,
		)
	}

	return &extract.CandidateExtraction{
		Source:     extract.SourceCompletion,
		Confidence: extract.CompletionConfidence,
		Fields:     fields,
		RawText:    doc.Text,
	}
}

func excerpt(text string) string {
	const max = 500
	if len(text) > max {
		return text[:max]
	}
	return text
}
