package llm

import (
	"context"

	"github.com/taxsahaj/taxsahaj/constants"
)

// Completer is the text-completion service the pipeline depends on. It may
// block for seconds; callers bound it with a context deadline and treat
// failure as "completion candidate absent".
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ExtractRequest carries everything needed to build one extraction prompt.
type ExtractRequest struct {
	Category constants.DocCategory
	Text     string // raw document text; truncated by the prompt builder
	Filename string // hint only, never required
}

// MaxExcerptChars bounds the document excerpt embedded in prompts so requests
// stay under the completion service's context limits.
const MaxExcerptChars = 15000

// NotFoundSentinel is the placeholder the prompt contract tells the model to
// emit for missing string values. The parser normalizes it away; it never
// crosses into reconciled records.
const NotFoundSentinel = "EXTRACT_FROM_DOCUMENT"
