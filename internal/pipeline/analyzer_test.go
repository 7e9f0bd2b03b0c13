package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxsahaj/taxsahaj/constants"
	"github.com/taxsahaj/taxsahaj/internal/extract"
	"github.com/taxsahaj/taxsahaj/internal/reconcile"
)

type fakeCompleter struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

const form16Text = `FORM 16
CERTIFICATE UNDER SECTION 203
Employee Name: RAVI KUMAR
Q1: Salary: 3,00,000.00, Tax: 25,000.00
Q2: Salary: 3,00,000.00, Tax: 25,000.00
Q3: Salary: 3,00,000.00, Tax: 25,000.00
Q4: Salary: 3,00,000.00, Tax: 25,000.00
FY: 2024-25`

func TestAnalyzeCompletionAndPatternAgree(t *testing.T) {
	fc := &fakeCompleter{response: `{"gross_salary": 1200000.0, "tax_deducted": 100000.0, "financial_year": "2024-25"}`}
	a := NewAnalyzer(fc, nil)

	rec, err := a.Analyze(context.Background(), extract.RawDocumentText{Text: form16Text}, "form16.pdf")
	require.NoError(t, err)

	assert.Equal(t, constants.Form16, rec.Category)
	assert.Equal(t, reconcile.MethodCompletion, rec.ExtractionMethod)
	require.NotNil(t, rec.Fields.Salary)
	assert.Equal(t, 1200000.0, rec.Fields.Salary.GrossSalary)
	assert.Equal(t, "2024-25", rec.TaxYear)
	require.Len(t, fc.prompts, 1)
	assert.Contains(t, fc.prompts[0], "gross_salary")
}

func TestAnalyzePatternCorrectsCompletion(t *testing.T) {
	// completion hallucinates a gross 1,50,000 above the document tables
	fc := &fakeCompleter{response: `{"gross_salary": 1350000.0, "tax_deducted": 100000.0}`}
	a := NewAnalyzer(fc, nil)

	rec, err := a.Analyze(context.Background(), extract.RawDocumentText{Text: form16Text}, "form16.pdf")
	require.NoError(t, err)

	assert.Equal(t, reconcile.MethodCorrected, rec.ExtractionMethod)
	require.NotNil(t, rec.Fields.Salary)
	assert.Equal(t, 1200000.0, rec.Fields.Salary.GrossSalary)
	assert.NotEmpty(t, rec.Errors)
}

func TestAnalyzeCompleterFailureFallsBackToPattern(t *testing.T) {
	fc := &fakeCompleter{err: errors.New("connection refused")}
	a := NewAnalyzer(fc, nil)

	rec, err := a.Analyze(context.Background(), extract.RawDocumentText{Text: form16Text}, "form16.pdf")
	require.NoError(t, err)

	assert.Equal(t, reconcile.MethodPattern, rec.ExtractionMethod)
	require.NotNil(t, rec.Fields.Salary)
	assert.Equal(t, 1200000.0, rec.Fields.Salary.GrossSalary)
	assert.Equal(t, 100000.0, rec.Fields.Salary.TaxDeducted)
}

func TestAnalyzeNoCompleterUsesPatternOnly(t *testing.T) {
	a := NewAnalyzer(nil, nil)

	rec, err := a.Analyze(context.Background(), extract.RawDocumentText{Text: form16Text}, "form16.pdf")
	require.NoError(t, err)
	assert.Equal(t, reconcile.MethodPattern, rec.ExtractionMethod)
}

func TestAnalyzeUnparseableCompletionFallsBack(t *testing.T) {
	fc := &fakeCompleter{response: "I'm sorry, I cannot help with that."}
	a := NewAnalyzer(fc, nil)

	rec, err := a.Analyze(context.Background(), extract.RawDocumentText{Text: form16Text}, "form16.pdf")
	require.NoError(t, err)
	assert.Equal(t, reconcile.MethodPattern, rec.ExtractionMethod)
}

func TestAnalyzeUnknownDocument(t *testing.T) {
	fc := &fakeCompleter{response: `{}`}
	a := NewAnalyzer(fc, nil)

	rec, err := a.Analyze(context.Background(),
		extract.RawDocumentText{Text: "grocery receipt, milk and bread"}, "receipt.txt")
	require.NoError(t, err)

	assert.Equal(t, constants.Unknown, rec.Category)
	assert.Equal(t, reconcile.MethodNone, rec.ExtractionMethod)
	assert.False(t, rec.Usable())
	assert.Empty(t, fc.prompts, "no completion call for unknown documents")
	assert.Contains(t, rec.RawExcerpt, "grocery")
}

func TestAnalyzeCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fc := &fakeCompleter{err: context.Canceled}
	a := NewAnalyzer(fc, nil)

	_, err := a.Analyze(ctx, extract.RawDocumentText{Text: form16Text}, "form16.pdf")
	assert.ErrorIs(t, err, context.Canceled)
}
