// Package export renders a tax year's position as an XLSX workbook: the
// ledger summary, the regime comparison, and per-document provenance.
package export

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/taxsahaj/taxsahaj/internal/aggregate"
	"github.com/taxsahaj/taxsahaj/internal/entity"
	"github.com/taxsahaj/taxsahaj/internal/tax"
)

type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ReportXLSX returns a workbook for one tax year. Records should be the
// year's contributing documents; unusable records are listed with their
// errors so the reviewer can see what was excluded.
func (s *Service) ReportXLSX(led *aggregate.YearLedger, rec tax.Recommendation, records []entity.ReconciledRecord) ([]byte, error) {
	start := time.Now()
	f := excelize.NewFile()

	if err := writeSummarySheet(f, led); err != nil {
		return nil, err
	}
	if err := writeRegimeSheet(f, rec); err != nil {
		return nil, err
	}
	if err := writeDocumentsSheet(f, records); err != nil {
		return nil, err
	}
	// drop the default sheet created by excelize
	_ = f.DeleteSheet("Sheet1")

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"tax_year", led.TaxYear,
		"documents", len(records),
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func newSheet(f *excelize.File, name string) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %q: %w", name, err)
	}
	return nil
}

func write(f *excelize.File, sheet string, col, row int, v any) {
	cell, _ := excelize.CoordinatesToCellName(col, row)
	_ = f.SetCellValue(sheet, cell, v)
}

func writeSummarySheet(f *excelize.File, led *aggregate.YearLedger) error {
	const sheet = "Summary"
	if err := newSheet(f, sheet); err != nil {
		return err
	}

	lines := []struct {
		label string
		value any
	}{
		{"Tax Year", led.TaxYear},
		{"Gross Salary", led.GrossSalary},
		{"Interest Income", led.InterestIncome},
		{"Capital Gains", led.CapitalGains},
		{"Dividend Income", led.DividendIncome},
		{"Section 80C Investments", led.Section80C},
		{"Section 80CCD(1B) NPS", led.Section80CCD1B},
		{"Professional Tax", led.ProfessionalTax},
		{"HRA Received", led.HRAReceived},
		{"Tax Withheld (TDS)", led.TaxWithheld},
		{"Documents Folded", led.Documents},
	}
	for i, ln := range lines {
		write(f, sheet, 1, i+1, ln.label)
		write(f, sheet, 2, i+1, ln.value)
	}
	_ = f.SetColWidth(sheet, "A", "A", 30)
	_ = f.SetColWidth(sheet, "B", "B", 18)
	return nil
}

func writeRegimeSheet(f *excelize.File, rec tax.Recommendation) error {
	const sheet = "Regime Comparison"
	if err := newSheet(f, sheet); err != nil {
		return err
	}

	headers := []string{"", "Old Regime", "New Regime"}
	for i, h := range headers {
		write(f, sheet, i+1, 1, h)
	}
	rows := []struct {
		label    string
		old, new float64
	}{
		{"Gross Income", rec.Old.GrossIncome, rec.New.GrossIncome},
		{"Total Deductions", rec.Old.TotalDeductions, rec.New.TotalDeductions},
		{"Taxable Income", rec.Old.TaxableIncome, rec.New.TaxableIncome},
		{"Base Tax", rec.Old.BaseTax, rec.New.BaseTax},
		{"Surcharge", rec.Old.Surcharge, rec.New.Surcharge},
		{"Cess", rec.Old.Cess, rec.New.Cess},
		{"Total Liability", rec.Old.TotalLiability, rec.New.TotalLiability},
	}
	for i, r := range rows {
		write(f, sheet, 1, i+2, r.label)
		write(f, sheet, 2, i+2, r.old)
		write(f, sheet, 3, i+2, r.new)
	}

	base := len(rows) + 3
	write(f, sheet, 1, base, "Recommended Regime")
	write(f, sheet, 2, base, rec.Recommended)
	write(f, sheet, 1, base+1, "Savings")
	write(f, sheet, 2, base+1, rec.Savings)
	write(f, sheet, 1, base+2, "Tax Withheld")
	write(f, sheet, 2, base+2, rec.TaxWithheld)
	write(f, sheet, 1, base+3, "Additional Tax Payable")
	write(f, sheet, 2, base+3, rec.AdditionalTaxPayable)

	_ = f.SetColWidth(sheet, "A", "A", 26)
	_ = f.SetColWidth(sheet, "B", "C", 16)
	return nil
}

func writeDocumentsSheet(f *excelize.File, records []entity.ReconciledRecord) error {
	const sheet = "Documents"
	if err := newSheet(f, sheet); err != nil {
		return err
	}

	headers := []string{"Source File", "Category", "Tax Year", "Method", "Confidence", "Notes"}
	for i, h := range headers {
		write(f, sheet, i+1, 1, h)
	}
	for i, r := range records {
		row := i + 2
		write(f, sheet, 1, row, r.SourceFile)
		write(f, sheet, 2, row, string(r.Category))
		write(f, sheet, 3, row, r.TaxYear)
		write(f, sheet, 4, row, r.ExtractionMethod)
		write(f, sheet, 5, row, r.Confidence)
		write(f, sheet, 6, row, truncate(strings.Join(r.Errors, "; "), 140))
	}

	_ = f.SetColWidth(sheet, "A", "A", 40)
	_ = f.SetColWidth(sheet, "B", "D", 22)
	_ = f.SetColWidth(sheet, "F", "F", 60)
	return nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
