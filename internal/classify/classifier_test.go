package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taxsahaj/taxsahaj/constants"
)

func TestClassifyByFilename(t *testing.T) {
	for _, tc := range []struct {
		filename string
		want     constants.DocCategory
	}{
		{"Form16_FY2024-25.pdf", constants.Form16},
		{"salary slip march.pdf", constants.Form16},
		{"HDFC Interest Certificate.pdf", constants.BankInterest},
		{"zerodha tax p&l.xlsx", constants.CapitalGains},
		{"NPS_statement.pdf", constants.NPSStatement},
		{"ELSS investment proof.pdf", constants.Investment},
		{"vacation photos.pdf", constants.Unknown},
	} {
		assert.Equal(t, tc.want, Classify(tc.filename, ""), "filename %q", tc.filename)
	}
}

func TestClassifyByContent(t *testing.T) {
	for _, tc := range []struct {
		text string
		want constants.DocCategory
	}{
		{"CERTIFICATE UNDER SECTION 203 of the Income-tax Act", constants.Form16},
		{"Deposit Number Branch Name ... Accrued Interest", constants.BankInterest},
		{"Short Term P&L: 45,000", constants.CapitalGains},
		{"NPS Transaction Statement\nBy Voluntary Contributions", constants.NPSStatement},
		{"Premium paid towards policy number 123", constants.Investment},
		{"completely unrelated text", constants.Unknown},
	} {
		assert.Equal(t, tc.want, Classify("doc.pdf", tc.text), "text %q", tc.text)
	}
}

func TestClassifyFilenameWinsOverContent(t *testing.T) {
	// filename says interest certificate even though the body mentions ELSS
	got := Classify("interest certificate.pdf", "invested in ELSS last year")
	assert.Equal(t, constants.BankInterest, got)
}

func TestClassifyEmptyInputs(t *testing.T) {
	assert.Equal(t, constants.Unknown, Classify("", ""))
}
