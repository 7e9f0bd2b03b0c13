// Package ingest loads documents from disk: container detection, text
// extraction per format, directory discovery, and a filesystem watcher.
package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"github.com/taxsahaj/taxsahaj/constants"
	"github.com/taxsahaj/taxsahaj/internal/common"
	"github.com/taxsahaj/taxsahaj/internal/extract"
)

// Document is one loaded file: raw bytes for cache keying plus the extracted
// text handed to the pipeline.
type Document struct {
	Path    string
	Size    int64
	ModTime time.Time
	Content []byte
	Text    extract.RawDocumentText
}

type Loader struct {
	Logger *slog.Logger
}

func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{Logger: logger}
}

// Load reads and validates one file and extracts its text.
func (l *Loader) Load(path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, common.NewAppError("INGEST_STAT", "stat document", err)
	}
	ext := constants.NormalizeExt(filepath.Ext(path))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		return nil, common.NewAppError("INGEST_EXT",
			fmt.Sprintf("unsupported file extension %q", ext), common.ErrInvalidInput)
	}
	if info.Size() > constants.MaxDocumentBytes {
		l.Logger.Warn("ingest.oversize",
			"path", path,
			"size", info.Size(),
		)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, common.NewAppError("INGEST_READ", "read document", err)
	}

	start := time.Now()
	text, err := ExtractText(ext, content)
	if err != nil {
		return nil, common.NewAppError("INGEST_EXTRACT", "extract document text", err)
	}

	l.Logger.Info("ingest.load.ok",
		"path", path,
		"ext", ext,
		"bytes", len(content),
		"text_len", len(text.Text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return &Document{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Content: content,
		Text:    text,
	}, nil
}

// ExtractText converts raw container bytes to document text. ext is the
// normalized extension; unknown formats fall through as plain text.
func ExtractText(ext string, content []byte) (extract.RawDocumentText, error) {
	switch ext {
	case "pdf":
		return pdfText(content)
	case "xlsx", "xls":
		return xlsxText(content)
	case "csv":
		return csvText(content)
	default:
		return extract.RawDocumentText{Text: string(content)}, nil
	}
}

func pdfText(content []byte) (extract.RawDocumentText, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return extract.RawDocumentText{}, fmt.Errorf("open pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return extract.RawDocumentText{}, fmt.Errorf("extract pdf text: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return extract.RawDocumentText{}, fmt.Errorf("read pdf text: %w", err)
	}
	return extract.RawDocumentText{Text: string(b)}, nil
}

// xlsxText flattens every sheet row-by-row. The tabular rows are preserved so
// the pattern extractor can read totals rows without guessing column spacing.
func xlsxText(content []byte) (extract.RawDocumentText, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return extract.RawDocumentText{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	var all [][]string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return extract.RawDocumentText{}, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		for _, row := range rows {
			all = append(all, row)
			sb.WriteString(strings.Join(row, " "))
			sb.WriteByte('\n')
		}
	}
	return extract.RawDocumentText{Text: sb.String(), Rows: all}, nil
}

func csvText(content []byte) (extract.RawDocumentText, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return extract.RawDocumentText{}, fmt.Errorf("parse csv: %w", err)
	}
	var sb strings.Builder
	for _, row := range rows {
		sb.WriteString(strings.Join(row, " "))
		sb.WriteByte('\n')
	}
	return extract.RawDocumentText{Text: sb.String(), Rows: rows}, nil
}
