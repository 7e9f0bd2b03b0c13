package constants

import "strings"

// FileTypes holds the allowed container formats for ingested documents.
var FileTypes = []string{"PDF", "XLSX", "CSV", "TXT"}

// AllowedExtensions holds the default allowed file extensions for ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"xlsx": {},
	"xls":  {},
	"csv":  {},
	"txt":  {},
}

// MaxDocumentBytes is the soft ceiling for a single document; larger files
// are flagged during validation but still processed.
const MaxDocumentBytes = 50 * 1024 * 1024

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
