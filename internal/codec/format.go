package codec

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/phrazzld/memoria/internal/domain"
)

// Format is an import/export file format.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat accepts "csv" or "json" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, s)
	}
}

// FormatFromFilename picks the format from a file's extension.
func FormatFromFilename(name string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: %q has no extension", domain.ErrUnsupportedFormat, name)
	}
	return ParseFormat(ext)
}

var unsafeNameChars = strings.NewReplacer("/", "_", "\\", "_", "..", "_", "\x00", "")

// ExportFilename is the name an exported set is written under. Path
// separators and ".." in the set name become underscores, so the result is
// always a bare file name.
func ExportFilename(setName string, format Format) string {
	base := strings.TrimSpace(unsafeNameChars.Replace(setName))
	if base == "" || base == "." {
		base = "flashcards"
	}
	return fmt.Sprintf("%s_export.%s", base, format)
}
