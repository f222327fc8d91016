package generation

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/phrazzld/memoria/internal/domain"
)

// DocumentKind is the type of an uploaded document, derived from its extension.
type DocumentKind string

// Accepted document kinds.
const (
	KindPDF  DocumentKind = "pdf"
	KindDOCX DocumentKind = "docx"
	KindText DocumentKind = "txt"
)

// Document is an uploaded file.
type Document struct {
	Filename string
	Data     []byte
}

// KindOf returns the document kind for filename, or ErrUnsupportedFormat for
// anything but .pdf, .docx and .txt.
func KindOf(filename string) (DocumentKind, error) {
	switch k := DocumentKind(strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))); k {
	case KindPDF, KindDOCX, KindText:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q (allowed: .pdf, .docx, .txt)", domain.ErrUnsupportedFormat, filepath.Base(filename))
	}
}

// ValidateDocument rejects documents with an unsupported extension or no content.
func ValidateDocument(doc Document) error {
	if _, err := KindOf(doc.Filename); err != nil {
		return err
	}
	if len(doc.Data) == 0 {
		return domain.NewValidationError("file", "cannot be empty", domain.ErrEmptyField)
	}
	return nil
}

// MIMEType returns the content type used when sending a document of this kind.
func (k DocumentKind) MIMEType() string {
	switch k {
	case KindPDF:
		return "application/pdf"
	case KindDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "text/plain"
	}
}
