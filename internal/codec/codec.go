package codec

import (
	"fmt"

	"github.com/phrazzld/memoria/internal/domain"
)

// Options selects the file format and, for CSV, the separators. Separators
// may contain the typed escapes UnescapeSeparator understands.
type Options struct {
	Format          Format
	FieldSeparator  string
	RecordSeparator string
}

// DefaultOptions exports CSV with comma-separated fields, one card per line.
func DefaultOptions() Options {
	return Options{
		Format:          FormatCSV,
		FieldSeparator:  FieldSeparatorPresets[0],
		RecordSeparator: RecordSeparatorPresets[0],
	}
}

func (o Options) separators() (string, string, error) {
	field, err := UnescapeSeparator(o.FieldSeparator)
	if err != nil {
		return "", "", fmt.Errorf("field separator: %w", err)
	}
	record, err := UnescapeSeparator(o.RecordSeparator)
	if err != nil {
		return "", "", fmt.Errorf("record separator: %w", err)
	}
	return field, record, nil
}

// Export encodes cards in the format opts selects.
func Export(cards []domain.CardDraft, opts Options) ([]byte, error) {
	switch opts.Format {
	case FormatJSON:
		return ExportJSON(cards)
	case FormatCSV:
		if len(cards) == 0 {
			return nil, ErrEmptySet
		}
		field, record, err := opts.separators()
		if err != nil {
			return nil, err
		}
		return ExportCSV(cards, field, record)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, opts.Format)
	}
}

// Import decodes data in the format opts selects.
func Import(data []byte, opts Options) ([]domain.CardDraft, error) {
	switch opts.Format {
	case FormatJSON:
		return ImportJSON(data)
	case FormatCSV:
		field, record, err := opts.separators()
		if err != nil {
			return nil, err
		}
		return ImportCSV(data, field, record)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, opts.Format)
	}
}
