package codec

import (
	"strings"

	"github.com/phrazzld/memoria/internal/domain"
)

// ExportCSV writes one record per card, "question"F"answer", with embedded
// quotes doubled, records joined by recordSep. Separators are used verbatim;
// see UnescapeSeparator for typed escapes.
func ExportCSV(cards []domain.CardDraft, fieldSep, recordSep string) ([]byte, error) {
	if len(cards) == 0 {
		return nil, ErrEmptySet
	}
	if fieldSep == "" || recordSep == "" {
		return nil, ErrEmptySeparator
	}

	var b strings.Builder
	for i, c := range cards {
		if i > 0 {
			b.WriteString(recordSep)
		}
		b.WriteString(quote(c.Question))
		b.WriteString(fieldSep)
		b.WriteString(quote(c.Answer))
	}
	return []byte(b.String()), nil
}

// ImportCSV splits data into records on recordSep and each record into fields
// on fieldSep. The first two fields become question and answer after one layer
// of surrounding quotes is removed and doubled quotes are collapsed. Blank
// records, records with fewer than two fields and records with an empty
// question or answer are skipped.
func ImportCSV(data []byte, fieldSep, recordSep string) ([]domain.CardDraft, error) {
	if fieldSep == "" || recordSep == "" {
		return nil, ErrEmptySeparator
	}

	var drafts []domain.CardDraft
	for _, record := range strings.Split(string(data), recordSep) {
		record = strings.TrimSpace(record)
		if record == "" {
			continue
		}

		fields := strings.Split(record, fieldSep)
		if len(fields) < 2 {
			continue
		}

		draft, err := domain.NewCardDraft(unquote(fields[0]), unquote(fields[1]))
		if err != nil {
			continue
		}
		drafts = append(drafts, draft)
	}

	if len(drafts) == 0 {
		return nil, ErrNoValidCards
	}
	return drafts, nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	return strings.ReplaceAll(s, `""`, `"`)
}
