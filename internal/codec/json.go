package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/phrazzld/memoria/internal/domain"
)

// ExportJSON writes the cards as a two-space indented array of
// {"question", "answer"} objects.
func ExportJSON(cards []domain.CardDraft) ([]byte, error) {
	if len(cards) == 0 {
		return nil, ErrEmptySet
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cards); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// ImportJSON reads an array of objects and keeps those whose question and
// answer are both truthy: a non-empty string, a non-zero number, true, an
// object or an array. Non-string values are kept in their JSON text form.
// Malformed input yields a *ParseError and no cards.
func ImportJSON(data []byte) ([]domain.CardDraft, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, newJSONParseError(err)
	}

	var drafts []domain.CardDraft
	for _, raw := range elements {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
			continue
		}

		question, ok := truthyText(obj["question"])
		if !ok {
			continue
		}
		answer, ok := truthyText(obj["answer"])
		if !ok {
			continue
		}

		draft, err := domain.NewCardDraft(question, answer)
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

// truthyText reports whether raw holds a truthy JSON value and returns its
// text: the string itself for strings, the JSON encoding otherwise.
func truthyText(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return "", false
	}

	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, val != ""
	case bool:
		return "true", val
	case json.Number:
		f, err := val.Float64()
		if err != nil || f == 0 {
			return "", false
		}
		return val.String(), true
	default:
		return strings.TrimSpace(string(compact(raw))), true
	}
}

func compact(raw json.RawMessage) []byte {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return buf.Bytes()
}

func newJSONParseError(err error) *ParseError {
	pe := &ParseError{Format: FormatJSON, Reason: err.Error(), Offset: -1}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		pe.Offset = syntaxErr.Offset
	case errors.As(err, &typeErr):
		pe.Offset = typeErr.Offset
		pe.Reason = "expected a JSON array of flashcards, got " + typeErr.Value
	}
	return pe
}
