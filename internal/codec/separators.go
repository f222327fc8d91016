package codec

import "strings"

// Separator presets offered for CSV export. Custom separators override them.
var (
	FieldSeparatorPresets  = []string{",", ";", "|", ":"}
	RecordSeparatorPresets = []string{`\n`, `\n\n`, "---"}
)

// UnescapeSeparator turns the two-character escapes \n, \t, \r and \\ into
// the characters they name. Other backslashes are kept as typed.
func UnescapeSeparator(s string) (string, error) {
	if s == "" {
		return "", ErrEmptySeparator
	}
	if !strings.Contains(s, `\`) {
		return s, nil
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		switch s[i+1] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\\':
			b.WriteByte('\\')
		default:
			b.WriteByte(c)
			continue
		}
		i++
	}
	return b.String(), nil
}

// ResolveSeparator returns custom when set, otherwise preset.
func ResolveSeparator(preset, custom string) string {
	if custom != "" {
		return custom
	}
	return preset
}
