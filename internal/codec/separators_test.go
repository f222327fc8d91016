package codec

import (
	"path/filepath"
	"testing"

	"github.com/phrazzld/memoria/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnescapeSeparator(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: ",", want: ","},
		{in: `\n`, want: "\n"},
		{in: `\n\n`, want: "\n\n"},
		{in: `\t`, want: "\t"},
		{in: `\r\n`, want: "\r\n"},
		{in: `\\`, want: `\`},
		{in: `a\qb`, want: `a\qb`},
		{in: `trailing\`, want: `trailing\`},
		{in: "---", want: "---"},
		{in: "\n", want: "\n"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := UnescapeSeparator(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := UnescapeSeparator("")
	assert.ErrorIs(t, err, ErrEmptySeparator)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestResolveSeparator(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ";", ResolveSeparator(";", ""))
	assert.Equal(t, "##", ResolveSeparator(";", "##"))
}

func TestFormats(t *testing.T) {
	t.Parallel()

	f, err := FormatFromFilename("deck.CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = FormatFromFilename("/tmp/cards.json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = FormatFromFilename("notes.txt")
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
	_, err = FormatFromFilename("README")
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)

	assert.Equal(t, "Biology_export.csv", ExportFilename("Biology", FormatCSV))
	assert.Equal(t, "flashcards_export.json", ExportFilename("  ", FormatJSON))
}

func TestExportFilename_StaysInDirectory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
	}{
		{"../x", "__x_export.csv"},
		{"a/b", "a_b_export.csv"},
		{`..\..\evil`, "____evil_export.csv"},
		{"/etc/passwd", "_etc_passwd_export.csv"},
		{"v1..2", "v1_2_export.csv"},
		{".", "flashcards_export.csv"},
		{"Chapter 1.2", "Chapter 1.2_export.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExportFilename(tt.name, FormatCSV)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, filepath.Base(got))
		})
	}
}
