// Package docx extracts plain text from Office Open XML word documents.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const documentPart = "word/document.xml"

// maxDocumentBytes caps the decompressed size of the document part.
const maxDocumentBytes = 50 << 20

// ErrInvalidDocument is returned when the data is not a readable docx file.
var ErrInvalidDocument = errors.New("invalid docx document")

// ExtractText returns the text of a docx file, one line per paragraph. Tabs
// and breaks inside a paragraph become a tab and a newline.
func ExtractText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	var part *zip.File
	for _, f := range zr.File {
		if f.Name == documentPart {
			part = f
			break
		}
	}
	if part == nil {
		return "", fmt.Errorf("%w: missing %s", ErrInvalidDocument, documentPart)
	}

	rc, err := part.Open()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	defer func() { _ = rc.Close() }()

	text, err := paragraphs(io.LimitReader(rc, maxDocumentBytes))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return text, nil
}

// paragraphs walks the WordprocessingML token stream collecting w:t runs.
func paragraphs(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var (
		out    []string
		line   strings.Builder
		inText bool
		inPara bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inPara = true
				line.Reset()
			case "t":
				inText = true
			case "tab":
				line.WriteByte('\t')
			case "br", "cr":
				line.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if inPara {
					out = append(out, line.String())
				}
				inPara = false
			}
		case xml.CharData:
			if inText {
				line.Write(t)
			}
		}
	}

	return strings.TrimSpace(strings.Join(out, "\n")), nil
}
