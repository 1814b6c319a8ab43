package exports

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// Inspection is what a reader recovers from an exported document.
type Inspection struct {
	Pages int
	Text  string
}

// Inspect parses an exported PDF and extracts its plain text.
func Inspect(data []byte) (Inspection, error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return Inspection{}, errors.New("not a pdf: missing %PDF- signature")
	}
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Inspection{}, fmt.Errorf("open pdf: %w", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return Inspection{}, fmt.Errorf("extract pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return Inspection{}, fmt.Errorf("read pdf text: %w", err)
	}
	return Inspection{Pages: reader.NumPage(), Text: buf.String()}, nil
}
