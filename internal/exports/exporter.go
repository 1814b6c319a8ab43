package exports

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"escape-planner/internal/plans"
	"escape-planner/internal/shared/telemetry"
)

const (
	// Filename is the download name of every exported plan.
	Filename = "Quit-My-Job-Escape-Plan.pdf"
	// MimeType is the content type of exported plans.
	MimeType = "application/pdf"

	margin       = 10.0
	bottomMargin = 15.0
	lineHeight   = 10.0
	fontSize     = 12.0
	fontFamily   = "Helvetica"

	// LinesPerPage is how many unwrapped lines fit on one A4 page: (297-10-15)/10.
	LinesPerPage = 27
)

// documentDate is stamped into every file so identical plans produce identical bytes.
var documentDate = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// Exporter renders plan text as an A4 PDF, one wrapped paragraph per input line.
type Exporter struct {
	// Strict rejects text the document font cannot encode instead of substituting it.
	Strict bool
	Title  string
}

func NewExporter(strict bool) *Exporter {
	return &Exporter{Strict: strict, Title: "Quit My Job Escape Plan"}
}

// Export renders plan.Text. The result depends only on the text.
func (e *Exporter) Export(plan plans.GeneratedPlan) (plans.ExportedDocument, error) {
	lines := SplitLines(plan.Text)
	encoded := make([]string, len(lines))
	replaced := 0
	for i, line := range lines {
		res := encodeLine(line)
		if res.replaced > 0 && e.Strict {
			return plans.ExportedDocument{}, &plans.ExportError{
				Kind:   plans.EncodingUnsupported,
				Detail: "line " + strconv.Itoa(i+1) + " contains " + runeLabel(res.first),
			}
		}
		encoded[i] = res.text
		replaced += res.replaced
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, bottomMargin)
	pdf.SetCreationDate(documentDate)
	pdf.SetModificationDate(documentDate)
	pdf.SetCatalogSort(true)
	if e.Title != "" {
		pdf.SetTitle(e.Title, true)
	}
	pdf.AddPage()
	pdf.SetFont(fontFamily, "", fontSize)
	for _, line := range encoded {
		pdf.MultiCell(0, lineHeight, line, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return plans.ExportedDocument{}, &plans.ExportError{Kind: plans.RenderFailed, Detail: "write pdf", Err: err}
	}

	if replaced > 0 {
		telemetry.Warn("export.glyphs_replaced", map[string]any{"count": replaced, "lines": len(lines)})
	}
	return plans.ExportedDocument{
		Bytes:    buf.Bytes(),
		Filename: Filename,
		MimeType: MimeType,
		Pages:    pdf.PageCount(),
		Replaced: replaced,
	}, nil
}

// SplitLines splits on \r\n or \n. A single trailing newline does not add an empty line.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}

// MinPages is the smallest page count a document with n lines can have.
func MinPages(n int) int {
	if n <= 0 {
		return 1
	}
	return (n + LinesPerPage - 1) / LinesPerPage
}
