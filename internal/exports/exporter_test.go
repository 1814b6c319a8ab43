package exports

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"escape-planner/internal/plans"
)

func squash(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func TestExportProducesPDF(t *testing.T) {
	text := "Week 1: Pitch three editors\nWeek 2: Publish two samples\r\nWeek 3: Give notice"
	doc, err := NewExporter(false).Export(plans.GeneratedPlan{Text: text})
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(doc.Bytes, []byte("%PDF-")))
	assert.Equal(t, "Quit-My-Job-Escape-Plan.pdf", doc.Filename)
	assert.Equal(t, "application/pdf", doc.MimeType)
	assert.Equal(t, 1, doc.Pages)
	assert.Zero(t, doc.Replaced)

	info, err := Inspect(doc.Bytes)
	require.NoError(t, err)
	assert.Equal(t, 1, info.Pages)
	assertLinesInOrder(t, info.Text, SplitLines(text))
}

// assertLinesInOrder checks each line appears after the previous one in the extracted text.
func assertLinesInOrder(t *testing.T, extracted string, lines []string) {
	t.Helper()
	got := squash(extracted)
	pos := 0
	for i, line := range lines {
		want := squash(line)
		idx := strings.Index(got[pos:], want)
		if idx < 0 {
			t.Fatalf("line %d %q missing or out of order after offset %d", i+1, line, pos)
		}
		pos += idx + len(want)
	}
}

func TestExportMultiPageRoundTripKeepsOrder(t *testing.T) {
	lines := make([]string, 60)
	for i := range lines {
		lines[i] = fmt.Sprintf("Line%03dMarker", i+1)
	}
	doc, err := NewExporter(true).Export(plans.GeneratedPlan{Text: strings.Join(lines, "\n")})
	require.NoError(t, err)
	assert.Equal(t, MinPages(len(lines)), doc.Pages)
	assert.Equal(t, 3, doc.Pages)

	info, err := Inspect(doc.Bytes)
	require.NoError(t, err)
	assert.Equal(t, doc.Pages, info.Pages)
	assertLinesInOrder(t, info.Text, lines)
}

func TestExportPageCountGrowsWithLines(t *testing.T) {
	var lines []string
	for i := 1; i <= 100; i++ {
		lines = append(lines, fmt.Sprintf("Step %d", i))
	}
	doc, err := NewExporter(false).Export(plans.GeneratedPlan{Text: strings.Join(lines, "\n")})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, doc.Pages, MinPages(len(lines)))

	info, err := Inspect(doc.Bytes)
	require.NoError(t, err)
	assert.Equal(t, doc.Pages, info.Pages)
}

func TestExportIsDeterministic(t *testing.T) {
	exp := NewExporter(false)
	a, err := exp.Export(plans.GeneratedPlan{Text: "same text"})
	require.NoError(t, err)
	b, err := exp.Export(plans.GeneratedPlan{Text: "same text"})
	require.NoError(t, err)
	assert.True(t, bytes.Equal(a.Bytes, b.Bytes))
}

func TestExportEmptyPlanStillOnePage(t *testing.T) {
	doc, err := NewExporter(false).Export(plans.GeneratedPlan{Text: ""})
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Pages)
}

func TestExportReplacesUnencodableGlyphs(t *testing.T) {
	doc, err := NewExporter(false).Export(plans.GeneratedPlan{Text: "Launch \U0001F680 now → profit"})
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Replaced)

	info, err := Inspect(doc.Bytes)
	require.NoError(t, err)
	assert.Contains(t, squash(info.Text), "now->profit")
}

func TestExportStrictRejectsUnencodableGlyphs(t *testing.T) {
	_, err := NewExporter(true).Export(plans.GeneratedPlan{Text: "ok\nLaunch \U0001F680"})
	var exportErr *plans.ExportError
	require.True(t, errors.As(err, &exportErr))
	assert.Equal(t, plans.EncodingUnsupported, exportErr.Kind)
	assert.Contains(t, exportErr.Detail, "line 2")
	assert.Contains(t, exportErr.Detail, "U+1F680")
}

func TestExportStrictAcceptsWindows1252(t *testing.T) {
	doc, err := NewExporter(true).Export(plans.GeneratedPlan{Text: "“Save €500” – then quit…"})
	require.NoError(t, err)
	assert.Zero(t, doc.Replaced)
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "", "c"}, SplitLines("a\r\nb\n\nc\n"))
	assert.Equal(t, []string{""}, SplitLines(""))
}

func TestInspectRejectsNonPDF(t *testing.T) {
	_, err := Inspect([]byte("hello"))
	assert.Error(t, err)
}
