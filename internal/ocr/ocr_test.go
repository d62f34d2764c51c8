package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apl83/invoice-nlp/internal/common"
)

// stubRunner simulates pdftoppm and tesseract: rasterization drops PNG
// placeholder files next to the staged PDF, OCR returns canned output.
type stubRunner struct {
	pageCount int
	text      string
	tsv       string
}

func (r stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	if strings.Contains(name, "pdftoppm") {
		prefix := args[len(args)-1]
		for i := 1; i <= r.pageCount; i++ {
			if err := os.WriteFile(fmt.Sprintf("%s-%d.png", prefix, i), []byte("png"), 0o600); err != nil {
				return nil, nil, err
			}
		}
		return nil, nil, nil
	}
	if slices.Contains(args, "tsv") {
		return []byte(r.tsv), nil, nil
	}
	return []byte(r.text), nil, nil
}

func newTestEngine(runner Runner, available bool) *Engine {
	e := NewEngine(Config{DPI: 150}, nil)
	e.runner = runner
	e.lookPath = func(string) (string, error) {
		if available {
			return "/usr/bin/stub", nil
		}
		return "", errors.New("not found")
	}
	return e
}

func TestProcessPDFUnreadableDocument(t *testing.T) {
	engine := newTestEngine(stubRunner{}, false)

	_, err := engine.ProcessPDF(context.Background(), []byte("not a pdf"))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrDocumentUnreadable)
}

func TestProcessPDFBlindRasterization(t *testing.T) {
	tsv := strings.Join([]string{
		tsvHeader,
		tsvRow("1", "1", "0", "0", "0", "0", "0", "0", "1000", "2000", "-1", ""),
		tsvRow("5", "1", "1", "1", "1", "1", "10", "20", "100", "30", "91", "Rechnung"),
	}, "\n")
	engine := newTestEngine(stubRunner{pageCount: 2, text: "Rechnung\n", tsv: tsv}, true)

	doc, err := engine.ProcessPDF(context.Background(), []byte("not a pdf"))
	require.NoError(t, err)

	assert.NotEmpty(t, doc.OCRID)
	assert.Equal(t, 2, doc.Pages)
	require.Len(t, doc.Result.PagesStructure, 2)

	page := doc.Result.PagesStructure[0]
	assert.Equal(t, 1, page.PageNumber)
	assert.Equal(t, 1000, page.Width)
	assert.Equal(t, 2000, page.Height)
	assert.InDelta(t, 0.91, page.Confidence, 1e-9)
	require.Len(t, page.Lines, 1)
	assert.Equal(t, "Rechnung", page.Lines[0].LineText)

	assert.Equal(t, "Rechnung\n\n\nRechnung\n", doc.OCRText)
}

func TestProcessPDFBlindRespectsMaxPages(t *testing.T) {
	engine := newTestEngine(stubRunner{pageCount: 5, text: "x", tsv: tsvHeader}, true)
	engine.cfg.MaxPages = 2

	doc, err := engine.ProcessPDF(context.Background(), []byte("not a pdf"))
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Pages)
	assert.Len(t, doc.Result.PagesStructure, 2)
}

func TestDigitalPageSynthesizesLinesWithoutWords(t *testing.T) {
	page := digitalPage(3, "Rechnung Nr. 42\n\n  \nGesamtbetrag 100,00 EUR", 300)

	assert.Equal(t, 3, page.PageNumber)
	assert.Zero(t, page.Width)
	assert.Zero(t, page.Height)
	assert.InDelta(t, 0.99, page.Confidence, 1e-9)

	require.Len(t, page.Lines, 2)
	assert.Equal(t, "Rechnung Nr. 42", page.Lines[0].LineText)
	assert.Empty(t, page.Lines[0].Words)
}

func TestEmptyPage(t *testing.T) {
	page := emptyPage(2, 300)
	assert.Equal(t, 2, page.PageNumber)
	assert.Zero(t, page.Confidence)
	assert.Empty(t, page.Lines)
}
