package ocr

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"golang.org/x/text/unicode/norm"
)

// digitalPageTexts extracts the embedded text of every page via structural
// parsing. The reader panics on some malformed files, so recover and report
// that as a plain error.
func digitalPageTexts(data []byte) (texts []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			texts = nil
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	texts = make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			texts = append(texts, "")
			continue
		}
		txt, err := p.GetPlainText(nil)
		if err != nil {
			texts = append(texts, "")
			continue
		}
		texts = append(texts, norm.NFC.String(txt))
	}
	return texts, nil
}

// pdfPageCount asks pdfcpu for the page count; used when the structural
// reader cannot open the file but rasterization still can.
func pdfPageCount(data []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return 0, fmt.Errorf("pdfcpu page count: %w", err)
	}
	return n, nil
}

// digitalPage builds a Page from embedded text. Width and height stay 0
// because no rasterization happened; the fixed high confidence marks the text
// as trustworthy.
func digitalPage(pageNumber int, text string, dpi int) Page {
	var lines []Line
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, Line{LineText: norm.NFC.String(l), Words: []Word{}})
	}
	return Page{
		PageNumber: pageNumber,
		Width:      0,
		Height:     0,
		DPI:        dpi,
		CoordUnit:  "px",
		Confidence: digitalTextConfidence,
		Lines:      lines,
	}
}

// emptyPage marks a page that could not be processed at all.
func emptyPage(pageNumber, dpi int) Page {
	return Page{
		PageNumber: pageNumber,
		DPI:        dpi,
		CoordUnit:  "px",
		Confidence: 0.0,
		Lines:      []Line{},
	}
}
