package ocr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tsvHeader = "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext"

func tsvRow(cols ...string) string {
	return strings.Join(cols, "\t")
}

func TestParseTSVSkipsHeaderAndShortRows(t *testing.T) {
	out := strings.Join([]string{
		tsvHeader,
		tsvRow("5", "1", "1", "1", "1", "1", "10", "20", "30", "40", "95.5", "Rechnung"),
		"short\trow",
		"",
	}, "\n")

	tokens := parseTSV(out)
	require.Len(t, tokens, 1)
	assert.Equal(t, "Rechnung", tokens[0].Text)
	assert.Equal(t, 10, tokens[0].Left)
	require.NotNil(t, tokens[0].Conf)
	assert.InDelta(t, 95.5, *tokens[0].Conf, 1e-9)
}

func TestParseTSVMalformedCellsDefaultToZero(t *testing.T) {
	out := strings.Join([]string{
		tsvHeader,
		tsvRow("5", "1", "x", "1", "1", "1", "bad", "20", "30", "40", "notanumber", "Wort"),
	}, "\n")

	tokens := parseTSV(out)
	require.Len(t, tokens, 1)
	assert.Equal(t, 0, tokens[0].Block)
	assert.Equal(t, 0, tokens[0].Left)
	assert.Nil(t, tokens[0].Conf)
}

func TestReconstructPageGroupsAndSortsLines(t *testing.T) {
	out := strings.Join([]string{
		tsvHeader,
		// second line of first block, out of order
		tsvRow("5", "1", "1", "1", "2", "1", "5", "60", "40", "12", "90", "Betrag"),
		// first line, words out of left order
		tsvRow("5", "1", "1", "1", "1", "2", "100", "10", "50", "12", "96", "Nr."),
		tsvRow("5", "1", "1", "1", "1", "1", "5", "10", "80", "12", "92", "Rechnung"),
		// later block
		tsvRow("5", "1", "2", "1", "1", "1", "5", "200", "60", "12", "88", "Summe"),
	}, "\n")

	page := reconstructPage(parseTSV(out), 1, 1000, 2000, 300)

	require.Len(t, page.Lines, 3)
	assert.Equal(t, "Rechnung Nr.", page.Lines[0].LineText)
	assert.Equal(t, "Betrag", page.Lines[1].LineText)
	assert.Equal(t, "Summe", page.Lines[2].LineText)
	assert.Equal(t, 1, page.PageNumber)
	assert.Equal(t, "px", page.CoordUnit)

	// mean(90, 96, 92, 88) = 91.5 -> 0.915
	assert.InDelta(t, 0.915, page.Confidence, 1e-9)
}

func TestReconstructPageRelativeCoordinates(t *testing.T) {
	out := strings.Join([]string{
		tsvHeader,
		tsvRow("5", "1", "1", "1", "1", "1", "250", "500", "100", "50", "80", "Wort"),
	}, "\n")

	page := reconstructPage(parseTSV(out), 1, 1000, 2000, 300)
	require.Len(t, page.Lines, 1)
	require.Len(t, page.Lines[0].Words, 1)

	w := page.Lines[0].Words[0]
	assert.InDelta(t, 0.25, w.XRel, 1e-9)
	assert.InDelta(t, 0.25, w.YRel, 1e-9)
	assert.InDelta(t, 0.1, w.WRel, 1e-9)
	assert.InDelta(t, 0.025, w.HRel, 1e-9)

	for _, rel := range []float64{w.XRel, w.YRel, w.WRel, w.HRel} {
		assert.GreaterOrEqual(t, rel, 0.0)
		assert.LessOrEqual(t, rel, 1.0)
	}
}

func TestReconstructPageZeroDimensionsYieldZeroRel(t *testing.T) {
	out := strings.Join([]string{
		tsvHeader,
		tsvRow("5", "1", "1", "1", "1", "1", "250", "500", "100", "50", "80", "Wort"),
	}, "\n")

	page := reconstructPage(parseTSV(out), 1, 0, 0, 300)
	require.Len(t, page.Lines, 1)
	w := page.Lines[0].Words[0]
	assert.Zero(t, w.XRel)
	assert.Zero(t, w.YRel)
}

func TestReconstructPageCountsNegativeConfWordsOut(t *testing.T) {
	out := strings.Join([]string{
		tsvHeader,
		// tesseract emits conf -1 for non-word rows that still reach word level
		tsvRow("5", "1", "1", "1", "1", "1", "5", "10", "80", "12", "-1", "Wort"),
		tsvRow("5", "1", "1", "1", "1", "2", "90", "10", "80", "12", "50", "mehr"),
	}, "\n")

	page := reconstructPage(parseTSV(out), 1, 1000, 2000, 300)
	assert.InDelta(t, 0.5, page.Confidence, 1e-9)
}

func TestReconstructPageEmptyWordStillCountsConfidence(t *testing.T) {
	// whitespace-only tokens contribute their confidence but produce no word
	out := strings.Join([]string{
		tsvHeader,
		tsvRow("5", "1", "1", "1", "1", "1", "5", "10", "80", "12", "100", " "),
		tsvRow("5", "1", "1", "1", "1", "2", "90", "10", "80", "12", "50", "Wort"),
	}, "\n")

	page := reconstructPage(parseTSV(out), 1, 1000, 2000, 300)
	require.Len(t, page.Lines, 1)
	assert.Equal(t, "Wort", page.Lines[0].LineText)
	assert.InDelta(t, 0.75, page.Confidence, 1e-9)
}

func TestPageConfidenceEmptyAndScaling(t *testing.T) {
	assert.Zero(t, pageConfidence(nil))
	// already-normalized scores stay untouched
	assert.InDelta(t, 0.9, pageConfidence([]float64{0.9}), 1e-9)
	// raw tesseract scale is divided down
	assert.InDelta(t, 0.9, pageConfidence([]float64{90}), 1e-9)
	// rounding to 4 places
	assert.InDelta(t, 0.3333, pageConfidence([]float64{33.333333}), 1e-9)
}

func TestPageDimensions(t *testing.T) {
	out := strings.Join([]string{
		tsvHeader,
		tsvRow("1", "1", "0", "0", "0", "0", "0", "0", "2480", "3508", "-1", ""),
		tsvRow("5", "1", "1", "1", "1", "1", "5", "10", "80", "12", "90", "Wort"),
	}, "\n")

	w, h := pageDimensions(parseTSV(out))
	assert.Equal(t, 2480, w)
	assert.Equal(t, 3508, h)
}
