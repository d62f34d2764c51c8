package ocr

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// tesseract TSV column layout:
// level page_num block_num par_num line_num word_num left top width height conf text
const (
	tsvColLevel  = 0
	tsvColBlock  = 2
	tsvColPar    = 3
	tsvColLine   = 4
	tsvColLeft   = 6
	tsvColTop    = 7
	tsvColWidth  = 8
	tsvColHeight = 9
	tsvColConf   = 10
	tsvColText   = 11
	tsvColumns   = 12

	levelPage = 1
	levelWord = 5
)

// token is one TSV row reduced to the fields line reconstruction needs.
type token struct {
	Level  int
	Block  int
	Par    int
	Line   int
	Left   int
	Top    int
	Width  int
	Height int
	Conf   *float64
	Text   string
}

// parseTSV decodes tesseract TSV output into tokens. Malformed rows are kept
// with zeroed fields rather than dropped, matching the tolerant behavior the
// rest of the pipeline expects.
func parseTSV(out string) []token {
	lines := strings.Split(out, "\n")
	tokens := make([]token, 0, len(lines))
	for i, ln := range lines {
		if i == 0 || strings.TrimSpace(ln) == "" {
			continue // header
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < tsvColumns {
			continue
		}
		tokens = append(tokens, token{
			Level:  parseIntField(cols[tsvColLevel]),
			Block:  parseIntField(cols[tsvColBlock]),
			Par:    parseIntField(cols[tsvColPar]),
			Line:   parseIntField(cols[tsvColLine]),
			Left:   parseIntField(cols[tsvColLeft]),
			Top:    parseIntField(cols[tsvColTop]),
			Width:  parseIntField(cols[tsvColWidth]),
			Height: parseIntField(cols[tsvColHeight]),
			Conf:   parseConfField(cols[tsvColConf]),
			Text:   cols[tsvColText],
		})
	}
	return tokens
}

// parseIntField parses an integer cell, defaulting to 0 when empty or malformed.
func parseIntField(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return v
}

// parseConfField parses a confidence cell; nil means the engine gave none.
func parseConfField(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &v
}

type lineKey struct {
	Block int
	Par   int
	Line  int
}

// reconstructPage groups word-level tokens into lines and computes the page
// confidence and relative word geometry.
//
// Grouping key is (block, par, line); groups are emitted in ascending key
// order with words sorted by their left edge. Confidence is the mean of all
// non-negative word confidences, scaled to 0..1.
func reconstructPage(tokens []token, pageNumber, width, height, dpi int) Page {
	groups := make(map[lineKey][]Word)
	var confScores []float64

	for _, t := range tokens {
		if t.Level != levelWord {
			continue
		}
		if t.Conf != nil && *t.Conf >= 0 {
			confScores = append(confScores, *t.Conf)
		}
		text := strings.TrimSpace(t.Text)
		if text == "" {
			continue
		}
		key := lineKey{Block: t.Block, Par: t.Par, Line: t.Line}
		groups[key] = append(groups[key], Word{
			Text:   text,
			Left:   t.Left,
			Top:    t.Top,
			Width:  t.Width,
			Height: t.Height,
			Conf:   t.Conf,
		})
	}

	keys := make([]lineKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Block != b.Block {
			return a.Block < b.Block
		}
		if a.Par != b.Par {
			return a.Par < b.Par
		}
		return a.Line < b.Line
	})

	lines := make([]Line, 0, len(keys))
	for _, k := range keys {
		words := groups[k]
		sort.SliceStable(words, func(i, j int) bool { return words[i].Left < words[j].Left })

		texts := make([]string, len(words))
		for i, w := range words {
			texts[i] = w.Text
		}
		for i := range words {
			words[i].XRel = relCoord(words[i].Left, width)
			words[i].YRel = relCoord(words[i].Top, height)
			words[i].WRel = relCoord(words[i].Width, width)
			words[i].HRel = relCoord(words[i].Height, height)
		}
		lines = append(lines, Line{LineText: strings.Join(texts, " "), Words: words})
	}

	return Page{
		PageNumber: pageNumber,
		Width:      width,
		Height:     height,
		DPI:        dpi,
		CoordUnit:  "px",
		Confidence: pageConfidence(confScores),
		Lines:      lines,
	}
}

// pageConfidence averages raw scores and normalizes to 0..1. Tesseract
// reports 0..100, so a mean above 1.0 is scaled down.
func pageConfidence(scores []float64) float64 {
	if len(scores) == 0 {
		return 0.0
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	avg := sum / float64(len(scores))
	if avg > 1.0 {
		avg = avg / 100.0
	}
	return round(avg, 4)
}

// pageDimensions pulls the rendered image size from the page-level TSV row.
func pageDimensions(tokens []token) (width, height int) {
	for _, t := range tokens {
		if t.Level == levelPage {
			return t.Width, t.Height
		}
	}
	return 0, 0
}

func relCoord(abs, dim int) float64 {
	if dim == 0 {
		return 0
	}
	return round(float64(abs)/float64(dim), 6)
}

func round(v float64, places int) float64 {
	scale := math.Pow10(places)
	return math.Round(v*scale) / scale
}
