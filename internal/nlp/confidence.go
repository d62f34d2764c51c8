package nlp

import (
	"regexp"
	"strings"

	"github.com/apl83/invoice-nlp/internal/ocr"
)

var reTokenStrip = regexp.MustCompile(`[^0-9a-zA-Z]+`)

// normalizeToken reduces a token to lowercase alphanumerics so OCR output and
// extracted field text compare equal despite punctuation and casing.
func normalizeToken(v string) string {
	return reTokenStrip.ReplaceAllString(strings.ToLower(v), "")
}

// ConfidenceIndex maps normalized tokens to the confidence scores of their
// occurrences across the document, in appearance order.
//
// Consume removes a score per matched token, so one OCR token never backs two
// extracted fields. That makes field processing order significant.
type ConfidenceIndex struct {
	scores map[string][]float64
}

// NewConfidenceIndex walks all pages, lines and words of the document and
// collects raw 0..100 scores per normalized token. Words without a
// confidence value are skipped.
func NewConfidenceIndex(doc *ocr.Document) *ConfidenceIndex {
	idx := &ConfidenceIndex{scores: make(map[string][]float64)}
	if doc == nil {
		return idx
	}
	for _, page := range doc.Result.PagesStructure {
		for _, line := range page.Lines {
			for _, word := range line.Words {
				if word.Conf == nil {
					continue
				}
				raw := strings.TrimSpace(word.Text)
				if raw == "" {
					continue
				}
				for _, part := range strings.Fields(raw) {
					tok := normalizeToken(part)
					if tok == "" {
						continue
					}
					idx.scores[tok] = append(idx.scores[tok], *word.Conf)
				}
			}
		}
	}
	return idx
}

// Consume derives a confidence for a field value: each whitespace-separated
// piece pops the oldest remaining score for its normalized token. Returns
// false when no piece matched at all.
func (idx *ConfidenceIndex) Consume(value string) (float64, bool) {
	var matched []float64
	for _, part := range strings.Fields(value) {
		tok := normalizeToken(part)
		if tok == "" {
			continue
		}
		if queue := idx.scores[tok]; len(queue) > 0 {
			matched = append(matched, queue[0])
			idx.scores[tok] = queue[1:]
		}
	}
	if len(matched) == 0 {
		return 0, false
	}
	var sum float64
	for _, s := range matched {
		sum += s
	}
	avg := sum / float64(len(matched)) / 100.0
	if avg < 0 {
		avg = 0
	}
	if avg > 1 {
		avg = 1
	}
	return avg, true
}
