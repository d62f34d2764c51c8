package nlp

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/apl83/invoice-nlp/constants"
)

// germanMonths maps German month names (including folded spellings) to the
// English names the date layouts understand.
var germanMonths = map[string]string{
	"januar":    "january",
	"februar":   "february",
	"märz":      "march",
	"maerz":     "march",
	"april":     "april",
	"mai":       "may",
	"juni":      "june",
	"juli":      "july",
	"august":    "august",
	"september": "september",
	"oktober":   "october",
	"november":  "november",
	"dezember":  "december",
}

var reMonthWord = regexp.MustCompile(`[A-Za-zÄÖÜäöüß]+`)

func replaceGermanMonths(value string) string {
	return reMonthWord.ReplaceAllStringFunc(value, func(word string) string {
		if repl, ok := germanMonths[strings.ToLower(word)]; ok {
			return repl
		}
		return word
	})
}

// dateLayouts are tried in order; day-first forms come before month-first so
// ambiguous numeric dates resolve day-before-month.
var dateLayouts = []string{
	"2.1.2006",
	"2.1.06",
	"2/1/2006",
	"2-1-2006",
	"2006-01-02",
	"2. January 2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"2. January",
	"2 January",
	"January 2006",
}

// defaultDateYear fills in for layouts that carry no year, mirroring the
// fixed default date the rest of the system assumes for missing components.
const defaultDateYear = 1900

// ParseDate normalizes assorted date spellings to an ISO 8601 date string.
// German month names are substituted before parsing. Returns false when no
// layout matches.
func ParseDate(value string) (string, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", false
	}
	normalized := replaceGermanMonths(trimmed)
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, normalized)
		if err != nil {
			continue
		}
		if t.Year() == 0 {
			t = time.Date(defaultDateYear, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
		return t.Format("2006-01-02"), true
	}
	return "", false
}

// numberJunk strips currency markers, apostrophes and the space variants OCR
// tends to emit inside amounts (narrow and regular no-break space included).
var (
	numberJunk   = strings.NewReplacer("€", "", "EUR", "", " ", "", " ", "", " ", "", "'", "")
	reNonNumeric = regexp.MustCompile(`[^0-9.\-]`)
)

// ParseNumber cleans up localized amount spellings and parses them as a
// float. When both comma and period appear, the later-occurring one is the
// decimal separator and the other is dropped as a thousands separator; a
// lone comma is a decimal comma. Returns false when nothing numeric remains.
func ParseNumber(value string) (float64, bool) {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0, false
	}
	cleaned = numberJunk.Replace(cleaned)

	hasComma := strings.Contains(cleaned, ",")
	hasPeriod := strings.Contains(cleaned, ".")
	switch {
	case hasComma && hasPeriod:
		if strings.LastIndex(cleaned, ",") > strings.LastIndex(cleaned, ".") {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case hasComma:
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	cleaned = reNonNumeric.ReplaceAllString(cleaned, "")
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// NormalizeValue converts a raw extracted string into the typed value for its
// label. The second return is false when the value does not normalize; the
// caller then emits an empty value with zero confidence.
func NormalizeValue(label, raw string) (any, bool) {
	switch constants.TypeOf(label) {
	case constants.FieldDate:
		iso, ok := ParseDate(raw)
		if !ok {
			return "", false
		}
		return iso, true
	case constants.FieldNumber:
		num, ok := ParseNumber(raw)
		if !ok {
			return "", false
		}
		return num, true
	default:
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			return "", false
		}
		return trimmed, true
	}
}
