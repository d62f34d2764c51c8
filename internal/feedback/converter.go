package feedback

import (
	"encoding/json"
	"unicode"

	"github.com/apl83/invoice-nlp/internal/pending"
)

// Entity is one labeled span in a training sample. It serializes as the
// [start, end, label] triple the trainer consumes; offsets count runes.
type Entity struct {
	Start int
	End   int
	Label string
}

func (e Entity) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]any{e.Start, e.End, e.Label})
}

// TrainingEntry is one line of the training sample file.
type TrainingEntry struct {
	Text     string   `json:"text"`
	Entities []Entity `json:"entities"`
}

// BuildTrainingEntry merges the stored prediction with the user's corrections
// into a training sample. Predicted values come first in their response
// order; a correction replaces the predicted value in place, new labels are
// appended. Values that cannot be located in the text produce no entity.
func BuildTrainingEntry(entry *pending.Entry, corrections []Correction) TrainingEntry {
	values := predictedValues(entry.ResponsePayload)
	for _, c := range corrections {
		values = overlay(values, c)
	}

	result := TrainingEntry{Text: entry.Text, Entities: []Entity{}}
	for _, lv := range values {
		if lv.Value == "" {
			continue
		}
		start, end, ok := findSpan(entry.Text, lv.Value)
		if !ok {
			continue
		}
		result.Entities = append(result.Entities, Entity{Start: start, End: end, Label: lv.Name})
	}
	return result
}

type labeledValue struct {
	Name  string
	Value string
}

// predictedValues pulls the non-empty field values out of the stored response
// payload, preserving field order.
func predictedValues(responsePayload json.RawMessage) []labeledValue {
	var response struct {
		Data struct {
			Fields []struct {
				Name  string `json:"name"`
				Value any    `json:"value"`
			} `json:"fields"`
		} `json:"data"`
	}
	if err := json.Unmarshal(responsePayload, &response); err != nil {
		return nil
	}
	var out []labeledValue
	for _, f := range response.Data.Fields {
		if f.Name == "" {
			continue
		}
		value := stringifyValue(f.Value)
		if value == "" {
			continue
		}
		out = append(out, labeledValue{Name: f.Name, Value: value})
	}
	return out
}

// overlay applies one correction: an existing label keeps its position with
// the corrected value, an unseen label is appended.
func overlay(values []labeledValue, c Correction) []labeledValue {
	for i := range values {
		if values[i].Name == c.Name {
			values[i].Value = c.Value
			return values
		}
	}
	return append(values, labeledValue{Name: c.Name, Value: c.Value})
}

// findSpan locates the first case-insensitive occurrence of value in text and
// returns its rune offsets.
func findSpan(text, value string) (int, int, bool) {
	if text == "" || value == "" {
		return 0, 0, false
	}
	haystack := lowerRunes(text)
	needle := lowerRunes(value)
	if len(needle) > len(haystack) {
		return 0, 0, false
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if runesEqual(haystack[i:i+len(needle)], needle) {
			return i, i + len(needle), true
		}
	}
	return 0, 0, false
}

func lowerRunes(s string) []rune {
	runes := []rune(s)
	for i, r := range runes {
		runes[i] = unicode.ToLower(r)
	}
	return runes
}

func runesEqual(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
