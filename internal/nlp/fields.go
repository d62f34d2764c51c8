package nlp

import (
	"github.com/apl83/invoice-nlp/constants"
)

// Extraction is one label/value pair the model produced, in recognition
// order. Order matters: confidence derivation consumes token scores in the
// order extractions are processed.
type Extraction struct {
	Label string
	Value string
}

// Field is one entry of an extraction result.
type Field struct {
	Name       string  `json:"name"`
	Value      any     `json:"value"`
	Confidence float64 `json:"confidence"`
}

// DeriveConfidences computes a per-label confidence by matching each
// extraction's raw value against the document token index. Labels whose
// value matched no token are absent from the result.
func DeriveConfidences(extractions []Extraction, idx *ConfidenceIndex) map[string]float64 {
	result := make(map[string]float64)
	if idx == nil {
		return result
	}
	for _, ex := range extractions {
		if ex.Value == "" {
			continue
		}
		if conf, ok := idx.Consume(ex.Value); ok {
			result[ex.Label] = conf
		}
	}
	return result
}

// BuildFields produces the full field list in canonical order. Every label
// of the field table appears exactly once; labels without an extraction or
// whose value does not normalize get an empty value and zero confidence.
// Returns the number of non-empty values.
func BuildFields(extractions []Extraction, defaultConfidence *float64, confidences map[string]float64) ([]Field, int) {
	extracted := make(map[string]string, len(extractions))
	for _, ex := range extractions {
		if _, dup := extracted[ex.Label]; dup {
			continue
		}
		extracted[ex.Label] = ex.Value
	}

	base := 0.0
	if defaultConfidence != nil {
		base = *defaultConfidence
	}

	fields := make([]Field, 0, len(constants.FieldSpecs))
	hits := 0
	for _, name := range constants.FieldOrder() {
		raw, ok := extracted[name]
		if !ok {
			fields = append(fields, Field{Name: name, Value: "", Confidence: 0.0})
			continue
		}
		value, ok := NormalizeValue(name, raw)
		if !ok {
			fields = append(fields, Field{Name: name, Value: "", Confidence: 0.0})
			continue
		}
		confidence := base
		if c, ok := confidences[name]; ok {
			confidence = c
		}
		hits++
		fields = append(fields, Field{Name: name, Value: value, Confidence: confidence})
	}
	return fields, hits
}

// ValueMap flattens a field list into label -> value for classification and
// feedback handling.
func ValueMap(fields []Field) map[string]any {
	m := make(map[string]any, len(fields))
	for _, f := range fields {
		m[f.Name] = f.Value
	}
	return m
}
