// Package feedback turns user corrections of extraction results into
// training samples for the entity model.
package feedback

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Correction is one corrected label/value pair, in submission order. An empty
// value is meaningful: it erases the predicted value for that label.
type Correction struct {
	Name  string
	Value string
}

// correctionKeys are probed in order; the first key present wins.
var correctionKeys = []string{"corrections", "labels", "fields"}

// ExtractCorrections pulls corrected field values out of a feedback payload.
// Clients send corrections under one of several keys, either as an object of
// label -> value or as a list of {name, value} pairs, optionally nested one
// level down under a "data" wrapper. Unusable payloads yield an empty list.
func ExtractCorrections(payload json.RawMessage) []Correction {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(payload, &top); err != nil {
		return nil
	}
	if out, ok := correctionsFrom(top); ok {
		return out
	}
	if nested, ok := top["data"]; ok {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(nested, &inner); err == nil {
			if out, ok := correctionsFrom(inner); ok {
				return out
			}
		}
	}
	return nil
}

func correctionsFrom(obj map[string]json.RawMessage) ([]Correction, bool) {
	for _, key := range correctionKeys {
		if raw, ok := obj[key]; ok {
			return decodeCorrections(raw), true
		}
	}
	return nil, false
}

func decodeCorrections(raw json.RawMessage) []Correction {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	switch trimmed[0] {
	case '{':
		return decodeCorrectionObject(trimmed)
	case '[':
		return decodeCorrectionList(trimmed)
	default:
		return nil
	}
}

// decodeCorrectionObject walks the object token by token so corrections keep
// the order the client wrote them in.
func decodeCorrectionObject(raw []byte) []Correction {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil
	}
	var out []Correction
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return out
		}
		key, ok := keyTok.(string)
		if !ok {
			return out
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return out
		}
		out = append(out, Correction{Name: key, Value: stringifyValue(value)})
	}
	return out
}

func decodeCorrectionList(raw []byte) []Correction {
	var items []struct {
		Name  string `json:"name"`
		Value any    `json:"value"`
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	var out []Correction
	for _, item := range items {
		if item.Name == "" {
			continue
		}
		out = append(out, Correction{Name: item.Name, Value: stringifyValue(item.Value)})
	}
	return out
}

// stringifyValue renders a decoded JSON value the way it would appear as a
// field value. Numbers drop trailing zeros, everything non-scalar is empty.
func stringifyValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
