package nlp

import (
	"context"
	"encoding/json"
	"fmt"
)

// Span is one entity the model recognized, as character offsets into the
// analyzed text (half-open).
type Span struct {
	Start int
	End   int
	Label string
}

// EntityRecognizer is the contract with the external NER model: plain text
// in, labeled character spans out.
type EntityRecognizer interface {
	Recognize(ctx context.Context, text string) ([]Span, error)
}

// Spans travel the wire as [start, end, label] triples.
func (s *Span) UnmarshalJSON(data []byte) error {
	var raw [3]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("span: %w", err)
	}
	if err := json.Unmarshal(raw[0], &s.Start); err != nil {
		return fmt.Errorf("span start: %w", err)
	}
	if err := json.Unmarshal(raw[1], &s.End); err != nil {
		return fmt.Errorf("span end: %w", err)
	}
	if err := json.Unmarshal(raw[2], &s.Label); err != nil {
		return fmt.Errorf("span label: %w", err)
	}
	return nil
}

func (s Span) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]any{s.Start, s.End, s.Label})
}
