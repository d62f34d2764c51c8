package server

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// documentSchema constrains structured ocrText payloads before they reach the
// pipeline. It checks the envelope and the page structure; word boxes stay
// loose because OCR output varies per engine.
const documentSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["ocrText"],
  "properties": {
    "ocrId": {"type": "string"},
    "ocrText": {"type": "string"},
    "pages": {"type": "integer", "minimum": 0},
    "ocrResult": {
      "type": "object",
      "properties": {
        "pages_structure": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["page_number"],
            "properties": {
              "page_number": {"type": "integer", "minimum": 1},
              "width": {"type": "number", "minimum": 0},
              "height": {"type": "number", "minimum": 0},
              "dpi": {"type": "integer", "minimum": 0},
              "confidence": {"type": "number", "minimum": 0, "maximum": 1},
              "lines": {
                "type": "array",
                "items": {
                  "type": "object",
                  "required": ["line_text"],
                  "properties": {
                    "line_text": {"type": "string"},
                    "words": {"type": "array", "items": {"type": "object"}}
                  }
                }
              }
            }
          }
        },
        "metadata": {"type": "object"}
      }
    }
  }
}`

var compiledDocumentSchema = jsonschema.MustCompileString("ocr-document.json", documentSchema)

func validateDocument(raw []byte) error {
	var value any
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(&value); err != nil {
		return fmt.Errorf("decode ocr document: %w", err)
	}
	if err := compiledDocumentSchema.Validate(value); err != nil {
		return fmt.Errorf("validate ocr document: %w", err)
	}
	return nil
}
