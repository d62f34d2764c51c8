package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/apl83/invoice-nlp/constants"
	"github.com/apl83/invoice-nlp/internal/nlp"
	"github.com/apl83/invoice-nlp/internal/ocr"
)

type extractData struct {
	Type   constants.InvoiceType `json:"type"`
	Fields []nlp.Field           `json:"fields"`
}

type extractResponse struct {
	RequestID string       `json:"requestId"`
	Status    string       `json:"status"`
	Message   string       `json:"message,omitempty"`
	Warnings  []string     `json:"warnings,omitempty"`
	Data      *extractData `json:"data,omitempty"`
}

// handleExtract runs the extraction pipeline over submitted OCR output.
// Responses that carry data are parked in the pending store so a later
// feedback call can reference them.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, extractResponse{
			RequestID: uuid.NewString(), Status: "error", Message: "unreadable request body",
		})
		return
	}

	var req struct {
		RequestID string          `json:"requestId"`
		OCRText   json.RawMessage `json:"ocrText"`
	}
	// Tolerate malformed bodies; they fall through to the missing-ocrText error.
	_ = json.Unmarshal(body, &req)
	requestID := ensureRequestID(req.RequestID)
	logger := s.logger.With("request_id", requestID)

	if s.recognizer == nil {
		message := "NLP model not available"
		if s.modelErr != nil {
			message += ": " + s.modelErr.Error()
		}
		logger.Error("extract.model_unavailable", "error", s.modelErr)
		s.finalize(w, requestID, body, extractResponse{
			RequestID: requestID, Status: "error", Message: message,
		}, http.StatusServiceUnavailable, "")
		return
	}

	if isAbsent(req.OCRText) {
		s.finalize(w, requestID, body, extractResponse{
			RequestID: requestID, Status: "error", Message: "missing ocrText",
		}, http.StatusBadRequest, "")
		return
	}

	text, doc, ok := parseOCRText(req.OCRText)
	if !ok {
		logger.Warn("extract.invalid_payload")
		s.finalize(w, requestID, body, extractResponse{
			RequestID: requestID, Status: "error", Message: "invalid ocrText payload",
		}, http.StatusBadRequest, "")
		return
	}

	if strings.TrimSpace(text) == "" {
		fields, _ := nlp.BuildFields(nil, nil, nil)
		logger.Info("extract.empty_text")
		s.finalize(w, requestID, body, extractResponse{
			RequestID: requestID,
			Status:    "partial",
			Warnings:  []string{"OCR input did not contain extractable text."},
			Data:      &extractData{Type: constants.InvoiceUnknown, Fields: fields},
		}, http.StatusUnprocessableEntity, text)
		return
	}

	spans, err := s.recognizer.Recognize(r.Context(), text)
	if err != nil {
		logger.Error("extract.model_failed", "error", err)
		s.finalize(w, requestID, body, extractResponse{
			RequestID: requestID, Status: "error", Message: "NLP model not available: " + err.Error(),
		}, http.StatusServiceUnavailable, "")
		return
	}

	extractions := collectExtractions(text, spans)
	confidences := nlp.DeriveConfidences(extractions, nlp.NewConfidenceIndex(doc))
	fields, hits := nlp.BuildFields(extractions, nil, confidences)
	invoiceType := nlp.DetectInvoiceType(nlp.ValueMap(fields))
	logger.Info("extract.done", "type", invoiceType, "hits", hits, "spans", len(spans))

	if hits == 0 {
		s.finalize(w, requestID, body, extractResponse{
			RequestID: requestID,
			Status:    "partial",
			Warnings:  []string{"no extractable fields"},
			Data:      &extractData{Type: invoiceType, Fields: fields},
		}, http.StatusUnprocessableEntity, text)
		return
	}

	response := extractResponse{
		RequestID: requestID,
		Status:    "ok",
		Data:      &extractData{Type: invoiceType, Fields: fields},
	}
	if hits < len(constants.FieldOrder()) {
		response.Warnings = []string{"some fields missing"}
	}
	s.finalize(w, requestID, body, response, http.StatusOK, text)
}

// finalize writes the response and, when it carries data, parks it for
// feedback correlation. Store failures are logged, never surfaced.
func (s *Server) finalize(w http.ResponseWriter, requestID string, requestBody []byte, response extractResponse, statusCode int, text string) {
	if response.Data != nil && s.store != nil {
		responseJSON, err := json.Marshal(response)
		if err == nil {
			err = s.store.Save(requestID, requestBody, responseJSON, statusCode, text)
		}
		if err != nil {
			s.logger.Warn("extract.pending_save_failed", "request_id", requestID, "error", err)
		}
	}
	s.writeJSON(w, statusCode, response)
}

func ensureRequestID(requestID string) string {
	if strings.TrimSpace(requestID) != "" {
		return requestID
	}
	return uuid.NewString()
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// parseOCRText accepts either a plain text string or a full OCR document.
// The document form also yields the word-level confidences the linker needs.
func parseOCRText(raw json.RawMessage) (string, *ocr.Document, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", nil, false
	}
	switch trimmed[0] {
	case '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return "", nil, false
		}
		return text, nil, true
	case '{':
		if err := validateDocument(trimmed); err != nil {
			return "", nil, false
		}
		var doc ocr.Document
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return "", nil, false
		}
		return doc.OCRText, &doc, true
	default:
		return "", nil, false
	}
}

// collectExtractions maps model spans onto the recognized field labels. The
// first span per label wins; unknown labels and out-of-range spans are
// dropped. Offsets count runes.
func collectExtractions(text string, spans []nlp.Span) []nlp.Extraction {
	runes := []rune(text)
	seen := make(map[string]bool, len(spans))
	var out []nlp.Extraction
	for _, span := range spans {
		if !constants.IsKnownField(span.Label) || seen[span.Label] {
			continue
		}
		start, end := span.Start, span.End
		if start < 0 {
			start = 0
		}
		if end > len(runes) {
			end = len(runes)
		}
		if start >= end {
			continue
		}
		seen[span.Label] = true
		out = append(out, nlp.Extraction{Label: span.Label, Value: string(runes[start:end])})
	}
	return out
}
