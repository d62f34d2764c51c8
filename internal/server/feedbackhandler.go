package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/apl83/invoice-nlp/internal/feedback"
)

type feedbackResponse struct {
	RequestID string `json:"requestId"`
	Saved     bool   `json:"saved"`
}

// handleFeedback matches a correction payload against its pending prediction
// and, when one exists, appends the merged result as a training sample. An
// unknown or expired request id is not an error; the caller just learns that
// nothing was saved.
func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]any{
			"status": "error", "message": "unreadable request body",
		})
		return
	}

	var req struct {
		RequestID string `json:"requestId"`
	}
	_ = json.Unmarshal(body, &req)
	requestID := ensureRequestID(req.RequestID)
	logger := s.logger.With("request_id", requestID)

	saved := false
	if entry, ok := s.store.Pop(requestID); ok {
		corrections := feedback.ExtractCorrections(body)
		sample := feedback.BuildTrainingEntry(entry, corrections)
		if err := s.sink.Append(sample); err != nil {
			logger.Error("feedback.append_failed", "error", err)
		} else {
			saved = true
			logger.Info("feedback.saved", "entities", len(sample.Entities), "corrections", len(corrections))
		}
	} else {
		logger.Info("feedback.no_pending_entry")
	}

	s.writeJSON(w, http.StatusOK, feedbackResponse{RequestID: requestID, Saved: saved})
}
