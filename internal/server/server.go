// Package server exposes the extraction and feedback API over HTTP.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/apl83/invoice-nlp/internal/common"
	"github.com/apl83/invoice-nlp/internal/feedback"
	"github.com/apl83/invoice-nlp/internal/nlp"
	"github.com/apl83/invoice-nlp/internal/ocr"
	"github.com/apl83/invoice-nlp/internal/pending"
)

// DocumentProcessor turns raw PDF bytes into a structured OCR document.
type DocumentProcessor interface {
	ProcessPDF(ctx context.Context, data []byte) (*ocr.Document, error)
}

type Server struct {
	apiToken   string
	processor  DocumentProcessor
	recognizer nlp.EntityRecognizer
	modelErr   error
	store      *pending.Store
	sink       *feedback.Sink
	logger     *slog.Logger
}

// New assembles the API surface. A nil recognizer (with modelErr explaining
// why) keeps the server up and turns extraction calls into 503 responses.
func New(
	apiToken string,
	processor DocumentProcessor,
	recognizer nlp.EntityRecognizer,
	modelErr error,
	store *pending.Store,
	sink *feedback.Sink,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		apiToken:   apiToken,
		processor:  processor,
		recognizer: recognizer,
		modelErr:   modelErr,
		store:      store,
		sink:       sink,
		logger:     logger,
	}
}

// Handler wires the routes. The /nlp endpoints require the bearer token;
// health stays open for probes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /nlp/extract", s.requireAuth(s.handleExtract))
	mux.HandleFunc("POST /nlp/feedback", s.requireAuth(s.handleFeedback))
	mux.HandleFunc("POST /ocr/process", s.handleOCRProcess)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	return s.withRequestID(mux)
}

func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			s.unauthorized(w)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" || token != s.apiToken {
			s.unauthorized(w)
			return
		}
		next(w, r)
	}
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := common.WithRequestID(r.Context(), uuid.NewString())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) unauthorized(w http.ResponseWriter) {
	s.writeJSON(w, http.StatusUnauthorized, map[string]any{
		"status":  "error",
		"message": "Unauthorized",
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("server.response.encode_failed", "error", err)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
