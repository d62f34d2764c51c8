package server

import (
	"errors"
	"io"
	"net/http"
	"strings"
)

// maxUploadBytes caps PDF uploads at 50 MiB.
const maxUploadBytes = 50 << 20

// handleOCRProcess accepts a PDF upload and returns the OCR document for it.
// Both multipart form uploads (field "file") and raw application/pdf bodies
// are accepted.
func (s *Server) handleOCRProcess(w http.ResponseWriter, r *http.Request) {
	if s.processor == nil {
		s.writeJSON(w, http.StatusInternalServerError, map[string]any{
			"code": "ocr_not_available", "message": "OCR engine not configured",
		})
		return
	}

	data, err := readPDFUpload(r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]any{
			"code": "invalid_file_type", "message": err.Error(),
		})
		return
	}

	doc, err := s.processor.ProcessPDF(r.Context(), data)
	if err != nil {
		s.logger.Warn("ocr.process.failed", "error", err)
		s.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"code": "ocr_error", "message": err.Error()})
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"ocrId":     doc.OCRID,
		"ocrText":   doc.OCRText,
		"ocrResult": doc.Result,
		"pages":     doc.Pages,
	})
}

func readPDFUpload(r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxUploadBytes)

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, errors.New("missing file upload")
		}
		defer file.Close()
		name := strings.ToLower(header.Filename)
		if !strings.HasSuffix(name, ".pdf") && header.Header.Get("Content-Type") != "application/pdf" {
			return nil, errors.New("only PDF files are accepted")
		}
		return io.ReadAll(file)
	}

	if !strings.HasPrefix(contentType, "application/pdf") {
		return nil, errors.New("only PDF files are accepted")
	}
	return io.ReadAll(r.Body)
}
