package ocr

import (
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/apl83/invoice-nlp/internal/common"
)

const (
	// digitalTextConfidence is assigned to pages whose text came straight out
	// of the PDF structure, without rasterization.
	digitalTextConfidence = 0.99

	// minDigitalTextRunes is the threshold above which embedded page text is
	// trusted and OCR is skipped.
	minDigitalTextRunes = 80
)

type Config struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Lang     string // tesseract language spec, default "deu+eng"
	DPI      int    // rasterization DPI for scanned pages, default 300
	MaxPages int    // 0 = no limit
}

// Engine turns PDF bytes into a Document: embedded text where the PDF has
// enough of it, rasterization plus OCR everywhere else.
type Engine struct {
	cfg      Config
	runner   Runner
	lookPath func(string) (string, error)
	logger   *slog.Logger
}

func NewEngine(cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "deu+eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &Engine{cfg: cfg, runner: execRunner{}, lookPath: exec.LookPath, logger: logger}
}

// ProcessPDF reads every page of the document, preferring embedded text over
// OCR. Pages that cannot be rendered degrade to empty pages with zero
// confidence; the whole call fails only when nothing can open the PDF at all.
func (e *Engine) ProcessPDF(ctx context.Context, data []byte) (*Document, error) {
	ocrID := uuid.New().String()

	pageTexts, digErr := digitalPageTexts(data)
	count, cntErr := pdfPageCount(data)
	raster := e.rasterAvailable()

	if digErr != nil && cntErr != nil && !raster {
		e.logger.Error("ocr.document.unreadable", "parse_error", digErr, "count_error", cntErr)
		return nil, common.NewAppError("DOCUMENT_UNREADABLE", "no engine could open the document", common.ErrDocumentUnreadable)
	}

	metadata := map[string]any{}
	if cntErr == nil {
		metadata["page_count"] = count
	}

	if digErr != nil && cntErr != nil {
		return e.processBlind(ctx, data, ocrID, metadata)
	}

	total := len(pageTexts)
	if digErr != nil {
		total = count
	}
	if e.cfg.MaxPages > 0 && total > e.cfg.MaxPages {
		total = e.cfg.MaxPages
	}

	tmpDir, pdfPath := "", ""
	cleanup := func() {}
	defer func() { cleanup() }()

	pages := make([]Page, 0, total)
	texts := make([]string, 0, total)

	for i := 1; i <= total; i++ {
		var txt string
		if digErr == nil && i <= len(pageTexts) {
			txt = pageTexts[i-1]
		}
		if utf8.RuneCountInString(strings.TrimSpace(txt)) > minDigitalTextRunes {
			e.logger.Debug("ocr.page.digital_text", "page", i, "bytes", len(txt))
			pages = append(pages, digitalPage(i, txt, e.cfg.DPI))
			texts = append(texts, txt)
			continue
		}
		if !raster {
			e.logger.Warn("ocr.page.render_unavailable", "page", i)
			pages = append(pages, emptyPage(i, e.cfg.DPI))
			texts = append(texts, txt)
			continue
		}
		if pdfPath == "" {
			var tempErr error
			tmpDir, pdfPath, cleanup, tempErr = writeTempPDF(data)
			if tempErr != nil {
				return nil, common.WrapError(tempErr, "stage pdf for rasterization")
			}
		}
		img, err := e.rasterizePage(ctx, pdfPath, tmpDir, i)
		if err != nil {
			e.logger.Warn("ocr.page.render_failed", "page", i, "error", err)
			pages = append(pages, emptyPage(i, e.cfg.DPI))
			texts = append(texts, txt)
			continue
		}
		page, text := e.ocrImage(ctx, img, i)
		pages = append(pages, page)
		texts = append(texts, text)
	}

	return assembleDocument(ocrID, texts, pages, metadata, total), nil
}

// processBlind handles documents neither PDF library could open: render
// everything in one pdftoppm pass and OCR each generated image.
func (e *Engine) processBlind(ctx context.Context, data []byte, ocrID string, metadata map[string]any) (*Document, error) {
	tmpDir, pdfPath, cleanup, err := writeTempPDF(data)
	if err != nil {
		return nil, common.WrapError(err, "stage pdf for rasterization")
	}
	defer cleanup()

	imgs, err := e.rasterizeAll(ctx, pdfPath, tmpDir, e.cfg.MaxPages)
	if err != nil {
		e.logger.Error("ocr.document.unreadable", "error", err)
		return nil, common.NewAppError("DOCUMENT_UNREADABLE", "no engine could open the document", common.ErrDocumentUnreadable)
	}

	pages := make([]Page, 0, len(imgs))
	texts := make([]string, 0, len(imgs))
	for i, img := range imgs {
		page, text := e.ocrImage(ctx, img, i+1)
		pages = append(pages, page)
		texts = append(texts, text)
	}
	return assembleDocument(ocrID, texts, pages, metadata, len(pages)), nil
}

// ocrImage OCRs a rendered page twice: once for plain text, once in TSV mode
// for tokens with geometry and confidence.
func (e *Engine) ocrImage(ctx context.Context, imgPath string, pageNumber int) (Page, string) {
	text, err := e.tesseractText(ctx, imgPath)
	if err != nil {
		e.logger.Warn("ocr.page.text_failed", "page", pageNumber, "error", err)
		text = ""
	}
	text = norm.NFC.String(text)

	tokens, err := e.tesseractTokens(ctx, imgPath)
	if err != nil {
		e.logger.Warn("ocr.page.tsv_failed", "page", pageNumber, "error", err)
		tokens = nil
	}

	width, height := pageDimensions(tokens)
	page := reconstructPage(tokens, pageNumber, width, height, e.cfg.DPI)
	e.logger.Debug("ocr.page.rasterized",
		"page", pageNumber, "lines", len(page.Lines), "confidence", page.Confidence)
	return page, text
}

func assembleDocument(ocrID string, texts []string, pages []Page, metadata map[string]any, total int) *Document {
	return &Document{
		OCRID:   ocrID,
		OCRText: norm.NFC.String(strings.Join(texts, "\n\n")),
		Result: Result{
			PagesStructure: pages,
			Metadata:       metadata,
		},
		Pages: total,
	}
}
