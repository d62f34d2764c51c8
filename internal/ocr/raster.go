package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// rasterizePage renders a single PDF page to a PNG under tmpDir and returns
// the image path.
func (e *Engine) rasterizePage(ctx context.Context, pdfPath, tmpDir string, pageNumber int) (string, error) {
	prefix := filepath.Join(tmpDir, fmt.Sprintf("page-%d", pageNumber))
	// pdftoppm -f N -l N -r <dpi> -png <in.pdf> <prefix>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm,
		"-f", fmt.Sprintf("%d", pageNumber),
		"-l", fmt.Sprintf("%d", pageNumber),
		"-r", fmt.Sprintf("%d", e.cfg.DPI),
		"-png", pdfPath, prefix)
	if err != nil {
		return "", fmt.Errorf("pdftoppm: %w (%s)", err, truncate(string(errb), 512))
	}

	matches, _ := filepath.Glob(prefix + "*.png")
	if len(matches) == 0 {
		return "", fmt.Errorf("pdftoppm produced no image for page %d", pageNumber)
	}
	sort.Strings(matches)
	return matches[0], nil
}

// rasterizeAll renders every page when the page count is unknown up front.
// Returns the generated images in page order, capped at max when max > 0.
func (e *Engine) rasterizeAll(ctx context.Context, pdfPath, tmpDir string, max int) ([]string, error) {
	prefix := filepath.Join(tmpDir, "page")
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm,
		"-r", fmt.Sprintf("%d", e.cfg.DPI),
		"-png", pdfPath, prefix)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm: %w (%s)", err, truncate(string(errb), 512))
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no images")
	}
	if max > 0 && len(matches) > max {
		matches = matches[:max]
	}
	return matches, nil
}

// tesseractText runs plain OCR over an image.
func (e *Engine) tesseractText(ctx context.Context, imgPath string) (string, error) {
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, imgPath, "stdout", "-l", e.cfg.Lang)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w (%s)", err, truncate(string(errb), 512))
	}
	return string(out), nil
}

// tesseractTokens runs OCR in TSV mode and returns the parsed token list.
func (e *Engine) tesseractTokens(ctx context.Context, imgPath string) ([]token, error) {
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, imgPath, "stdout", "-l", e.cfg.Lang, "tsv")
	if err != nil {
		return nil, fmt.Errorf("tesseract tsv: %w (%s)", err, truncate(string(errb), 512))
	}
	return parseTSV(string(out)), nil
}

// rasterAvailable reports whether both external binaries can be found.
func (e *Engine) rasterAvailable() bool {
	if _, err := e.lookPath(e.cfg.Pdftoppm); err != nil {
		return false
	}
	if _, err := e.lookPath(e.cfg.Tesseract); err != nil {
		return false
	}
	return true
}

func writeTempPDF(data []byte) (dir, path string, cleanup func(), err error) {
	dir, err = os.MkdirTemp("", "invoice-ocr-*")
	if err != nil {
		return "", "", nil, err
	}
	cleanup = func() { _ = os.RemoveAll(dir) }
	path = filepath.Join(dir, "upload.pdf")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		cleanup()
		return "", "", nil, err
	}
	return dir, path, cleanup, nil
}
