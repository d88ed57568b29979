package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/onec-tools/invoice-recon/internal/common"
)

// pdfText extracts the text layer of a digital PDF.
func (a *Acquirer) pdfText(ctx context.Context, path string) (AcquisitionResult, error) {
	// pdftotext -enc UTF-8 -eol unix <path> -
	out, errb, err := a.runner.Run(ctx, a.cfg.Pdftotext, "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return AcquisitionResult{Method: "pdf-text", Warnings: []string{string(errb)}},
			fmt.Errorf("%w: %s: %v", common.ErrUnreadableDocument, filepath.Base(path), err)
	}
	text := string(out)
	// pdftotext emits a form feed between pages; pages are joined with no
	// separator, matching the extraction patterns which may span page
	// boundaries.
	pages := 1 + strings.Count(text, "\f")
	text = strings.ReplaceAll(text, "\f", "")
	return AcquisitionResult{Text: text, Pages: pages, Method: "pdf-text"}, nil
}

// pdfOCR rasterizes each page at the configured DPI and runs OCR per page.
// OCR is strictly page-local to bound rasterization memory. A page with no
// recognizable text contributes an empty string, which is expected and not
// fatal.
func (a *Acquirer) pdfOCR(ctx context.Context, path string) (AcquisitionResult, error) {
	tmpDir, err := os.MkdirTemp("", "ir-pp-*")
	if err != nil {
		return AcquisitionResult{Method: "pdf-ocr"}, err
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			a.logger.Warn("failed to remove temp dir", "dir", tmpDir, "error", rmErr)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := a.runner.Run(ctx, a.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", a.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return AcquisitionResult{Method: "pdf-ocr", Warnings: []string{string(errb)}},
			fmt.Errorf("%w: %s: %v", common.ErrUnreadableDocument, filepath.Base(path), err)
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if a.cfg.MaxPages > 0 && len(matches) > a.cfg.MaxPages {
		matches = matches[:a.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return AcquisitionResult{Method: "pdf-ocr", Warnings: []string{"pdftoppm produced no images"}},
			fmt.Errorf("%w: %s: no pages rendered", common.ErrUnreadableDocument, filepath.Base(path))
	}

	var b strings.Builder
	var warns []string
	for _, img := range matches {
		txt, w, err := a.tesseractOCR(ctx, img)
		if err != nil {
			return AcquisitionResult{Method: "pdf-ocr", Pages: len(matches), Warnings: append(warns, w...)}, err
		}
		b.WriteString(txt)
		warns = append(warns, w...)
	}
	return AcquisitionResult{
		Text:     Normalize(b.String()),
		Pages:    len(matches),
		Method:   "pdf-ocr",
		Warnings: warns,
	}, nil
}

func (a *Acquirer) tesseractOCR(ctx context.Context, path string) (string, []string, error) {
	args := []string{path, "stdout", "-l", a.cfg.TesseractLang}
	if a.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", a.cfg.TessdataDir)
	}

	// tesseract <file> stdout -l <lang>
	out, errb, err := a.runner.Run(ctx, a.cfg.Tesseract, args...)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", []string{string(errb)}, fmt.Errorf("%w: %v", common.ErrOCREngine, err)
		}
		return "", []string{string(errb)}, fmt.Errorf("%w: tesseract: %v", common.ErrOCREngine, err)
	}

	// minor cleanup of obvious line noise
	txt := reBoxNoise.ReplaceAllString(string(out), "")
	return txt, nil, nil
}
