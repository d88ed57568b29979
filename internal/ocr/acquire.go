package ocr

import (
	"context"
	"log/slog"
	"time"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "rus+eng"; invoices mix Cyrillic and Latin
	DPI           int    // rasterization DPI for scanned PDFs, default 300
	MaxPages      int    // 0 = no limit

	TessdataDir string
}

// AcquisitionResult is one document's raw text plus acquisition metadata.
type AcquisitionResult struct {
	Text     string
	Pages    int
	Method   string // "pdf-text" | "pdf-ocr"
	Language string
	Duration time.Duration
	Warnings []string
}

// Acquirer turns one PDF document into raw text, either through the text
// layer or through rasterization + OCR.
type Acquirer struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewAcquirer(cfg Config, logger *slog.Logger) *Acquirer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "rus+eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &Acquirer{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Acquire extracts the document's text. The scanned flag is chosen once per
// batch by the caller, not per document: it routes scanned documents through
// rasterization + OCR and text-native documents through the text layer.
// Pages are concatenated in page order with no separator so that field
// patterns spanning page context stay intact.
func (a *Acquirer) Acquire(ctx context.Context, path string, scanned bool) (AcquisitionResult, error) {
	start := time.Now()
	var (
		res AcquisitionResult
		err error
	)
	if scanned {
		res, err = a.pdfOCR(ctx, path)
	} else {
		res, err = a.pdfText(ctx, path)
	}
	res.Duration = time.Since(start)
	res.Language = a.cfg.TesseractLang
	if err != nil {
		a.logger.Error("acquire.failed", "path", path, "scanned", scanned, "error", err)
		return res, err
	}
	a.logger.Debug("acquire.ok",
		"path", path,
		"method", res.Method,
		"pages", res.Pages,
		"bytes", len(res.Text),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}
