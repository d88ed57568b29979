// Package convert is the stateless JPEG-to-PDF helper used to prepare
// scanned pages for batch processing. It shares no logic with the core
// pipeline.
package convert

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/onec-tools/invoice-recon/internal/ocr"
)

// Converter builds one multi-page PDF out of an ordered list of JPEG files.
// The conversion runs through an external ImageMagick binary behind the same
// Runner seam the OCR layer uses.
type Converter struct {
	magick string
	runner ocr.Runner
	logger *slog.Logger
}

func NewConverter(magick string, runner ocr.Runner, logger *slog.Logger) *Converter {
	if magick == "" {
		magick = "magick"
	}
	if runner == nil {
		runner = ocr.ExecRunner()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{magick: magick, runner: runner, logger: logger}
}

// Convert writes the JPEGs into a single PDF at outPath, one page per image
// in input order.
func (c *Converter) Convert(ctx context.Context, images []string, outPath string) error {
	if len(images) == 0 {
		return fmt.Errorf("no input images")
	}
	for _, img := range images {
		ext := strings.ToLower(filepath.Ext(img))
		if ext != ".jpg" && ext != ".jpeg" {
			return fmt.Errorf("not a JPEG file: %s", img)
		}
		if _, err := os.Stat(img); err != nil {
			return fmt.Errorf("input image: %w", err)
		}
	}

	// magick <img1> <img2> ... <out.pdf>
	args := append(append([]string{}, images...), outPath)
	if _, errb, err := c.runner.Run(ctx, c.magick, args...); err != nil {
		return fmt.Errorf("magick convert failed: %v: %s", err, strings.TrimSpace(string(errb)))
	}
	if _, err := os.Stat(outPath); err != nil {
		return fmt.Errorf("conversion produced no output: %v", err)
	}

	c.logger.Info("convert.jpeg2pdf.ok", "pages", len(images), "out", outPath)
	return nil
}
