package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/onec-tools/invoice-recon/internal/batch"
	"github.com/onec-tools/invoice-recon/internal/common"
	"github.com/onec-tools/invoice-recon/internal/export"
	"github.com/onec-tools/invoice-recon/internal/extract"
	"github.com/onec-tools/invoice-recon/internal/ocr"
	"github.com/onec-tools/invoice-recon/internal/reconcile"
	"github.com/onec-tools/invoice-recon/internal/reftable"
)

type options struct {
	dir         string
	ref         string
	out         string
	report      string
	scanned     bool
	concurrency int
	verbose     bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:          "invoice-recon",
		Short:        "Reconcile invoice fields extracted from PDFs against a 1C ledger export",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.dir, "dir", "", "directory with PDF invoices (required)")
	cmd.Flags().StringVar(&opts.ref, "ref", "", "1C reference table, XLSX (required)")
	cmd.Flags().StringVar(&opts.out, "out", "", "output XLSX path (defaults next to --dir)")
	cmd.Flags().StringVar(&opts.report, "report", "", "optional JSON report path")
	cmd.Flags().BoolVar(&opts.scanned, "scanned", false, "treat the batch as scanned PDFs (OCR)")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "worker pool size (default from BATCH_CONCURRENCY)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	_ = cmd.MarkFlagRequired("dir")
	_ = cmd.MarkFlagRequired("ref")

	ctx, _ := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cmd.SetContext(ctx)
	return cmd
}

func run(ctx context.Context, opts options) error {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if opts.concurrency <= 0 {
		opts.concurrency = cfg.Batch.Concurrency
	}
	if opts.out == "" {
		opts.out = filepath.Join(filepath.Dir(opts.dir), "reconciliation.xlsx")
	}

	acquirer := ocr.NewAcquirer(ocr.Config{
		Pdftotext:     cfg.OCR.Pdftotext,
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		DPI:           cfg.OCR.DPI,
		MaxPages:      cfg.OCR.MaxPages,
		TessdataDir:   cfg.OCR.TessdataDir,
	}, logger)
	extractor := extract.NewExtractor(logger)
	collector := batch.NewCollector(acquirer, extractor, opts.concurrency, logger)

	pdfRecords, stats, err := collector.Collect(ctx, opts.dir, opts.scanned)
	if err != nil {
		return fmt.Errorf("collect batch: %w", err)
	}

	refRecords, err := reftable.NewLoader(logger).Load(opts.ref)
	if err != nil {
		return fmt.Errorf("load reference table: %w", err)
	}

	result := reconcile.Reconcile(pdfRecords, refRecords)

	exporter := export.NewService(logger)
	xlsxBytes, err := exporter.ResultXLSX(result)
	if err != nil {
		return fmt.Errorf("export result: %w", err)
	}
	if err := os.WriteFile(opts.out, xlsxBytes, 0o644); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}

	if opts.report != "" {
		rep := export.BuildReport(stats.BatchID.String(), pdfRecords, refRecords, result)
		repBytes, err := export.MarshalReport(rep)
		if err != nil {
			return fmt.Errorf("build report: %w", err)
		}
		if err := os.WriteFile(opts.report, repBytes, 0o644); err != nil {
			return fmt.Errorf("write report file: %w", err)
		}
	}

	fmt.Printf("Reconciliation complete!\n")
	fmt.Printf("- Documents processed: %d (failed: %d)\n", stats.Succeeded, stats.Failed)
	fmt.Printf("- Reference rows: %d\n", len(refRecords))
	fmt.Printf("- Matches: %d\n", len(result.Matches))
	fmt.Printf("- Mismatches: %d\n", len(result.Mismatches))
	fmt.Printf("- Output: %s\n", opts.out)
	return nil
}
