package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/onec-tools/invoice-recon/constants"
	"github.com/onec-tools/invoice-recon/internal/common"
	"github.com/onec-tools/invoice-recon/internal/entity"
	"github.com/onec-tools/invoice-recon/internal/ocr"
)

// Acquirer produces one document's raw text (see internal/ocr).
type Acquirer interface {
	Acquire(ctx context.Context, path string, scanned bool) (ocr.AcquisitionResult, error)
}

// FieldExtractor turns raw text into the four field slots.
type FieldExtractor interface {
	Extract(text string) entity.FieldSet
}

// Stats aggregates per-batch counters.
type Stats struct {
	BatchID   uuid.UUID
	Scanned   uint32 // directory entries seen
	Matched   uint32 // entries with the allowed extension
	Succeeded uint32
	Failed    uint32
}

// Collector assembles one record per document in a directory. Documents are
// independent pure transformations, so acquisition + extraction runs on a
// bounded worker pool; no shared mutable state crosses worker boundaries.
type Collector struct {
	acquirer    Acquirer
	extractor   FieldExtractor
	concurrency int
	logger      *slog.Logger
}

func NewCollector(acquirer Acquirer, extractor FieldExtractor, concurrency int, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Collector{
		acquirer:    acquirer,
		extractor:   extractor,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Collect enumerates dir (non-recursive), filters to PDF documents, and
// produces one record per document with the file name as its source
// identifier. A single document's failure never aborts the batch: the
// document yields a sentinel record (all fields absent, Failure set) and
// collection continues. Cancelling ctx stops dispatching new documents; the
// underlying exec calls are killed through the same context.
func (c *Collector) Collect(ctx context.Context, dir string, scanned bool) ([]entity.Record, Stats, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, Stats{}, errors.New("directory path is required")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("read dir: %w", err)
	}

	var stats Stats
	var names []string
	for _, e := range entries {
		stats.Scanned++
		if e.IsDir() {
			continue
		}
		if !constants.AllowedExt(filepath.Ext(e.Name())) {
			continue
		}
		stats.Matched++
		names = append(names, e.Name())
	}

	batchID := uuid.New()
	stats.BatchID = batchID
	start := time.Now()
	c.logger.Info("batch.collect.start",
		"batch_id", batchID.String(),
		"dir", dir,
		"scanned_mode", scanned,
		"documents", len(names),
		"concurrency", c.concurrency,
	)

	records := make([]entity.Record, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, name := range names {
		if gctx.Err() != nil {
			break
		}
		i, name := i, name
		g.Go(func() error {
			records[i] = c.collectOne(gctx, dir, name, scanned)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, stats, err
	}
	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}

	for _, r := range records {
		if r.Failed() {
			stats.Failed++
		} else {
			stats.Succeeded++
		}
	}
	c.logger.Info("batch.collect.ok",
		"batch_id", batchID.String(),
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return records, stats, nil
}

// collectOne runs acquisition + extraction for a single document. Failures
// come back as a sentinel record so the caller can surface a per-document
// report instead of losing the batch.
func (c *Collector) collectOne(ctx context.Context, dir, name string, scanned bool) entity.Record {
	res, err := c.acquirer.Acquire(ctx, filepath.Join(dir, name), scanned)
	if err != nil {
		c.logger.Error("batch.document.failed", "file", name, "error", err)
		return entity.Record{
			SourceFile:  name,
			Failure:     err.Error(),
			FailureKind: common.FailureKind(err),
		}
	}
	fields := c.extractor.Extract(res.Text)
	return entity.Record{Fields: fields, SourceFile: name}
}
