package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onec-tools/invoice-recon/internal/common"
	"github.com/onec-tools/invoice-recon/internal/entity"
	"github.com/onec-tools/invoice-recon/internal/extract"
	"github.com/onec-tools/invoice-recon/internal/ocr"
)

// stubAcquirer serves canned text per file base name.
type stubAcquirer struct {
	texts map[string]string
	fail  map[string]error
}

func (s *stubAcquirer) Acquire(_ context.Context, path string, _ bool) (ocr.AcquisitionResult, error) {
	name := filepath.Base(path)
	if err, ok := s.fail[name]; ok {
		return ocr.AcquisitionResult{}, err
	}
	return ocr.AcquisitionResult{Text: s.texts[name], Pages: 1, Method: "pdf-text"}, nil
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644))
	}
}

func TestCollect_OneRecordPerDocument(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.pdf", "b.pdf", "notes.txt")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	writeFiles(t, filepath.Join(dir, "nested"), "c.pdf") // non-recursive: ignored

	acq := &stubAcquirer{texts: map[string]string{
		"a.pdf": "Счёт-фактура № А-1 Дата 01.01.2024 НДС 1,00 Сумма 6,00",
		"b.pdf": "Счёт-фактура № Б-2 Дата 02.01.2024 НДС 2,00 Сумма 12,00",
	}}
	c := NewCollector(acq, extract.NewExtractor(nil), 2, nil)

	records, stats, err := c.Collect(context.Background(), dir, false)
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.EqualValues(t, 2, stats.Matched)
	assert.EqualValues(t, 2, stats.Succeeded)
	assert.EqualValues(t, 0, stats.Failed)
	assert.NotEqual(t, stats.BatchID.String(), "00000000-0000-0000-0000-000000000000")

	byFile := map[string]entity.Record{}
	for _, r := range records {
		byFile[r.SourceFile] = r
	}
	require.Contains(t, byFile, "a.pdf")
	require.Contains(t, byFile, "b.pdf")
	assert.Equal(t, entity.Some("А-1"), byFile["a.pdf"].Fields.InvoiceNumber)
	assert.Equal(t, entity.Some("12,00"), byFile["b.pdf"].Fields.Total)
}

func TestCollect_FailureYieldsSentinelAndContinues(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "good.pdf", "broken.pdf")

	acq := &stubAcquirer{
		texts: map[string]string{"good.pdf": "Счёт-фактура № В-3 Дата 03.01.2024 НДС 3,00 Сумма 18,00"},
		fail: map[string]error{
			"broken.pdf": fmt.Errorf("%w: broken.pdf", common.ErrUnreadableDocument),
		},
	}
	c := NewCollector(acq, extract.NewExtractor(nil), 1, nil)

	records, stats, err := c.Collect(context.Background(), dir, false)
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.EqualValues(t, 1, stats.Succeeded)
	assert.EqualValues(t, 1, stats.Failed)

	var sentinel *entity.Record
	for i := range records {
		if records[i].Failed() {
			sentinel = &records[i]
		}
	}
	require.NotNil(t, sentinel)
	assert.Equal(t, "broken.pdf", sentinel.SourceFile)
	assert.Equal(t, "UNREADABLE_DOCUMENT", sentinel.FailureKind)
	assert.Equal(t, entity.FieldSet{}, sentinel.Fields)
}

func TestCollect_BlankDocumentIsNotAFailure(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "blank.pdf")

	acq := &stubAcquirer{texts: map[string]string{"blank.pdf": ""}}
	c := NewCollector(acq, extract.NewExtractor(nil), 1, nil)

	records, stats, err := c.Collect(context.Background(), dir, true)
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.EqualValues(t, 1, stats.Succeeded)
	assert.False(t, records[0].Failed())
	assert.Equal(t, entity.FieldSet{}, records[0].Fields)
}

func TestCollect_MissingDirectory(t *testing.T) {
	c := NewCollector(&stubAcquirer{}, extract.NewExtractor(nil), 1, nil)

	_, _, err := c.Collect(context.Background(), filepath.Join(t.TempDir(), "nope"), false)
	assert.Error(t, err)
}

func TestCollect_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.pdf")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewCollector(&stubAcquirer{texts: map[string]string{"a.pdf": ""}}, extract.NewExtractor(nil), 1, nil)
	_, _, err := c.Collect(ctx, dir, false)
	assert.ErrorIs(t, err, context.Canceled)
}
