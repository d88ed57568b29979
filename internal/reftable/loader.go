// Package reftable loads the 1C reference table (XLSX export) into records
// for reconciliation.
package reftable

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/onec-tools/invoice-recon/constants"
	"github.com/onec-tools/invoice-recon/internal/common"
	"github.com/onec-tools/invoice-recon/internal/entity"
)

// Loader reads the reference table wholesale into memory, one record per
// row. Malformed tables are rejected eagerly, before any join is attempted.
type Loader struct {
	logger *slog.Logger
}

func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load opens the workbook and reads the first sheet. The header row must
// contain all four field columns by their exact 1C names; a missing column
// fails with the offending column identified. Empty cells load as absent.
func (l *Loader) Load(path string) ([]entity.Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, common.NewAppError("REFTABLE_OPEN", fmt.Sprintf("open %s", path), err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			l.logger.Warn("failed to close workbook", "path", path, "error", closeErr)
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", common.ErrReferenceTableFormat)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, common.NewAppError("REFTABLE_READ", fmt.Sprintf("read sheet %s", sheets[0]), err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %q has no header row", common.ErrReferenceTableFormat, sheets[0])
	}

	cols, err := headerColumns(rows[0])
	if err != nil {
		return nil, err
	}

	records := make([]entity.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		obj := rowObject(row, cols)
		if err := ValidateRow(obj); err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", common.ErrReferenceTableFormat, i+2, err)
		}
		records = append(records, rowRecord(obj))
	}

	l.logger.Info("reftable.load.ok", "path", path, "sheet", sheets[0], "rows", len(records))
	return records, nil
}

// headerColumns maps each recognized field to its column index. Header cells
// are matched after trimming; anything extra in the sheet is ignored.
func headerColumns(header []string) (map[constants.Field]int, error) {
	cols := make(map[constants.Field]int, len(constants.Fields))
	for i, h := range header {
		for _, field := range constants.Fields {
			if strings.EqualFold(strings.TrimSpace(h), string(field)) {
				cols[field] = i
			}
		}
	}
	for _, field := range constants.Fields {
		if _, ok := cols[field]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", common.ErrReferenceTableFormat, field)
		}
	}
	return cols, nil
}

// rowObject projects one sheet row onto the four recognized columns.
// excelize trims trailing empty cells, so a short row reads as empty cells.
func rowObject(row []string, cols map[constants.Field]int) map[string]any {
	obj := make(map[string]any, len(cols))
	for field, idx := range cols {
		cell := ""
		if idx < len(row) {
			cell = strings.TrimSpace(row[idx])
		}
		obj[string(field)] = cell
	}
	return obj
}

func rowRecord(obj map[string]any) entity.Record {
	var rec entity.Record
	for _, field := range constants.Fields {
		cell, _ := obj[string(field)].(string)
		if cell != "" {
			rec.Fields.Set(field, entity.Some(cell))
		}
	}
	return rec
}
