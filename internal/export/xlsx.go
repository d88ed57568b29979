package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/onec-tools/invoice-recon/constants"
	"github.com/onec-tools/invoice-recon/internal/reconcile"
)

const (
	sheetMatches    = "Совпадения"
	sheetMismatches = "Несовпадения"

	colFile   = "Файл"
	colStatus = "Статус"
)

// Service produces XLSX bytes for reconciliation results.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ResultXLSX returns a workbook (as bytes) with one sheet per bucket.
// Columns: the four fields, the PDF source file (blank on reference-only
// rows), and the provenance status.
func (s *Service) ResultXLSX(res reconcile.Result) ([]byte, error) {
	start := time.Now()
	f := excelize.NewFile()

	if err := s.writeSheet(f, sheetMatches, res.Matches); err != nil {
		return nil, err
	}
	if err := s.writeSheet(f, sheetMismatches, res.Mismatches); err != nil {
		return nil, err
	}
	// drop the default sheet excelize creates
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"matches", len(res.Matches),
		"mismatches", len(res.Mismatches),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func (s *Service) writeSheet(f *excelize.File, sheet string, rows []reconcile.Row) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := make([]string, 0, len(constants.Fields)+2)
	for _, field := range constants.Fields {
		headers = append(headers, string(field))
	}
	headers = append(headers, colFile, colStatus)
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for rowIdx, row := range rows {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, rowIdx+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
		for colIdx, field := range constants.Fields {
			v := row.Fields.Get(field)
			if v.Present {
				write(colIdx+1, v.Text)
			} else {
				write(colIdx+1, "")
			}
		}
		write(len(constants.Fields)+1, row.SourceFile)
		write(len(constants.Fields)+2, string(row.Provenance))
	}

	// Widen columns: fields, then file name, then status
	_ = f.SetColWidth(sheet, "A", "A", 18)
	_ = f.SetColWidth(sheet, "B", "D", 14)
	_ = f.SetColWidth(sheet, "E", "E", 40)
	_ = f.SetColWidth(sheet, "F", "F", 18)
	return nil
}
