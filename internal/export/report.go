package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/onec-tools/invoice-recon/constants"
	"github.com/onec-tools/invoice-recon/internal/entity"
	"github.com/onec-tools/invoice-recon/internal/reconcile"
)

// ReportRow is one joined row in the JSON report. A null field means absent.
// Reference carries the disagreeing 1C side on DIFFERING rows.
type ReportRow struct {
	InvoiceNumber *string       `json:"invoice_number"`
	Date          *string       `json:"date"`
	VAT           *string       `json:"vat"`
	Total         *string       `json:"total"`
	SourceFile    string        `json:"source_file,omitempty"`
	Provenance    string        `json:"provenance"`
	Reference     *ReportFields `json:"reference,omitempty"`
}

// ReportFields is the four-slot tuple of one side.
type ReportFields struct {
	InvoiceNumber *string `json:"invoice_number"`
	Date          *string `json:"date"`
	VAT           *string `json:"vat"`
	Total         *string `json:"total"`
}

// DocumentFailure identifies one document the batch could not process.
type DocumentFailure struct {
	File    string `json:"file"`
	Kind    string `json:"kind"` // UNREADABLE_DOCUMENT | OCR_ENGINE | OTHER
	Message string `json:"message"`
}

// Summary provides high-level statistics of the reconciliation run.
type Summary struct {
	BatchID          string `json:"batch_id"`
	PDFRecords       int    `json:"pdf_records"`
	ReferenceRecords int    `json:"reference_records"`
	Matched          int    `json:"matched"`
	Mismatched       int    `json:"mismatched"`
	FailedDocuments  int    `json:"failed_documents"`
}

// Report is the top-level structure for the JSON output.
type Report struct {
	Summary    Summary           `json:"summary"`
	Matches    []ReportRow       `json:"matches"`
	Mismatches []ReportRow       `json:"mismatches"`
	Failures   []DocumentFailure `json:"failures,omitempty"`
}

// BuildReport assembles the batch-level report: the two buckets plus the
// per-document failure list with its kind classification.
func BuildReport(batchID string, pdfRecords, refRecords []entity.Record, res reconcile.Result) Report {
	rep := Report{
		Summary: Summary{
			BatchID:          batchID,
			PDFRecords:       len(pdfRecords),
			ReferenceRecords: len(refRecords),
			Matched:          len(res.Matches),
			Mismatched:       len(res.Mismatches),
		},
		Matches:    reportRows(res.Matches),
		Mismatches: reportRows(res.Mismatches),
	}
	for _, r := range pdfRecords {
		if !r.Failed() {
			continue
		}
		rep.Summary.FailedDocuments++
		rep.Failures = append(rep.Failures, DocumentFailure{
			File:    r.SourceFile,
			Kind:    r.FailureKind,
			Message: r.Failure,
		})
	}
	return rep
}

// MarshalReport validates the report against its schema and renders it as
// indented JSON.
func MarshalReport(rep Report) ([]byte, error) {
	b, err := json.Marshal(rep)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	if err := validateReport(b); err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, b, "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func reportRows(rows []reconcile.Row) []ReportRow {
	out := make([]ReportRow, 0, len(rows))
	for _, row := range rows {
		r := ReportRow{
			InvoiceNumber: fieldPtr(row.Fields, constants.FieldInvoiceNumber),
			Date:          fieldPtr(row.Fields, constants.FieldDate),
			VAT:           fieldPtr(row.Fields, constants.FieldVAT),
			Total:         fieldPtr(row.Fields, constants.FieldTotal),
			SourceFile:    row.SourceFile,
			Provenance:    string(row.Provenance),
		}
		if row.RefFields != nil {
			r.Reference = &ReportFields{
				InvoiceNumber: fieldPtr(*row.RefFields, constants.FieldInvoiceNumber),
				Date:          fieldPtr(*row.RefFields, constants.FieldDate),
				VAT:           fieldPtr(*row.RefFields, constants.FieldVAT),
				Total:         fieldPtr(*row.RefFields, constants.FieldTotal),
			}
		}
		out = append(out, r)
	}
	return out
}

func fieldPtr(fs entity.FieldSet, f constants.Field) *string {
	v := fs.Get(f)
	if !v.Present {
		return nil
	}
	return &v.Text
}

// buildReportJSONSchema constrains the report shape before it is written
// out, mirroring the row-level schema check on the input side.
func buildReportJSONSchema() map[string]any {
	nullableString := map[string]any{"type": []string{"string", "null"}}
	rowSchema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"invoice_number": nullableString,
			"date":           nullableString,
			"vat":            nullableString,
			"total":          nullableString,
			"source_file":    map[string]any{"type": "string"},
			"provenance": map[string]any{
				"type": "string",
				"enum": []string{
					string(constants.ProvenanceMatched),
					string(constants.ProvenancePDFOnly),
					string(constants.ProvenanceRefOnly),
					string(constants.ProvenanceDiffering),
				},
			},
		},
		"required": []string{"invoice_number", "date", "vat", "total", "provenance"},
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary": map[string]any{
				"type":     "object",
				"required": []string{"batch_id", "pdf_records", "reference_records", "matched", "mismatched"},
			},
			"matches":    map[string]any{"type": "array", "items": rowSchema},
			"mismatches": map[string]any{"type": "array", "items": rowSchema},
			"failures":   map[string]any{"type": "array"},
		},
		"required": []string{"summary", "matches", "mismatches"},
	}
}

var reportSchema = mustCompileSchema(buildReportJSONSchema())

func validateReport(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal report: %w", err)
	}
	if err := reportSchema.Validate(v); err != nil {
		return fmt.Errorf("report does not match schema: %w", err)
	}
	return nil
}

func mustCompileSchema(schemaMap map[string]any) *jsonschema.Schema {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		panic(fmt.Sprintf("marshal schema: %v", err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		panic(fmt.Sprintf("add schema: %v", err))
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		panic(fmt.Sprintf("compile schema: %v", err))
	}
	return schema
}
