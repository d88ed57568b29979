package export

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/onec-tools/invoice-recon/constants"
	"github.com/onec-tools/invoice-recon/internal/entity"
	"github.com/onec-tools/invoice-recon/internal/reconcile"
)

func sampleResult() reconcile.Result {
	var matched entity.FieldSet
	matched.InvoiceNumber = entity.Some("А-100")
	matched.Date = entity.Some("01.02.2024")
	matched.VAT = entity.Some("10,00")
	matched.Total = entity.Some("120,00")

	var refOnly entity.FieldSet
	refOnly.InvoiceNumber = entity.Some("Б-200")

	return reconcile.Result{
		Matches: []reconcile.Row{
			{Fields: matched, SourceFile: "a100.pdf", Provenance: constants.ProvenanceMatched},
		},
		Mismatches: []reconcile.Row{
			{Fields: refOnly, Provenance: constants.ProvenanceRefOnly},
		},
	}
}

func TestResultXLSX(t *testing.T) {
	b, err := NewService(nil).ResultXLSX(sampleResult())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.ElementsMatch(t, []string{"Совпадения", "Несовпадения"}, f.GetSheetList())

	rows, err := f.GetRows("Совпадения")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Счёт-фактура", "Дата", "НДС", "Сумма", "Файл", "Статус"}, rows[0])
	assert.Equal(t, []string{"А-100", "01.02.2024", "10,00", "120,00", "a100.pdf", "MATCHED"}, rows[1])

	rows, err = f.GetRows("Несовпадения")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Б-200", rows[1][0])
	// excelize trims trailing empty cells; the status lands in the last cell
	assert.Equal(t, "REFERENCE_ONLY", rows[1][len(rows[1])-1])
}

func TestResultXLSX_EmptyResult(t *testing.T) {
	b, err := NewService(nil).ResultXLSX(reconcile.Result{})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Совпадения")
	require.NoError(t, err)
	require.Len(t, rows, 1) // header only
}

func TestBuildReport(t *testing.T) {
	res := sampleResult()
	pdf := []entity.Record{
		{Fields: res.Matches[0].Fields, SourceFile: "a100.pdf"},
		{SourceFile: "broken.pdf", Failure: "unreadable document: broken.pdf", FailureKind: "UNREADABLE_DOCUMENT"},
	}
	ref := []entity.Record{{Fields: res.Matches[0].Fields}, {Fields: res.Mismatches[0].Fields}}

	rep := BuildReport("batch-1", pdf, ref, res)

	assert.Equal(t, "batch-1", rep.Summary.BatchID)
	assert.Equal(t, 2, rep.Summary.PDFRecords)
	assert.Equal(t, 2, rep.Summary.ReferenceRecords)
	assert.Equal(t, 1, rep.Summary.Matched)
	assert.Equal(t, 1, rep.Summary.Mismatched)
	assert.Equal(t, 1, rep.Summary.FailedDocuments)
	require.Len(t, rep.Failures, 1)
	assert.Equal(t, "broken.pdf", rep.Failures[0].File)
	assert.Equal(t, "UNREADABLE_DOCUMENT", rep.Failures[0].Kind)
}

func TestMarshalReport(t *testing.T) {
	rep := BuildReport("batch-2", nil, nil, sampleResult())

	b, err := MarshalReport(rep)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Contains(t, decoded, "summary")

	matches, ok := decoded["matches"].([]any)
	require.True(t, ok)
	require.Len(t, matches, 1)
	row := matches[0].(map[string]any)
	assert.Equal(t, "А-100", row["invoice_number"])
	assert.Equal(t, "MATCHED", row["provenance"])

	mismatches := decoded["mismatches"].([]any)
	require.Len(t, mismatches, 1)
	refRow := mismatches[0].(map[string]any)
	assert.Nil(t, refRow["date"]) // absent serializes as null
}

func TestMarshalReport_DifferingCarriesReferenceSide(t *testing.T) {
	var pdfSide, refSide entity.FieldSet
	pdfSide.InvoiceNumber = entity.Some("А-1")
	pdfSide.Total = entity.Some("120,00")
	refSide.InvoiceNumber = entity.Some("А-1")
	refSide.Total = entity.Some("121,00")

	res := reconcile.Result{Mismatches: []reconcile.Row{{
		Fields:     pdfSide,
		RefFields:  &refSide,
		SourceFile: "a1.pdf",
		Provenance: constants.ProvenanceDiffering,
	}}}

	b, err := MarshalReport(BuildReport("batch-3", nil, nil, res))
	require.NoError(t, err)

	var decoded Report
	require.NoError(t, json.Unmarshal(b, &decoded))
	require.Len(t, decoded.Mismatches, 1)
	row := decoded.Mismatches[0]
	require.NotNil(t, row.Reference)
	require.NotNil(t, row.Reference.Total)
	assert.Equal(t, "121,00", *row.Reference.Total)
	require.NotNil(t, row.Total)
	assert.Equal(t, "120,00", *row.Total)
}
