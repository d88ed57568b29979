// Package reconcile implements the deterministic outer join between the
// PDF-extracted batch and the 1C reference table.
package reconcile

import (
	"github.com/onec-tools/invoice-recon/constants"
	"github.com/onec-tools/invoice-recon/internal/entity"
)

// Row is one joined output row: the four fields, the PDF-side source file
// (empty for reference-only rows), and the provenance class. For DIFFERING
// rows Fields holds the PDF side and RefFields the disagreeing reference
// side.
type Row struct {
	Fields     entity.FieldSet
	RefFields  *entity.FieldSet
	SourceFile string
	Provenance constants.Provenance
	Failure    string // carried over from a per-document failure sentinel
}

// Result partitions the joined rows into the two disjoint buckets.
type Result struct {
	Matches    []Row
	Mismatches []Row
}

// Reconcile performs a full outer join on the four-field key tuple and
// partitions the rows into matches and mismatches. Pure function of its two
// inputs; ordering is only guaranteed as "all matches together, all
// mismatches together".
//
// Duplicate keys within one side are NOT deduplicated: each pdf/reference
// combination under the same key produces a separate matched row per
// Cartesian pairing. This "all pairings" semantic is deliberate and covered
// by tests.
//
// A slot absent on both sides compares equal, so two records with no
// recognizable fields at all still pair up. Failure sentinels are the
// exception: they never join and always land in mismatches, since their
// all-absent key reflects a lost document, not an empty one.
//
// One-sided rows that share an invoice number across sides are paired into a
// single DIFFERING row: the two sides saw the same invoice but disagree on
// its other fields.
func Reconcile(pdfRecords, refRecords []entity.Record) Result {
	pdfIdx, pdfKeys, pdfFailed := index(pdfRecords)
	refIdx, refKeys, _ := index(refRecords)

	var res Result
	var pdfOnly, refOnly []Row

	// Union of keys: pdf-side first-appearance order, then reference-only
	// keys. Deterministic, but callers must not rely on it.
	for _, key := range pdfKeys {
		pdfRecs := pdfIdx[key]
		refRecs, ok := refIdx[key]
		if !ok {
			for _, p := range pdfRecs {
				pdfOnly = append(pdfOnly, Row{
					Fields:     p.Fields,
					SourceFile: p.SourceFile,
					Provenance: constants.ProvenancePDFOnly,
				})
			}
			continue
		}
		for _, p := range pdfRecs {
			for range refRecs {
				res.Matches = append(res.Matches, Row{
					Fields:     p.Fields,
					SourceFile: p.SourceFile,
					Provenance: constants.ProvenanceMatched,
				})
			}
		}
	}
	for _, key := range refKeys {
		if _, ok := pdfIdx[key]; ok {
			continue
		}
		for range refIdx[key] {
			refOnly = append(refOnly, Row{
				Fields:     key,
				Provenance: constants.ProvenanceRefOnly,
			})
		}
	}

	res.Mismatches = pairDiffering(pdfOnly, refOnly)

	for _, p := range pdfFailed {
		res.Mismatches = append(res.Mismatches, Row{
			Fields:     p.Fields,
			SourceFile: p.SourceFile,
			Provenance: constants.ProvenancePDFOnly,
			Failure:    p.Failure,
		})
	}
	return res
}

// index builds the key-tuple multimap for one side, keeping first-appearance
// key order and setting failure sentinels aside.
func index(records []entity.Record) (map[entity.Key][]entity.Record, []entity.Key, []entity.Record) {
	idx := make(map[entity.Key][]entity.Record, len(records))
	var keys []entity.Key
	var failed []entity.Record
	for _, r := range records {
		if r.Failed() {
			failed = append(failed, r)
			continue
		}
		key := r.Key()
		if _, ok := idx[key]; !ok {
			keys = append(keys, key)
		}
		idx[key] = append(idx[key], r)
	}
	return idx, keys, failed
}

// pairDiffering merges one-sided rows sharing an invoice number into single
// DIFFERING rows, one-to-one in order of appearance. Leftovers keep their
// one-sided provenance.
func pairDiffering(pdfOnly, refOnly []Row) []Row {
	byInvoice := make(map[string][]int)
	for i, row := range refOnly {
		if row.Fields.InvoiceNumber.Present {
			num := row.Fields.InvoiceNumber.Text
			byInvoice[num] = append(byInvoice[num], i)
		}
	}

	taken := make([]bool, len(refOnly))
	out := make([]Row, 0, len(pdfOnly)+len(refOnly))
	for _, row := range pdfOnly {
		if row.Fields.InvoiceNumber.Present {
			num := row.Fields.InvoiceNumber.Text
			if idxs := byInvoice[num]; len(idxs) > 0 {
				i := idxs[0]
				byInvoice[num] = idxs[1:]
				taken[i] = true
				ref := refOnly[i].Fields
				row.RefFields = &ref
				row.Provenance = constants.ProvenanceDiffering
			}
		}
		out = append(out, row)
	}
	for i, row := range refOnly {
		if !taken[i] {
			out = append(out, row)
		}
	}
	return out
}
