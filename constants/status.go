package constants

// Provenance is the canonical classification for rows in a reconciliation
// result.
type Provenance string

// Stable values (store these exact strings in reports).
const (
	ProvenanceMatched   Provenance = "MATCHED"        // key tuple present on both sides
	ProvenancePDFOnly   Provenance = "PDF_ONLY"       // key tuple present only in the PDF batch
	ProvenanceRefOnly   Provenance = "REFERENCE_ONLY" // key tuple present only in the 1C table
	ProvenanceDiffering Provenance = "DIFFERING"      // same invoice number on both sides, other fields differ
)
