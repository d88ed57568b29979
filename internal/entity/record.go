package entity

import (
	"github.com/onec-tools/invoice-recon/constants"
)

// Value is an extracted field value that may be absent. Absence is a valid
// terminal state, not a failure: a document with no recognizable VAT line
// still produces a complete record.
type Value struct {
	Text    string
	Present bool
}

// Some wraps a concrete field value.
func Some(text string) Value {
	return Value{Text: text, Present: true}
}

// Absent is the zero Value.
var Absent = Value{}

// FieldSet carries all four field slots of a record, each value-or-absent.
// The struct form guarantees the four-slot invariant by construction.
type FieldSet struct {
	InvoiceNumber Value
	Date          Value
	VAT           Value
	Total         Value
}

// Get returns the slot for f.
func (fs FieldSet) Get(f constants.Field) Value {
	switch f {
	case constants.FieldInvoiceNumber:
		return fs.InvoiceNumber
	case constants.FieldDate:
		return fs.Date
	case constants.FieldVAT:
		return fs.VAT
	case constants.FieldTotal:
		return fs.Total
	}
	return Absent
}

// Set assigns the slot for f.
func (fs *FieldSet) Set(f constants.Field, v Value) {
	switch f {
	case constants.FieldInvoiceNumber:
		fs.InvoiceNumber = v
	case constants.FieldDate:
		fs.Date = v
	case constants.FieldVAT:
		fs.VAT = v
	case constants.FieldTotal:
		fs.Total = v
	}
}

// Key is the reconciliation key: the ordered four-field tuple. Two records
// denote the same invoice iff their keys compare equal, where a slot absent
// on both sides also counts as equal. FieldSet is comparable, so a Key can
// index the per-side multimaps directly.
type Key = FieldSet

// Record is one row of either reconciliation input: the four field slots
// plus, on the PDF side, the source file name. Immutable once produced.
type Record struct {
	Fields     FieldSet
	SourceFile string // base file name; empty for reference rows

	// Failure carries the per-document error annotation for a sentinel
	// record (all fields absent). Empty on healthy records. FailureKind is
	// the report classification (see common.FailureKind).
	Failure     string
	FailureKind string
}

// Key returns the record's reconciliation key.
func (r Record) Key() Key {
	return r.Fields
}

// Failed reports whether the record is a per-document failure sentinel.
func (r Record) Failed() bool {
	return r.Failure != ""
}
