package extract

import (
	"regexp"

	"github.com/onec-tools/invoice-recon/constants"
)

// Rule ties one field to its labeled-pattern signature: a label resembling
// the field name followed, possibly with intervening words on the same line,
// by a format-constrained value in the first capture group.
type Rule struct {
	Field   constants.Field
	Pattern *regexp.Regexp
}

// DefaultRules is the ordered rule table for 1C-style invoices. Matching is
// case-insensitive and the first match per rule wins; a document with a
// duplicate label (e.g. a repeated VAT sub-total) yields the first
// occurrence.
var DefaultRules = []Rule{
	{constants.FieldInvoiceNumber, regexp.MustCompile(`(?i)Счёт[-\s]?фактура.*?№\s*(\S+)`)},
	{constants.FieldDate, regexp.MustCompile(`(?i)Дата.*?(\d{2}\.\d{2}\.\d{4})`)},
	{constants.FieldVAT, regexp.MustCompile(`(?i)НДС.*?(\d+,\d+)`)},
	{constants.FieldTotal, regexp.MustCompile(`(?i)Сумма.*?([\d\s]+,\d+)`)},
}
