package constants

// Field is one of the four recognized invoice attributes.
type Field string

// Stable values (these exact strings are also the 1C export column headers).
const (
	FieldInvoiceNumber Field = "Счёт-фактура"
	FieldDate          Field = "Дата"
	FieldVAT           Field = "НДС"
	FieldTotal         Field = "Сумма"
)

// Fields lists the four attributes in canonical (key tuple) order.
var Fields = []Field{FieldInvoiceNumber, FieldDate, FieldVAT, FieldTotal}

// EnglishName maps a field to the name used in logs and JSON reports.
func (f Field) EnglishName() string {
	switch f {
	case FieldInvoiceNumber:
		return "invoice_number"
	case FieldDate:
		return "date"
	case FieldVAT:
		return "vat"
	case FieldTotal:
		return "total"
	}
	return string(f)
}
