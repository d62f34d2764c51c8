package constants

// FieldType decides how a raw extracted value is normalized.
type FieldType string

const (
	FieldText   FieldType = "text"
	FieldDate   FieldType = "date"
	FieldNumber FieldType = "number"
)

// FieldSpec ties an entity label to its value type.
type FieldSpec struct {
	Name string
	Type FieldType
}

// FieldSpecs is the canonical field table. Its order defines the output order
// of extraction results; labels not listed here are discarded.
var FieldSpecs = []FieldSpec{
	{"INVOICE_NO", FieldText},
	{"INVOICE_DATE", FieldDate},
	{"SERVICE_DATE", FieldDate},
	{"SUPPLIER_NAME", FieldText},
	{"SUPPLIER_ADDRESS_STREET", FieldText},
	{"SUPPLIER_ADDRESS_CITY", FieldText},
	{"CUSTOMER_NAME", FieldText},
	{"CUSTOMER_ADDRESS_STREET", FieldText},
	{"CUSTOMER_ADDRESS_CITY", FieldText},
	{"VAT_ID", FieldText},
	{"TAX_ID", FieldText},
	{"PAYMENT_TERMS", FieldText},
	{"TOTAL_GROSS", FieldNumber},
	{"IBAN", FieldText},
	{"BIC", FieldText},
	{"BANK_NAME", FieldText},
}

var fieldTypes = func() map[string]FieldType {
	m := make(map[string]FieldType, len(FieldSpecs))
	for _, s := range FieldSpecs {
		m[s.Name] = s.Type
	}
	return m
}()

// FieldOrder returns the field labels in canonical order.
func FieldOrder() []string {
	names := make([]string, len(FieldSpecs))
	for i, s := range FieldSpecs {
		names[i] = s.Name
	}
	return names
}

// TypeOf returns the value type for a label, defaulting to text.
func TypeOf(label string) FieldType {
	if t, ok := fieldTypes[label]; ok {
		return t
	}
	return FieldText
}

// IsKnownField reports whether the label is part of the field table.
func IsKnownField(label string) bool {
	_, ok := fieldTypes[label]
	return ok
}
