package constants

// InvoiceType classifies whether the document was issued by us or sent to us.
type InvoiceType string

const (
	InvoiceOutgoing InvoiceType = "OUTGOING"
	InvoiceIngoing  InvoiceType = "INGOING"
	InvoiceUnknown  InvoiceType = "UNKNOWN"
)

// CompanyIdentity is the operator's own identity, compared against
// supplier/customer fields during invoice direction classification.
type CompanyIdentity struct {
	Name   string
	Street string
	City   string
}

// ReferenceCompany is the fixed identity of the system operator.
var ReferenceCompany = CompanyIdentity{
	Name:   "Mustergesellschaft mbH",
	Street: "Musterstr. 11",
	City:   "12345 Musterstadt",
}
