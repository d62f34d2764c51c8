package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/apl83/invoice-nlp/constants"
)

func TestDetectInvoiceTypeOutgoing(t *testing.T) {
	values := map[string]any{
		"SUPPLIER_NAME":           "Mustergesellschaft mbH",
		"SUPPLIER_ADDRESS_STREET": "Musterstr. 11",
		"SUPPLIER_ADDRESS_CITY":   "12345 Musterstadt",
	}
	assert.Equal(t, constants.InvoiceOutgoing, DetectInvoiceType(values))
}

func TestDetectInvoiceTypeIngoing(t *testing.T) {
	values := map[string]any{
		"SUPPLIER_NAME":           "Fremdfirma GmbH",
		"CUSTOMER_NAME":           "MUSTERGESELLSCHAFT MBH",
		"CUSTOMER_ADDRESS_STREET": "Musterstr 11",
		"CUSTOMER_ADDRESS_CITY":   "12345 Musterstadt",
	}
	assert.Equal(t, constants.InvoiceIngoing, DetectInvoiceType(values))
}

func TestDetectInvoiceTypePartialMatchIsUnknown(t *testing.T) {
	values := map[string]any{
		"SUPPLIER_NAME":           "Mustergesellschaft mbH",
		"SUPPLIER_ADDRESS_STREET": "Musterstr. 12",
		"SUPPLIER_ADDRESS_CITY":   "12345 Musterstadt",
	}
	assert.Equal(t, constants.InvoiceUnknown, DetectInvoiceType(values))
}

func TestDetectInvoiceTypeEmptyFieldsAreUnknown(t *testing.T) {
	assert.Equal(t, constants.InvoiceUnknown, DetectInvoiceType(map[string]any{}))
	assert.Equal(t, constants.InvoiceUnknown, DetectInvoiceType(map[string]any{
		"SUPPLIER_NAME":           "",
		"SUPPLIER_ADDRESS_STREET": "",
		"SUPPLIER_ADDRESS_CITY":   "",
	}))
}

func TestNormalizePartyFoldsUmlauts(t *testing.T) {
	assert.Equal(t, "mustergesellschaftmbh", normalizeParty(" Mustergesellschaft mbH "))
	assert.Equal(t, "muellerstrasse", normalizeParty("Müllerstraße"))
	assert.Equal(t, "12345musterstadt", normalizeParty("12345 Musterstadt"))
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "abc", valueString("abc"))
	assert.Equal(t, "1234.56", valueString(1234.56))
	assert.Equal(t, "12", valueString(12.0))
	assert.Equal(t, "", valueString(nil))
	assert.Equal(t, "", valueString([]string{"x"}))
}
