package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldOrderIsStable(t *testing.T) {
	order := FieldOrder()
	assert.Len(t, order, 16)
	assert.Equal(t, "INVOICE_NO", order[0])
	assert.Equal(t, "BANK_NAME", order[len(order)-1])
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, FieldDate, TypeOf("INVOICE_DATE"))
	assert.Equal(t, FieldNumber, TypeOf("TOTAL_GROSS"))
	assert.Equal(t, FieldText, TypeOf("IBAN"))
	// unrecognized labels fall back to text
	assert.Equal(t, FieldText, TypeOf("SOMETHING_ELSE"))
}

func TestIsKnownField(t *testing.T) {
	assert.True(t, IsKnownField("VAT_ID"))
	assert.False(t, IsKnownField("vat_id"))
	assert.False(t, IsKnownField(""))
}
