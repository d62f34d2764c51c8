package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apl83/invoice-nlp/constants"
)

func fieldByName(t *testing.T, fields []Field, name string) Field {
	t.Helper()
	for _, f := range fields {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("field %s not in result", name)
	return Field{}
}

func TestBuildFieldsEnumeratesEveryLabel(t *testing.T) {
	fields, hits := BuildFields(nil, nil, nil)

	assert.Zero(t, hits)
	require.Len(t, fields, len(constants.FieldOrder()))
	for i, name := range constants.FieldOrder() {
		assert.Equal(t, name, fields[i].Name)
		assert.Equal(t, "", fields[i].Value)
		assert.Zero(t, fields[i].Confidence)
	}
}

func TestBuildFieldsNormalizesByType(t *testing.T) {
	extractions := []Extraction{
		{Label: "INVOICE_NO", Value: " RE-2024-001 "},
		{Label: "INVOICE_DATE", Value: "15. März 2024"},
		{Label: "TOTAL_GROSS", Value: "1.234,56 €"},
	}
	fields, hits := BuildFields(extractions, nil, nil)

	assert.Equal(t, 3, hits)
	assert.Equal(t, "RE-2024-001", fieldByName(t, fields, "INVOICE_NO").Value)
	assert.Equal(t, "2024-03-15", fieldByName(t, fields, "INVOICE_DATE").Value)
	assert.Equal(t, 1234.56, fieldByName(t, fields, "TOTAL_GROSS").Value)
}

func TestBuildFieldsUnparseableValueBecomesEmpty(t *testing.T) {
	extractions := []Extraction{
		{Label: "INVOICE_DATE", Value: "kein Datum"},
	}
	fields, hits := BuildFields(extractions, nil, map[string]float64{"INVOICE_DATE": 0.9})

	assert.Zero(t, hits)
	f := fieldByName(t, fields, "INVOICE_DATE")
	assert.Equal(t, "", f.Value)
	assert.Zero(t, f.Confidence)
}

func TestBuildFieldsFirstExtractionWins(t *testing.T) {
	extractions := []Extraction{
		{Label: "INVOICE_NO", Value: "RE-1"},
		{Label: "INVOICE_NO", Value: "RE-2"},
	}
	fields, hits := BuildFields(extractions, nil, nil)

	assert.Equal(t, 1, hits)
	assert.Equal(t, "RE-1", fieldByName(t, fields, "INVOICE_NO").Value)
}

func TestBuildFieldsConfidenceFallsBackToDefault(t *testing.T) {
	def := 0.5
	extractions := []Extraction{
		{Label: "INVOICE_NO", Value: "RE-1"},
		{Label: "SUPPLIER_NAME", Value: "Acme"},
	}
	fields, _ := BuildFields(extractions, &def, map[string]float64{"SUPPLIER_NAME": 0.91})

	assert.InDelta(t, 0.5, fieldByName(t, fields, "INVOICE_NO").Confidence, 1e-9)
	assert.InDelta(t, 0.91, fieldByName(t, fields, "SUPPLIER_NAME").Confidence, 1e-9)
}

func TestValueMap(t *testing.T) {
	fields := []Field{
		{Name: "INVOICE_NO", Value: "RE-1"},
		{Name: "TOTAL_GROSS", Value: 12.5},
	}
	m := ValueMap(fields)
	assert.Equal(t, "RE-1", m["INVOICE_NO"])
	assert.Equal(t, 12.5, m["TOTAL_GROSS"])
}
