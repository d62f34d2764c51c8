package nlp

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/apl83/invoice-nlp/constants"
)

var (
	reParty     = regexp.MustCompile(`[^a-z0-9]`)
	umlautFolds = strings.NewReplacer("ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss")
)

// normalizeParty folds a name or address into a comparable key: lowercase,
// transliterated umlauts, alphanumerics only.
func normalizeParty(value string) string {
	text := umlautFolds.Replace(strings.ToLower(strings.TrimSpace(value)))
	return reParty.ReplaceAllString(text, "")
}

type partyReference struct {
	name   string
	street string
	city   string
}

var reference = partyReference{
	name:   normalizeParty(constants.ReferenceCompany.Name),
	street: normalizeParty(constants.ReferenceCompany.Street),
	city:   normalizeParty(constants.ReferenceCompany.City),
}

// matchesReference compares the three party fields under the given prefix
// against the operator identity. All three must match exactly; a partial
// match never counts.
func matchesReference(values map[string]any, prefix string) bool {
	checks := []struct {
		suffix   string
		expected string
	}{
		{"NAME", reference.name},
		{"ADDRESS_STREET", reference.street},
		{"ADDRESS_CITY", reference.city},
	}
	for _, c := range checks {
		candidate := normalizeParty(valueString(values[prefix+"_"+c.suffix]))
		if candidate == "" || candidate != c.expected {
			return false
		}
	}
	return true
}

// DetectInvoiceType classifies the document direction: OUTGOING when the
// supplier fields are the operator itself, INGOING when the customer fields
// are, UNKNOWN otherwise.
func DetectInvoiceType(values map[string]any) constants.InvoiceType {
	if matchesReference(values, "SUPPLIER") {
		return constants.InvoiceOutgoing
	}
	if matchesReference(values, "CUSTOMER") {
		return constants.InvoiceIngoing
	}
	return constants.InvoiceUnknown
}

// valueString renders a normalized field value the way it appears in JSON
// output; numbers drop their trailing zeros.
func valueString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}
