package prompts

import (
	"github.com/jonathan/presence-audit/internal/types"
)

const (
	// AuditFile is the embedded prompt file holding the audit templates.
	AuditFile = "audit.json"
	// KeyAuditReport is the main report instruction template.
	KeyAuditReport = "audit-report"
	// KeyCurrencyDirective is the currency sub-template.
	KeyCurrencyDirective = "currency-directive"

	// CategoryAutoDetect is substituted when no category was supplied.
	CategoryAutoDetect = "Auto-detect"
	// GenericContact is substituted when no contact name was supplied.
	GenericContact = "Business Owner"
)

// CurrencyDirective renders the instruction telling the model which currency to report in.
func CurrencyDirective(cur types.Currency) string {
	return Format(MustGet(AuditFile, KeyCurrencyDirective), map[string]string{
		"CurrencyLabel":  cur.Label,
		"CurrencySymbol": cur.Symbol,
	})
}

// AssembleAudit builds the single instruction string sent to the model.
// Required fields are inserted verbatim; an empty category or contact name is
// replaced by a fixed placeholder. The request is not validated here.
func AssembleAudit(req types.AuditRequest, cur types.Currency) string {
	category := req.Category
	if category == "" {
		category = CategoryAutoDetect
	}
	contact := req.ContactName
	if contact == "" {
		contact = GenericContact
	}

	return Format(MustGet(AuditFile, KeyAuditReport), map[string]string{
		"BusinessName":      req.BusinessName,
		"Location":          req.Location,
		"Category":          category,
		"ContactName":       contact,
		"CurrencyDirective": CurrencyDirective(cur),
	})
}
