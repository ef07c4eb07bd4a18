package prompts

import (
	"testing"

	"github.com/jonathan/presence-audit/internal/types"
	"github.com/stretchr/testify/assert"
)

var euro = types.Currency{Code: "EUR", Symbol: "€", Label: "Euro"}

func TestAssembleAudit_SubstitutesFields(t *testing.T) {
	req := types.AuditRequest{
		BusinessName: "Café Lumière",
		Location:     "Lyon, France",
		Category:     "Coffee shop",
		ContactName:  "Mme Durand",
	}

	prompt := AssembleAudit(req, euro)

	assert.Contains(t, prompt, "Business name: Café Lumière")
	assert.Contains(t, prompt, "Location: Lyon, France")
	assert.Contains(t, prompt, "Category: Coffee shop")
	assert.Contains(t, prompt, "Prepared for Mme Durand")
	assert.NotContains(t, prompt, CategoryAutoDetect)
	assert.NotContains(t, prompt, GenericContact)
	assert.Empty(t, Placeholders(prompt))
}

func TestAssembleAudit_OptionalFieldDefaults(t *testing.T) {
	req := types.AuditRequest{BusinessName: "Joe's Pizza", Location: "Austin, TX"}

	prompt := AssembleAudit(req, euro)

	assert.Contains(t, prompt, "Category: "+CategoryAutoDetect)
	assert.Contains(t, prompt, "Prepared for: "+GenericContact)
	assert.Empty(t, Placeholders(prompt))
}

func TestAssembleAudit_NoResidualPlaceholders(t *testing.T) {
	requests := []types.AuditRequest{
		{BusinessName: "A", Location: "B"},
		{BusinessName: "Acme & Sons", Location: "<Springfield>", Category: "Hardware"},
		{BusinessName: "x", Location: "y", ContactName: "z"},
	}
	currencies := []types.Currency{
		euro,
		{Code: "USD", Symbol: "$", Label: "US Dollar"},
		{Code: "INR", Symbol: "₹", Label: "Indian Rupee"},
	}

	for _, req := range requests {
		for _, cur := range currencies {
			prompt := AssembleAudit(req, cur)
			assert.Empty(t, Placeholders(prompt), "request %+v currency %s", req, cur.Code)
			assert.Contains(t, prompt, req.BusinessName)
			assert.Contains(t, prompt, req.Location)
		}
	}
}

func TestAssembleAudit_Deterministic(t *testing.T) {
	req := types.AuditRequest{BusinessName: "Joe's Pizza", Location: "Austin"}
	assert.Equal(t, AssembleAudit(req, euro), AssembleAudit(req, euro))
}

func TestCurrencyDirective(t *testing.T) {
	directive := CurrencyDirective(euro)

	assert.Contains(t, directive, "Euro")
	assert.Contains(t, directive, "€")
	assert.Contains(t, directive, "convert")
	assert.Empty(t, Placeholders(directive))

	prompt := AssembleAudit(types.AuditRequest{BusinessName: "a", Location: "b"}, euro)
	assert.Contains(t, prompt, directive)
}
