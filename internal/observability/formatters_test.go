package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jonathan/presence-audit/internal/types"
)

func TestPrintAuditRequest(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintAuditRequest(types.AuditRequest{
		BusinessName: "Joe's Pizza",
		Location:     "Brooklyn, NY",
	}, types.Currency{Code: "USD", Symbol: "$", Label: "US Dollar"})
	output := buf.String()

	assert.Contains(t, output, "AUDIT REQUEST")
	assert.Contains(t, output, "Joe's Pizza")
	assert.Contains(t, output, "Brooklyn, NY")
	assert.Contains(t, output, "Auto-detect")
	assert.Contains(t, output, "Business Owner")
	assert.Contains(t, output, "USD ($)")
}

func TestPrintAuditRequest_ExplicitFields(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintAuditRequest(types.AuditRequest{
		BusinessName: "Cafe",
		Location:     "Paris",
		Category:     "Coffee shop",
		ContactName:  "Marie",
	}, types.Currency{Code: "EUR", Symbol: "€"})
	output := buf.String()

	assert.Contains(t, output, "Coffee shop")
	assert.Contains(t, output, "Marie")
	assert.NotContains(t, output, "Auto-detect")
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	id := uuid.New()
	p.PrintReport(types.Report{
		ID:        id,
		Currency:  "GBP",
		Title:     "Cafe Audit",
		Fragment:  `<h1>Cafe Audit</h1><div class="page-break"></div><p>Two</p>`,
		CreatedAt: time.Now(),
	})
	output := buf.String()

	assert.Contains(t, output, "AUDIT REPORT")
	assert.Contains(t, output, "Cafe Audit")
	assert.Contains(t, output, id.String())
	assert.Contains(t, output, "GBP")
	assert.Contains(t, output, "Pages:    2")
}

func TestPrintBox_TruncatesByRune(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("T", strings.Repeat("€", 100))

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.Equal(t, boxWidth, utf8.RuneCountInString(line), "line %q", line)
	}
	assert.Contains(t, buf.String(), "...")
}
