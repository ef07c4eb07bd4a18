// Package observability provides formatted output utilities for plain CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/presence-audit/internal/prompts"
	"github.com/jonathan/presence-audit/internal/sanitize"
	"github.com/jonathan/presence-audit/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
)

// Printer handles formatted output for plain mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(line))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad truncates or right-pads line to the inner box width, counting runes.
func pad(line string) string {
	width := boxWidth - 4
	n := utf8.RuneCountInString(line)
	if n > width {
		r := []rune(line)
		return string(r[:width-3]) + "..."
	}
	return line + strings.Repeat(" ", width-n)
}

// PrintAuditRequest outputs the business being audited, with defaults applied
// to the optional fields the way the prompt does.
func (p *Printer) PrintAuditRequest(req types.AuditRequest, cur types.Currency) {
	category := req.Category
	if category == "" {
		category = prompts.CategoryAutoDetect
	}
	contact := req.ContactName
	if contact == "" {
		contact = prompts.GenericContact
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Business: %s\n", req.BusinessName)
	fmt.Fprintf(&sb, "Location: %s\n", req.Location)
	fmt.Fprintf(&sb, "Category: %s\n", category)
	fmt.Fprintf(&sb, "Contact:  %s\n", contact)
	fmt.Fprintf(&sb, "Currency: %s (%s)", cur.Code, cur.Symbol)

	p.printBox("AUDIT REQUEST", sb.String())
}

// PrintReport outputs a summary of a generated report.
func (p *Printer) PrintReport(report types.Report) {
	var sb strings.Builder
	title := report.Title
	if title == "" {
		title = "(untitled)"
	}
	fmt.Fprintf(&sb, "Title:    %s\n", title)
	fmt.Fprintf(&sb, "ID:       %s\n", report.ID)
	fmt.Fprintf(&sb, "Currency: %s\n", report.Currency)
	fmt.Fprintf(&sb, "Pages:    %d\n", sanitize.CountPageBreaks(report.Fragment)+1)
	fmt.Fprintf(&sb, "Size:     %d bytes", len(report.Fragment))

	p.printBox("AUDIT REPORT", sb.String())
}
