package export

import (
	"fmt"
	"strings"
)

// PageFormat is the paper size of the exported PDF
type PageFormat string

// PageFormat constants
const (
	FormatA4     PageFormat = "a4"
	FormatLetter PageFormat = "letter"
)

// PageBreakMode controls how the document tells the renderer where to break pages
type PageBreakMode string

// PageBreakMode constants
const (
	// BreakCSS breaks after every page-break marker and nowhere else is forced.
	BreakCSS PageBreakMode = "css"
	// BreakAvoidAll also asks the renderer not to split tables, figures and headings.
	BreakAvoidAll PageBreakMode = "avoid-all"
)

const mmPerInch = 25.4

// PDFOptions configures PDF rendering
type PDFOptions struct {
	MarginMM      float64       `json:"margin_mm"`
	Scale         float64       `json:"scale"`
	Format        PageFormat    `json:"format"`
	PageBreakMode PageBreakMode `json:"page_break_mode"`
}

// DefaultPDFOptions returns 10mm margins, scale 1, A4 paper and CSS page breaks.
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		MarginMM:      10,
		Scale:         1,
		Format:        FormatA4,
		PageBreakMode: BreakCSS,
	}
}

// Validate checks the options against what the renderers accept.
func (o PDFOptions) Validate() error {
	if o.MarginMM < 0 || o.MarginMM > 50 {
		return fmt.Errorf("pdf margin must be between 0 and 50mm, got %v", o.MarginMM)
	}
	// Chrome's printToPDF accepts scales between 0.1 and 2.
	if o.Scale < 0.1 || o.Scale > 2 {
		return fmt.Errorf("pdf scale must be between 0.1 and 2, got %v", o.Scale)
	}
	if _, _, err := o.Format.Size(); err != nil {
		return err
	}
	switch o.PageBreakMode {
	case BreakCSS, BreakAvoidAll:
	default:
		return fmt.Errorf("unknown page break mode %q", o.PageBreakMode)
	}
	return nil
}

// MarginInches returns the margin converted to inches.
func (o PDFOptions) MarginInches() float64 {
	return o.MarginMM / mmPerInch
}

// Size returns the paper width and height in inches.
func (f PageFormat) Size() (width, height float64, err error) {
	switch PageFormat(strings.ToLower(string(f))) {
	case FormatA4:
		return 8.27, 11.69, nil
	case FormatLetter:
		return 8.5, 11, nil
	default:
		return 0, 0, fmt.Errorf("unknown page format %q", f)
	}
}
