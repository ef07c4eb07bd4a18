package export

import (
	"html/template"
	"strings"
	"time"
	"unicode"

	"github.com/jonathan/presence-audit/internal/types"
)

// documentTemplate is the standalone page a report is downloaded as. Styling is
// inline and fixed so the file renders the same offline.
var documentTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
  body { font-family: "Helvetica Neue", Arial, sans-serif; color: #1f2933; margin: 0; background: #ffffff; line-height: 1.55; }
  .report { max-width: 820px; margin: 0 auto; padding: 32px 40px; }
  h1 { font-size: 28px; color: #102a43; margin: 0 0 12px; }
  h2 { font-size: 21px; color: #243b53; border-bottom: 2px solid #d9e2ec; padding-bottom: 6px; margin-top: 28px; }
  h3 { font-size: 17px; color: #334e68; }
  table { width: 100%; border-collapse: collapse; margin: 16px 0; font-size: 14px; }
  th, td { border: 1px solid #d9e2ec; padding: 8px 10px; text-align: left; vertical-align: top; }
  th { background: #f0f4f8; }
  .page-break { page-break-after: always; break-after: page; height: 0; }
  @media print { .report { padding: 0; } }
{{- if .AvoidSplits}}
  table, figure, h1, h2, h3, li { page-break-inside: avoid; break-inside: avoid; }
  h1, h2, h3 { page-break-after: avoid; break-after: avoid; }
{{- end}}
</style>
</head>
<body>
<main class="report">
{{.Fragment}}
</main>
</body>
</html>
`))

type documentData struct {
	Title       string
	Fragment    template.HTML
	AvoidSplits bool
}

// BuildDocument wraps the report fragment in a minimal static HTML document.
// The fragment is inserted as-is; it must already have been sanitized.
func BuildDocument(report types.Report, mode PageBreakMode) (string, error) {
	title := report.Title
	if title == "" {
		title = report.Request.BusinessName + " - Digital Presence Audit"
	}

	var sb strings.Builder
	err := documentTemplate.Execute(&sb, documentData{
		Title:       title,
		Fragment:    template.HTML(report.Fragment), //nolint:gosec // fragment is sanitized before it is stored
		AvoidSplits: mode == BreakAvoidAll,
	})
	if err != nil {
		return "", &ExportError{Format: "html", Message: "failed to render document", Cause: err}
	}
	return sb.String(), nil
}

// Filename returns the deterministic download name for a report,
// e.g. "Joes_Pizza_Digital_Audit_2024-05-01.pdf".
func Filename(businessName string, date time.Time, ext string) string {
	return slug(businessName) + "_Digital_Audit_" + date.Format("2006-01-02") + "." + strings.TrimPrefix(ext, ".")
}

// slug joins whitespace-separated words with underscores and drops characters
// that are unsafe in a file name.
func slug(name string) string {
	words := strings.Fields(name)
	cleaned := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
				return r
			}
			return -1
		}, w)
		if w != "" {
			cleaned = append(cleaned, w)
		}
	}
	if len(cleaned) == 0 {
		return "Business"
	}
	return strings.Join(cleaned, "_")
}
