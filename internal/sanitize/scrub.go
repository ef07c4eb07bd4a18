package sanitize

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// reportPolicy allows the markup a report is made of (headings, tables, lists,
// layout blocks, classes and inline styles) and drops scripts, event handlers
// and embedded objects. <style> blocks are dropped with their content: the
// fragment is inserted into the host page, where a stylesheet would apply to
// the whole page. Links are left as written.
func reportPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowElements("div", "span", "section", "article", "header", "footer", "figure", "figcaption")
		p.AllowAttrs("class").Globally()
		p.AllowAttrs("style").Globally()
		p.AllowAttrs("colspan", "rowspan").OnElements("td", "th")
		p.RequireNoFollowOnLinks(false)
		policy = p
	})
	return policy
}

// Scrub removes active content from a fragment before it is embedded in a page.
func Scrub(fragment string) string {
	if fragment == "" {
		return ""
	}
	return reportPolicy().Sanitize(fragment)
}
