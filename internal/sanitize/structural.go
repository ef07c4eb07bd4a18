package sanitize

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// pageBreakClass is the class that identifies a page-break element.
const pageBreakClass = "page-break"

// ParseError represents a failure to parse a fragment structurally
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Structural strips leading and trailing page-break elements by structure rather
// than by text: any empty block element whose class list contains "page-break"
// matches, whatever its attribute order or quoting. Interior elements are kept.
//
// The fragment is re-serialized by the HTML parser, so markup that was malformed
// on input comes back normalized.
func Structural(fragment string) (string, error) {
	if strings.TrimSpace(fragment) == "" {
		return "", nil
	}

	// Parse in a body context so leading <style> or <title> elements stay in place.
	root := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), root)
	if err != nil {
		return "", &ParseError{Message: "failed to parse fragment", Cause: err}
	}
	for _, n := range nodes {
		root.AppendChild(n)
	}

	for n := root.FirstChild; n != nil && isDroppableEdge(n); n = root.FirstChild {
		root.RemoveChild(n)
	}
	for n := root.LastChild; n != nil && isDroppableEdge(n); n = root.LastChild {
		root.RemoveChild(n)
	}

	out, err := goquery.NewDocumentFromNode(root).Html()
	if err != nil {
		return "", &ParseError{Message: "failed to render fragment", Cause: err}
	}
	return strings.TrimSpace(out), nil
}

// CountPageBreaks returns the number of page-break elements in fragment.
func CountPageBreaks(fragment string) int {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return 0
	}
	return doc.Find("." + pageBreakClass).Length()
}

// Title returns the text of the first h1 in fragment, or "" when there is none.
func Title(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(doc.Find("h1").First().Text()), " ")
}

// isDroppableEdge reports whether n may be removed from the edge of the fragment:
// whitespace-only text, comments, and empty page-break elements.
func isDroppableEdge(n *html.Node) bool {
	switch n.Type {
	case html.TextNode:
		return strings.TrimSpace(n.Data) == ""
	case html.CommentNode:
		return true
	case html.ElementNode:
		return isPageBreak(n)
	default:
		return false
	}
}

func isPageBreak(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if !hasClass(n, pageBreakClass) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.TextNode || strings.TrimSpace(c.Data) != "" {
			return false
		}
	}
	return true
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if !strings.EqualFold(attr.Key, "class") {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}
