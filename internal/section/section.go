// Package section chunks HTML documents into a tree of sections keyed by
// heading structure. Each node carries the heading title, the content HTML
// that belongs directly to that heading, and the nested subsections.
package section

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Node is one section of a chunked document. Level is nil for sections that
// have no heading of their own (content before the first heading, or a
// heading-less document).
type Node struct {
	Title       string  `json:"title"`
	Text        string  `json:"text"`
	Level       *int    `json:"level"`
	Subsections []*Node `json:"subsections"`
}

// minRootTextLen is the minimum text length for a div to qualify as the
// content root when no semantic container is present.
const minRootTextLen = 100

// ParseDocument parses HTML from r, locates the content root, and chunks it.
func ParseDocument(r io.Reader) (*Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return FromElement(FindRoot(doc)), nil
}

// FindRoot picks the element whose subtree holds the document content.
// Semantic containers win in order of specificity: main, article, body,
// section, then any div with a substantial amount of text. The document
// itself is the last resort.
func FindRoot(doc *html.Node) *html.Node {
	for _, a := range []atom.Atom{atom.Main, atom.Article} {
		if el := findTag(doc, a); el != nil && textContent(el) != "" {
			return el
		}
	}
	if body := findTag(doc, atom.Body); body != nil && textContent(body) != "" {
		return unwrap(body)
	}
	if sec := findTag(doc, atom.Section); sec != nil && textContent(sec) != "" {
		return sec
	}
	for _, el := range descendants(doc) {
		if el.DataAtom == atom.Div && len(textContent(el)) > minRootTextLen {
			return el
		}
	}
	return doc
}

// unwrap descends from a body into sole structural wrappers, so a fragment
// wrapped in a single container chunks the same as the bare fragment.
func unwrap(el *html.Node) *html.Node {
	for {
		var only *html.Node
		for c := el.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.ElementNode:
				if only != nil {
					return el
				}
				only = c
			case html.TextNode:
				if strings.TrimSpace(c.Data) != "" {
					return el
				}
			}
		}
		if only == nil {
			return el
		}
		switch only.DataAtom {
		case atom.Div, atom.Section, atom.Article, atom.Main:
			el = only
		default:
			return el
		}
	}
}

// findTag returns the first element with the given tag in document order.
func findTag(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if el := findTag(c, a); el != nil {
			return el
		}
	}
	return nil
}
