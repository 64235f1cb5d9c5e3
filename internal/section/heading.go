package section

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// tagRanks maps native heading tags to their implied rank.
var tagRanks = map[atom.Atom]int{
	atom.H1: 1,
	atom.H2: 2,
	atom.H3: 3,
	atom.H4: 4,
	atom.H5: 5,
	atom.H6: 6,
}

// HeadingLevel resolves the effective rank of an element. A parseable
// aria-level attribute overrides the tag-implied rank of h1-h6 and is the
// only thing that makes a div with role="heading" count as a heading.
// Overrides are taken verbatim, including values outside 1-6.
func HeadingLevel(n *html.Node) (int, bool) {
	if n == nil || n.Type != html.ElementNode {
		return 0, false
	}
	if rank, ok := tagRanks[n.DataAtom]; ok {
		if lvl, ok := ariaLevel(n); ok {
			return lvl, true
		}
		return rank, true
	}
	if n.DataAtom == atom.Div && attrVal(n, "role") == "heading" {
		if lvl, ok := ariaLevel(n); ok {
			return lvl, true
		}
	}
	return 0, false
}

// IsHeading reports whether n resolves to a heading.
func IsHeading(n *html.Node) bool {
	_, ok := HeadingLevel(n)
	return ok
}

func ariaLevel(n *html.Node) (int, bool) {
	raw := strings.TrimSpace(attrVal(n, "aria-level"))
	if raw == "" {
		return 0, false
	}
	lvl, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return lvl, true
}

func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
