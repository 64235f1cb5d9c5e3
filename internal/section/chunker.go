package section

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// FromElement chunks the subtree rooted at el into a section Node.
//
// A subtree with at most one heading is a single section. Anything richer is
// decomposed around its highest-ranked heading: later headings of equal or
// lower rank become subsection boundaries, each boundary plus the siblings it
// owns is cloned into an isolated fragment, and the fragments are chunked
// recursively.
func FromElement(el *html.Node) *Node {
	if isBaseCase(el) {
		node := &Node{Text: extractContent(el), Subsections: []*Node{}}
		if heading := firstHeading(el); heading != nil {
			lvl, _ := HeadingLevel(heading)
			node.Title = textContent(heading)
			node.Level = &lvl
		}
		return node
	}

	anchor, anchorLevel := highestHeading(el)
	if anchor == nil {
		return &Node{Text: extractContent(el), Subsections: []*Node{}}
	}

	all := descendants(el)
	anchorPos := 0
	for i, e := range all {
		if e == anchor {
			anchorPos = i
			break
		}
	}

	// Select subsection boundaries. A later heading of equal or lower rank
	// opens a subsection unless an unclaimed heading between the anchor and it
	// ranks within [anchor, candidate]; such a heading claims the candidate as
	// nested content instead.
	processed := make(map[*html.Node]bool)
	var boundaries []*html.Node
	for i := anchorPos + 1; i < len(all); i++ {
		cand := all[i]
		if processed[cand] {
			continue
		}
		candLevel, ok := HeadingLevel(cand)
		if !ok || candLevel < anchorLevel {
			continue
		}
		direct := true
		for j := anchorPos + 1; j < i; j++ {
			mid := all[j]
			if processed[mid] {
				continue
			}
			if midLevel, ok := HeadingLevel(mid); ok && midLevel >= anchorLevel && midLevel <= candLevel {
				direct = false
				break
			}
		}
		if !direct {
			continue
		}
		boundaries = append(boundaries, cand)
		processed[cand] = true
		for _, owned := range sectionContent(cand, candLevel) {
			processed[owned] = true
			for _, d := range descendants(owned) {
				processed[d] = true
			}
		}
	}

	// The anchor's own text: direct children up to the first deeper heading,
	// filtered by the inclusion policy.
	var parts []string
	for c := el.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			if c == anchor {
				continue
			}
			if lvl, ok := HeadingLevel(c); ok && lvl > anchorLevel {
				break
			}
			if shouldInclude(c) {
				parts = append(parts, renderHTML(c))
			}
		} else if c.Type == html.TextNode {
			if t := strings.TrimSpace(c.Data); t != "" {
				parts = append(parts, t)
			}
		}
	}

	subs := make([]*Node, 0, len(boundaries))
	for _, b := range boundaries {
		lvl, _ := HeadingLevel(b)
		subs = append(subs, FromElement(newFragment(b, sectionContent(b, lvl))))
	}

	return &Node{
		Title:       textContent(anchor),
		Text:        strings.TrimSpace(strings.Join(parts, "\n")),
		Level:       &anchorLevel,
		Subsections: subs,
	}
}

// isBaseCase reports whether el chunks as a single section. A heading root is
// simple unless a strictly deeper sibling heading opens nested structure
// before the section closes; any other root is simple with at most one
// heading in its subtree.
func isBaseCase(el *html.Node) bool {
	if lvl, ok := HeadingLevel(el); ok {
		for s := el.NextSibling; s != nil; s = s.NextSibling {
			if s.Type != html.ElementNode {
				continue
			}
			if slvl, sok := HeadingLevel(s); sok {
				return slvl <= lvl
			}
		}
		return true
	}
	count := 0
	for _, e := range descendants(el) {
		if IsHeading(e) {
			count++
			if count > 1 {
				return false
			}
		}
	}
	return true
}

// sectionContent collects the siblings owned by a heading: everything after
// it up to the next sibling heading of equal or higher rank. Strictly deeper
// headings stay inside the section.
func sectionContent(heading *html.Node, level int) []*html.Node {
	var content []*html.Node
	for s := heading.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			if slvl, ok := HeadingLevel(s); ok && slvl <= level {
				break
			}
		}
		content = append(content, s)
	}
	return content
}

// firstHeading returns the first heading among el's descendants.
func firstHeading(el *html.Node) *html.Node {
	for _, e := range descendants(el) {
		if IsHeading(e) {
			return e
		}
	}
	return nil
}

// highestHeading returns the highest-ranked heading among el's descendants,
// first occurrence winning ties.
func highestHeading(el *html.Node) (*html.Node, int) {
	var best *html.Node
	bestLevel := 0
	for _, e := range descendants(el) {
		if lvl, ok := HeadingLevel(e); ok {
			if best == nil || lvl < bestLevel {
				best, bestLevel = e, lvl
			}
		}
	}
	return best, bestLevel
}

// newFragment deep-clones a boundary heading and its owned siblings into a
// fresh container, so recursion never aliases nodes of the source tree.
func newFragment(heading *html.Node, content []*html.Node) *html.Node {
	frag := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	frag.AppendChild(cloneNode(heading))
	for _, n := range content {
		if n.Type == html.ElementNode || n.Type == html.TextNode {
			frag.AppendChild(cloneNode(n))
		}
	}
	return frag
}

func cloneNode(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(cloneNode(child))
	}
	return c
}

// skippedTags never contribute content.
var skippedTags = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Meta:     true,
	atom.Link:     true,
	atom.Title:    true,
	atom.Base:     true,
}

// shouldInclude applies the content inclusion policy to a direct child:
// headings, non-content tags, text-empty elements, and elements that contain
// headings anywhere in their subtree are excluded.
func shouldInclude(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if IsHeading(n) || skippedTags[n.DataAtom] {
		return false
	}
	if textContent(n) == "" {
		return false
	}
	return !containsHeading(n)
}

func containsHeading(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if IsHeading(c) || containsHeading(c) {
			return true
		}
	}
	return false
}

// extractContent serializes the direct children of el that pass the inclusion
// policy, joined by newlines. Direct text nodes are kept trimmed.
func extractContent(el *html.Node) string {
	var parts []string
	for c := el.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			if shouldInclude(c) {
				parts = append(parts, renderHTML(c))
			}
		case html.TextNode:
			if t := strings.TrimSpace(c.Data); t != "" {
				parts = append(parts, t)
			}
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// descendants returns every descendant element of n in document order.
func descendants(n *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(el *html.Node) {
		for c := el.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

// textContent returns the trimmed concatenation of all text under n.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(el *html.Node) {
		if el.Type == html.TextNode {
			sb.WriteString(el.Data)
			return
		}
		for c := el.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

func renderHTML(n *html.Node) string {
	var sb strings.Builder
	_ = html.Render(&sb, n)
	return sb.String()
}
