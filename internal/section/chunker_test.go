package section

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chunk(t *testing.T, src string) *Node {
	t.Helper()
	node, err := ParseDocument(strings.NewReader(src))
	require.NoError(t, err)
	return node
}

func TestParseDocument_FlatSiblings(t *testing.T) {
	node := chunk(t, "<h1>T</h1><p>A</p><h2>S1</h2><p>B</p><h2>S2</h2><p>C</p>")

	assert.Equal(t, "T", node.Title)
	assert.Equal(t, "<p>A</p>", node.Text)
	require.NotNil(t, node.Level)
	assert.Equal(t, 1, *node.Level)

	require.Len(t, node.Subsections, 2)
	assert.Equal(t, "S1", node.Subsections[0].Title)
	assert.Equal(t, "<p>B</p>", node.Subsections[0].Text)
	assert.Equal(t, 2, *node.Subsections[0].Level)
	assert.Empty(t, node.Subsections[0].Subsections)
	assert.Equal(t, "S2", node.Subsections[1].Title)
	assert.Equal(t, "<p>C</p>", node.Subsections[1].Text)
}

func TestParseDocument_WrappedFragment(t *testing.T) {
	node := chunk(t, "<div><h2>Simple Title</h2><p>First.</p><p>Second.</p></div>")

	assert.Equal(t, "Simple Title", node.Title)
	assert.Equal(t, "<p>First.</p>\n<p>Second.</p>", node.Text)
	require.NotNil(t, node.Level)
	assert.Equal(t, 2, *node.Level)
	assert.Empty(t, node.Subsections)
}

func TestParseDocument_NoHeading(t *testing.T) {
	node := chunk(t, "<p>Just some text.</p><p>More text.</p>")

	assert.Empty(t, node.Title)
	assert.Nil(t, node.Level)
	assert.Equal(t, "<p>Just some text.</p>\n<p>More text.</p>", node.Text)
	assert.Empty(t, node.Subsections)
}

func TestParseDocument_NestedChain(t *testing.T) {
	node := chunk(t, "<h1>A</h1><p>a</p><h2>B</h2><p>b</p><h3>C</h3><p>c</p>")

	assert.Equal(t, "A", node.Title)
	assert.Equal(t, "<p>a</p>", node.Text)
	require.Len(t, node.Subsections, 1)

	b := node.Subsections[0]
	assert.Equal(t, "B", b.Title)
	assert.Equal(t, "<p>b</p>", b.Text)
	assert.Equal(t, 2, *b.Level)
	require.Len(t, b.Subsections, 1)

	c := b.Subsections[0]
	assert.Equal(t, "C", c.Title)
	assert.Equal(t, "<p>c</p>", c.Text)
	assert.Equal(t, 3, *c.Level)
	assert.Empty(t, c.Subsections)
}

func TestParseDocument_NestedSectionClosesAtSameRank(t *testing.T) {
	node := chunk(t, "<h1>T</h1><h2>A</h2><p>a</p><h3>B</h3><p>b</p><h2>C</h2><p>c</p>")

	require.Len(t, node.Subsections, 2)

	a := node.Subsections[0]
	assert.Equal(t, "A", a.Title)
	assert.Equal(t, "<p>a</p>", a.Text)
	require.Len(t, a.Subsections, 1)
	assert.Equal(t, "B", a.Subsections[0].Title)
	assert.Equal(t, "<p>b</p>", a.Subsections[0].Text)

	c := node.Subsections[1]
	assert.Equal(t, "C", c.Title)
	assert.Equal(t, "<p>c</p>", c.Text)
	assert.Empty(t, c.Subsections)
}

func TestParseDocument_AriaOverridePromotesSibling(t *testing.T) {
	// The h6 resolves to rank 2, so it closes A's section and becomes a
	// sibling subsection instead of nesting inside A.
	node := chunk(t, `<h1>T</h1><h2>A</h2><p>a</p><h6 aria-level="2">B</h6><p>b</p>`)

	require.Len(t, node.Subsections, 2)
	a, b := node.Subsections[0], node.Subsections[1]

	assert.Equal(t, "A", a.Title)
	assert.Equal(t, "<p>a</p>", a.Text)
	assert.Empty(t, a.Subsections)

	assert.Equal(t, "B", b.Title)
	assert.Equal(t, "<p>b</p>", b.Text)
	require.NotNil(t, b.Level)
	assert.Equal(t, 2, *b.Level)
}

func TestParseDocument_RoleHeadingDiv(t *testing.T) {
	node := chunk(t, `<div role="heading" aria-level="2">T</div><p>x</p>`)

	assert.Equal(t, "T", node.Title)
	require.NotNil(t, node.Level)
	assert.Equal(t, 2, *node.Level)
	assert.Equal(t, "<p>x</p>", node.Text)
}

func TestParseDocument_RoleHeadingWithoutLevelIsContent(t *testing.T) {
	node := chunk(t, `<div role="heading">T</div><p>x</p>`)

	assert.Empty(t, node.Title)
	assert.Nil(t, node.Level)
	assert.Equal(t, "<div role=\"heading\">T</div>\n<p>x</p>", node.Text)
}

func TestParseDocument_ContentInclusionPolicy(t *testing.T) {
	src := `<h1>T</h1><script>var x = 1;</script><p>keep</p>loose text<span></span>`
	node := chunk(t, src)

	assert.Equal(t, "T", node.Title)
	// Script, empty span and the heading itself are excluded; the direct text
	// node survives trimmed.
	assert.Equal(t, "<p>keep</p>\nloose text", node.Text)
}

func TestParseDocument_ElementContainingHeadingExcludedFromText(t *testing.T) {
	node := chunk(t, "<h1>T</h1><p>own</p><div><h2>Inner</h2><p>nested</p></div>")

	assert.Equal(t, "<p>own</p>", node.Text)
	require.Len(t, node.Subsections, 1)
	assert.Equal(t, "Inner", node.Subsections[0].Title)
	assert.Equal(t, "<p>nested</p>", node.Subsections[0].Text)
}

func TestFindRoot_PrefersMain(t *testing.T) {
	src := "<body><p>junk before</p><main><h1>T</h1><p>A</p></main><p>junk after</p></body>"
	node := chunk(t, src)

	assert.Equal(t, "T", node.Title)
	assert.Equal(t, "<p>A</p>", node.Text)
}

func TestFindRoot_PrefersArticleOverBody(t *testing.T) {
	src := "<body><p>chrome</p><article><h2>Story</h2><p>text</p></article></body>"
	node := chunk(t, src)

	assert.Equal(t, "Story", node.Title)
	assert.Equal(t, "<p>text</p>", node.Text)
}

func TestParseDocument_EmptyInput(t *testing.T) {
	node := chunk(t, "")

	assert.Empty(t, node.Title)
	assert.Empty(t, node.Text)
	assert.Nil(t, node.Level)
	assert.Empty(t, node.Subsections)
}

func TestParseDocument_SourceTreeNotAliased(t *testing.T) {
	// Chunking twice from the same input must give identical results:
	// decomposition works on cloned fragments, never the source tree.
	src := "<h1>T</h1><p>A</p><h2>S1</h2><p>B</p><h2>S2</h2><p>C</p>"
	first := chunk(t, src)
	second := chunk(t, src)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestNode_JSONShape(t *testing.T) {
	node := chunk(t, "<p>plain</p>")
	data, err := json.Marshal(node)
	require.NoError(t, err)

	assert.JSONEq(t, `{"title":"","text":"<p>plain</p>","level":null,"subsections":[]}`, string(data))
}
