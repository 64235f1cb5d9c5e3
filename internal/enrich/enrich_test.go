package enrich

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrisW-priv/html-chunking/internal/digest"
)

func TestBuildPrompt(t *testing.T) {
	d := digest.SectionDigest{
		Title: "Photosynthesis",
		Text:  "<p>Plants convert light into energy.</p>",
		Subsections: []digest.ChildDigest{
			{Title: "Light Reactions", Text: "<p>First stage.</p>..."},
		},
	}
	prompt := BuildPrompt(d)

	assert.Contains(t, prompt, `Section: "Photosynthesis"`)
	assert.Contains(t, prompt, "<p>Plants convert light into energy.</p>")
	assert.Contains(t, prompt, "[Light Reactions]")
	assert.Contains(t, prompt, "Respond with ONLY the JSON object")
}

func TestStripCodeBlock(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare json", `{"keywords":[]}`, `{"keywords":[]}`},
		{"fenced", "```json\n{\"keywords\":[]}\n```", `{"keywords":[]}`},
		{"fenced without language", "```\n{}\n```", "{}"},
		{"surrounding whitespace", "  {}  ", "{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripCodeBlock(tt.in))
		})
	}
}

func TestSanitize(t *testing.T) {
	e := &Enrichment{
		Keywords: []string{" one ", "", "two", "3", "4", "5", "6", "7", "8", "9", "10", "11"},
		Definitions: []Definition{
			{Term: "x", Meaning: "a thing"},
			{Term: "", Meaning: "dropped"},
			{Term: "dropped", Meaning: ""},
		},
		Flashcards: []Flashcard{
			{Question: "q?", Answer: "a"},
			{Question: "", Answer: "a"},
		},
		Abstract: strings.Repeat("x", 600),
	}
	Sanitize(e)

	assert.Len(t, e.Keywords, maxKeywords)
	assert.Equal(t, "one", e.Keywords[0])
	require.Len(t, e.Definitions, 1)
	assert.Equal(t, "x", e.Definitions[0].Term)
	assert.Len(t, e.Flashcards, 1)
	assert.Len(t, e.Abstract, maxAbstractLen+3)
	assert.True(t, strings.HasSuffix(e.Abstract, "..."))
}

func TestEnrichedNode_JSONInlinesBothParts(t *testing.T) {
	parent := "aa"
	node := EnrichedNode{
		Node: digest.Node{
			DigestHash:       "bb",
			ParentDigestHash: &parent,
			Title:            "T",
			Text:             "<p>A</p>",
			SectionDigest:    digest.SectionDigest{Title: "T", Text: "<p>A</p>", Subsections: []digest.ChildDigest{}},
		},
		Enrichment: Enrichment{
			Keywords: []string{"alpha"},
			Abstract: "about T",
		},
	}
	data, err := json.Marshal(node)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "bb", m["digest_hash"])
	assert.Equal(t, "aa", m["parent_digest_hash"])
	assert.Equal(t, "about T", m["abstract"])
	assert.Contains(t, m, "keywords")
	assert.Contains(t, m, "section_digest")
}
