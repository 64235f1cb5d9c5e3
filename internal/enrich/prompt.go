package enrich

import (
	"fmt"
	"strings"

	"github.com/ChrisW-priv/html-chunking/internal/digest"
)

const enrichmentPrompt = `Generate study aids for the following document section. Return a JSON object with these fields:

- "keywords": the most important terms of the section (list of strings, max 10)
- "definitions": terms the section defines, each as {"term": string, "meaning": string}
- "flashcards": question/answer pairs testing the section's content, each as {"question": string, "answer": string}
- "abstract": a one-paragraph summary of the section (string, max 500 chars)

Rules:
- Work only from the section content given below; do not invent material
- Keywords should be lowercase unless they are proper nouns
- Definitions only for terms the section actually explains
- Flashcards should be answerable from the section alone
- Use empty lists and an empty string when the section offers nothing useful

Respond with ONLY the JSON object, no other text.`

// BuildPrompt renders a section digest as the enrichment prompt: the
// section's own text in full, child sections as titled excerpts.
func BuildPrompt(d digest.SectionDigest) string {
	var sb strings.Builder
	sb.WriteString(enrichmentPrompt)
	sb.WriteString("\n\n---\n")
	fmt.Fprintf(&sb, "Section: %q\n", d.Title)
	sb.WriteString("---\n")
	sb.WriteString(d.Text)
	for _, sub := range d.Subsections {
		fmt.Fprintf(&sb, "\n\n[%s]\n%s", sub.Title, sub.Text)
	}
	return sb.String()
}
