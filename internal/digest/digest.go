// Package digest flattens a section tree into a stream of content-addressed
// nodes. Each node carries a bounded-size digest of its section, hashed to
// derive a stable identifier, and a link to its parent's hash so the tree can
// be reassembled from the flat stream.
package digest

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/ChrisW-priv/html-chunking/internal/section"
)

// NoLimit disables line truncation in ShortenText.
const NoLimit = -1

const ellipsis = "..."

// hashSize is the BLAKE2b digest length in bytes (128-bit identifiers).
const hashSize = 16

// SectionDigest is the bounded-size summary of a section: its own title and
// full text plus the title and shortened text of each immediate child. Its
// canonical JSON encoding is the hash input for content addressing.
type SectionDigest struct {
	Title       string        `json:"title"`
	Text        string        `json:"text"`
	Subsections []ChildDigest `json:"subsections"`
}

// ChildDigest is an immediate child's entry inside a parent digest.
type ChildDigest struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Node is the flattened, content-addressed form of one section.
// ParentDigestHash is nil for the root.
type Node struct {
	DigestHash       string        `json:"digest_hash"`
	ParentDigestHash *string       `json:"parent_digest_hash"`
	Title            string        `json:"title"`
	Text             string        `json:"text"`
	SectionDigest    SectionDigest `json:"section_digest"`
}

// New builds the digest for a section node. The node's own text is kept in
// full; child text is shortened to one line when the parent has text of its
// own, and kept whole when the parent is a bare container.
func New(node *section.Node) SectionDigest {
	d := SectionDigest{
		Title:       node.Title,
		Text:        node.Text,
		Subsections: []ChildDigest{},
	}
	limit := NoLimit
	if node.Text != "" {
		limit = 1
	}
	for _, child := range node.Subsections {
		d.Subsections = append(d.Subsections, ChildDigest{
			Title: child.Title,
			Text:  ShortenText(child.Text, limit, child.Subsections),
		})
	}
	return d
}

// ShortenText bounds a child's text for digest purposes. maxLines of NoLimit
// returns the text untouched. Empty text with grandchildren present becomes a
// topic listing, so a bare container still digests to something useful.
// Otherwise the first maxLines lines are kept, with an ellipsis marking
// truncation or deeper structure.
func ShortenText(text string, maxLines int, subsections []*section.Node) string {
	if maxLines == NoLimit {
		return text
	}
	if text == "" {
		if len(subsections) == 0 {
			return ""
		}
		var sb strings.Builder
		sb.WriteString("<p>Covered topics in this subsection:</p><ul>")
		for _, sub := range subsections {
			sb.WriteString("<li>")
			sb.WriteString(sub.Title)
			sb.WriteString("</li>")
		}
		sb.WriteString("</ul>")
		return sb.String()
	}
	lines := splitLines(text)
	if len(lines) > maxLines {
		return strings.Join(lines[:maxLines], "") + ellipsis
	}
	if len(subsections) > 0 {
		return strings.Join(lines, "") + ellipsis
	}
	return strings.Join(lines, "")
}

// splitLines splits on newlines without producing a trailing empty line.
func splitLines(s string) []string {
	lines := strings.Split(s, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// Hash returns the lowercase-hex BLAKE2b-128 hash of the digest's canonical
// JSON encoding. Sections with identical digest content hash identically.
func (d SectionDigest) Hash() (string, error) {
	payload, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("marshal digest: %w", err)
	}
	h, err := blake2b.New(hashSize, nil)
	if err != nil {
		return "", fmt.Errorf("init blake2b: %w", err)
	}
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Walk emits one flattened Node per section in pre-order, calling fn as soon
// as each node is computed so the output can be streamed.
func Walk(root *section.Node, fn func(Node) error) error {
	return walk(root, nil, fn)
}

func walk(node *section.Node, parentHash *string, fn func(Node) error) error {
	d := New(node)
	hash, err := d.Hash()
	if err != nil {
		return err
	}
	err = fn(Node{
		DigestHash:       hash,
		ParentDigestHash: parentHash,
		Title:            node.Title,
		Text:             node.Text,
		SectionDigest:    d,
	})
	if err != nil {
		return err
	}
	for _, child := range node.Subsections {
		if err := walk(child, &hash, fn); err != nil {
			return err
		}
	}
	return nil
}

// Flatten materializes the full pre-order node sequence of a section tree.
func Flatten(root *section.Node) ([]Node, error) {
	var nodes []Node
	err := Walk(root, func(n Node) error {
		nodes = append(nodes, n)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return nodes, nil
}
