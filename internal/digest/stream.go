package digest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ChrisW-priv/html-chunking/internal/section"
)

// WriteStream flattens a section tree to w as JSON Lines, one node per line,
// and reports how many nodes were written.
func WriteStream(w io.Writer, root *section.Node) (int, error) {
	enc := json.NewEncoder(w)
	count := 0
	err := Walk(root, func(n Node) error {
		if err := enc.Encode(n); err != nil {
			return fmt.Errorf("encode node %s: %w", n.DigestHash, err)
		}
		count++
		return nil
	})
	return count, err
}

// ReadStream decodes a JSON Lines stream of flattened nodes.
func ReadStream(r io.Reader) ([]Node, error) {
	dec := json.NewDecoder(r)
	var nodes []Node
	for {
		var n Node
		if err := dec.Decode(&n); errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, fmt.Errorf("decode node: %w", err)
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// Rebuild reassembles a section tree from a pre-order flattened sequence
// using parent-hash linkage. Identical subtrees may share a hash; attachment
// follows the nearest open ancestor, which a pre-order stream keeps
// unambiguous. Heading levels are not part of the flat form and come back nil.
func Rebuild(nodes []Node) (*section.Node, error) {
	if len(nodes) == 0 {
		return nil, errors.New("empty node stream")
	}
	if nodes[0].ParentDigestHash != nil {
		return nil, fmt.Errorf("first node %s is not a root", nodes[0].DigestHash)
	}

	type frame struct {
		hash string
		node *section.Node
	}
	root := &section.Node{Title: nodes[0].Title, Text: nodes[0].Text, Subsections: []*section.Node{}}
	stack := []frame{{hash: nodes[0].DigestHash, node: root}}

	for _, n := range nodes[1:] {
		if n.ParentDigestHash == nil {
			return nil, fmt.Errorf("node %s: second root in stream", n.DigestHash)
		}
		for len(stack) > 0 && stack[len(stack)-1].hash != *n.ParentDigestHash {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			return nil, fmt.Errorf("node %s: parent %s is not on the ancestor path", n.DigestHash, *n.ParentDigestHash)
		}
		child := &section.Node{Title: n.Title, Text: n.Text, Subsections: []*section.Node{}}
		parent := stack[len(stack)-1].node
		parent.Subsections = append(parent.Subsections, child)
		stack = append(stack, frame{hash: n.DigestHash, node: child})
	}
	return root, nil
}
