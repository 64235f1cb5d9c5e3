package convert

import (
	"fmt"
	"io"
)

// HTMLConverter passes HTML through untouched; the chunker's parser handles
// malformed markup recovery itself.
type HTMLConverter struct{}

func (c *HTMLConverter) Convert(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read html: %w", err)
	}
	return data, nil
}
