package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ChrisW-priv/html-chunking/internal/convert"
	"github.com/ChrisW-priv/html-chunking/internal/digest"
	"github.com/ChrisW-priv/html-chunking/internal/fetch"
	"github.com/ChrisW-priv/html-chunking/internal/section"
)

var (
	flagOutput   string
	flagFormat   string
	flagTree     bool
	flagPretty   bool
	flagParallel int
)

func main() {
	root := &cobra.Command{
		Use:   "htmlchunk [input ...]",
		Short: "Chunk documents into heading-delimited sections",
		Long: `htmlchunk splits HTML, Markdown, PDF, DOCX, CSV and plain-text documents
into a tree of heading-delimited sections and emits either the tree as JSON
or a flat JSON Lines stream of content-addressed digest nodes.

Inputs are file paths or http(s) URLs. With no input, reads from stdin.`,
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.Flags().StringVarP(&flagOutput, "output", "o", "", "output file (single input) or directory (multiple inputs); default stdout")
	root.Flags().StringVar(&flagFormat, "format", "", "input format override (html, markdown, pdf, docx, csv, text)")
	root.Flags().BoolVar(&flagTree, "tree", false, "emit the hierarchical section tree instead of JSON Lines")
	root.Flags().BoolVar(&flagPretty, "pretty", false, "indent JSON output (implies --tree)")
	root.Flags().IntVar(&flagParallel, "parallel", 4, "max documents processed concurrently")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if flagPretty {
		flagTree = true
	}
	registry := convert.DefaultRegistry()

	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		out, closeOut, err := openOutput(flagOutput)
		if err != nil {
			return err
		}
		defer closeOut()
		return process(registry, data, resolveFormat(""), out)
	}

	multi := len(args) > 1
	if multi {
		if flagOutput == "" {
			return fmt.Errorf("multiple inputs require -o pointing at an output directory")
		}
		if err := os.MkdirAll(flagOutput, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	fetcher := fetch.NewClient(60*time.Second, 50<<20)
	defer fetcher.Close()

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(flagParallel)
	for _, input := range args {
		input := input
		g.Go(func() error {
			data, format, err := readInput(ctx, fetcher, input)
			if err != nil {
				return fmt.Errorf("%s: %w", input, err)
			}
			outPath := flagOutput
			if multi {
				outPath = filepath.Join(flagOutput, outputName(input))
			}
			out, closeOut, err := openOutput(outPath)
			if err != nil {
				return err
			}
			defer closeOut()
			if err := process(registry, data, format, out); err != nil {
				return fmt.Errorf("%s: %w", input, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func readInput(ctx context.Context, fetcher *fetch.Client, input string) ([]byte, convert.Format, error) {
	if fetch.IsURL(input) {
		res, err := fetcher.Get(ctx, input)
		if err != nil {
			return nil, "", err
		}
		return res.Data, resolveFormat(string(res.Format)), nil
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return nil, "", err
	}
	format, ok := convert.ForFile(input)
	if !ok {
		format = convert.FormatHTML
	}
	return data, resolveFormat(string(format)), nil
}

// resolveFormat applies the --format override on top of the detected format.
func resolveFormat(detected string) convert.Format {
	if flagFormat != "" {
		return convert.Format(flagFormat)
	}
	if detected == "" {
		return convert.FormatHTML
	}
	return convert.Format(detected)
}

// openOutput returns the writer for one output path, or stdout when the
// path is empty.
func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, func() { f.Close() }, nil
}

func outputName(input string) string {
	base := filepath.Base(input)
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	if base == "" || base == "." || base == "/" {
		base = "document"
	}
	if flagTree {
		return base + ".json"
	}
	return base + ".jsonl"
}

func process(registry convert.Registry, data []byte, format convert.Format, out io.Writer) error {
	htmlData, err := registry.Convert(format, bytes.NewReader(data))
	if err != nil {
		return err
	}
	tree, err := section.ParseDocument(bytes.NewReader(htmlData))
	if err != nil {
		return err
	}

	if flagTree {
		enc := json.NewEncoder(out)
		if flagPretty {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(tree)
	}
	_, err = digest.WriteStream(out, tree)
	return err
}
