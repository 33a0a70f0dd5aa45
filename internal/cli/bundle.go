package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lucidpack/pkg/document"
	"github.com/matzehuels/lucidpack/pkg/dot"
)

// bundleCommand creates the bundle command.
func (c *CLI) bundleCommand() *cobra.Command {
	var (
		outDir string
		title  string
		watch  bool
	)

	cmd := &cobra.Command{
		Use:   "bundle <manifest.toml|graph.dot>",
		Short: "Write .lucid archives without uploading",
		Long: `Build the document and write one .lucid archive per partition to --out.

The archives are the files the import API receives and can be uploaded
by hand. With --watch the archives are rebuilt whenever the source file
changes.`,
		Example: `  lucidpack bundle roadmap.toml --out dist
  lucidpack bundle deps.dot --out dist --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			src := args[0]

			build := func() error {
				return c.pack(ctx, src, title, outDir)
			}
			if err := build(); err != nil {
				if !watch {
					return err
				}
				printError("%v", err)
			}
			if !watch {
				return nil
			}

			printInfo("Watching %s (Ctrl+C to stop)", src)
			err := watchFile(ctx, src, watchDebounce, c.Logger, func() {
				printInfo("%s changed, rebuilding", filepath.Base(src))
				if err := build(); err != nil {
					printError("%v", err)
				}
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory for the archives")
	cmd.Flags().StringVarP(&title, "title", "t", "", "document title (default: the source's title)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "rebuild when the source changes")
	return cmd
}

// pack builds src and writes its archives to outDir.
func (c *CLI) pack(ctx context.Context, src, title, outDir string) error {
	doc, err := c.loadSource(ctx, src, title)
	if err != nil {
		return err
	}
	if title == "" {
		title = doc.Title
	}

	runner, cleanup, err := c.newRunner(ctx, false)
	if err != nil {
		return err
	}
	defer cleanup()

	opts := c.importOptions(title)
	opts.OutDir = outDir

	prog := newProgress(c.Logger)
	res, err := runner.Pack(ctx, doc, opts)
	printResult(res)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Wrote %d archive(s)", len(res.Partitions)))
	return nil
}

// loadSource builds a document from a manifest or, by extension, a DOT
// graph.
func (c *CLI) loadSource(ctx context.Context, path, title string) (*document.Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".dot", ".gv":
		if title == "" {
			title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		return c.loadDot(ctx, path, title, dotFlags{scale: dot.DefaultScale, lineType: string(document.LineStraight)})
	default:
		return c.loadManifest(path)
	}
}
