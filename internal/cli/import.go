package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lucidpack/pkg/document"
	"github.com/matzehuels/lucidpack/pkg/manifest"
	"github.com/matzehuels/lucidpack/pkg/pipeline"
	"github.com/matzehuels/lucidpack/pkg/split"
)

// uploadFlags are shared by the commands that upload a document.
type uploadFlags struct {
	title  string
	open   bool
	review bool
}

func (f *uploadFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.title, "title", "t", "", "document title (default: the source's title)")
	cmd.Flags().BoolVar(&f.open, "open", false, "open the uploaded documents in a browser")
	cmd.Flags().BoolVar(&f.review, "review", false, "review the split before uploading")
}

// importCommand creates the import command.
func (c *CLI) importCommand() *cobra.Command {
	var flags uploadFlags

	cmd := &cobra.Command{
		Use:   "import <manifest.toml>",
		Short: "Build a document from a manifest and upload it to Lucid",
		Long: `Build a document from a TOML manifest and upload it with the standard
import API.

Documents whose document.json would exceed import.max_document_bytes are
split by page into several documents titled "<title> (Part N)". Partitions
are bundled and uploaded concurrently; a failed partition does not stop
the others.`,
		Example: `  lucidpack import roadmap.toml
  lucidpack import roadmap.toml --title "Roadmap 2026" --review --open`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.loadManifest(args[0])
			if err != nil {
				return err
			}
			return c.upload(cmd.Context(), doc, flags)
		},
	}

	flags.register(cmd)
	return cmd
}

// loadManifest reads and builds a manifest, warning about unknown keys.
func (c *CLI) loadManifest(path string) (*document.Document, error) {
	m, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}
	if len(m.Undecoded) > 0 {
		printWarning("Ignoring unknown manifest keys: %s", strings.Join(m.Undecoded, ", "))
	}
	doc, err := m.Build()
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("manifest built", "path", path, "pages", doc.PageCount())
	return doc, nil
}

// upload runs the import pipeline for doc and prints one line per
// partition.
func (c *CLI) upload(ctx context.Context, doc *document.Document, flags uploadFlags) error {
	title := flags.title
	if title == "" {
		title = doc.Title
	}
	opts := c.importOptions(title)

	if flags.review {
		ok, err := c.review(doc, opts)
		if err != nil || !ok {
			return err
		}
	}

	sess, err := c.session(ctx)
	if err != nil {
		return err
	}

	runner, cleanup, err := c.newRunner(ctx, true)
	if err != nil {
		return err
	}
	defer cleanup()

	prog := newProgress(c.Logger)
	spinner := newSpinner(ctx, fmt.Sprintf("Uploading %q...", title))
	spinner.Start()
	res, err := runner.Import(ctx, sess, doc, opts)
	spinner.Stop()

	printResult(res)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Uploaded %d document(s)", len(res.URLs)))

	if flags.open {
		for _, u := range res.URLs {
			if err := openBrowser(u); err != nil {
				printWarning("Could not open %s: %v", u, err)
			}
		}
	}
	return nil
}

// review shows the split in a table and reports whether the user
// confirmed it.
func (c *CLI) review(doc *document.Document, opts pipeline.Options) (bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return false, err
	}
	parts, err := split.Split(doc, opts.Title, opts.MaxBytes)
	if err != nil {
		return false, err
	}

	final, err := tea.NewProgram(NewReviewModel(opts.Title, parts, opts.MaxBytes), tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return false, fmt.Errorf("review: %w", err)
	}
	if m, ok := final.(ReviewModel); ok && m.Confirmed {
		return true, nil
	}
	printInfo("Import cancelled")
	return false, nil
}
