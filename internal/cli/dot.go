package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lucidpack/pkg/document"
	"github.com/matzehuels/lucidpack/pkg/dot"
)

// dotFlags configure how a Graphviz graph becomes a page.
type dotFlags struct {
	scale    float64
	lineType string
	fill     string
	layer    string
}

// dotCommand creates the dot command.
func (c *CLI) dotCommand() *cobra.Command {
	var (
		flags   dotFlags
		upFlags uploadFlags
	)

	cmd := &cobra.Command{
		Use:   "dot <graph.dot>",
		Short: "Lay out a Graphviz graph and upload it as a Lucid document",
		Long: `Lay out a DOT graph with Graphviz and upload it as a one-page document.

Every node becomes a shape keyed by its name and every edge a line between
the two shapes. Coordinates are converted from inches at --scale pixels per
inch.`,
		Example: `  lucidpack dot deps.dot --title "Service Dependencies"
  lucidpack dot deps.dot --line-type elbow --fill "#e8f1fb"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := upFlags.title
			if title == "" {
				title = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}
			doc, err := c.loadDot(cmd.Context(), args[0], title, flags)
			if err != nil {
				return err
			}
			upFlags.title = title
			return c.upload(cmd.Context(), doc, upFlags)
		},
	}

	cmd.Flags().Float64Var(&flags.scale, "scale", dot.DefaultScale, "pixels per inch")
	cmd.Flags().StringVar(&flags.lineType, "line-type", string(document.LineStraight), "line type: straight, elbow or curved")
	cmd.Flags().StringVar(&flags.fill, "fill", "", "fill color for unfilled nodes")
	cmd.Flags().StringVar(&flags.layer, "layer", "", "put every node in a layer with this title")
	upFlags.register(cmd)
	return cmd
}

// loadDot reads a DOT file and lays it out on the only page of a new
// document.
func (c *CLI) loadDot(ctx context.Context, path, title string, flags dotFlags) (*document.Document, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read graph: %w", err)
	}

	doc := document.New(title)
	page, err := doc.NewPage(title)
	if err != nil {
		return nil, err
	}
	res, err := dot.Build(ctx, page, src, dot.Options{
		Scale:    flags.scale,
		LineType: document.LineType(flags.lineType),
		Fill:     flags.fill,
		Layer:    flags.layer,
	})
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("graph laid out", "nodes", res.Nodes, "edges", res.Edges,
		"width", res.Width, "height", res.Height)
	return doc, nil
}
