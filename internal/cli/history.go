package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lucidpack/pkg/ledger"
)

// historyCommand creates the history command.
func (c *CLI) historyCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List uploaded documents, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.newLedger(ctx)
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			recs, err := store.List(ctx, limit)
			if err != nil {
				return fmt.Errorf("list history: %w", err)
			}
			if len(recs) == 0 {
				printInfo("No uploads recorded")
				return nil
			}
			fmt.Println(historyTable(recs))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of uploads to show (0 for all)")
	return cmd
}

// historyTable renders records as a bordered table.
func historyTable(recs []ledger.Record) string {
	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		part := "-"
		if r.Part > 0 {
			part = fmt.Sprintf("%d", r.Part)
		}
		rows = append(rows, []string{
			humanize.Time(r.UploadedAt),
			r.Title,
			part,
			fmt.Sprintf("%d", r.Pages),
			humanize.IBytes(uint64(r.Bytes)),
			r.EditURL,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Uploaded", "Title", "Part", "Pages", "Size", "URL").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 5:
				return lipgloss.NewStyle().Foreground(colorBlue)
			case col == 0:
				return lipgloss.NewStyle().Foreground(colorGray)
			}
			return lipgloss.NewStyle()
		}).
		Render()
}
