package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/matzehuels/lucidpack/pkg/split"
)

var reviewDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// ReviewModel - Confirm partitions before upload
// =============================================================================

// ReviewModel is the bubbletea model that shows how a document will be
// split and asks for confirmation before anything is uploaded.
type ReviewModel struct {
	Title      string
	Partitions []split.Partition
	Limit      int
	Cursor     int
	Height     int
	Offset     int
	Confirmed  bool
}

// NewReviewModel creates a review of parts, which were split against limit.
func NewReviewModel(title string, parts []split.Partition, limit int) ReviewModel {
	return ReviewModel{
		Title:      title,
		Partitions: parts,
		Limit:      limit,
		Height:     15,
	}
}

func (m ReviewModel) Init() tea.Cmd {
	return nil
}

func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "n", "ctrl+c", "esc":
			m.Confirmed = false
			return m, tea.Quit
		case "y", "enter":
			m.Confirmed = true
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Partitions)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 3)
	}
	return m, nil
}

func (m ReviewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Review Import: " + m.Title))
	b.WriteString("\n")
	b.WriteString(reviewDimStyle.Render("↑/↓ navigate  ⏎/y upload  q cancel"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Partitions))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		p := m.Partitions[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			p.Title,
			pageRange(p.FirstPage, p.PageCount),
			humanize.IBytes(uint64(p.Size)),
			usage(p.Size, m.Limit),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Document", "Pages", "Size", "Budget").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			base := lipgloss.NewStyle()
			if col >= 2 {
				base = base.Foreground(colorGray)
			}
			if idx == m.Cursor {
				return base.Foreground(colorCyan).Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")

	total := 0
	for _, p := range m.Partitions {
		total += p.Size
	}
	b.WriteString(reviewDimStyle.Render(fmt.Sprintf("  %d document(s) · %s total · limit %s per document",
		len(m.Partitions), humanize.IBytes(uint64(total)), humanize.IBytes(uint64(m.Limit)))))

	return b.String()
}

// usage renders size as a share of limit, e.g. "71%".
func usage(size, limit int) string {
	if limit <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d%%", size*100/limit)
}
