package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/lucidpack/pkg/split"
)

func testPartitions() []split.Partition {
	return []split.Partition{
		{Index: 0, Title: "Plan (Part 1)", Size: 1500, FirstPage: 0, PageCount: 3},
		{Index: 1, Title: "Plan (Part 2)", Size: 900, FirstPage: 3, PageCount: 1},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestReviewModelConfirm(t *testing.T) {
	for _, k := range []string{"enter", "y"} {
		m := NewReviewModel("Plan", testPartitions(), 2000)
		next, cmd := m.Update(key(k))
		if !next.(ReviewModel).Confirmed {
			t.Errorf("%q did not confirm", k)
		}
		if cmd == nil {
			t.Errorf("%q did not quit", k)
		}
	}
}

func TestReviewModelCancel(t *testing.T) {
	for _, k := range []string{"q", "n", "esc"} {
		m := NewReviewModel("Plan", testPartitions(), 2000)
		next, cmd := m.Update(key(k))
		if next.(ReviewModel).Confirmed {
			t.Errorf("%q confirmed", k)
		}
		if cmd == nil {
			t.Errorf("%q did not quit", k)
		}
	}
}

func TestReviewModelCursorBounds(t *testing.T) {
	var m tea.Model = NewReviewModel("Plan", testPartitions(), 2000)
	for i := 0; i < 5; i++ {
		m, _ = m.Update(key("down"))
	}
	if got := m.(ReviewModel).Cursor; got != 1 {
		t.Errorf("cursor = %d, want 1", got)
	}
	for i := 0; i < 5; i++ {
		m, _ = m.Update(key("k"))
	}
	if got := m.(ReviewModel).Cursor; got != 0 {
		t.Errorf("cursor = %d, want 0", got)
	}
}

func TestReviewModelView(t *testing.T) {
	view := NewReviewModel("Plan", testPartitions(), 2000).View()
	for _, want := range []string{"Review Import: Plan", "Plan (Part 1)", "pages 1-3", "page 4", "75%", "2 document(s)"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestPageRange(t *testing.T) {
	tests := []struct {
		first, count int
		want         string
	}{
		{0, 0, "no pages"},
		{4, 1, "page 5"},
		{2, 3, "pages 3-5"},
	}
	for _, tt := range tests {
		if got := pageRange(tt.first, tt.count); got != tt.want {
			t.Errorf("pageRange(%d, %d) = %q, want %q", tt.first, tt.count, got, tt.want)
		}
	}
}

func TestUsage(t *testing.T) {
	if got := usage(500, 2000); got != "25%" {
		t.Errorf("usage = %q", got)
	}
	if got := usage(500, 0); got != "-" {
		t.Errorf("usage without a limit = %q", got)
	}
}
