package ident

import (
	"sync"
	"testing"

	"github.com/matzehuels/lucidpack/pkg/errors"
)

type testNode struct {
	id  string
	key string
}

func (n *testNode) ID() string          { return n.id }
func (n *testNode) SetID(id string)     { n.id = id }
func (n *testNode) ExternalKey() string { return n.key }

func TestEncode(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{0, "a"},
		{25, "z"},
		{26, "0"},
		{35, "9"},
		{36, "-"},
		{39, "~"},
		{40, "ba"},
		{41, "bb"},
		{1600, "baa"},
	}
	for _, tt := range tests {
		if got := Encode(tt.in); got != tt.want {
			t.Errorf("Encode(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAssignSequence(t *testing.T) {
	f := New()
	var got []string
	for i := 0; i < 38; i++ {
		n := &testNode{}
		if err := f.Assign(n); err != nil {
			t.Fatalf("Assign: %v", err)
		}
		got = append(got, n.ID())
	}

	if got[0] != "a" || got[25] != "z" || got[35] != "9" {
		t.Errorf("unexpected prefix of sequence: %v", got[:36])
	}
	// 36..39 encode to punctuation and are skipped.
	if got[36] != "ba" || got[37] != "bb" {
		t.Errorf("after digits got %q, %q; want ba, bb", got[36], got[37])
	}
}

func TestAssignUniqueness(t *testing.T) {
	f := New()
	const n = 5000
	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		node := &testNode{}
		if err := f.Assign(node); err != nil {
			t.Fatalf("Assign: %v", err)
		}
		id := node.ID()
		if seen[id] {
			t.Fatalf("duplicate id %q at %d", id, i)
		}
		seen[id] = true
		if !valid(id) {
			t.Fatalf("id %q does not start with an alphanumeric character", id)
		}
	}
	if f.Issued() != n {
		t.Errorf("Issued() = %d, want %d", f.Issued(), n)
	}
}

func TestAssignSkipsPunctuationPrefix(t *testing.T) {
	f := New()
	for i := 0; i < 2000; i++ {
		node := &testNode{}
		_ = f.Assign(node)
		switch node.ID()[0] {
		case '-', '_', '.', '~':
			t.Fatalf("id %q starts with punctuation", node.ID())
		}
	}
}

func TestAssignIdempotent(t *testing.T) {
	f := New()
	n := &testNode{}
	if err := f.Assign(n); err != nil {
		t.Fatal(err)
	}
	first := n.ID()
	if err := f.Assign(n); err != nil {
		t.Fatal(err)
	}
	if n.ID() != first {
		t.Errorf("second Assign changed id from %q to %q", first, n.ID())
	}
	if f.Issued() != 1 {
		t.Errorf("Issued() = %d, want 1", f.Issued())
	}
}

func TestAssignKeepsPresetID(t *testing.T) {
	f := New()
	n := &testNode{id: "custom"}
	if err := f.Assign(n); err != nil {
		t.Fatal(err)
	}
	if n.ID() != "custom" {
		t.Errorf("ID() = %q, want custom", n.ID())
	}
}

func TestAssignExternalKey(t *testing.T) {
	f := New()
	a := &testNode{key: "row-7"}
	b := &testNode{key: "row-7"}
	c := &testNode{key: "row-8"}

	for _, n := range []*testNode{a, b, c} {
		if err := f.Assign(n); err != nil {
			t.Fatal(err)
		}
	}

	if a.ID() != b.ID() {
		t.Errorf("same key produced %q and %q", a.ID(), b.ID())
	}
	if a.ID() == c.ID() {
		t.Errorf("different keys produced the same id %q", a.ID())
	}
}

func TestResolve(t *testing.T) {
	f := New()

	id, err := f.Resolve("target")
	if err != nil {
		t.Fatal(err)
	}
	again, _ := f.Resolve("target")
	if id != again {
		t.Errorf("Resolve not stable: %q vs %q", id, again)
	}

	n := &testNode{key: "target"}
	if err := f.Assign(n); err != nil {
		t.Fatal(err)
	}
	if n.ID() != id {
		t.Errorf("node with resolved key got %q, want %q", n.ID(), id)
	}

	if got, ok := f.Lookup("target"); !ok || got != id {
		t.Errorf("Lookup = %q, %v", got, ok)
	}
	if _, ok := f.Lookup("unknown"); ok {
		t.Error("Lookup of unknown key reported ok")
	}
}

func TestResolveEmptyKey(t *testing.T) {
	_, err := New().Resolve("")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Resolve(\"\") error = %v, want INVALID_INPUT", err)
	}
}

func TestAssignNil(t *testing.T) {
	f := New()
	if err := f.Assign(nil); err != ErrNilNode {
		t.Errorf("Assign(nil) = %v, want ErrNilNode", err)
	}
	var typed *testNode
	if err := f.Assign(typed); err != ErrNilNode {
		t.Errorf("Assign(typed nil) = %v, want ErrNilNode", err)
	}
}

func TestAssignConcurrent(t *testing.T) {
	f := New()
	const workers = 16
	const perWorker = 500

	nodes := make([][]*testNode, workers)
	for w := range nodes {
		nodes[w] = make([]*testNode, perWorker)
		for i := range nodes[w] {
			// Every worker also assigns a node keyed "shared".
			key := ""
			if i == 0 {
				key = "shared"
			}
			nodes[w][i] = &testNode{key: key}
		}
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for _, n := range nodes[w] {
				if err := f.Assign(n); err != nil {
					t.Error(err)
				}
			}
		}(w)
	}
	wg.Wait()

	seen := make(map[string]bool)
	shared := nodes[0][0].ID()
	for w := range nodes {
		if nodes[w][0].ID() != shared {
			t.Errorf("worker %d shared node got %q, want %q", w, nodes[w][0].ID(), shared)
		}
		for _, n := range nodes[w][1:] {
			if seen[n.ID()] || n.ID() == shared {
				t.Fatalf("duplicate id %q", n.ID())
			}
			seen[n.ID()] = true
		}
	}

	want := workers*(perWorker-1) + 1
	if f.Issued() != want {
		t.Errorf("Issued() = %d, want %d (no skipped or wasted ids)", f.Issued(), want)
	}
}
