package dot

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Layout is a graph laid out by Graphviz, in inches.
type Layout struct {
	Scale  float64
	Width  float64
	Height float64
	Nodes  []Node
	Edges  []Edge
}

// Node is a laid out node. X and Y are its center.
type Node struct {
	Name      string
	X, Y      float64
	W, H      float64
	Label     string
	Style     string
	Shape     string
	Color     string
	FillColor string
}

// Edge is a laid out edge. Points are the spline control points from tail
// to head.
type Edge struct {
	Tail, Head string
	Points     [][2]float64
	Label      string
	LabelAt    *[2]float64
	Style      string
	Color      string
}

// ParsePlain reads Graphviz "plain" output.
func ParsePlain(data []byte) (*Layout, error) {
	l := &Layout{}
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 4<<20)
	line := 0
	for sc.Scan() {
		line++
		f, err := fields(sc.Text())
		if err != nil {
			return nil, fmt.Errorf("plain line %d: %w", line, err)
		}
		if len(f) == 0 {
			continue
		}
		switch f[0] {
		case "graph":
			err = l.parseGraph(f)
		case "node":
			err = l.parseNode(f)
		case "edge":
			err = l.parseEdge(f)
		case "stop":
			return l, nil
		default:
			err = fmt.Errorf("unknown statement %q", f[0])
		}
		if err != nil {
			return nil, fmt.Errorf("plain line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Layout) parseGraph(f []string) error {
	if len(f) < 4 {
		return fmt.Errorf("graph: want 3 values, got %d", len(f)-1)
	}
	var err error
	if l.Scale, err = num(f[1]); err != nil {
		return err
	}
	if l.Width, err = num(f[2]); err != nil {
		return err
	}
	l.Height, err = num(f[3])
	return err
}

// node name x y width height label style shape color fillcolor
func (l *Layout) parseNode(f []string) error {
	if len(f) < 11 {
		return fmt.Errorf("node: want 10 values, got %d", len(f)-1)
	}
	n := Node{Name: f[1], Label: f[6], Style: f[7], Shape: f[8], Color: f[9], FillColor: f[10]}
	var err error
	for i, dst := range []*float64{&n.X, &n.Y, &n.W, &n.H} {
		if *dst, err = num(f[2+i]); err != nil {
			return fmt.Errorf("node %s: %w", n.Name, err)
		}
	}
	l.Nodes = append(l.Nodes, n)
	return nil
}

// edge tail head n x1 y1 .. xn yn [label xl yl] style color
func (l *Layout) parseEdge(f []string) error {
	if len(f) < 4 {
		return fmt.Errorf("edge: too few values")
	}
	e := Edge{Tail: f[1], Head: f[2]}
	n, err := strconv.Atoi(f[3])
	if err != nil {
		return fmt.Errorf("edge %s -> %s: point count: %w", e.Tail, e.Head, err)
	}
	rest := f[4:]
	if len(rest) < 2*n+2 {
		return fmt.Errorf("edge %s -> %s: want %d points", e.Tail, e.Head, n)
	}
	for i := 0; i < n; i++ {
		x, err := num(rest[2*i])
		if err != nil {
			return err
		}
		y, err := num(rest[2*i+1])
		if err != nil {
			return err
		}
		e.Points = append(e.Points, [2]float64{x, y})
	}
	rest = rest[2*n:]
	if len(rest) >= 5 {
		e.Label = rest[0]
		x, err := num(rest[1])
		if err != nil {
			return err
		}
		y, err := num(rest[2])
		if err != nil {
			return err
		}
		e.LabelAt = &[2]float64{x, y}
		rest = rest[3:]
	}
	e.Style, e.Color = rest[0], rest[1]
	l.Edges = append(l.Edges, e)
	return nil
}

func num(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad number %q", s)
	}
	return v, nil
}

// fields splits a plain line on blanks. Double-quoted fields may contain
// blanks and backslash escapes; \n, \l and \r become line breaks.
func fields(s string) ([]string, error) {
	var (
		out []string
		cur strings.Builder
		in  bool
		has bool
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case in && c == '\\' && i+1 < len(s):
			i++
			switch s[i] {
			case 'n', 'l', 'r':
				cur.WriteByte('\n')
			default:
				cur.WriteByte(s[i])
			}
		case c == '"':
			in = !in
			has = true
		case !in && (c == ' ' || c == '\t'):
			if has {
				out = append(out, cur.String())
				cur.Reset()
				has = false
			}
		default:
			cur.WriteByte(c)
			has = true
		}
	}
	if in {
		return nil, fmt.Errorf("unterminated quote")
	}
	if has {
		out = append(out, cur.String())
	}
	return out, nil
}
