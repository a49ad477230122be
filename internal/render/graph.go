package render

import (
	"strconv"
	"strings"
)

// Pad is a named stream label in the filter graph, written as [name].
// Input stream selectors such as "0:v" are pads too.
type Pad string

func (p Pad) String() string {
	return "[" + string(p) + "]"
}

// InputPad returns the video stream selector for ffmpeg input index i.
func InputPad(i int) Pad {
	return Pad(strconv.Itoa(i) + ":v")
}

// Arg is one filter option. Positional options have an empty Key.
type Arg struct {
	Key   string
	Value string
}

func Positional(v string) Arg { return Arg{Value: v} }

func Named(k, v string) Arg { return Arg{Key: k, Value: v} }

// Filter is a single ffmpeg filter primitive with its options.
type Filter struct {
	Name string
	Args []Arg
}

func (f Filter) String() string {
	if len(f.Args) == 0 {
		return f.Name
	}
	parts := make([]string, len(f.Args))
	for i, a := range f.Args {
		if a.Key == "" {
			parts[i] = a.Value
		} else {
			parts[i] = a.Key + "=" + a.Value
		}
	}
	return f.Name + "=" + strings.Join(parts, ":")
}

// Node is one processing stage: its input pads feed a comma-joined filter
// chain whose result is labelled Output.
type Node struct {
	Inputs  []Pad
	Filters []Filter
	Output  Pad
}

func (n Node) String() string {
	var b strings.Builder
	for _, in := range n.Inputs {
		b.WriteString(in.String())
	}
	for i, f := range n.Filters {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(f.String())
	}
	b.WriteString(n.Output.String())
	return b.String()
}

type InputKind int

const (
	InputOverlay InputKind = iota + 1
	InputAudio
)

// Input is an extra ffmpeg input beyond the base video at index 0.
type Input struct {
	Index int
	Path  string
	Kind  InputKind
}

// Graph is the compiled result for one request. When Passthrough is set no
// stage was emitted and the video stream must be copied as-is.
type Graph struct {
	Nodes       []Node
	Output      Pad
	Inputs      []Input
	Audio       *Input
	Passthrough bool
}

// Stages returns each node serialised in emission order.
func (g *Graph) Stages() []string {
	out := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		out[i] = n.String()
	}
	return out
}

// FilterComplex serialises the graph into ffmpeg -filter_complex syntax.
func (g *Graph) FilterComplex() string {
	return strings.Join(g.Stages(), ";")
}

// graphBuilder tracks the current pad while stages are appended. It is owned
// by a single Compile call.
type graphBuilder struct {
	nodes   []Node
	current Pad
}

func newGraphBuilder(base Pad) *graphBuilder {
	return &graphBuilder{current: base}
}

// chain appends a node consuming the current pad (plus extra inputs) and
// advances current to out.
func (b *graphBuilder) chain(out Pad, extra []Pad, filters ...Filter) {
	inputs := append([]Pad{b.current}, extra...)
	b.nodes = append(b.nodes, Node{Inputs: inputs, Filters: filters, Output: out})
	b.current = out
}

// side appends a node that does not touch the current pad.
func (b *graphBuilder) side(in Pad, out Pad, filters ...Filter) {
	b.nodes = append(b.nodes, Node{Inputs: []Pad{in}, Filters: filters, Output: out})
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
