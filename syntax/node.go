package syntax

// Node is an element of a parsed FML tree: *Text,
// *Placeholder, *Tag or *Include.
type Node interface {
	Position() Pos
	node()
}

// Text is a run of literal text.
type Text struct {
	Pos  Pos
	Text string
}

// Placeholder is a {{ path }} reference to a context
// value.
type Placeholder struct {
	Pos  Pos
	Path string
}

// Tag is a matched open/close pair and the nodes between
// them.
type Tag struct {
	Pos      Pos
	Name     string
	Children []Node
}

// Include inlines the rendered output of the file at Path.
type Include struct {
	Pos  Pos
	Path string
}

func (n *Text) Position() Pos        { return n.Pos }
func (n *Placeholder) Position() Pos { return n.Pos }
func (n *Tag) Position() Pos         { return n.Pos }
func (n *Include) Position() Pos     { return n.Pos }

func (*Text) node()        {}
func (*Placeholder) node() {}
func (*Tag) node()         {}
func (*Include) node()     {}
