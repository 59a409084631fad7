package keys

import "strings"

// Conjunction combines sibling keys of a node.
type Conjunction string

// Conjunction constants.
const (
	And Conjunction = "AND"
	Or  Conjunction = "OR"
)

// Node is a boolean group of search keys.
type Node struct {
	Conjunction Conjunction
	Negation    bool
	// Escaped keys are used verbatim and never escaped again.
	Escaped  bool
	Children []Child
}

// Child is either a term or a nested node.
type Child struct {
	term string
	node *Node
}

// Term creates a term child.
func Term(s string) Child { return Child{term: s} }

// Subtree creates a nested node child.
func Subtree(n *Node) Child { return Child{node: n} }

// IsTerm reports whether the child is a term.
func (c Child) IsTerm() bool { return c.node == nil }

// Term returns the term value. Empty for subtrees.
func (c Child) Term() string { return c.term }

// Node returns the nested node. Nil for terms.
func (c Child) Node() *Node { return c.node }

// IsEmpty reports whether the child contributes nothing to a query.
func (c Child) IsEmpty() bool {
	if c.node == nil {
		return strings.TrimSpace(c.term) == ""
	}
	return len(c.node.Children) == 0
}

// NewNode creates an AND node over the given children.
func NewNode(children ...Child) *Node {
	return &Node{Conjunction: And, Children: children}
}

// Terms creates an AND node over plain terms.
func Terms(terms ...string) *Node {
	children := make([]Child, len(terms))
	for i, t := range terms {
		children[i] = Term(t)
	}
	return NewNode(children...)
}

// IsOr reports whether siblings are combined with OR.
// Anything other than OR combines with AND.
func (n *Node) IsOr() bool { return n.Conjunction == Or }

// WithConjunction sets the conjunction and returns the node.
func (n *Node) WithConjunction(c Conjunction) *Node {
	n.Conjunction = c
	return n
}

// Negate marks the node as negated and returns it.
func (n *Node) Negate() *Node {
	n.Negation = true
	return n
}

// MarkEscaped marks the node's terms as already escaped and returns it.
func (n *Node) MarkEscaped() *Node {
	n.Escaped = true
	return n
}
