// Package flatten turns the change tree into the ordered sequence of
// rendered lines that the alignment and unified builders consume.
package flatten

import (
	"strings"

	"github.com/nicolagi/lockstep/internal/change"
)

// Line is one renderable row of the comparison, with its text already
// assembled per side.
type Line struct {
	// Node is the tree node the line renders.
	Node *change.Node

	// Row is the 1-based position in flattening order.
	Row int

	// Owner is the id of the nearest addressable ancestor or self,
	// empty when the line is outside any addressable block. Fold
	// spans group lines by owner.
	Owner string

	Before string
	After  string
	Indent int

	// Edit is the effective edit for the line: the node's own, or
	// the enclosing Add/Remove edit that the whole subtree renders
	// under. Nil for unchanged lines.
	Edit *change.Edit

	// IsChangeRoot is true only on the line of the node that
	// introduced the change, not on lines that merely render inside
	// an added or removed subtree.
	IsChangeRoot bool
}

var newlines = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// Flatten walks the tree in preorder and returns its lines in
// document order, rows numbered from 1. Nodes without tokens of their
// own produce no line but are still descended into; tokens that stand
// in for collapsed subtrees are dropped.
func Flatten(root *change.Node) []Line {
	var acc []Line
	walk(root, "", nil, &acc)
	for i := range acc {
		acc[i].Row = i + 1
	}
	return acc
}

func walk(node *change.Node, owner string, inherited *change.Edit, acc *[]Line) {
	if node.ID != "" {
		owner = node.ID
	}
	edit, root := inherited, false
	if inherited == nil && node.Edit != nil && node.Edit.Action != change.NoAction {
		// Inside an added or removed subtree the enclosing edit
		// wins: the rows render one-sided no matter what the
		// descendants carry, and they are not change roots.
		edit, root = node.Edit, true
	}
	if visible(node.Tokens) {
		*acc = append(*acc, Line{
			Node:         node,
			Owner:        owner,
			Before:       side(node.Tokens, change.DisplayBefore),
			After:        side(node.Tokens, change.DisplayAfter),
			Indent:       node.Indent,
			Edit:         edit,
			IsChangeRoot: root,
		})
	}
	down := inherited
	if inherited == nil && node.Edit != nil && node.Edit.Action.Subsumes() {
		down = node.Edit
	}
	for _, child := range node.Children {
		walk(child, owner, down, acc)
	}
}

// visible reports whether the node renders a line of its own, that
// is, whether any token survives the collapsed-marker filter.
func visible(tokens []change.Token) bool {
	for _, tok := range tokens {
		if tok.When != change.DisplayCollapsed {
			return true
		}
	}
	return false
}

// side assembles the text for one side. A token appears if it is
// neutral or tagged for that side. Embedded newlines become spaces so
// that one semantic line always occupies one physical row.
func side(tokens []change.Token, want change.DisplayCondition) string {
	var b strings.Builder
	for _, tok := range tokens {
		if tok.When != change.DisplayAlways && tok.When != want {
			continue
		}
		b.WriteString(tok.Text)
	}
	return newlines.Replace(b.String())
}
