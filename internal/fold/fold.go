// Package fold decides which blocks a classification filter keeps
// collapsed, and mirrors manual folds between the two panes.
package fold

import (
	"bytes"

	"github.com/nicolagi/lockstep/internal/change"
)

// Filter selects the classifications of interest. The zero value
// selects nothing, which turns filter folding off entirely.
type Filter uint8

const (
	Breaking Filter = 1 << iota
	NonBreaking
	Annotation
	Unclassified
)

// All selects every classification, so only blocks containing no
// changes at all fold away.
const All = Breaking | NonBreaking | Annotation | Unclassified

// Bit returns the filter selecting exactly the given classification.
func Bit(k change.Classification) Filter {
	switch k {
	case change.Breaking:
		return Breaking
	case change.NonBreaking:
		return NonBreaking
	case change.Annotation:
		return Annotation
	}
	return Unclassified
}

// Matches reports whether the counts contain at least one change of a
// selected classification.
func (f Filter) Matches(c change.Counts) bool {
	if f&Breaking != 0 && c.Breaking > 0 {
		return true
	}
	if f&NonBreaking != 0 && c.NonBreaking > 0 {
		return true
	}
	if f&Annotation != 0 && c.Annotation > 0 {
		return true
	}
	if f&Unclassified != 0 && c.Unclassified > 0 {
		return true
	}
	return false
}

func (f Filter) String() string {
	var buf bytes.Buffer
	if f&Breaking != 0 {
		buf.WriteString("breaking,")
	}
	if f&NonBreaking != 0 {
		buf.WriteString("non-breaking,")
	}
	if f&Annotation != 0 {
		buf.WriteString("annotation,")
	}
	if f&Unclassified != 0 {
		buf.WriteString("unclassified,")
	}
	if buf.Len() > 0 {
		buf.Truncate(buf.Len() - 1)
	}
	return buf.String()
}

// Set is the ids of the blocks a filter currently keeps collapsed. It
// is a state slot of its own; manual folds never live here.
type Set map[string]struct{}

// Has reports whether id is in the set.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Delta is the incremental work a renderer must do after a filter
// change. Both slices are in document order and never share an id.
type Delta struct {
	ToFold   []string
	ToUnfold []string
}

// Empty reports whether there is nothing to do.
func (d Delta) Empty() bool {
	return len(d.ToFold) == 0 && len(d.ToUnfold) == 0
}

// Engine computes fold sets for classification filters. It indexes
// the tree once; each filter application is then linear in the number
// of blocks, with no tree walk.
type Engine struct {
	order  []string
	counts map[string]change.Counts
	prev   Set
}

// NewEngine indexes the tree.
func NewEngine(root *change.Node) *Engine {
	e := &Engine{
		counts: make(map[string]change.Counts),
		prev:   make(Set),
	}
	if root != nil {
		e.index(root, nil)
	}
	return e
}

// index computes per block the changes rendered inside its subtree.
// Blocks inside an added or removed container count under the
// enclosing edit's classification, matching what the flattener puts
// on their lines.
func (e *Engine) index(node *change.Node, inherited *change.Edit) change.Counts {
	if node.ID != "" {
		e.order = append(e.order, node.ID)
	}
	edit := inherited
	if edit == nil && node.Edit != nil && node.Edit.Action != change.NoAction {
		edit = node.Edit
	}
	down := inherited
	if down == nil && edit != nil && edit.Action.Subsumes() {
		down = edit
	}
	var c change.Counts
	if edit != nil {
		record(&c, edit.Class)
	}
	for _, child := range node.Children {
		add(&c, e.index(child, down))
	}
	if node.ID != "" {
		e.counts[node.ID] = c
	}
	return c
}

func record(c *change.Counts, k change.Classification) {
	c.Total++
	switch k {
	case change.Breaking:
		c.Breaking++
	case change.NonBreaking:
		c.NonBreaking++
	case change.Annotation:
		c.Annotation++
	default:
		c.Unclassified++
	}
}

func add(c *change.Counts, d change.Counts) {
	c.Total += d.Total
	c.Breaking += d.Breaking
	c.NonBreaking += d.NonBreaking
	c.Annotation += d.Annotation
	c.Unclassified += d.Unclassified
}

// Apply computes the fold set for f and the delta from the previous
// application. An empty filter folds nothing; otherwise every block
// whose subtree has no change of a selected classification folds,
// unchanged blocks included. Applying the same filter twice yields an
// empty delta the second time.
func (e *Engine) Apply(f Filter) (Set, Delta) {
	next := make(Set)
	if f != 0 {
		for _, id := range e.order {
			if !f.Matches(e.counts[id]) {
				next[id] = struct{}{}
			}
		}
	}
	var d Delta
	for _, id := range e.order {
		was := e.prev.Has(id)
		is := next.Has(id)
		switch {
		case is && !was:
			d.ToFold = append(d.ToFold, id)
		case was && !is:
			d.ToUnfold = append(d.ToUnfold, id)
		}
	}
	e.prev = next
	return next, d
}

// Current returns a copy of the set computed by the last Apply.
func (e *Engine) Current() Set {
	s := make(Set, len(e.prev))
	for id := range e.prev {
		s[id] = struct{}{}
	}
	return s
}
