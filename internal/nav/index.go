// Package nav resolves paths to blocks and back, cycles through the
// document's changes, and answers the summary and tree-expansion
// queries a browsing UI needs. Lookups that miss return zero values,
// never errors; callers probe speculatively.
package nav

import (
	"github.com/nicolagi/lockstep/internal/change"
)

// Index is built once per compared document pair. It is not safe for
// concurrent use; the cursor is the only mutable state.
type Index struct {
	root  *change.Node
	doc   any
	byID  map[string]*change.Node
	stops []stop

	// cursor points into stops, -1 before the first navigation.
	cursor int
}

// stop is one change-bearing block in document order. Changes on
// anonymous nodes are attributed to their owning block.
type stop struct {
	id    string
	class change.Classification
}

// NewIndex builds the index over the change tree and the merged
// document. The document may be nil if path search is not needed.
func NewIndex(root *change.Node, doc any) *Index {
	x := &Index{
		root:   root,
		doc:    doc,
		byID:   make(map[string]*change.Node),
		cursor: -1,
	}
	if root != nil {
		root.Recount()
		root.Visit(func(n *change.Node) {
			if n.ID != "" {
				x.byID[n.ID] = n
			}
		})
		x.collectStops(root, "", false)
	}
	return x
}

func (x *Index) collectStops(n *change.Node, owner string, inherited bool) {
	if n.ID != "" {
		owner = n.ID
	}
	own := n.Edit != nil && n.Edit.Action != change.NoAction
	if own && !inherited && owner != "" {
		if last := len(x.stops) - 1; last < 0 || x.stops[last].id != owner {
			x.stops = append(x.stops, stop{id: owner, class: n.Edit.Class})
		}
	}
	down := inherited || (own && n.Edit.Action.Subsumes())
	for _, child := range n.Children {
		x.collectStops(child, owner, down)
	}
}

// Block returns the node for a block id, nil when unknown.
func (x *Index) Block(id string) *change.Node {
	return x.byID[id]
}

// Resolve joins path segments into a block id, or returns the empty
// string when no such block exists.
func (x *Index) Resolve(segments ...string) string {
	id := change.JoinPath(segments...)
	if _, ok := x.byID[id]; !ok {
		return ""
	}
	return id
}

// Path returns the segments of a block id, nil when the id is
// unknown.
func (x *Index) Path(id string) []string {
	if _, ok := x.byID[id]; !ok {
		return nil
	}
	return change.SplitPath(id)
}

// Ancestors returns the enclosing block ids outermost first, so a
// caller can expand them in order before scrolling to the block.
// Unknown ids resolve to nil.
func (x *Index) Ancestors(id string) []string {
	if _, ok := x.byID[id]; !ok {
		return nil
	}
	var out []string
	for p := change.ParentID(id); p != ""; p = change.ParentID(p) {
		out = append(out, p)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// NextChange advances the cursor to the next change-bearing block and
// returns its id, wrapping past the end. With classifications given,
// blocks of other classifications are skipped. Returns the empty
// string when nothing matches; the cursor then stays put.
func (x *Index) NextChange(kinds ...change.Classification) string {
	n := len(x.stops)
	if n == 0 {
		return ""
	}
	for step := 1; step <= n; step++ {
		i := (x.cursor + step) % n
		if matches(x.stops[i].class, kinds) {
			x.cursor = i
			return x.stops[i].id
		}
	}
	return ""
}

// PrevChange is NextChange in the other direction. Before the first
// navigation it lands on the last matching block.
func (x *Index) PrevChange(kinds ...change.Classification) string {
	n := len(x.stops)
	if n == 0 {
		return ""
	}
	start := x.cursor
	if start < 0 {
		start = n
	}
	for step := 1; step <= n; step++ {
		i := ((start-step)%n + n) % n
		if matches(x.stops[i].class, kinds) {
			x.cursor = i
			return x.stops[i].id
		}
	}
	return ""
}

// Current returns the block the cursor is on, or the empty string
// before the first navigation.
func (x *Index) Current() string {
	if x.cursor < 0 || x.cursor >= len(x.stops) {
		return ""
	}
	return x.stops[x.cursor].id
}

// Reset moves the cursor back before the first change.
func (x *Index) Reset() {
	x.cursor = -1
}

// Stops returns the number of change-bearing blocks.
func (x *Index) Stops() int {
	return len(x.stops)
}

func matches(c change.Classification, kinds []change.Classification) bool {
	if len(kinds) == 0 {
		return true
	}
	for _, k := range kinds {
		if k == c {
			return true
		}
	}
	return false
}

// Summary is the document's change totals. Descendants of an added or
// removed container count through the container once, not once per
// descendant.
type Summary struct {
	change.Counts

	// ByPath has the aggregate counts of every block whose subtree
	// contains changes.
	ByPath map[string]change.Counts
}

// Summary computes the totals from the tree's counts.
func (x *Index) Summary() Summary {
	s := Summary{ByPath: make(map[string]change.Counts)}
	if x.root == nil {
		return s
	}
	s.Counts = x.root.Counts()
	for id, n := range x.byID {
		if c := n.Counts(); c.Total > 0 {
			s.ByPath[id] = c
		}
	}
	return s
}

// ChildKey describes one expandable child of a block.
type ChildKey struct {
	// Key is the raw, unescaped last segment.
	Key string
	ID  string

	// IsChangeRoot is true when the child itself introduced a
	// change, not when it merely renders inside one.
	IsChangeRoot bool

	Counts change.Counts

	// HasChildren reports whether expanding the child yields more
	// keys.
	HasChildren bool
}

// ChildKeys returns one level of addressable children of the given
// block, descending through anonymous grouping nodes. The empty id
// addresses the root. Unknown ids resolve to nil.
func (x *Index) ChildKeys(id string) []ChildKey {
	node := x.root
	if id != "" {
		node = x.byID[id]
	}
	if node == nil {
		return nil
	}
	subsumed := x.subsumedBelow(id, node)
	var out []ChildKey
	var collect func(*change.Node, bool)
	collect = func(n *change.Node, subsumed bool) {
		for _, child := range n.Children {
			own := child.Edit != nil && child.Edit.Action != change.NoAction
			if child.ID == "" {
				collect(child, subsumed || (own && child.Edit.Action.Subsumes()))
				continue
			}
			segs := change.SplitPath(child.ID)
			key := ""
			if len(segs) > 0 {
				key = segs[len(segs)-1]
			}
			out = append(out, ChildKey{
				Key:          key,
				ID:           child.ID,
				IsChangeRoot: own && !subsumed,
				Counts:       child.Counts(),
				HasChildren:  hasAddressable(child),
			})
		}
	}
	collect(node, subsumed)
	return out
}

// subsumedBelow reports whether children of the block render inside
// an enclosing add or remove, the block's own included.
func (x *Index) subsumedBelow(id string, node *change.Node) bool {
	if node.Edit != nil && node.Edit.Action.Subsumes() {
		return true
	}
	for p := change.ParentID(id); p != ""; p = change.ParentID(p) {
		if n, ok := x.byID[p]; ok && n.Edit != nil && n.Edit.Action.Subsumes() {
			return true
		}
	}
	return false
}

func hasAddressable(n *change.Node) bool {
	for _, child := range n.Children {
		if child.ID != "" || hasAddressable(child) {
			return true
		}
	}
	return false
}
