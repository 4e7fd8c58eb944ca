package change

// Action is the edit operation a change node represents.
type Action uint8

const (
	// NoAction is what unrecognized action names decode to. A node
	// whose edit carries NoAction is treated as unchanged.
	NoAction Action = iota
	Add
	Remove
	Replace
	Rename
)

var actionNames = map[Action]string{
	Add:     "add",
	Remove:  "remove",
	Replace: "replace",
	Rename:  "rename",
}

// String implements fmt.Stringer for debugging purposes.
func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return "none"
}

// ParseAction maps an interchange action name to its Action. The
// second return value is false for names it does not know, and the
// caller is expected to drop the edit rather than fail.
func ParseAction(s string) (Action, bool) {
	for a, name := range actionNames {
		if name == s {
			return a, true
		}
	}
	return NoAction, false
}

// Subsumes reports whether a node with this action absorbs its
// descendants' changes into one logical change. Adding or removing a
// container is one change no matter how large the subtree; replacing
// or renaming one is not.
func (a Action) Subsumes() bool {
	return a == Add || a == Remove
}

// Classification is the severity bucket assigned to an edit.
type Classification uint8

const (
	// Unclassified doubles as the fallback for classification names
	// this version does not know.
	Unclassified Classification = iota
	Breaking
	NonBreaking
	Annotation
)

var classificationNames = map[Classification]string{
	Unclassified: "unclassified",
	Breaking:     "breaking",
	NonBreaking:  "non-breaking",
	Annotation:   "annotation",
}

func (c Classification) String() string {
	if s, ok := classificationNames[c]; ok {
		return s
	}
	return "unclassified"
}

// ParseClassification maps an interchange classification name to its
// Classification, falling back to Unclassified.
func ParseClassification(s string) Classification {
	for c, name := range classificationNames {
		if name == s {
			return c
		}
	}
	return Unclassified
}

// Classifications lists all buckets in a stable order, for callers
// that iterate (filters, summaries).
func Classifications() []Classification {
	return []Classification{Breaking, NonBreaking, Annotation, Unclassified}
}

// DisplayCondition says on which side of a comparison a token is
// rendered.
type DisplayCondition uint8

const (
	// DisplayAlways tokens appear on both sides.
	DisplayAlways DisplayCondition = iota
	DisplayBefore
	DisplayAfter
	// DisplayCollapsed marks placeholder tokens that stand in for a
	// collapsed subtree. They are artifacts of the producing engine
	// and are skipped when flattening.
	DisplayCollapsed
)

// Role is a coarse syntactic tag on a token, for styling only. The
// renderer may ignore it.
type Role uint8

const (
	RoleNone Role = iota
	RoleKey
	RoleValue
	RolePunctuation
	RoleMarker
)

// Token is one styled fragment of a rendered line.
type Token struct {
	Text string
	When DisplayCondition
	Role Role
}

// Edit is the change metadata attached to a node by the producing
// engine.
type Edit struct {
	Action Action
	Class  Classification

	// Replaced holds the rendered previous value for Replace and
	// Rename edits, empty otherwise.
	Replaced string
}

// Node is one node of the annotated change tree. The tree is built
// once per comparison and never mutated afterwards; everything views
// derive from it is recomputed, not written back.
type Node struct {
	// ID is the stable '/'-joined path of the node, with segments
	// escaped as in JSON Pointers. Empty for rows that are not
	// addressable, such as pure punctuation.
	ID string

	// Indent is the nesting level, not a column.
	Indent int

	Tokens   []Token
	Children []*Node

	// Edit is nil for unchanged nodes.
	Edit *Edit

	counts Counts
}

// Counts aggregates the changes in a subtree, one field per
// classification plus their sum.
type Counts struct {
	Total        int
	Breaking     int
	NonBreaking  int
	Annotation   int
	Unclassified int
}

// Of returns the count for one classification.
func (c Counts) Of(k Classification) int {
	switch k {
	case Breaking:
		return c.Breaking
	case NonBreaking:
		return c.NonBreaking
	case Annotation:
		return c.Annotation
	default:
		return c.Unclassified
	}
}

func (c *Counts) tally(k Classification) {
	c.Total++
	switch k {
	case Breaking:
		c.Breaking++
	case NonBreaking:
		c.NonBreaking++
	case Annotation:
		c.Annotation++
	default:
		c.Unclassified++
	}
}

func (c *Counts) merge(d Counts) {
	c.Total += d.Total
	c.Breaking += d.Breaking
	c.NonBreaking += d.NonBreaking
	c.Annotation += d.Annotation
	c.Unclassified += d.Unclassified
}

// Counts returns the aggregate computed by the last Recount. Decode
// recounts before returning a tree, so trees obtained from it are
// always current.
func (node *Node) Counts() Counts {
	return node.counts
}

// Recount recomputes aggregate counts for the whole subtree and
// returns the root's. A node's counts are its own edit plus its
// children's, except that an Add or Remove node subsumes the
// children's: the subtree counts as one change of the node's own
// classification.
func (node *Node) Recount() Counts {
	var c Counts
	subsume := node.Edit != nil && node.Edit.Action.Subsumes()
	for _, child := range node.Children {
		cc := child.Recount()
		if !subsume {
			c.merge(cc)
		}
	}
	if node.Edit != nil && node.Edit.Action != NoAction {
		c.tally(node.Edit.Class)
	}
	node.counts = c
	return c
}

// Visit walks the subtree in preorder, the node itself first.
func (node *Node) Visit(visit func(*Node)) {
	visit(node)
	for _, child := range node.Children {
		child.Visit(visit)
	}
}
