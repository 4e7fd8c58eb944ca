package change

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func leaf(id string, edit *Edit) *Node {
	return &Node{
		ID:     id,
		Tokens: []Token{{Text: id + ": v"}},
		Edit:   edit,
	}
}

func TestRecountSubsumption(t *testing.T) {
	children := func() []*Node {
		return []*Node{
			leaf("p/a", &Edit{Action: Replace, Class: Breaking}),
			leaf("p/b", &Edit{Action: Add, Class: Annotation}),
		}
	}
	t.Run("removed parent counts once", func(t *testing.T) {
		parent := &Node{ID: "p", Edit: &Edit{Action: Remove, Class: Breaking}, Children: children()}
		got := parent.Recount()
		assert.Equal(t, Counts{Total: 1, Breaking: 1}, got)
	})
	t.Run("added parent counts once", func(t *testing.T) {
		parent := &Node{ID: "p", Edit: &Edit{Action: Add, Class: NonBreaking}, Children: children()}
		got := parent.Recount()
		assert.Equal(t, Counts{Total: 1, NonBreaking: 1}, got)
	})
	t.Run("replaced parent counts children too", func(t *testing.T) {
		parent := &Node{ID: "p", Edit: &Edit{Action: Replace, Class: Breaking}, Children: children()}
		got := parent.Recount()
		assert.Equal(t, Counts{Total: 3, Breaking: 2, Annotation: 1}, got)
	})
	t.Run("unchanged parent counts children", func(t *testing.T) {
		parent := &Node{ID: "p", Children: children()}
		got := parent.Recount()
		assert.Equal(t, Counts{Total: 2, Breaking: 1, Annotation: 1}, got)
	})
	t.Run("children keep their own counts under subsumption", func(t *testing.T) {
		parent := &Node{ID: "p", Edit: &Edit{Action: Remove, Class: Breaking}, Children: children()}
		parent.Recount()
		assert.Equal(t, Counts{Total: 1, Breaking: 1}, parent.Children[0].Counts())
	})
}

func TestCountsInvariant(t *testing.T) {
	root := &Node{
		Children: []*Node{
			leaf("a", nil),
			leaf("b", &Edit{Action: Add, Class: NonBreaking}),
			leaf("c", &Edit{Action: Remove, Class: Breaking}),
			leaf("d", &Edit{Action: Rename, Class: Unclassified}),
		},
	}
	c := root.Recount()
	assert.Equal(t, c.Total, c.Breaking+c.NonBreaking+c.Annotation+c.Unclassified)
	for _, k := range Classifications() {
		assert.GreaterOrEqual(t, c.Of(k), 0)
	}
}

func TestParseAction(t *testing.T) {
	for name, want := range map[string]Action{
		"add":     Add,
		"remove":  Remove,
		"replace": Replace,
		"rename":  Rename,
	} {
		got, ok := ParseAction(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, got)
		assert.Equal(t, name, got.String())
	}
	got, ok := ParseAction("transmogrify")
	assert.False(t, ok)
	assert.Equal(t, NoAction, got)
}

func TestParseClassification(t *testing.T) {
	for name, want := range map[string]Classification{
		"breaking":     Breaking,
		"non-breaking": NonBreaking,
		"annotation":   Annotation,
		"unclassified": Unclassified,
	} {
		got := ParseClassification(name)
		assert.Equal(t, want, got)
		assert.Equal(t, name, got.String())
	}
	assert.Equal(t, Unclassified, ParseClassification("catastrophic"))
	assert.Equal(t, Unclassified, ParseClassification(""))
}

func TestVisitOrder(t *testing.T) {
	root := &Node{ID: "", Children: []*Node{
		{ID: "a", Children: []*Node{{ID: "a/x"}}},
		{ID: "b"},
	}}
	var order []string
	root.Visit(func(n *Node) { order = append(order, n.ID) })
	assert.Equal(t, []string{"", "a", "a/x", "b"}, order)
}
