package fold_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicolagi/lockstep/internal/change"
	"github.com/nicolagi/lockstep/internal/fold"
)

func TestFilterString(t *testing.T) {
	assert.Equal(t, "", fold.Filter(0).String())
	assert.Equal(t, "breaking", fold.Breaking.String())
	assert.Equal(t, "breaking,annotation", (fold.Breaking | fold.Annotation).String())
	assert.Equal(t, "breaking,non-breaking,annotation,unclassified", fold.All.String())
}

func TestBitMatchesItsClassification(t *testing.T) {
	for _, k := range change.Classifications() {
		var c change.Counts
		switch k {
		case change.Breaking:
			c.Breaking = 1
		case change.NonBreaking:
			c.NonBreaking = 1
		case change.Annotation:
			c.Annotation = 1
		default:
			c.Unclassified = 1
		}
		c.Total = 1
		assert.True(t, fold.Bit(k).Matches(c), "classification %v", k)
		assert.False(t, fold.Bit(k).Matches(change.Counts{}), "classification %v", k)
	}
}

// specDoc has one breaking, one non-breaking and one annotation
// change, a block with no changes, and a removed container with a
// changed descendant.
func specDoc() *change.Node {
	return &change.Node{
		Children: []*change.Node{
			{ID: "info", Tokens: []change.Token{{Text: "info:"}}, Children: []*change.Node{
				{ID: "info/version", Tokens: []change.Token{{Text: "version: 2.0"}}, Edit: &change.Edit{Action: change.Replace, Class: change.Breaking}},
				{ID: "info/description", Tokens: []change.Token{{Text: "description: v2"}}, Edit: &change.Edit{Action: change.Replace, Class: change.Annotation}},
			}},
			{ID: "servers", Tokens: []change.Token{{Text: "servers:"}}},
			{ID: "paths", Tokens: []change.Token{{Text: "paths:"}}, Children: []*change.Node{
				{ID: "paths/~1users", Tokens: []change.Token{{Text: "/users:"}}, Children: []*change.Node{
					{ID: "paths/~1users/get", Tokens: []change.Token{{Text: "get:"}}, Edit: &change.Edit{Action: change.Add, Class: change.NonBreaking}},
				}},
				{ID: "paths/~1pets", Tokens: []change.Token{{Text: "/pets:"}}, Edit: &change.Edit{Action: change.Remove, Class: change.Breaking}, Children: []*change.Node{
					{ID: "paths/~1pets/get", Tokens: []change.Token{{Text: "get:"}}, Edit: &change.Edit{Action: change.Replace, Class: change.Annotation}},
				}},
			}},
		},
	}
}

func TestEngineApplyFoldsBlocksWithoutMatchingChanges(t *testing.T) {
	e := fold.NewEngine(specDoc())

	set, delta := e.Apply(fold.Breaking)
	assert.Equal(t, []string{"info/description", "servers", "paths/~1users", "paths/~1users/get"}, delta.ToFold)
	assert.Empty(t, delta.ToUnfold)
	assert.True(t, set.Has("servers"))
	assert.True(t, set.Has("paths/~1users"))
	assert.False(t, set.Has("info"))
	assert.False(t, set.Has("paths"))
	assert.False(t, set.Has("paths/~1pets"))
	// The descendant of the removed container renders under the
	// container's breaking edit, so it does not fold away.
	assert.False(t, set.Has("paths/~1pets/get"))
}

func TestEngineApplyIsIdempotent(t *testing.T) {
	e := fold.NewEngine(specDoc())
	first, _ := e.Apply(fold.Breaking)
	second, delta := e.Apply(fold.Breaking)
	assert.True(t, delta.Empty())
	assert.Equal(t, first, second)
}

func TestEngineApplyEmitsDisjointDeltas(t *testing.T) {
	e := fold.NewEngine(specDoc())
	_, _ = e.Apply(fold.Breaking)

	_, delta := e.Apply(fold.Breaking | fold.Annotation)
	assert.Equal(t, []string{"info/description"}, delta.ToUnfold)
	assert.Empty(t, delta.ToFold)

	_, delta = e.Apply(fold.Annotation)
	assert.Equal(t, []string{"info/version", "paths", "paths/~1pets", "paths/~1pets/get"}, delta.ToFold)
	assert.Empty(t, delta.ToUnfold)
}

func TestEngineEmptyFilterFoldsNothing(t *testing.T) {
	e := fold.NewEngine(specDoc())
	folded, _ := e.Apply(fold.Breaking)
	require.NotEmpty(t, folded)

	set, delta := e.Apply(0)
	assert.Empty(t, set)
	assert.Empty(t, delta.ToFold)
	assert.Equal(t, []string{"info/description", "servers", "paths/~1users", "paths/~1users/get"}, delta.ToUnfold)
}

func TestEngineAllFilterFoldsOnlyUnchanged(t *testing.T) {
	e := fold.NewEngine(specDoc())
	set, _ := e.Apply(fold.All)
	assert.Equal(t, fold.Set{"servers": {}}, set)
}

func TestEngineNilTree(t *testing.T) {
	e := fold.NewEngine(nil)
	set, delta := e.Apply(fold.All)
	assert.Empty(t, set)
	assert.True(t, delta.Empty())
}

func TestCurrentReturnsCopy(t *testing.T) {
	e := fold.NewEngine(specDoc())
	_, _ = e.Apply(fold.Breaking)
	cur := e.Current()
	delete(cur, "servers")
	assert.True(t, e.Current().Has("servers"))
}
