package fold_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicolagi/lockstep/internal/fold"
)

// fakePane behaves like an event-driven view: Fold and Unfold mutate
// its state and synchronously fire its change handler, which is how
// the ping-pong scenario arises in the first place.
type fakePane struct {
	name  string
	folds map[fold.Range]struct{}
	coord *fold.Coordinator
	calls *[]string
}

func newFakePane(name string, calls *[]string) *fakePane {
	return &fakePane{name: name, folds: make(map[fold.Range]struct{}), calls: calls}
}

func (p *fakePane) FoldedRanges() []fold.Range {
	out := make([]fold.Range, 0, len(p.folds))
	for r := range p.folds {
		out = append(out, r)
	}
	return out
}

func (p *fakePane) LineFor(r fold.Range) int { return r.From }

func (p *fakePane) Fold(row int) {
	*p.calls = append(*p.calls, fmt.Sprintf("%s fold %d", p.name, row))
	p.folds[fold.Range{From: row, To: row + 1}] = struct{}{}
	if p.coord != nil {
		p.coord.Changed(p)
	}
}

func (p *fakePane) Unfold(row int) {
	*p.calls = append(*p.calls, fmt.Sprintf("%s unfold %d", p.name, row))
	delete(p.folds, fold.Range{From: row, To: row + 1})
	if p.coord != nil {
		p.coord.Changed(p)
	}
}

type manualFrames struct {
	queue []func()
}

func (f *manualFrames) OnNextFrame(fn func()) {
	f.queue = append(f.queue, fn)
}

func (f *manualFrames) flush() {
	for _, fn := range f.queue {
		fn()
	}
	f.queue = nil
}

func newSyncedPanes(t *testing.T) (*fakePane, *fakePane, *manualFrames, *[]string) {
	t.Helper()
	calls := new([]string)
	a := newFakePane("a", calls)
	b := newFakePane("b", calls)
	frames := new(manualFrames)
	c := fold.NewCoordinator(a, b, frames)
	a.coord, b.coord = c, c
	return a, b, frames, calls
}

func TestCoordinatorMirrorsFoldWithoutEcho(t *testing.T) {
	a, b, _, calls := newSyncedPanes(t)
	a.Fold(3)
	// One local call, one mirrored call, and nothing bouncing back.
	assert.Equal(t, []string{"a fold 3", "b fold 3"}, *calls)
	assert.Contains(t, b.folds, fold.Range{From: 3, To: 4})
}

func TestCoordinatorMirrorsUnfold(t *testing.T) {
	a, b, frames, calls := newSyncedPanes(t)
	a.Fold(3)
	frames.flush()
	*calls = nil

	b.Unfold(3)
	assert.Equal(t, []string{"b unfold 3", "a unfold 3"}, *calls)
	assert.Empty(t, a.folds)
	assert.Empty(t, b.folds)
}

func TestCoordinatorMirrorsBothDirectionsAcrossFrames(t *testing.T) {
	a, b, frames, calls := newSyncedPanes(t)
	a.Fold(3)
	frames.flush()
	b.Fold(7)
	frames.flush()
	assert.Equal(t, []string{"a fold 3", "b fold 3", "b fold 7", "a fold 7"}, *calls)
	assert.Len(t, a.folds, 2)
	assert.Len(t, b.folds, 2)
}

func TestCoordinatorGuardClearsOnNextFrame(t *testing.T) {
	a, b, frames, calls := newSyncedPanes(t)
	a.Fold(3)
	require.Equal(t, []string{"a fold 3", "b fold 3"}, *calls)

	// Before the frame fires, b is still absorbing: its own events
	// are treated as part of the mirrored application.
	b.Fold(5)
	assert.Equal(t, []string{"a fold 3", "b fold 3", "b fold 5"}, *calls)
	assert.NotContains(t, a.folds, fold.Range{From: 5, To: 6})

	frames.flush()
	b.Fold(9)
	assert.Contains(t, a.folds, fold.Range{From: 9, To: 10})
}

func TestCoordinatorMirrorsMultipleRangesInOrder(t *testing.T) {
	a, _, _, calls := newSyncedPanes(t)
	a.folds[fold.Range{From: 9, To: 12}] = struct{}{}
	a.folds[fold.Range{From: 2, To: 5}] = struct{}{}
	a.coord.Changed(a)
	assert.Equal(t, []string{"b fold 2", "b fold 9"}, *calls)
}

func TestCoordinatorIgnoresUnknownPane(t *testing.T) {
	a, _, _, _ := newSyncedPanes(t)
	stray := newFakePane("stray", new([]string))
	a.coord.Changed(stray)
	assert.Empty(t, a.folds)
}

func TestCoordinatorNoChangeNoMirror(t *testing.T) {
	a, _, _, calls := newSyncedPanes(t)
	a.coord.Changed(a)
	assert.Empty(t, *calls)
}
