package fold

import "sort"

// Range is a folded stretch of physical rows, 1-based, inclusive of
// From and To.
type Range struct {
	From int
	To   int
}

// Pane is one independently rendered view taking part in fold sync.
// Fold and Unfold may fire the pane's own change handler
// synchronously; the coordinator tolerates that.
type Pane interface {
	// FoldedRanges returns the currently folded ranges, in any order.
	FoldedRanges() []Range

	// LineFor resolves a range to the row that Fold and Unfold act
	// on. The two panes share row alignment, so a row resolved on
	// one pane addresses the same content on the other.
	LineFor(Range) int

	Fold(row int)
	Unfold(row int)
}

// Scheduler defers work to the next animation frame.
type Scheduler interface {
	OnNextFrame(func())
}

// Coordinator mirrors manual fold changes between two panes. It holds
// a one-way handle to each pane plus a reentrancy guard per pane; the
// panes never reference each other. Not safe for concurrent use: both
// panes must deliver their events from the same loop.
type Coordinator struct {
	frames Scheduler
	a, b   paneState
}

type paneState struct {
	pane Pane

	// snapshot is the fold state last seen in sync.
	snapshot map[Range]struct{}

	// applying is set while this pane receives mirrored changes, so
	// its own change events are absorbed instead of echoed back. It
	// clears on the next frame, after the mirrored dispatch has
	// committed.
	applying bool
}

// NewCoordinator snapshots both panes' current folds and starts
// mirroring between them.
func NewCoordinator(a, b Pane, frames Scheduler) *Coordinator {
	return &Coordinator{
		frames: frames,
		a:      paneState{pane: a, snapshot: snapshot(a)},
		b:      paneState{pane: b, snapshot: snapshot(b)},
	}
}

func snapshot(p Pane) map[Range]struct{} {
	s := make(map[Range]struct{})
	for _, r := range p.FoldedRanges() {
		s[r] = struct{}{}
	}
	return s
}

// Changed tells the coordinator that p's folds were edited. Changes
// the coordinator itself is applying are absorbed without echoing.
// Unknown panes are ignored.
func (c *Coordinator) Changed(p Pane) {
	local, remote := c.sides(p)
	if local == nil {
		return
	}
	next := snapshot(local.pane)
	if local.applying {
		local.snapshot = next
		return
	}
	folded := diff(next, local.snapshot)
	unfolded := diff(local.snapshot, next)
	local.snapshot = next
	if len(folded) == 0 && len(unfolded) == 0 {
		return
	}
	remote.applying = true
	for _, r := range folded {
		remote.pane.Fold(local.pane.LineFor(r))
	}
	for _, r := range unfolded {
		remote.pane.Unfold(local.pane.LineFor(r))
	}
	remote.snapshot = snapshot(remote.pane)
	c.frames.OnNextFrame(func() {
		remote.applying = false
	})
}

// diff returns the ranges in a but not in b, ordered by From.
func diff(a, b map[Range]struct{}) []Range {
	var out []Range
	for r := range a {
		if _, ok := b[r]; !ok {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].From < out[j].From })
	return out
}

func (c *Coordinator) sides(p Pane) (local, remote *paneState) {
	switch p {
	case c.a.pane:
		return &c.a, &c.b
	case c.b.pane:
		return &c.b, &c.a
	}
	return nil, nil
}
