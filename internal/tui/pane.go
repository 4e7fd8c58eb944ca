package tui

import (
	"github.com/nicolagi/lockstep/internal/align"
	"github.com/nicolagi/lockstep/internal/fold"
)

// pane holds the manual fold state of one side of the split view. It
// implements fold.Pane so a coordinator can mirror fold changes to
// the opposite side. Folding is span based: a row resolves to the
// innermost block span containing it, and that whole span folds.
type pane struct {
	byRow map[int]fold.Range
	folds map[fold.Range]struct{}

	// onChange fires after every mutation of folds. The coordinator
	// reenters the pane from it.
	onChange func(*pane)
}

func newPane() *pane {
	return &pane{
		byRow: make(map[int]fold.Range),
		folds: make(map[fold.Range]struct{}),
	}
}

// reset rebuilds row resolution from a fresh layout and drops all
// manual folds. Both panes of a model reset from the same spans, so
// their row resolution always agrees.
func (p *pane) reset(spans map[string]align.Span) {
	p.byRow = make(map[int]fold.Range)
	p.folds = make(map[fold.Range]struct{})
	for _, s := range spans {
		r := fold.Range{From: s.First, To: s.Last}
		for row := s.First; row <= s.Last; row++ {
			if cur, ok := p.byRow[row]; !ok || r.To-r.From < cur.To-cur.From {
				p.byRow[row] = r
			}
		}
	}
}

func (p *pane) FoldedRanges() []fold.Range {
	rs := make([]fold.Range, 0, len(p.folds))
	for r := range p.folds {
		rs = append(rs, r)
	}
	return rs
}

func (p *pane) LineFor(r fold.Range) int {
	return r.From
}

func (p *pane) Fold(row int) {
	r, ok := p.byRow[row]
	if !ok {
		return
	}
	if _, dup := p.folds[r]; dup {
		return
	}
	p.folds[r] = struct{}{}
	p.notify()
}

func (p *pane) Unfold(row int) {
	r, ok := p.byRow[row]
	if !ok {
		return
	}
	if _, has := p.folds[r]; !has {
		return
	}
	delete(p.folds, r)
	p.notify()
}

// folded reports whether the row's innermost span is manually folded.
func (p *pane) folded(row int) bool {
	r, ok := p.byRow[row]
	if !ok {
		return false
	}
	_, has := p.folds[r]
	return has
}

// unfoldCovering removes every manual fold whose range contains the
// row. Navigation uses it to reveal a target buried under folded
// ancestors.
func (p *pane) unfoldCovering(row int) {
	for r := range p.folds {
		if r.From <= row && row <= r.To {
			delete(p.folds, r)
			p.notify()
		}
	}
}

func (p *pane) notify() {
	if p.onChange != nil {
		p.onChange(p)
	}
}
