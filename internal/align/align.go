// Package align lays the flattened comparison out for display: two
// vertically synchronized panes, or a single unified sequence. It
// owns the row bookkeeping; it never decides what changed.
package align

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/nicolagi/lockstep/internal/change"
	"github.com/nicolagi/lockstep/internal/flatten"
)

// RowType classifies one aligned row for the renderer.
type RowType uint8

const (
	Unchanged RowType = iota
	Added
	Removed
	Modified
)

func (t RowType) String() string {
	switch t {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Modified:
		return "modified"
	}
	return "unchanged"
}

// Mapping describes one physical row of the aligned output. Line
// numbers count real content per side and are 1-based; 0 means the
// row is a spacer on that side. A row is never a spacer on both.
type Mapping struct {
	BeforeLine int
	AfterLine  int
	Type       RowType

	// BlockID is the owner block of the row, empty outside any
	// addressable block (bracket rows).
	BlockID string

	// Class is meaningful only when Type is not Unchanged.
	Class change.Classification

	// IsChangeRoot marks the rows of the node that introduced the
	// change; rows merely rendered inside an added or removed
	// subtree have it false.
	IsChangeRoot bool

	// PairID links the two halves of a replace rendered as a
	// removed row plus an added row. Zero means the row is not
	// half of such a pair.
	PairID int
}

// Wrap selects the synthetic bracket rows around the content.
type Wrap uint8

const (
	WrapNone Wrap = iota
	WrapObject
	WrapArray
)

// Options control one alignment build.
type Options struct {
	Wrap Wrap

	// ExtraIndent shifts every row right, for embedding the output
	// under an enclosing structure.
	ExtraIndent int

	// TabSize is the number of spaces per indent level; 0 means 2.
	TabSize int

	// SplitModified renders each modified line as a removed row
	// paired with an added row instead of one two-sided row.
	SplitModified bool
}

func (o Options) tab() int {
	if o.TabSize <= 0 {
		return 2
	}
	return o.TabSize
}

// Span is the physical row extent of a block's rendered subtree,
// inclusive, 1-based.
type Span struct {
	First int
	Last  int
}

// Result is the dual-pane layout. BeforeLines, AfterLines and LineMap
// always have equal lengths; index i describes physical row i+1 of
// both panes.
type Result struct {
	BeforeLines []string
	AfterLines  []string
	LineMap     []Mapping

	// Physical rows that are spacers on the named side.
	BeforeSpacerRows []int
	AfterSpacerRows  []int

	// Spans maps block ids (and their enclosing path prefixes) to
	// the rows their subtrees occupy.
	Spans map[string]Span
}

// Rows returns the number of physical rows.
func (r *Result) Rows() int {
	return len(r.LineMap)
}

// spacerFiller occupies a physical row without rendering any glyph
// when the opposite side has no text to mirror for height.
const spacerFiller = "​"

// Align builds the dual-pane layout from the flattened lines. Both
// panes always have the same number of rows; where one document has
// no counterpart for a row, the pane shows a spacer filled with the
// opposite side's text so wrap heights match.
func Align(lines []flatten.Line, opts Options) Result {
	b := builder{opts: opts, spans: make(map[string]Span)}
	b.open()
	for _, ln := range lines {
		b.content(ln)
	}
	b.close()
	return b.finish()
}

type builder struct {
	opts Options
	res  Result

	beforeNo int
	afterNo  int
	pairs    int

	spans map[string]Span
}

func (b *builder) indent(level int) string {
	return strings.Repeat(" ", (level+b.opts.ExtraIndent)*b.opts.tab())
}

// contentIndent is the extra level content gains inside brackets.
func (b *builder) contentIndent() int {
	if b.opts.Wrap == WrapNone {
		return 0
	}
	return 1
}

func (b *builder) open() {
	switch b.opts.Wrap {
	case WrapObject:
		b.bracket("{")
	case WrapArray:
		b.bracket("[")
	}
}

func (b *builder) close() {
	switch b.opts.Wrap {
	case WrapObject:
		b.bracket("}")
	case WrapArray:
		b.bracket("]")
	}
}

func (b *builder) bracket(text string) {
	s := b.indent(0) + text
	b.beforeNo++
	b.afterNo++
	b.row(s, s, Mapping{BeforeLine: b.beforeNo, AfterLine: b.afterNo, Type: Unchanged}, "")
}

func (b *builder) content(ln flatten.Line) {
	indent := b.indent(ln.Indent + b.contentIndent())
	before := ln.Before
	after := ln.After
	if before != "" {
		before = indent + before
	}
	if after != "" {
		after = indent + after
	}

	m := Mapping{BlockID: ln.Owner}
	if ln.Edit != nil {
		m.Class = ln.Edit.Class
		m.IsChangeRoot = ln.IsChangeRoot
	}

	switch rowType(ln.Edit) {
	case Added:
		b.afterNo++
		m.Type, m.AfterLine = Added, b.afterNo
		b.row(fill(after), after, m, "before")
	case Removed:
		b.beforeNo++
		m.Type, m.BeforeLine = Removed, b.beforeNo
		b.row(before, fill(before), m, "after")
	case Modified:
		if b.opts.SplitModified {
			b.pairs++
			removed, added := m, m
			b.beforeNo++
			removed.Type, removed.BeforeLine, removed.PairID = Removed, b.beforeNo, b.pairs
			b.row(before, fill(before), removed, "after")
			b.afterNo++
			added.Type, added.AfterLine, added.PairID = Added, b.afterNo, b.pairs
			b.row(fill(after), after, added, "before")
			return
		}
		b.beforeNo++
		b.afterNo++
		m.Type, m.BeforeLine, m.AfterLine = Modified, b.beforeNo, b.afterNo
		b.row(before, after, m, "")
	default:
		b.beforeNo++
		b.afterNo++
		m.Type, m.BeforeLine, m.AfterLine = Unchanged, b.beforeNo, b.afterNo
		b.row(before, after, m, "")
	}
}

// rowType maps the effective action of a line to the row it renders.
func rowType(edit *change.Edit) RowType {
	if edit == nil {
		return Unchanged
	}
	switch edit.Action {
	case change.Add:
		return Added
	case change.Remove:
		return Removed
	case change.Replace, change.Rename:
		return Modified
	}
	return Unchanged
}

// fill is the spacer text for a side with no content of its own: the
// opposite side's text, to preserve the row's wrap height.
func fill(opposite string) string {
	if opposite == "" {
		return spacerFiller
	}
	return opposite
}

// row appends one physical row to all three arrays, keeping them in
// lockstep, and extends to it the spans of the owner block and of
// every enclosing prefix.
func (b *builder) row(before, after string, m Mapping, spacer string) {
	b.res.BeforeLines = append(b.res.BeforeLines, before)
	b.res.AfterLines = append(b.res.AfterLines, after)
	b.res.LineMap = append(b.res.LineMap, m)
	physical := len(b.res.LineMap)
	switch spacer {
	case "before":
		b.res.BeforeSpacerRows = append(b.res.BeforeSpacerRows, physical)
	case "after":
		b.res.AfterSpacerRows = append(b.res.AfterSpacerRows, physical)
	}
	for id := m.BlockID; id != ""; id = change.ParentID(id) {
		span, ok := b.spans[id]
		if !ok {
			span = Span{First: physical}
		}
		span.Last = physical
		b.spans[id] = span
	}
}

// finish verifies the output invariants. A violation is a bug in the
// flattener or in this package; it is logged and the arrays are
// trimmed to the shortest so the caller still gets usable output.
func (b *builder) finish() Result {
	b.res.Spans = b.spans
	nb, na, nm := len(b.res.BeforeLines), len(b.res.AfterLines), len(b.res.LineMap)
	if nb != na || na != nm {
		log.WithFields(log.Fields{
			"before": nb,
			"after":  na,
			"map":    nm,
		}).Error("aligned panes have mismatched row counts")
		n := min(nb, na, nm)
		b.res.BeforeLines = b.res.BeforeLines[:n]
		b.res.AfterLines = b.res.AfterLines[:n]
		b.res.LineMap = b.res.LineMap[:n]
	}
	for i, m := range b.res.LineMap {
		if m.BeforeLine == 0 && m.AfterLine == 0 {
			log.WithField("row", i+1).Error("aligned row has no line number on either side")
		}
	}
	return b.res
}
