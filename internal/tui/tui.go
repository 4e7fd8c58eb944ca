// Package tui is the interactive viewer bundled with lockstep. It
// renders the aligned comparison in two lockstepped viewports or as a
// single merged pane, and drives folding, navigation and search
// through the engines underneath.
package tui

import (
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nicolagi/lockstep/internal/align"
	"github.com/nicolagi/lockstep/internal/change"
	"github.com/nicolagi/lockstep/internal/flatten"
	"github.com/nicolagi/lockstep/internal/fold"
	"github.com/nicolagi/lockstep/internal/nav"
	"github.com/nicolagi/lockstep/internal/worddiff"
)

// Options are the viewer settings resolved from configuration and
// command line flags.
type Options struct {
	Wrap           align.Wrap
	TabSize        int
	Granularity    worddiff.Granularity
	SplitModified  bool
	InlineWordDiff bool
	Unified        bool
	NoColor        bool
	SearchLimit    int
}

// KeyMap holds the key bindings of the viewer.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding

	NextChange key.Binding
	PrevChange key.Binding
	NextMatch  key.Binding
	PrevMatch  key.Binding

	ToggleFold   key.Binding
	Unified      key.Binding
	SwitchPane   key.Binding
	Breaking     key.Binding
	NonBreaking  key.Binding
	Annotation   key.Binding
	Unclassified key.Binding
	ClearFilter  key.Binding
	Granularity  key.Binding

	Search key.Binding
	Yank   key.Binding
	Quit   key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
		Top:      key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
		Bottom:   key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),

		NextChange: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next change")),
		PrevChange: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "previous change")),
		NextMatch:  key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next match")),
		PrevMatch:  key.NewBinding(key.WithKeys("["), key.WithHelp("[", "previous match")),

		ToggleFold:   key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "fold")),
		Unified:      key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "unified")),
		SwitchPane:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
		Breaking:     key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "breaking")),
		NonBreaking:  key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "non-breaking")),
		Annotation:   key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "annotation")),
		Unclassified: key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "unclassified")),
		ClearFilter:  key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "show all")),
		Granularity:  key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "word/char")),

		Search: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Yank:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yank id")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// frameMsg ticks the frame scheduler.
type frameMsg struct{}

func frameTick() tea.Cmd {
	return tea.Tick(time.Second/60, func(time.Time) tea.Msg {
		return frameMsg{}
	})
}

// frameScheduler implements fold.Scheduler on top of the bubbletea
// event loop. Callbacks queue up until the next frameMsg; a tick is
// armed only while something is pending.
type frameScheduler struct {
	pending []func()
	ticking bool
}

func (s *frameScheduler) OnNextFrame(fn func()) {
	s.pending = append(s.pending, fn)
}

func (s *frameScheduler) flush() {
	pending := s.pending
	s.pending = nil
	for _, fn := range pending {
		fn()
	}
}

type yankMsg struct {
	id  string
	err error
}

func yank(id string) tea.Cmd {
	return func() tea.Msg {
		return yankMsg{id: id, err: clipboard.WriteAll(id)}
	}
}

// foldMark is a fold anchor: the hidden range ends at to, and block
// names the widest folded block starting there.
type foldMark struct {
	to    int
	block string
}

// Model is the bubbletea model of the viewer.
type Model struct {
	opts Options
	keys KeyMap

	lines   []flatten.Line
	index   *nav.Index
	engine  *fold.Engine
	summary nav.Summary

	dual      align.Result
	unified   align.UnifiedResult
	dualWords map[int]worddiff.Pair
	uniWords  map[int]worddiff.Pair

	before *pane
	after  *pane
	frames *frameScheduler
	coord  *fold.Coordinator

	// filterFolds and the panes' manual folds are separate slots;
	// uniFolds is the merged view's own manual slot.
	filter      fold.Filter
	filterFolds fold.Set
	uniFolds    map[string]struct{}

	spanOf    map[string]fold.Range
	spanOfUni map[string]fold.Range
	blockAt   map[fold.Range]string

	visible   []int
	foldMarks map[int]foldMark
	cursor    int

	beforeView viewport.Model
	afterView  viewport.Model
	uniView    viewport.Model

	search    textinput.Model
	searching bool
	results   []nav.SearchResult
	result    int

	cache *renderCache

	unifiedMode bool
	granularity worddiff.Granularity
	focusAfter  bool

	width  int
	height int
	ready  bool
	status string
}

// New builds the viewer for one comparison. The document is the
// merged form both sides render from; it backs path search.
func New(root *change.Node, doc any, opts Options) Model {
	m := Model{
		opts:        opts,
		keys:        DefaultKeyMap(),
		lines:       flatten.Flatten(root),
		index:       nav.NewIndex(root, doc),
		engine:      fold.NewEngine(root),
		before:      newPane(),
		after:       newPane(),
		frames:      &frameScheduler{},
		filterFolds: make(fold.Set),
		uniFolds:    make(map[string]struct{}),
		cache:       newRenderCache(4096),
		unifiedMode: opts.Unified,
		granularity: opts.Granularity,
	}
	m.summary = m.index.Summary()
	m.search = textinput.New()
	m.search.Placeholder = "key or value"
	m.search.Prompt = "/"
	m.coord = fold.NewCoordinator(m.before, m.after, m.frames)
	coord := m.coord
	notify := func(p *pane) { coord.Changed(p) }
	m.before.onChange = notify
	m.after.onChange = notify
	m.rebuildLayout()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

// withFrameTick arms a frame tick when the scheduler has pending
// callbacks and none is armed yet.
func (m Model) withFrameTick(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	if len(m.frames.pending) > 0 && !m.frames.ticking {
		m.frames.ticking = true
		if cmd == nil {
			return m, frameTick()
		}
		return m, tea.Batch(cmd, frameTick())
	}
	return m, cmd
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m.withFrameTick(nil)
	case frameMsg:
		m.frames.ticking = false
		m.frames.flush()
		return m.withFrameTick(nil)
	case yankMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("yank failed: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("yanked %s", msg.id)
		}
		m.refreshViews()
		return m.withFrameTick(nil)
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		if m.searching {
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			return m.withFrameTick(cmd)
		}
	}
	return m.withFrameTick(nil)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		switch msg.Type {
		case tea.KeyEscape:
			m.searching = false
			m.search.Blur()
			m.status = ""
			m.refreshViews()
			return m.withFrameTick(nil)
		case tea.KeyEnter:
			m.searching = false
			m.search.Blur()
			m.runSearch()
			return m.withFrameTick(nil)
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m.withFrameTick(cmd)
	}
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		m.moveCursor(-m.bodyHeight())
	case key.Matches(msg, m.keys.PageDown):
		m.moveCursor(m.bodyHeight())
	case key.Matches(msg, m.keys.Top):
		m.moveCursor(-len(m.visible))
	case key.Matches(msg, m.keys.Bottom):
		m.moveCursor(len(m.visible))
	case key.Matches(msg, m.keys.NextChange):
		m.jumpTo(m.index.NextChange(m.filterKinds()...))
	case key.Matches(msg, m.keys.PrevChange):
		m.jumpTo(m.index.PrevChange(m.filterKinds()...))
	case key.Matches(msg, m.keys.NextMatch):
		m.cycleMatch(1)
	case key.Matches(msg, m.keys.PrevMatch):
		m.cycleMatch(-1)
	case key.Matches(msg, m.keys.ToggleFold):
		m.toggleFold()
	case key.Matches(msg, m.keys.Unified):
		m.toggleUnified()
	case key.Matches(msg, m.keys.SwitchPane):
		if !m.unifiedMode {
			m.focusAfter = !m.focusAfter
			m.refreshViews()
		}
	case key.Matches(msg, m.keys.Breaking):
		m.toggleFilter(fold.Breaking)
	case key.Matches(msg, m.keys.NonBreaking):
		m.toggleFilter(fold.NonBreaking)
	case key.Matches(msg, m.keys.Annotation):
		m.toggleFilter(fold.Annotation)
	case key.Matches(msg, m.keys.Unclassified):
		m.toggleFilter(fold.Unclassified)
	case key.Matches(msg, m.keys.ClearFilter):
		if m.filter != 0 {
			m.filter = 0
			m.applyFilter()
		}
	case key.Matches(msg, m.keys.Granularity):
		m.toggleGranularity()
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.results = nil
		m.search.SetValue("")
		return m.withFrameTick(m.search.Focus())
	case key.Matches(msg, m.keys.Yank):
		if id := m.currentBlock(); id != "" {
			return m.withFrameTick(yank(id))
		}
		m.status = "no block under cursor"
		m.refreshViews()
	}
	return m.withFrameTick(nil)
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	body := h - 2
	if body < 1 {
		body = 1
	}
	half := w / 2
	if half < 1 {
		half = 1
	}
	if !m.ready {
		m.beforeView = viewport.New(half, body)
		m.afterView = viewport.New(w-half, body)
		m.uniView = viewport.New(w, body)
		m.ready = true
	} else {
		m.beforeView.Width, m.beforeView.Height = half, body
		m.afterView.Width, m.afterView.Height = w-half, body
		m.uniView.Width, m.uniView.Height = w, body
	}
	m.search.Width = w - 4
	m.cache.clear()
	m.refreshViews()
}

func (m *Model) bodyHeight() int {
	if m.unifiedMode {
		return m.uniView.Height
	}
	return m.beforeView.Height
}

// rebuildLayout recomputes both layouts and derived lookups from the
// flattened lines. Manual folds do not survive it.
func (m *Model) rebuildLayout() {
	m.dual = align.Align(m.lines, align.Options{
		Wrap:          m.opts.Wrap,
		TabSize:       m.opts.TabSize,
		SplitModified: m.opts.SplitModified,
	})
	m.unified = align.Unified(m.lines, align.UnifiedOptions{
		Wrap:           m.opts.Wrap,
		TabSize:        m.opts.TabSize,
		InlineWordDiff: m.opts.InlineWordDiff,
	})
	m.dualWords = align.WordDiffs(m.dual, m.granularity)
	m.uniWords = align.UnifiedWordDiffs(m.unified, m.granularity)
	m.spanOf = spanRanges(m.dual.Spans)
	m.spanOfUni = spanRanges(m.unified.Spans)
	m.blockAt = rangeBlocks(m.dual.Spans)
	m.before.reset(m.dual.Spans)
	m.after.reset(m.dual.Spans)
	m.cache.clear()
	m.recomputeVisible()
}

func (m *Model) rebuildWords() {
	m.dualWords = align.WordDiffs(m.dual, m.granularity)
	m.uniWords = align.UnifiedWordDiffs(m.unified, m.granularity)
	m.cache.clear()
}

func spanRanges(spans map[string]align.Span) map[string]fold.Range {
	out := make(map[string]fold.Range, len(spans))
	for id, s := range spans {
		out[id] = fold.Range{From: s.First, To: s.Last}
	}
	return out
}

// rangeBlocks inverts the span map. When nested blocks share the
// exact same rows the outermost id wins, it makes the better fold
// label.
func rangeBlocks(spans map[string]align.Span) map[fold.Range]string {
	out := make(map[fold.Range]string, len(spans))
	for id, s := range spans {
		r := fold.Range{From: s.First, To: s.Last}
		if cur, ok := out[r]; !ok || len(id) < len(cur) {
			out[r] = id
		}
	}
	return out
}

func (m *Model) rows() int {
	if m.unifiedMode {
		return m.unified.Rows()
	}
	return m.dual.Rows()
}

func (m *Model) mapping(row int) align.Mapping {
	if m.unifiedMode {
		return m.unified.LineMap[row-1]
	}
	return m.dual.LineMap[row-1]
}

// recomputeVisible rebuilds the list of rows surviving the active
// folds, hidden ranges collapse to their anchor row. Overlapping
// folds starting at the same row collapse to the widest.
func (m *Model) recomputeVisible() {
	starts := make(map[int]foldMark)
	add := func(id string, r fold.Range) {
		mark, ok := starts[r.From]
		if !ok || r.To > mark.to {
			starts[r.From] = foldMark{to: r.To, block: id}
		}
	}
	if m.unifiedMode {
		for id := range m.uniFolds {
			if r, ok := m.spanOfUni[id]; ok {
				add(id, r)
			}
		}
		for id := range m.filterFolds {
			if r, ok := m.spanOfUni[id]; ok {
				add(id, r)
			}
		}
	} else {
		for r := range m.before.folds {
			add(m.blockAt[r], r)
		}
		for id := range m.filterFolds {
			if r, ok := m.spanOf[id]; ok {
				add(id, r)
			}
		}
	}
	m.visible = m.visible[:0]
	for row := 1; row <= m.rows(); {
		m.visible = append(m.visible, row)
		if mark, ok := starts[row]; ok {
			row = mark.to + 1
			continue
		}
		row++
	}
	m.foldMarks = starts
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) cursorRow() (int, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return 0, false
	}
	return m.visible[m.cursor], true
}

func (m *Model) currentBlock() string {
	row, ok := m.cursorRow()
	if !ok {
		return ""
	}
	return m.mapping(row).BlockID
}

func (m *Model) focusedPane() *pane {
	if m.focusAfter {
		return m.after
	}
	return m.before
}

func (m *Model) moveCursor(delta int) {
	if len(m.visible) == 0 {
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	m.refreshViews()
}

// cursorToRow puts the cursor on the first visible row at or after
// the given physical row.
func (m *Model) cursorToRow(row int) {
	for i, r := range m.visible {
		if r >= row {
			m.cursor = i
			return
		}
	}
	if n := len(m.visible); n > 0 {
		m.cursor = n - 1
	}
}

func (m *Model) rowFor(id string) (int, bool) {
	spans := m.spanOf
	if m.unifiedMode {
		spans = m.spanOfUni
	}
	r, ok := spans[id]
	if !ok {
		return 0, false
	}
	return r.From, true
}

// unfoldBlock reveals a block: it leaves the filter's fold set and,
// in the split view, any manual fold covering its first row is
// removed through the pane so the other side follows.
func (m *Model) unfoldBlock(id string) {
	delete(m.filterFolds, id)
	if m.unifiedMode {
		delete(m.uniFolds, id)
		return
	}
	if r, ok := m.spanOf[id]; ok {
		m.before.unfoldCovering(r.From)
	}
}

func (m *Model) jumpTo(id string) {
	if id == "" {
		return
	}
	for _, anc := range m.index.Ancestors(id) {
		m.unfoldBlock(anc)
	}
	m.unfoldBlock(id)
	m.recomputeVisible()
	if row, ok := m.rowFor(id); ok {
		m.cursorToRow(row)
	}
	m.refreshViews()
}

func (m *Model) toggleFold() {
	row, ok := m.cursorRow()
	if !ok {
		return
	}
	if m.unifiedMode {
		id := m.unified.LineMap[row-1].BlockID
		if id == "" {
			return
		}
		if _, has := m.uniFolds[id]; has {
			delete(m.uniFolds, id)
		} else if _, spanned := m.spanOfUni[id]; spanned {
			m.uniFolds[id] = struct{}{}
		}
	} else {
		p := m.focusedPane()
		if p.folded(row) {
			p.Unfold(row)
		} else {
			p.Fold(row)
		}
	}
	m.recomputeVisible()
	m.refreshViews()
}

func (m *Model) toggleUnified() {
	id := m.currentBlock()
	m.unifiedMode = !m.unifiedMode
	m.cache.clear()
	m.recomputeVisible()
	if id != "" {
		m.jumpTo(id)
		return
	}
	m.refreshViews()
}

func (m *Model) toggleFilter(bit fold.Filter) {
	m.filter ^= bit
	m.applyFilter()
}

func (m *Model) applyFilter() {
	set, _ := m.engine.Apply(m.filter)
	m.filterFolds = set
	m.recomputeVisible()
	m.refreshViews()
	if m.filter == 0 {
		m.status = "showing all"
	} else {
		m.status = "filter: " + m.filter.String()
	}
}

// filterKinds translates the active filter to the classifications
// change navigation should stop on. No filter means no restriction.
func (m *Model) filterKinds() []change.Classification {
	if m.filter == 0 {
		return nil
	}
	var kinds []change.Classification
	for _, k := range change.Classifications() {
		if m.filter&fold.Bit(k) != 0 {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

func (m *Model) toggleGranularity() {
	if m.granularity == worddiff.Word {
		m.granularity = worddiff.Char
	} else {
		m.granularity = worddiff.Word
	}
	m.rebuildWords()
	m.refreshViews()
	m.status = "granularity " + m.granularity.String()
}

func (m *Model) runSearch() {
	text := m.search.Value()
	m.results = m.index.FindPaths(text, nav.SearchOptions{Limit: m.opts.SearchLimit})
	m.result = 0
	if len(m.results) == 0 {
		m.status = fmt.Sprintf("no matches for %q", text)
		m.refreshViews()
		return
	}
	m.status = fmt.Sprintf("%d matches for %q", len(m.results), text)
	m.jumpTo(m.results[0].Path)
}

func (m *Model) cycleMatch(step int) {
	n := len(m.results)
	if n == 0 {
		return
	}
	m.result = ((m.result+step)%n + n) % n
	r := m.results[m.result]
	m.status = fmt.Sprintf("match %d/%d  %s", m.result+1, n, r.Path)
	m.jumpTo(r.Path)
}
