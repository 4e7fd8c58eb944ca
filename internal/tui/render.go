package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nicolagi/lockstep/internal/align"
	"github.com/nicolagi/lockstep/internal/change"
	"github.com/nicolagi/lockstep/internal/worddiff"
)

var (
	titleStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	gutterStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	markStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	addedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	removedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	modifiedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	annotationStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245"))
	spacerStyle     = lipgloss.NewStyle().Faint(true)
	foldStyle       = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245"))
	baseStyle       = lipgloss.NewStyle()
)

func (m Model) View() string {
	if !m.ready {
		return "starting..."
	}
	var body string
	if m.unifiedMode {
		body = m.uniView.View()
	} else {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.beforeView.View(), m.afterView.View())
	}
	bottom := m.statusLine()
	if m.searching {
		bottom = m.search.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.titleLine(), body, bottom)
}

func (m *Model) titleLine() string {
	mode := "split:before"
	if m.unifiedMode {
		mode = "unified"
	} else if m.focusAfter {
		mode = "split:after"
	}
	s := m.summary
	line := fmt.Sprintf("%s  %s  %d changes (%d breaking, %d non-breaking, %d annotation, %d unclassified)",
		m.paint(titleStyle, "lockstep"), mode,
		s.Total, s.Breaking, s.NonBreaking, s.Annotation, s.Unclassified)
	if m.filter != 0 {
		line += "  [" + m.filter.String() + "]"
	}
	return line
}

func (m *Model) statusLine() string {
	if m.status != "" {
		return m.paint(statusStyle, m.status)
	}
	hints := "q quit · u unified · 1-4 filter · 0 all · z fold · n/p change · / search · y yank"
	if id := m.currentBlock(); id != "" {
		hints = id + "  " + hints
	}
	return m.paint(statusStyle, hints)
}

func (m *Model) paint(st lipgloss.Style, s string) string {
	if m.opts.NoColor {
		return s
	}
	return st.Render(s)
}

func (m *Model) paneWidth(side paneSide) int {
	switch side {
	case beforeSide:
		return m.beforeView.Width
	case afterSide:
		return m.afterView.Width
	default:
		return m.uniView.Width
	}
}

func (m *Model) refreshViews() {
	if !m.ready {
		return
	}
	if m.unifiedMode {
		m.uniView.SetContent(strings.Join(m.renderRows(unifiedSide), "\n"))
	} else {
		m.beforeView.SetContent(strings.Join(m.renderRows(beforeSide), "\n"))
		m.afterView.SetContent(strings.Join(m.renderRows(afterSide), "\n"))
	}
	m.ensureCursorVisible()
}

func (m *Model) renderRows(side paneSide) []string {
	clip := lipgloss.NewStyle().MaxWidth(m.paneWidth(side))
	rows := make([]string, len(m.visible))
	for i, row := range m.visible {
		rows[i] = clip.Render(m.styledRow(side, row, i == m.cursor))
	}
	return rows
}

// ensureCursorVisible scrolls all viewports so the cursor stays on
// screen. Offsets move together, the panes scroll in lockstep.
func (m *Model) ensureCursorVisible() {
	h := m.bodyHeight()
	var top int
	if m.unifiedMode {
		top = m.uniView.YOffset
	} else {
		top = m.beforeView.YOffset
	}
	switch {
	case m.cursor < top:
		m.setOffset(m.cursor)
	case m.cursor >= top+h:
		m.setOffset(m.cursor - h + 1)
	}
}

func (m *Model) setOffset(y int) {
	if y < 0 {
		y = 0
	}
	m.beforeView.SetYOffset(y)
	m.afterView.SetYOffset(y)
	m.uniView.SetYOffset(y)
}

func (m *Model) styledRow(side paneSide, row int, cursor bool) string {
	if mark, ok := m.foldMarks[row]; ok {
		return m.foldRow(row, mark, cursor)
	}
	k := cacheKey{side: side, row: row, width: m.paneWidth(side), cursor: cursor}
	if s, ok := m.cache.get(k); ok {
		return s
	}
	s := m.renderRow(side, row, cursor)
	m.cache.put(k, s)
	return s
}

// foldRow renders a fold anchor as a placeholder. Not cached, it
// depends on fold state the cache key does not carry.
func (m *Model) foldRow(row int, mark foldMark, cursor bool) string {
	label := mark.block
	if label == "" {
		label = "…"
	}
	text := fmt.Sprintf("▸ %s (%d rows)", label, mark.to-row+1)
	return m.markFor(cursor) + "     " + m.paint(foldStyle, text)
}

func (m *Model) markFor(cursor bool) string {
	if !cursor {
		return "  "
	}
	return m.paint(markStyle, "❯ ")
}

func (m *Model) renderRow(side paneSide, row int, cursor bool) string {
	mp := m.mapping(row)
	var text string
	var lineno int
	var words []worddiff.Range
	switch side {
	case beforeSide:
		text, lineno = m.dual.BeforeLines[row-1], mp.BeforeLine
		if pair, ok := m.dualWords[row]; ok {
			words = pair.Before
		}
	case afterSide:
		text, lineno = m.dual.AfterLines[row-1], mp.AfterLine
		if pair, ok := m.dualWords[row]; ok {
			words = pair.After
		}
	default:
		text, lineno = m.unified.Lines[row-1], mp.AfterLine
		if lineno == 0 {
			lineno = mp.BeforeLine
		}
		if pair, ok := m.uniWords[row]; ok {
			words = pair.After
		}
	}
	gutter := "     "
	spacer := lineno == 0
	if !spacer {
		gutter = fmt.Sprintf("%4d ", lineno)
	}
	if m.opts.NoColor {
		return m.markFor(cursor) + gutter + text
	}
	st := rowStyle(mp)
	if spacer {
		st = spacerStyle
	}
	body := st.Render(text)
	if len(words) > 0 && !spacer {
		body = sliceStyle(text, words, st)
	}
	return m.markFor(cursor) + gutterStyle.Render(gutter) + body
}

func rowStyle(mp align.Mapping) lipgloss.Style {
	var st lipgloss.Style
	switch mp.Type {
	case align.Added:
		st = addedStyle
	case align.Removed:
		st = removedStyle
	case align.Modified:
		st = modifiedStyle
	default:
		return baseStyle
	}
	switch mp.Class {
	case change.Breaking:
		st = st.Bold(true)
	case change.Annotation:
		st = annotationStyle
	}
	return st
}

// sliceStyle styles one line, lifting the changed byte ranges out in
// a hotter variant of the base style. Ranges are sorted and disjoint.
func sliceStyle(text string, ranges []worddiff.Range, base lipgloss.Style) string {
	hot := base.Bold(true).Underline(true)
	var b strings.Builder
	last := 0
	for _, r := range ranges {
		if r.From > last {
			b.WriteString(base.Render(text[last:r.From]))
		}
		b.WriteString(hot.Render(text[r.From:r.To]))
		last = r.To
	}
	if last < len(text) {
		b.WriteString(base.Render(text[last:]))
	}
	return b.String()
}
