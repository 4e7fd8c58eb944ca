package nav

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/nicolagi/lockstep/internal/change"
)

// SearchIn selects what FindPaths matches against.
type SearchIn uint8

const (
	SearchBoth SearchIn = iota
	SearchKeys
	SearchValues
)

// SearchOptions control one FindPaths call.
type SearchOptions struct {
	CaseSensitive bool
	In            SearchIn

	// Limit stops the walk after that many results; zero or
	// negative means unlimited.
	Limit int
}

// MatchLocation tells a key match from a value match.
type MatchLocation uint8

const (
	MatchKey MatchLocation = iota
	MatchValue
)

func (l MatchLocation) String() string {
	if l == MatchKey {
		return "key"
	}
	return "value"
}

// SearchResult is one match in the merged document.
type SearchResult struct {
	// Path is the block id form of the match's location.
	Path string

	// MatchedText is the key or value that matched, in its original
	// case.
	MatchedText string

	Location MatchLocation

	// Class is the classification the location renders under, valid
	// only when HasClass is true.
	Class    change.Classification
	HasClass bool
}

// FindPaths walks the merged document depth first and returns the
// paths whose key or scalar value contains text. Object keys are
// visited in sorted order so results are deterministic.
func (x *Index) FindPaths(text string, opts SearchOptions) []SearchResult {
	if text == "" || x.doc == nil {
		return nil
	}
	needle := text
	if !opts.CaseSensitive {
		needle = strings.ToLower(needle)
	}
	s := searcher{index: x, needle: needle, opts: opts}
	s.walk(x.doc, nil)
	return s.results
}

type searcher struct {
	index   *Index
	needle  string
	opts    SearchOptions
	results []SearchResult
}

func (s *searcher) full() bool {
	return s.opts.Limit > 0 && len(s.results) >= s.opts.Limit
}

func (s *searcher) matches(text string) bool {
	if !s.opts.CaseSensitive {
		text = strings.ToLower(text)
	}
	return strings.Contains(text, s.needle)
}

func (s *searcher) emit(segments []string, text string, loc MatchLocation) {
	r := SearchResult{
		Path:        change.JoinPath(segments...),
		MatchedText: text,
		Location:    loc,
	}
	if edit := s.index.effectiveEdit(r.Path); edit != nil {
		r.Class = edit.Class
		r.HasClass = true
	}
	s.results = append(s.results, r)
}

func (s *searcher) walk(v any, segments []string) {
	if s.full() {
		return
	}
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			child := append(segments[:len(segments):len(segments)], k)
			if s.opts.In != SearchValues && s.matches(k) {
				s.emit(child, k, MatchKey)
				if s.full() {
					return
				}
			}
			s.walk(val[k], child)
			if s.full() {
				return
			}
		}
	case []any:
		for i, item := range val {
			child := append(segments[:len(segments):len(segments)], strconv.Itoa(i))
			s.walk(item, child)
			if s.full() {
				return
			}
		}
	default:
		if s.opts.In == SearchKeys {
			return
		}
		text := scalarText(v)
		if s.matches(text) {
			s.emit(segments, text, MatchValue)
		}
	}
}

func scalarText(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	case nil:
		return "null"
	}
	return fmt.Sprintf("%v", v)
}

// effectiveEdit returns the edit a block renders under: the nearest
// enclosing add or remove, or the block's own edit. Nil when the
// block is unchanged or unknown.
func (x *Index) effectiveEdit(id string) *change.Edit {
	segs := change.SplitPath(id)
	for i := 1; i < len(segs); i++ {
		prefix := change.JoinPath(segs[:i]...)
		if n, ok := x.byID[prefix]; ok && n.Edit != nil && n.Edit.Action.Subsumes() {
			return n.Edit
		}
	}
	if n, ok := x.byID[id]; ok && n.Edit != nil && n.Edit.Action != change.NoAction {
		return n.Edit
	}
	return nil
}
