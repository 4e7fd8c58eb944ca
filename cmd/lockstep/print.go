package main

import (
	"fmt"
	"io"

	"github.com/nicolagi/lockstep/internal/align"
	"github.com/nicolagi/lockstep/internal/change"
	"github.com/nicolagi/lockstep/internal/flatten"
	"github.com/nicolagi/lockstep/internal/tui"
)

// printComparison renders the comparison once as plain text, in the
// layout the viewer would start in.
func printComparison(w io.Writer, root *change.Node, opts tui.Options) error {
	lines := flatten.Flatten(root)
	if opts.Unified {
		res := align.Unified(lines, align.UnifiedOptions{
			Wrap:           opts.Wrap,
			TabSize:        opts.TabSize,
			InlineWordDiff: opts.InlineWordDiff,
		})
		return printUnified(w, res)
	}
	res := align.Align(lines, align.Options{
		Wrap:          opts.Wrap,
		TabSize:       opts.TabSize,
		SplitModified: opts.SplitModified,
	})
	return printDual(w, res)
}

// printDual writes the two panes side by side with the gutter markers
// of classic side by side diffs. Spacer cells print empty, the filler
// text is a screen affordance only.
func printDual(w io.Writer, res align.Result) error {
	width := 0
	for i := range res.BeforeLines {
		if res.LineMap[i].BeforeLine == 0 {
			continue
		}
		if n := len(res.BeforeLines[i]); n > width {
			width = n
		}
	}
	for i, mp := range res.LineMap {
		before, after := res.BeforeLines[i], res.AfterLines[i]
		if mp.BeforeLine == 0 {
			before = ""
		}
		if mp.AfterLine == 0 {
			after = ""
		}
		if _, err := fmt.Fprintf(w, "%-*s %s %s\n", width, before, gutterMark(mp.Type), after); err != nil {
			return err
		}
	}
	return nil
}

func gutterMark(t align.RowType) string {
	switch t {
	case align.Added:
		return ">"
	case align.Removed:
		return "<"
	case align.Modified:
		return "|"
	}
	return " "
}

func printUnified(w io.Writer, res align.UnifiedResult) error {
	for i, line := range res.Lines {
		mp := res.LineMap[i]
		marker := " "
		switch mp.Type {
		case align.Added:
			marker = "+"
		case align.Removed:
			marker = "-"
		case align.Modified:
			// The inline form folds a replace into one row; expand
			// it back to the classic pair here.
			if before, ok := res.BeforeContent[i+1]; ok {
				if _, err := fmt.Fprintf(w, "- %s\n", before); err != nil {
					return err
				}
				marker = "+"
			}
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", marker, line); err != nil {
			return err
		}
	}
	return nil
}
