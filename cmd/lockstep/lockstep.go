package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/gops/agent"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/nicolagi/lockstep/internal/align"
	"github.com/nicolagi/lockstep/internal/config"
	"github.com/nicolagi/lockstep/internal/tui"
	"github.com/nicolagi/lockstep/internal/worddiff"
)

// To set this at build time, use go build -ldflags '-X main.version=something'.
var version = "unknown"

func main() {
	base := pflag.String("base", config.DefaultBaseDirectoryPath, "directory for configuration and logs")
	var levels []string
	for _, l := range log.AllLevels {
		levels = append(levels, l.String())
	}
	verbosity := pflag.String("verbosity", "warning", "sets the log level, among "+strings.Join(levels, ", "))
	doInit := pflag.Bool("init", false, "create the configuration directory with a default config, then exit")
	printOnly := pflag.BoolP("print", "p", false, "render once to standard output instead of starting the viewer")
	unified := pflag.BoolP("unified", "u", false, "start in the merged single-pane view")
	splitModified := pflag.Bool("split-modified", false, "render replaces as paired remove and add rows in the split view")
	inlineWordDiff := pflag.Bool("inline-word-diff", false, "render replaces as a single row in the merged view")
	granularity := pflag.String("granularity", "", "intra-line diff granularity, word or char")
	wrapMode := pflag.String("wrap", "", "enclose the document in a root bracket, object or array")
	noColor := pflag.Bool("no-color", false, "disable styling")
	debug := pflag.Bool("debug", false, "start a gops diagnostics agent")
	showVersion := pflag.Bool("version", false, "print version and exit")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] FILE\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "Reads a comparison from FILE, or from standard input when FILE is -.")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}
	if *doInit {
		if err := config.Initialize(*base); err != nil {
			log.Fatalf("Could not initialize config in %q: %v", *base, err)
		}
		return
	}
	if pflag.NArg() != 1 {
		pflag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*base)
	if err != nil {
		log.Fatalf("Could not load config from %q: %v", *base, err)
	}
	opts := tui.Options{
		TabSize:        cfg.TabSize,
		SplitModified:  cfg.SplitModified,
		InlineWordDiff: cfg.InlineWordDiff,
		NoColor:        cfg.NoColor,
		SearchLimit:    cfg.SearchLimit,
	}
	if g, ok := worddiff.ParseGranularity(cfg.Granularity); ok {
		opts.Granularity = g
	}
	if *granularity != "" {
		g, ok := worddiff.ParseGranularity(*granularity)
		if !ok {
			log.Fatalf("Could not parse granularity %q, want word or char", *granularity)
		}
		opts.Granularity = g
	}
	switch *wrapMode {
	case "":
	case "object":
		opts.Wrap = align.WrapObject
	case "array":
		opts.Wrap = align.WrapArray
	default:
		log.Fatalf("Could not parse wrap mode %q, want object or array", *wrapMode)
	}
	flags := pflag.CommandLine
	if flags.Changed("unified") {
		opts.Unified = *unified
	}
	if flags.Changed("split-modified") {
		opts.SplitModified = *splitModified
	}
	if flags.Changed("inline-word-diff") {
		opts.InlineWordDiff = *inlineWordDiff
	}
	if flags.Changed("no-color") {
		opts.NoColor = *noColor
	}

	// From here on logging goes to the log file: the alternate
	// screen is not a place for log lines. The base directory may not
	// exist yet, the viewer runs fine without a config file.
	if err := os.MkdirAll(*base, 0700); err != nil {
		log.Fatalf("Could not create %q: %v", *base, err)
	}
	f, err := os.OpenFile(cfg.LogFilePath(), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		log.Fatalf("Could not open log file %q: %v", cfg.LogFilePath(), err)
	}
	defer func() { _ = f.Close() }()
	log.SetOutput(f)
	log.SetFormatter(&log.JSONFormatter{})
	ll, err := log.ParseLevel(*verbosity)
	if err != nil {
		log.Fatalf("Could not parse log level %q: %v", *verbosity, err)
	}
	log.SetLevel(ll)

	if *debug {
		if err := agent.Listen(agent.Options{}); err != nil {
			log.Printf("Could not start gops agent: %v", err)
		}
	}

	root, doc, err := loadInputFile(context.Background(), pflag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not load %q: %v\n", pflag.Arg(0), err)
		os.Exit(1)
	}

	if *printOnly {
		if err := printComparison(os.Stdout, root, opts); err != nil {
			log.Fatalf("Could not render: %v", err)
		}
		return
	}
	p := tea.NewProgram(tui.New(root, doc, opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Viewer failed: %v", err)
	}
}
