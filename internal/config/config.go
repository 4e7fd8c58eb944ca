package config

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// DefaultBaseDirectoryPath is where lockstep keeps its configuration
// and log file. It defaults to $LOCKSTEP_BASE if it is set, otherwise
// to $HOME/lib/lockstep. The viewer overrides this via the -base
// flag.
var DefaultBaseDirectoryPath string

func init() {
	if base := os.Getenv("LOCKSTEP_BASE"); base != "" {
		DefaultBaseDirectoryPath = base
	} else {
		DefaultBaseDirectoryPath = os.ExpandEnv("$HOME/lib/lockstep")
	}
}

type C struct {
	// Granularity of intra-line diffs, "word" or "char".
	Granularity string

	// TabSize is the number of spaces per indent level; 0 keeps the
	// renderer's default.
	TabSize int

	// NoColor disables all styling, same as starting with
	// -no-color.
	NoColor bool

	// SplitModified renders each replace as a removed row paired
	// with an added row in the dual-pane view.
	SplitModified bool

	// InlineWordDiff folds each replace into a single row in the
	// unified view.
	InlineWordDiff bool

	// SearchLimit caps path search results; 0 means no cap.
	SearchLimit int

	// Directory holding the lockstep config file. The log file path
	// is derived from it.
	base string
}

// Load loads the configuration from the file called "config" in the
// provided base directory. A missing file is not an error: the viewer
// must work unconfigured, so it yields the defaults.
func Load(base string) (*C, error) {
	filename := filepath.Join(base, "config")
	fi, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return &C{base: base}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "config.Load")
	}
	if fi.Mode()&0077 != 0 {
		return nil, errorf("Load", "%q: mode is %#o, want at most %#o",
			filename, fi.Mode()&0777, fi.Mode()&0700)
	}
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "config.Load")
	}
	defer func() {
		// Ignore error closing file opened only for reading.
		_ = f.Close()
	}()
	c, err := load(f)
	if err == nil {
		c.base = base
	}
	return c, err
}

func load(f io.Reader) (*C, error) {
	c := C{}
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		i := strings.IndexAny(line, " \t")
		if i == -1 {
			return nil, errorf("load", "no separator in %q", line)
		}
		key, val := line[:i], strings.TrimSpace(line[i:])
		var err error
		switch key {
		case "granularity":
			if val != "word" && val != "char" {
				return nil, errorf("load", "granularity is %q, want word or char", val)
			}
			c.Granularity = val
		case "tab-size":
			c.TabSize, err = strconv.Atoi(val)
		case "no-color":
			c.NoColor, err = strconv.ParseBool(val)
		case "split-modified":
			c.SplitModified, err = strconv.ParseBool(val)
		case "inline-word-diff":
			c.InlineWordDiff, err = strconv.ParseBool(val)
		case "search-limit":
			c.SearchLimit, err = strconv.Atoi(val)
		default:
			return nil, errorf("load", "unknown key %q", key)
		}
		if err != nil {
			return nil, errorf("load", "%v %q: %v", key, val, err)
		}
	}
	if err := s.Err(); err != nil {
		return nil, errors.Wrap(err, "config.load")
	}
	return &c, nil
}

// LogFilePath is where the viewer sends its logs while the TUI owns
// the terminal.
func (c *C) LogFilePath() string {
	return path.Join(c.base, "lockstep.log")
}

// Initialize generates an initial configuration at the given
// directory.
func Initialize(baseDir string) error {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return errors.Wrap(err, "config.Initialize")
	}
	filename := filepath.Join(baseDir, "config")
	_, err := os.Stat(filename)
	if err == nil {
		return errorf("Initialize", "%q: already exists", filename)
	}
	if !os.IsNotExist(err) {
		return errors.Wrap(err, "config.Initialize")
	}

	var buf bytes.Buffer
	buf.WriteString("granularity word\n")
	buf.WriteString("tab-size 2\n")
	buf.WriteString("no-color false\n")
	buf.WriteString("# split-modified true\n")
	buf.WriteString("# inline-word-diff true\n")
	buf.WriteString("# search-limit 50\n")
	if err := os.WriteFile(filename, buf.Bytes(), 0600); err != nil {
		return errors.Wrapf(err, "config.Initialize %q", filename)
	}
	return nil
}
