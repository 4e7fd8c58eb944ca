package change

import "strings"

// Block ids are '/'-joined paths, so path segments containing '/' or
// '~' are escaped the way JSON Pointer reference tokens are: '~'
// becomes "~0" and '/' becomes "~1". Ids read naturally for the
// common case ("paths/~1users~1{id}/get") and survive logs and
// round trips.

var (
	segmentEscaper   = strings.NewReplacer("~", "~0", "/", "~1")
	segmentUnescaper = strings.NewReplacer("~1", "/", "~0", "~")
)

// EscapeSegment encodes one path segment for use inside a block id.
func EscapeSegment(s string) string {
	return segmentEscaper.Replace(s)
}

// UnescapeSegment decodes one block id segment back to its raw form.
func UnescapeSegment(s string) string {
	return segmentUnescaper.Replace(s)
}

// JoinPath builds a block id from raw path segments. An empty path
// yields the empty id, which is not addressable.
func JoinPath(segments ...string) string {
	if len(segments) == 0 {
		return ""
	}
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = EscapeSegment(s)
	}
	return strings.Join(escaped, "/")
}

// SplitPath is the inverse of JoinPath. The empty id yields nil.
func SplitPath(id string) []string {
	if id == "" {
		return nil
	}
	parts := strings.Split(id, "/")
	for i, p := range parts {
		parts[i] = UnescapeSegment(p)
	}
	return parts
}

// ParentID returns the id of the enclosing path, or the empty string
// for top-level and empty ids.
func ParentID(id string) string {
	i := strings.LastIndexByte(id, '/')
	if i < 0 {
		return ""
	}
	return id[:i]
}
