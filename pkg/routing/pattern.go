package routing

import (
	"fmt"
	"strings"
)

// segment is one compiled element of a route pattern: either a literal to
// match exactly, or a named parameter capturing one path segment.
type segment struct {
	literal string
	param   string // non-empty for {name} segments
}

// compilePattern splits a pattern into literal and parameter segments.
func compilePattern(pattern string) ([]segment, error) {
	if !strings.HasPrefix(pattern, "/") {
		return nil, fmt.Errorf("routing: pattern %q must start with \"/\"", pattern)
	}

	raw := splitPath(pattern)
	segs := make([]segment, 0, len(raw))
	seen := make(map[string]bool, len(raw))

	for _, s := range raw {
		if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
			name := s[1 : len(s)-1]
			if name == "" {
				return nil, fmt.Errorf("routing: empty parameter name in pattern %q", pattern)
			}
			if strings.ContainsAny(name, "{}") {
				return nil, fmt.Errorf("routing: malformed parameter %q in pattern %q", s, pattern)
			}
			if seen[name] {
				return nil, fmt.Errorf("routing: duplicate parameter %q in pattern %q", name, pattern)
			}
			seen[name] = true
			segs = append(segs, segment{param: name})
			continue
		}
		if strings.ContainsAny(s, "{}") {
			return nil, fmt.Errorf("routing: malformed segment %q in pattern %q", s, pattern)
		}
		segs = append(segs, segment{literal: s})
	}

	return segs, nil
}

// matchSegments tests path parts against compiled segments. On success it
// returns the extracted parameters, which may be empty but never nil.
func matchSegments(segs []segment, parts []string) (map[string]string, bool) {
	if len(segs) != len(parts) {
		return nil, false
	}

	var params map[string]string
	for i, s := range segs {
		if s.param != "" {
			if parts[i] == "" {
				return nil, false
			}
			if params == nil {
				params = make(map[string]string, len(segs))
			}
			params[s.param] = parts[i]
			continue
		}
		if s.literal != parts[i] {
			return nil, false
		}
	}

	if params == nil {
		params = map[string]string{}
	}
	return params, true
}

// splitPath splits a path into segments.
func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
