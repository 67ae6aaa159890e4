package routing

import (
	"fmt"
	"strings"
)

// Reverse reconstructs a concrete URL path for the route registered under
// name, substituting params into its parameter segments. Every parameter
// of the pattern must be supplied with a non-empty value.
func (t *Table) Reverse(name string, params map[string]string) (string, error) {
	r, ok := t.named[name]
	if !ok {
		return "", fmt.Errorf("routing: no route named %q", name)
	}

	if len(r.segments) == 0 {
		return "/", nil
	}

	var b strings.Builder
	for _, s := range r.segments {
		b.WriteByte('/')
		if s.param == "" {
			b.WriteString(s.literal)
			continue
		}
		v := params[s.param]
		if v == "" {
			return "", fmt.Errorf("routing: missing value for parameter %q of route %q", s.param, name)
		}
		b.WriteString(v)
	}
	return b.String(), nil
}
