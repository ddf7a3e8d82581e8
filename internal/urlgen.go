package internal

import (
	"strings"
)

// URL reverse-maps a route name and parameter set to a concrete path.
// Required placeholders without a supplied value raise MissingParamError;
// optional placeholders collapse to an empty segment. The result has runs
// of separators squashed and no trailing separator unless it is the root
// path. Unknown names return ErrRouteNameUnknown.
func (r *Router) URL(name string, params map[string]string) (string, error) {
	rt := r.Find(name)
	if rt == nil {
		return "", ErrRouteNameUnknown
	}

	var sb strings.Builder
	rest := rt.template
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			sb.WriteString(rest)
			break
		}
		closing := strings.IndexByte(rest[open:], '}') + open

		sb.WriteString(rest[:open])
		pname := rest[open+1 : closing]
		optional := strings.HasSuffix(pname, "?")
		if optional {
			pname = strings.TrimSuffix(pname, "?")
		}

		value, ok := params[pname]
		if !ok && !optional {
			return "", &MissingParamError{Route: name, Param: pname}
		}
		sb.WriteString(value)

		rest = rest[closing+1:]
	}

	return normalizePath(sb.String()), nil
}

// normalizePath collapses runs of consecutive separators into one and
// strips a trailing separator unless the result is the root path.
func normalizePath(p string) string {
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	if p == "" {
		p = "/"
	}
	return p
}
