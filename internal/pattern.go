package internal

import (
	"fmt"
	"regexp"
	"strings"
)

// placeholder character class. Required placeholders match one or more,
// optional placeholders match zero or more.
const paramChars = `[A-Za-z0-9_-]`

var paramNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// pattern is a compiled path template. Compilation happens once, at route
// registration, so matching per request is a single regexp run.
type pattern struct {
	regex  *regexp.Regexp
	params []placeholder
}

// placeholder is a named segment of a path template.
type placeholder struct {
	name     string
	optional bool
}

// compilePattern turns a path template into an anchored matcher.
// Templates contain literal segments, required placeholders {name} and
// optional placeholders {name?}. Literals are matched case-sensitively.
func compilePattern(template string) (*pattern, error) {
	var (
		sb     strings.Builder
		params []placeholder
	)
	sb.WriteString("^")

	rest := template
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			sb.WriteString(regexp.QuoteMeta(rest))
			break
		}
		closing := strings.IndexByte(rest[open:], '}')
		if closing < 0 {
			return nil, fmt.Errorf("unterminated placeholder in %q", template)
		}
		closing += open

		literal := rest[:open]
		name := rest[open+1 : closing]
		optional := strings.HasSuffix(name, "?")
		if optional {
			name = strings.TrimSuffix(name, "?")
		}
		if !paramNameRe.MatchString(name) {
			return nil, fmt.Errorf("invalid placeholder name %q in %q", name, template)
		}

		if optional && strings.HasSuffix(literal, "/") {
			// The separator joins the optional group so /posts/{slug?}
			// accepts both /posts and /posts/hello.
			sb.WriteString(regexp.QuoteMeta(strings.TrimSuffix(literal, "/")))
			sb.WriteString(fmt.Sprintf(`(?:/(?P<%s>%s*))?`, name, paramChars))
		} else {
			sb.WriteString(regexp.QuoteMeta(literal))
			if optional {
				sb.WriteString(fmt.Sprintf(`(?P<%s>%s*)`, name, paramChars))
			} else {
				sb.WriteString(fmt.Sprintf(`(?P<%s>%s+)`, name, paramChars))
			}
		}

		params = append(params, placeholder{name: name, optional: optional})
		rest = rest[closing+1:]
	}
	sb.WriteString("$")

	re, err := regexp.Compile(sb.String())
	if err != nil {
		return nil, fmt.Errorf("compile pattern for %q: %w", template, err)
	}

	return &pattern{regex: re, params: params}, nil
}

// match tests a concrete path against the compiled template.
// On success it returns the captured values keyed by placeholder name;
// optional placeholders that did not participate yield an empty string.
func (p *pattern) match(path string) (map[string]string, bool) {
	m := p.regex.FindStringSubmatch(path)
	if m == nil {
		return nil, false
	}

	values := make(map[string]string, len(p.params))
	for i, name := range p.regex.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		values[name] = m[i]
	}
	return values, true
}
