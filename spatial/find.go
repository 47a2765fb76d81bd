package spatial

import (
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/tsawler/spatialtext/errs"
)

// FindOptions controls text searches and replacements.
type FindOptions struct {
	// IgnoreCase matches without regard to letter case.
	IgnoreCase bool
	// Regexp treats the pattern as a regular expression instead of literal
	// text. The syntax is that of .NET regular expressions.
	Regexp bool
	// Limit stops after this many matches. Zero means no limit.
	Limit int
}

// FindFirstInstanceOfString returns the index of the first occurrence of
// text at or after start, or -1.
func (s *String) FindFirstInstanceOfString(text string, start int) int {
	needle := []rune(text)
	if start < 0 {
		start = 0
	}
	if len(needle) == 0 {
		if start <= len(s.text) {
			return start
		}
		return -1
	}
outer:
	for i := start; i+len(needle) <= len(s.text); i++ {
		for j, r := range needle {
			if s.text[i+j] != r {
				continue outer
			}
		}
		return i
	}
	return -1
}

// FindRegExp returns the ranges matched by pattern.
func (s *String) FindRegExp(pattern string, opts FindOptions) ([]Range, error) {
	opts.Regexp = true
	matches, err := s.find(pattern, opts)
	if err != nil {
		return nil, err
	}
	out := make([]Range, len(matches))
	for i, m := range matches {
		out[i] = Range{Start: m.Index, End: m.Index + m.Length}
	}
	return out, nil
}

// Find returns the ranges matched by pattern under opts.
func (s *String) Find(pattern string, opts FindOptions) ([]Range, error) {
	matches, err := s.find(pattern, opts)
	if err != nil {
		return nil, err
	}
	out := make([]Range, len(matches))
	for i, m := range matches {
		out[i] = Range{Start: m.Index, End: m.Index + m.Length}
	}
	return out, nil
}

// FindSubStrings returns the matched parts of the string with their
// geometry.
func (s *String) FindSubStrings(pattern string, opts FindOptions) ([]*String, error) {
	ranges, err := s.Find(pattern, opts)
	if err != nil {
		return nil, err
	}
	return s.subStrings(ranges), nil
}

func compilePattern(pattern string, opts FindOptions) (*regexp2.Regexp, error) {
	if !opts.Regexp {
		pattern = regexp2.Escape(pattern)
	}
	flags := regexp2.None
	if opts.IgnoreCase {
		flags |= regexp2.IgnoreCase
	}
	re, err := regexp2.Compile(pattern, flags)
	if err != nil {
		return nil, errs.Wrap(err, errs.ErrInvalidArgument, "invalid search pattern", "pattern", pattern)
	}
	return re, nil
}

func (s *String) find(pattern string, opts FindOptions) ([]*regexp2.Match, error) {
	if pattern == "" {
		return nil, errs.New(errs.ErrInvalidArgument, "empty search pattern")
	}
	re, err := compilePattern(pattern, opts)
	if err != nil {
		return nil, err
	}

	var out []*regexp2.Match
	m, err := re.FindRunesMatch(s.text)
	for m != nil && err == nil {
		out = append(out, m)
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
		m, err = re.FindNextMatch(m)
	}
	if err != nil {
		return nil, errs.Wrap(err, errs.ErrInvalidArgument, "pattern search failed", "pattern", pattern)
	}
	return out, nil
}

// expandReplacement substitutes $n, ${name} and $$ in tmpl with groups of m.
func expandReplacement(tmpl string, m *regexp2.Match) string {
	if !strings.Contains(tmpl, "$") {
		return tmpl
	}
	var b strings.Builder
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		if c != '$' || i+1 == len(tmpl) {
			b.WriteByte(c)
			continue
		}
		next := tmpl[i+1]
		switch {
		case next == '$':
			b.WriteByte('$')
			i++
		case next == '{':
			closeAt := strings.IndexByte(tmpl[i+2:], '}')
			if closeAt < 0 {
				b.WriteByte(c)
				continue
			}
			name := tmpl[i+2 : i+2+closeAt]
			var g *regexp2.Group
			if n, err := strconv.Atoi(name); err == nil {
				g = m.GroupByNumber(n)
			} else {
				g = m.GroupByName(name)
			}
			if g != nil {
				b.WriteString(g.String())
			}
			i += 2 + closeAt
		case next >= '0' && next <= '9':
			j := i + 1
			for j < len(tmpl) && tmpl[j] >= '0' && tmpl[j] <= '9' {
				j++
			}
			n, _ := strconv.Atoi(tmpl[i+1 : j])
			if g := m.GroupByNumber(n); g != nil {
				b.WriteString(g.String())
			}
			i = j - 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
