// Package pattern compiles directory templates such as
// "seq_{sequence}/shot_{shot}/comp" into anchored regular expressions and
// finds paths under a root that match them.
package pattern

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultFragment is used for placeholders that have no entry in vars.
const DefaultFragment = ".+"

var placeholderRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

var errFound = errors.New("found")

// Matcher is a compiled template.
type Matcher struct {
	template string
	re       *regexp.Regexp
	names    []string
	depth    int
}

// Match is one path that satisfied the template.
type Match struct {
	Path     string            // relative to the root, slash separated
	Captures map[string]string // placeholder name -> captured text
}

// Compile turns template into a Matcher. Each {name} becomes a named group
// using vars[name] (DefaultFragment when absent). Literal text is quoted and
// the expression is anchored at both ends. A placeholder used more than once
// only captures on its first occurrence.
func Compile(template string, vars map[string]string) (*Matcher, error) {
	if strings.TrimSpace(template) == "" {
		return nil, errors.New("empty template")
	}
	template = normalize(template)

	var b strings.Builder
	b.WriteString("^")

	seen := make(map[string]bool)
	var names []string
	last := 0
	for _, loc := range placeholderRe.FindAllStringSubmatchIndex(template, -1) {
		b.WriteString(regexp.QuoteMeta(template[last:loc[0]]))
		name := template[loc[2]:loc[3]]

		frag, ok := vars[name]
		if !ok || frag == "" {
			frag = DefaultFragment
		}
		if _, err := regexp.Compile(frag); err != nil {
			return nil, fmt.Errorf("invalid fragment for {%s}: %w", name, err)
		}

		if seen[name] {
			fmt.Fprintf(&b, "(?:%s)", frag)
		} else {
			fmt.Fprintf(&b, "(?P<%s>%s)", name, frag)
			seen[name] = true
			names = append(names, name)
		}
		last = loc[1]
	}
	b.WriteString(regexp.QuoteMeta(template[last:]))
	b.WriteString("$")

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("compiling template %q: %w", template, err)
	}

	return &Matcher{
		template: template,
		re:       re,
		names:    names,
		depth:    Depth(template),
	}, nil
}

// Template returns the source template.
func (m *Matcher) Template() string { return m.template }

// Regexp returns the compiled expression.
func (m *Matcher) Regexp() *regexp.Regexp { return m.re }

// Names lists placeholder names in order of first appearance.
func (m *Matcher) Names() []string { return m.names }

// Depth is the number of path segments the template spans.
func (m *Matcher) Depth() int { return m.depth }

// Match tests a slash separated relative path against the template.
func (m *Matcher) Match(rel string) (map[string]string, bool) {
	sub := m.re.FindStringSubmatch(rel)
	if sub == nil {
		return nil, false
	}
	captures := make(map[string]string, len(m.names))
	for i, name := range m.re.SubexpNames() {
		if name != "" {
			captures[name] = sub[i]
		}
	}
	return captures, true
}

// Find walks root and returns the first path, in lexical walk order, whose
// segment count equals the template's and which matches it. Deeper
// directories are not descended into.
func (m *Matcher) Find(root string) (Match, bool, error) {
	var found Match
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			// unreadable subtrees are skipped
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		depth := strings.Count(rel, "/") + 1
		if depth < m.depth {
			return nil
		}
		if depth > m.depth {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if captures, ok := m.Match(rel); ok {
			found = Match{Path: rel, Captures: captures}
			return errFound
		}
		if d.IsDir() {
			return filepath.SkipDir
		}
		return nil
	})

	if errors.Is(err, errFound) {
		return found, true, nil
	}
	if err != nil {
		return Match{}, false, err
	}
	return Match{}, false, nil
}

// Depth counts the slash separated segments of a template, ignoring leading
// "./" and leading or trailing slashes.
func Depth(template string) int {
	t := normalize(template)
	if t == "" {
		return 0
	}
	return strings.Count(t, "/") + 1
}

// normalize makes a template comparable with the slash separated relative
// paths Find produces.
func normalize(template string) string {
	t := strings.Trim(path.Clean(filepath.ToSlash(template)), "/")
	if t == "." {
		return ""
	}
	return t
}
