package query

import (
	"regexp"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mwantia/projtree/data"
)

type predicate func(item data.Item) bool

// filter is the compiled secondary pass. Every predicate must hold.
type filter struct {
	predicates []predicate
}

func (f *filter) match(item data.Item) bool {
	for _, p := range f.predicates {
		if !p(item) {
			return false
		}
	}
	return true
}

func (f *filter) add(p predicate) {
	f.predicates = append(f.predicates, p)
}

func (e *Engine) compileFilter(opts *Options) (*filter, error) {
	f := &filter{}
	insensitive := opts.CaseInsensitive

	if len(opts.IDs) > 0 {
		ids := make(map[int64]struct{}, len(opts.IDs))
		for _, id := range opts.IDs {
			ids[id] = struct{}{}
		}
		f.add(func(item data.Item) bool {
			_, ok := ids[item.ID()]
			return ok
		})
	}

	if opts.Name != "" {
		name := opts.Name
		f.add(func(item data.Item) bool {
			return equal(item.Name(), name, insensitive)
		})
	}

	if opts.Path != "" {
		path := data.Normalize(opts.Path)
		f.add(func(item data.Item) bool {
			return equal(data.GetPath(item), path, insensitive)
		})
	}

	if opts.RelativePath != "" {
		relative := data.Normalize(opts.RelativePath)
		f.add(func(item data.Item) bool {
			path := data.GetPath(item)
			return equal(path, relative, insensitive) || equal(data.GetParent(path), relative, insensitive)
		})
	}

	if opts.Regex != nil {
		re, err := e.patterns.derive(opts.Regex, "", "", insensitive)
		if err != nil {
			return nil, err
		}
		f.add(func(item data.Item) bool {
			return re.MatchString(item.Name())
		})
	}

	if opts.Fuzzy != "" {
		term := opts.Fuzzy
		f.add(func(item data.Item) bool {
			if insensitive {
				return fuzzy.MatchFold(term, item.Name())
			}
			return fuzzy.Match(term, item.Name())
		})
	}

	for _, group := range []struct {
		matchers []Matcher
		text     func(s, sub string) bool
		prefix   string
		suffix   string
	}{
		{opts.StartsWith, strings.HasPrefix, "^", ""},
		{opts.EndsWith, strings.HasSuffix, "", "$"},
		{opts.Contains, strings.Contains, "", ""},
	} {
		if len(group.matchers) == 0 {
			continue
		}

		p, err := e.compileMatchers(group.matchers, group.text, group.prefix, group.suffix, insensitive)
		if err != nil {
			return nil, err
		}
		f.add(p)
	}

	if opts.Root != nil {
		rootID := opts.Root.ID()
		f.add(func(item data.Item) bool {
			parent := item.Parent()
			return parent != nil && parent.ID() == rootID
		})
	}

	if opts.Check != nil {
		f.add(opts.Check)
	}

	return f, nil
}

// compileMatchers joins matchers into one predicate that holds when any of
// them matches the item name.
func (e *Engine) compileMatchers(matchers []Matcher, text func(s, sub string) bool, prefix, suffix string, insensitive bool) (predicate, error) {
	var texts []string
	var patterns []*regexp.Regexp

	for _, m := range matchers {
		if m.IsPattern() {
			re, err := e.patterns.derive(m.pattern, prefix, suffix, insensitive)
			if err != nil {
				return nil, err
			}
			patterns = append(patterns, re)
			continue
		}

		if insensitive {
			texts = append(texts, strings.ToLower(m.text))
		} else {
			texts = append(texts, m.text)
		}
	}

	return func(item data.Item) bool {
		name := item.Name()
		if insensitive && len(texts) > 0 {
			name = strings.ToLower(name)
		}
		for _, t := range texts {
			if text(name, t) {
				return true
			}
		}
		for _, re := range patterns {
			if re.MatchString(item.Name()) {
				return true
			}
		}
		return false
	}, nil
}

func equal(a, b string, insensitive bool) bool {
	if insensitive {
		return strings.EqualFold(a, b)
	}
	return a == b
}
