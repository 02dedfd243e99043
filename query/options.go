package query

import (
	"regexp"

	"github.com/mwantia/projtree/data"
)

// Options is the structured form of a query. Every set field narrows the
// result; values within one field are alternatives.
type Options struct {
	// Name matches the exact item name.
	Name string
	// Path matches the exact absolute item path.
	Path string
	// RelativePath matches an item at that path or directly below it.
	RelativePath string

	StartsWith []Matcher
	EndsWith   []Matcher
	Contains   []Matcher

	// Regex matches against the item name.
	Regex *regexp.Regexp
	// Fuzzy matches names containing the characters of the term in order.
	Fuzzy string

	IDs []int64

	// CaseInsensitive relaxes Name, Path, Regex, Fuzzy and every Matcher.
	CaseInsensitive bool

	// Root limits the result to the direct children of a container.
	Root data.Item

	// Check must return true for an item to be part of the result.
	Check func(item data.Item) bool
	// Callback is invoked once per result item, in result order.
	Callback func(item data.Item)
}

// Matcher is either a literal text or a regular expression.
type Matcher struct {
	text    string
	pattern *regexp.Regexp
}

// Text creates a matcher for literal text.
func Text(s string) Matcher {
	return Matcher{text: s}
}

// Pattern creates a matcher for a regular expression.
func Pattern(re *regexp.Regexp) Matcher {
	return Matcher{pattern: re}
}

// Texts creates one literal matcher per value.
func Texts(values ...string) []Matcher {
	matchers := make([]Matcher, 0, len(values))
	for _, value := range values {
		matchers = append(matchers, Text(value))
	}
	return matchers
}

func (m Matcher) IsPattern() bool {
	return m.pattern != nil
}

func (m Matcher) String() string {
	if m.pattern != nil {
		return m.pattern.String()
	}
	return m.text
}

// Normalize converts a bare query value into Options.
//
//   - nil matches everything
//   - integers are item ids
//   - strings are paths when they contain the separator, names otherwise
//   - *regexp.Regexp matches names
//   - Options and *Options are used as they are
func Normalize(q any) (*Options, error) {
	switch v := q.(type) {
	case nil:
		return &Options{}, nil
	case Options:
		return &v, nil
	case *Options:
		if v == nil {
			return &Options{}, nil
		}
		return v, nil
	case int:
		return &Options{IDs: []int64{int64(v)}}, nil
	case int32:
		return &Options{IDs: []int64{int64(v)}}, nil
	case int64:
		return &Options{IDs: []int64{v}}, nil
	case []int64:
		return &Options{IDs: v}, nil
	case string:
		if data.IsPath(v) {
			return &Options{Path: v}, nil
		}
		return &Options{Name: v}, nil
	case *regexp.Regexp:
		if v == nil {
			return nil, data.InvalidQuery(q)
		}
		return &Options{Regex: v}, nil
	default:
		return nil, data.InvalidQuery(q)
	}
}
