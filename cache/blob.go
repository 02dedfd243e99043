package cache

import (
	"regexp"
	"regexp/syntax"
	"strings"
)

const delimiter = '\n'

// nameBlob holds every distinct name of a store in a single newline
// delimited string, so one regular expression pass can test all names.
//
// The text always starts and ends with the delimiter: "\nA\nB\n". Names that
// contain the delimiter cannot be told apart inside the text and are kept in
// loose instead.
type nameBlob struct {
	text  string
	loose []string
}

func newNameBlob() *nameBlob {
	return &nameBlob{text: string(delimiter)}
}

func (b *nameBlob) add(name string) {
	if strings.IndexByte(name, delimiter) >= 0 {
		b.loose = append(b.loose, name)
		return
	}
	b.text += name + string(delimiter)
}

// remove cuts the exact delimited entry for name out of the text.
func (b *nameBlob) remove(name string) {
	if strings.IndexByte(name, delimiter) >= 0 {
		for i, other := range b.loose {
			if other == name {
				b.loose = append(b.loose[:i:i], b.loose[i+1:]...)
				return
			}
		}
		return
	}

	d := string(delimiter)
	b.text = strings.Replace(b.text, d+name+d, d, 1)
}

func (b *nameBlob) names() []string {
	var names []string
	if len(b.text) > 1 {
		names = strings.Split(b.text[1:len(b.text)-1], string(delimiter))
	}
	return append(names, b.loose...)
}

// match returns the distinct names matched by re, in blob order, followed
// by matching loose names. The search runs at most limit iterations; the
// second result reports whether the limit cut it short.
func (b *nameBlob) match(re *regexp.Regexp, limit int) ([]string, bool) {
	if anchorsText(re) {
		return b.matchEach(re, limit)
	}

	multiline, err := regexp.Compile("(?m)" + re.String())
	if err != nil {
		return b.matchEach(re, limit)
	}

	var matched []string
	seen := make(map[string]struct{})

	text := b.text
	for pos, iterations := 1, 0; pos < len(text); iterations++ {
		if iterations >= limit {
			return matched, true
		}

		loc := multiline.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}

		// The match belongs to the name it starts in. A match starting on a
		// delimiter belongs to the name the delimiter terminates.
		p := pos + loc[0]
		if p >= len(text) {
			break
		}
		start := strings.LastIndexByte(text[:p], delimiter) + 1
		end := start + strings.IndexByte(text[start:], delimiter)

		// The pattern may have matched across a delimiter, so confirm it
		// against the isolated name before accepting it.
		name := text[start:end]
		if _, ok := seen[name]; !ok && re.MatchString(name) {
			seen[name] = struct{}{}
			matched = append(matched, name)
		}

		// Continue after the name, which also moves past zero-width matches.
		pos = end + 1
	}

	for _, name := range b.loose {
		if re.MatchString(name) {
			matched = append(matched, name)
		}
	}

	return matched, false
}

// matchEach tests every name on its own.
func (b *nameBlob) matchEach(re *regexp.Regexp, limit int) ([]string, bool) {
	var matched []string
	for i, name := range b.names() {
		if i >= limit {
			return matched, true
		}
		if re.MatchString(name) {
			matched = append(matched, name)
		}
	}
	return matched, false
}

// anchorsText reports whether re uses \A or \z, which refer to the whole
// blob instead of a single name.
func anchorsText(re *regexp.Regexp) bool {
	// Without OneLine, ^ and $ parse as line anchors and only \A and \z
	// remain text anchors.
	parsed, err := syntax.Parse(re.String(), syntax.Perl&^syntax.OneLine)
	if err != nil {
		return true
	}

	var walk func(*syntax.Regexp) bool
	walk = func(r *syntax.Regexp) bool {
		if r.Op == syntax.OpBeginText || r.Op == syntax.OpEndText {
			return true
		}
		for _, sub := range r.Sub {
			if walk(sub) {
				return true
			}
		}
		return false
	}
	return walk(parsed)
}
