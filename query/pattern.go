package query

import (
	"fmt"
	"regexp"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mwantia/projtree/data"
)

// patterns compiles derived regular expressions once and keeps the most
// recently used ones.
type patterns struct {
	cache *lru.Cache[string, *regexp.Regexp]
}

func newPatterns(size int) (*patterns, error) {
	cache, err := lru.New[string, *regexp.Regexp](size)
	if err != nil {
		return nil, err
	}
	return &patterns{cache: cache}, nil
}

func (p *patterns) compile(expr string) (*regexp.Regexp, error) {
	if re, ok := p.cache.Get(expr); ok {
		return re, nil
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", data.ErrInvalidQuery, err)
	}

	p.cache.Add(expr, re)
	return re, nil
}

// exactName returns an anchored pattern matching name literally.
func (p *patterns) exactName(name string, insensitive bool) (*regexp.Regexp, error) {
	return p.compile(fold(insensitive) + "^" + regexp.QuoteMeta(name) + "$")
}

// derive wraps re into prefix and suffix anchors, adding case folding.
func (p *patterns) derive(re *regexp.Regexp, prefix, suffix string, insensitive bool) (*regexp.Regexp, error) {
	if prefix == "" && suffix == "" && !insensitive {
		return re, nil
	}
	return p.compile(fold(insensitive) + prefix + "(?:" + re.String() + ")" + suffix)
}

func (p *patterns) Len() int {
	return p.cache.Len()
}

func fold(insensitive bool) string {
	if insensitive {
		return "(?i)"
	}
	return ""
}
