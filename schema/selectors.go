package schema

import (
	"github.com/andybalholm/cascadia"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/net/html"
)

const selectorCacheSize = 256

// selectors holds compiled selectors keyed by their source text. Extraction
// runs one lookup per field per base match, so each selector compiles once.
var selectors = newSelectorCache(selectorCacheSize)

type selectorCache struct {
	compiled *lru.Cache[string, cascadia.Selector]
}

func newSelectorCache(size int) *selectorCache {
	cache, err := lru.New[string, cascadia.Selector](size)
	if err != nil {
		panic(err)
	}
	return &selectorCache{compiled: cache}
}

// compile returns the cached matcher for sel, compiling it on a miss.
// Invalid selectors are not cached.
func (c *selectorCache) compile(sel string) (cascadia.Selector, error) {
	if m, ok := c.compiled.Get(sel); ok {
		return m, nil
	}
	m, err := cascadia.Compile(sel)
	if err != nil {
		return nil, err
	}
	c.compiled.Add(sel, m)
	return m, nil
}

// matcher is compile for selectors Validate has already accepted. A selector
// that does not compile matches nothing.
func (c *selectorCache) matcher(sel string) cascadia.Selector {
	m, err := c.compile(sel)
	if err != nil {
		return func(*html.Node) bool { return false }
	}
	return m
}
