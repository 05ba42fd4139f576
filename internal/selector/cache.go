// Package selector decides which commands should run, based on always
// flags, uncommitted git changes, or file watcher batches.
package selector

import (
	"container/list"
	"regexp"
	"sync"
)

// regexCache is a process-wide LRU of compiled patterns keyed by pattern
// text. Selections recompile the same handful of patterns on every pass, so
// the cache keeps them hot without growing unbounded.
type regexCache struct {
	mu      sync.Mutex
	cap     int
	order   *list.List
	entries map[string]*list.Element
}

type cacheEntry struct {
	pattern  string
	compiled *regexp.Regexp
}

func newRegexCache(capacity int) *regexCache {
	return &regexCache{
		cap:     capacity,
		order:   list.New(),
		entries: make(map[string]*list.Element, capacity),
	}
}

func (c *regexCache) get(pattern string) (*regexp.Regexp, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[pattern]; ok {
		c.order.MoveToFront(el)
		return el.Value.(*cacheEntry).compiled, nil
	}

	compiled, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	el := c.order.PushFront(&cacheEntry{pattern: pattern, compiled: compiled})
	c.entries[pattern] = el

	if c.order.Len() > c.cap {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).pattern)
	}

	return compiled, nil
}

var patterns = newRegexCache(256)

// matchAny reports whether any of the patterns matches s. Patterns that fail
// to compile never match; the loader already rejected them, so a failure
// here means a programmatically built tree carried a bad pattern.
func matchAny(regexes []string, s string) bool {
	for _, pattern := range regexes {
		re, err := patterns.get(pattern)
		if err != nil {
			continue
		}
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
