// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package font

import (
	"fmt"
	"sync"

	"github.com/geek0x0/pdftext/objects"
)

// Cache interns Descriptions by font object id so that a font referenced
// from many pages (or many times per page, via Tf) is decoded exactly
// once. ExtractConcurrent hands the same Cache to every worker goroutine,
// so byID is guarded by mu: a genuine concurrent-map-write, not just a
// data race, would otherwise fatal the whole process on any multi-page
// document with fonts, regardless of whether two workers ever touch the
// same key.
type Cache struct {
	mu   sync.RWMutex
	byID map[string]*Description
}

// NewCache returns an empty font cache.
func NewCache() *Cache {
	return &Cache{byID: make(map[string]*Description)}
}

// Get returns the cached Description for fontDict, decoding and interning
// it on first use. Fonts referenced indirectly (the common case) are
// keyed by their object id/generation, so repeated lookups of the same
// font resource across pages return the same *Description. A font
// dictionary embedded inline with no indirect identity is decoded once
// per call, since it cannot be recognized as the "same" font elsewhere.
func (c *Cache) Get(fontDict objects.Value) *Description {
	key, ok := objectKey(fontDict)
	if ok {
		c.mu.RLock()
		d, cached := c.byID[key]
		c.mu.RUnlock()
		if cached {
			return d
		}
	}
	d := Decode(key, fontDict)
	if ok {
		c.mu.Lock()
		// Another worker may have decoded and stored the same key while
		// this one was still running Decode; keep whichever is already
		// interned so every caller ends up sharing one *Description.
		if existing, cached := c.byID[key]; cached {
			d = existing
		} else {
			c.byID[key] = d
		}
		c.mu.Unlock()
	}
	return d
}

func objectKey(v objects.Value) (string, bool) {
	id, gen, ok := v.ObjectID()
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%d.%d", id, gen), true
}

// All returns a snapshot of every font decoded so far, keyed by font id,
// for building the FontsByID() output surface — a copy taken under the
// lock, since the live map may still be written by concurrent workers.
func (c *Cache) All() map[string]*Description {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]*Description, len(c.byID))
	for k, v := range c.byID {
		out[k] = v
	}
	return out
}
