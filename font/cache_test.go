// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package font

import (
	"sync"
	"testing"
)

func TestCacheGetInternsByObjectIdentity(t *testing.T) {
	fontDict := openFontFixture(t, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	c := NewCache()
	d1 := c.Get(fontDict)
	d2 := c.Get(fontDict)
	if d1 != d2 {
		t.Error("Get() decoded the same indirect font twice instead of reusing the cached Description")
	}
	if len(c.All()) != 1 {
		t.Errorf("All() = %d entries, want 1", len(c.All()))
	}
}

// TestCacheGetConcurrentMissesDontPanic exercises the same interning path
// ExtractConcurrent relies on: many goroutines racing a first-use miss on
// the same key. Under `go test -race` this must be clean; without the
// race detector it still guards against the fatal (not merely undefined)
// "concurrent map writes" crash a plain map would produce here.
func TestCacheGetConcurrentMissesDontPanic(t *testing.T) {
	fontDict := openFontFixture(t, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
	c := NewCache()

	const goroutines = 32
	results := make([]*Description, goroutines)
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(i int) {
			defer wg.Done()
			results[i] = c.Get(fontDict)
		}(i)
	}
	wg.Wait()

	first := results[0]
	for i, d := range results {
		if d != first {
			t.Errorf("Get() result %d = %p, want %p (every caller should converge on one interned Description)", i, d, first)
		}
	}
	if len(c.All()) != 1 {
		t.Errorf("All() = %d entries, want 1", len(c.All()))
	}
}

func TestObjectKeyFormat(t *testing.T) {
	fontDict := openFontFixture(t, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
	key, ok := objectKey(fontDict)
	if !ok {
		t.Fatal("objectKey() reported no identity for an indirect object")
	}
	if key != "4.0" {
		t.Errorf("objectKey() = %q, want 4.0", key)
	}
}
