// Package cache implements the 128-line, 16-word-per-line, direct-mapped
// cache over the Bus described in spec.md §4.3: a read that hits returns
// the word; a miss fills the whole 64-byte line (writing back the
// evicted line first, if dirty); a write that hits either goes straight
// through to the Bus (write-through) or is marked dirty (write-back); a
// write that misses is write-no-allocate.
//
// No teacher analog exists (IntuitionEngine has no cache layer); the
// line struct follows registers.go's flat-struct-of-fields convention,
// and the index/tag/offset bit arithmetic follows spec.md §4.3 directly.
package cache

import "github.com/aayes89/JPPC/internal/bus"

const (
	numLines     = 128
	wordsPerLine = 16
	lineSizeBits = 6  // 64 bytes per line
	indexBits    = 7  // 128 lines
	offsetMask   = wordsPerLine - 1
)

// Mode selects the cache's write policy.
type Mode int

const (
	WriteThrough Mode = iota
	WriteBack
)

type line struct {
	tag   uint32
	data  [wordsPerLine]uint32
	valid bool
	dirty bool
}

// Cache sits between the CPU/MMU and the Bus.
type Cache struct {
	lines [numLines]line
	b     *bus.Bus
	mode  Mode
}

// New creates a Cache over b using the given write policy.
func New(b *bus.Bus, mode Mode) *Cache {
	return &Cache{b: b, mode: mode}
}

func split(pa uint32) (tag, index, offset uint32) {
	offset = (pa >> 2) & offsetMask
	index = (pa >> lineSizeBits) & (numLines - 1)
	tag = pa >> (lineSizeBits + indexBits)
	return
}

func lineBase(tag, index uint32) uint32 {
	return (tag << (lineSizeBits + indexBits)) | (index << lineSizeBits)
}

// writeback flushes a dirty, valid line back to the Bus.
func (c *Cache) writeback(l *line, index uint32) {
	if !l.valid || !l.dirty {
		return
	}
	base := lineBase(l.tag, index)
	for w := uint32(0); w < wordsPerLine; w++ {
		c.b.WriteWord(base+w*4, l.data[w])
	}
	l.dirty = false
}

// fill loads a fresh 64-byte line from the Bus at the address owning pa,
// evicting (and writing back, if needed) whatever line currently
// occupies that index.
func (c *Cache) fill(pa uint32) *line {
	tag, index, _ := split(pa)
	l := &c.lines[index]
	c.writeback(l, index)

	base := pa &^ uint32(wordsPerLine*4-1)
	for w := uint32(0); w < wordsPerLine; w++ {
		l.data[w] = c.b.ReadWord(base + w*4)
	}
	l.tag = tag
	l.valid = true
	l.dirty = false
	return l
}

// ReadWord reads a word through the cache. Non-cacheable (MMIO)
// addresses bypass the cache entirely.
func (c *Cache) ReadWord(pa uint32) uint32 {
	if !c.b.IsCacheable(pa) {
		return c.b.ReadWord(pa)
	}
	tag, index, offset := split(pa)
	l := &c.lines[index]
	if !l.valid || l.tag != tag {
		l = c.fill(pa)
	}
	return l.data[offset]
}

// WriteWord writes a word through the cache. Non-cacheable addresses
// bypass the cache. A hit mutates the line (and, under write-through,
// also writes the Bus immediately); a miss is write-no-allocate and goes
// straight to the Bus without filling a line.
func (c *Cache) WriteWord(pa uint32, v uint32) {
	if !c.b.IsCacheable(pa) {
		c.b.WriteWord(pa, v)
		return
	}
	tag, index, offset := split(pa)
	l := &c.lines[index]
	if l.valid && l.tag == tag {
		l.data[offset] = v
		if c.mode == WriteThrough {
			c.b.WriteWord(pa, v)
		} else {
			l.dirty = true
		}
		return
	}
	c.b.WriteWord(pa, v)
}

// Flush writes back every dirty line and invalidates the cache.
func (c *Cache) Flush() {
	for i := range c.lines {
		c.writeback(&c.lines[i], uint32(i))
		c.lines[i].valid = false
	}
}

// Invalidate drops every line without writing back (used by dcbi-style
// maintenance operations, not exposed as an architectural instruction in
// this core but useful for tests and device reset paths).
func (c *Cache) Invalidate() {
	for i := range c.lines {
		c.lines[i].valid = false
		c.lines[i].dirty = false
	}
}
