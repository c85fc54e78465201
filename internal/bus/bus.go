// Package bus implements spec.md §4.2's address router: an ordered list
// of (device, start, end-inclusive) mappings over a fallthrough RAM, with
// first-match dispatch and big-endian word wire semantics.
//
// Grounded on machine_bus.go's range-dispatch-over-a-device-list shape,
// simplified from the teacher's page-bucket map to an explicit range
// slice kept in mapping order: spec.md's device set is small and fixed (console,
// framebuffer, framebuffer alias), so a linear scan is both simpler and
// plenty fast, and keeps first-match-wins trivially correct without
// needing to reconcile overlapping page buckets.
package bus

import "github.com/aayes89/JPPC/internal/memmap"

// Device is the subset of internal/device.Device the bus depends on. It
// is redeclared here (rather than imported) so internal/bus never needs
// to know about internal/device's concrete types — any MMIO endpoint
// satisfying this shape can be mapped.
type Device interface {
	Contains(offset uint32) bool
	ReadByte(offset uint32) byte
	WriteByte(offset uint32, v byte)
	ReadWord(offset uint32) uint32
	WriteWord(offset uint32, v uint32)
}

type mapping struct {
	dev        Device
	start, end uint32 // inclusive
}

// Bus routes physical addresses to a device or to backing RAM.
type Bus struct {
	ram      *memmap.Memory
	mappings []mapping
}

// New creates a Bus backed by ram, with no devices mapped yet.
func New(ram *memmap.Memory) *Bus {
	return &Bus{ram: ram}
}

// Map registers dev over [start, end] (inclusive). The first mapping
// whose range contains an address wins; later overlapping mappings for
// the same address are never reached.
func (b *Bus) Map(start, end uint32, dev Device) {
	b.mappings = append(b.mappings, mapping{dev: dev, start: start, end: end})
}

func (b *Bus) find(addr uint32) (Device, uint32, bool) {
	for _, m := range b.mappings {
		if addr >= m.start && addr <= m.end {
			return m.dev, addr - m.start, true
		}
	}
	return nil, 0, false
}

// ReadByte reads one byte from whichever device or RAM owns addr.
func (b *Bus) ReadByte(addr uint32) byte {
	if dev, off, ok := b.find(addr); ok {
		return dev.ReadByte(off)
	}
	return b.ram.ReadByte(addr)
}

// WriteByte writes one byte to whichever device or RAM owns addr.
func (b *Bus) WriteByte(addr uint32, v byte) {
	if dev, off, ok := b.find(addr); ok {
		dev.WriteByte(off, v)
		return
	}
	b.ram.WriteByte(addr, v)
}

// ReadWord reads a big-endian 32-bit word. Word accesses that straddle a
// device boundary are not supported, per spec.md §4.2: callers must only
// issue word accesses that fit entirely within one mapping (or entirely
// within RAM).
func (b *Bus) ReadWord(addr uint32) uint32 {
	if dev, off, ok := b.find(addr); ok {
		return dev.ReadWord(off)
	}
	return b.ram.ReadWordBE(addr)
}

// WriteWord writes a big-endian 32-bit word.
func (b *Bus) WriteWord(addr uint32, v uint32) {
	if dev, off, ok := b.find(addr); ok {
		dev.WriteWord(off, v)
		return
	}
	b.ram.WriteWordBE(addr, v)
}

// RAM exposes the backing memory for components (the cache, the ELF
// loader) that need bulk or line-sized access beneath the device layer.
func (b *Bus) RAM() *memmap.Memory { return b.ram }

// IsCacheable reports whether addr is backed by RAM (cacheable) as
// opposed to a mapped MMIO device (never cacheable), per spec.md §4.3.
func (b *Bus) IsCacheable(addr uint32) bool {
	_, _, isDevice := b.find(addr)
	return !isDevice
}
