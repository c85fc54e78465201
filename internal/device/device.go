// Package device implements the emulator's pluggable MMIO endpoints:
// a character console and a tiled framebuffer, per spec.md §4.2 and §6.
//
// The teacher's MMIO devices (file_io.go's FileIODevice, video_chip.go's
// VideoChip) expose HandleRead/HandleWrite pairs invoked by the bus; the
// Device interface here generalizes that shape to the byte/word split
// spec.md §4.2 requires.
package device

// Device is an MMIO endpoint mapped into the Bus's address space.
// Offsets are relative to the device's own base address.
type Device interface {
	// Contains reports whether offset falls within this device's range.
	Contains(offset uint32) bool
	ReadByte(offset uint32) byte
	WriteByte(offset uint32, v byte)
	ReadWord(offset uint32) uint32
	WriteWord(offset uint32, v uint32)
}
