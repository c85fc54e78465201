package bus

import (
	"testing"

	"github.com/aayes89/JPPC/internal/memmap"
)

type fakeDevice struct {
	reads, writes int
	word          uint32
}

func (f *fakeDevice) Contains(offset uint32) bool { return offset < 16 }
func (f *fakeDevice) ReadByte(offset uint32) byte { f.reads++; return byte(f.word) }
func (f *fakeDevice) WriteByte(offset uint32, v byte) {
	f.writes++
	f.word = (f.word &^ 0xFF) | uint32(v)
}
func (f *fakeDevice) ReadWord(offset uint32) uint32 { f.reads++; return f.word }
func (f *fakeDevice) WriteWord(offset uint32, v uint32) {
	f.writes++
	f.word = v
}

func TestBusFallsThroughToRAM(t *testing.T) {
	b := New(memmap.New(4096))
	b.WriteWord(0x100, 0xDEADBEEF)
	if got := b.ReadWord(0x100); got != 0xDEADBEEF {
		t.Fatalf("ReadWord = 0x%08X, want 0xDEADBEEF", got)
	}
}

func TestBusDispatchesToMappedDevice(t *testing.T) {
	b := New(memmap.New(4096))
	dev := &fakeDevice{}
	b.Map(0x1000, 0x100F, dev)

	b.WriteWord(0x1000, 0x11223344)
	if dev.writes != 1 {
		t.Fatalf("device should have received the write, writes=%d", dev.writes)
	}
	if got := b.ReadWord(0x1000); got != 0x11223344 || dev.reads != 1 {
		t.Fatalf("device should have answered the read: got=0x%08X reads=%d", got, dev.reads)
	}
}

func TestBusFirstMatchWins(t *testing.T) {
	b := New(memmap.New(4096))
	first := &fakeDevice{}
	second := &fakeDevice{}
	b.Map(0x2000, 0x2010, first)
	b.Map(0x2000, 0x2010, second)

	b.WriteWord(0x2000, 7)
	if first.writes != 1 || second.writes != 0 {
		t.Fatal("first mapping registered for an address must win")
	}
}

func TestIsCacheable(t *testing.T) {
	b := New(memmap.New(4096))
	b.Map(0x1000, 0x100F, &fakeDevice{})
	if b.IsCacheable(0x1000) {
		t.Fatal("MMIO address should not be cacheable")
	}
	if !b.IsCacheable(0x100) {
		t.Fatal("RAM address should be cacheable")
	}
}
