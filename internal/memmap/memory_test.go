package memmap

import "testing"

func TestReadWriteWordRoundTrip(t *testing.T) {
	m := New(1024)
	m.WriteWordBE(0x100, 0x00112233)
	if got := m.ReadWordBE(0x100); got != 0x00112233 {
		t.Fatalf("ReadWordBE = 0x%08X, want 0x00112233", got)
	}
}

func TestBigEndianByteOrder(t *testing.T) {
	m := New(1024)
	m.WriteWordBE(0, 0x00112233)
	want := []byte{0x00, 0x11, 0x22, 0x33}
	for i, w := range want {
		if got := m.ReadByte(uint32(i)); got != w {
			t.Fatalf("byte %d = 0x%02X, want 0x%02X", i, got, w)
		}
	}
}

func TestPowerOfTwoMask(t *testing.T) {
	m := New(1024) // power of two
	m.WriteByte(1024, 0xAA)
	if got := m.ReadByte(0); got != 0xAA {
		t.Fatalf("expected wraparound write via mask, got 0x%02X", got)
	}
}

func TestNonPowerOfTwoBoundsCheck(t *testing.T) {
	m := New(1000) // not a power of two
	m.WriteByte(1000, 0xAA) // out of range, dropped
	if got := m.ReadByte(1000); got != 0 {
		t.Fatalf("out-of-range read should be zero, got 0x%02X", got)
	}
}

func TestWriteBlockOutOfBounds(t *testing.T) {
	m := New(16)
	err := m.WriteBlock(10, make([]byte, 10))
	if err == nil {
		t.Fatal("expected ErrOutOfBounds")
	}
	if _, ok := err.(*ErrOutOfBounds); !ok {
		t.Fatalf("expected *ErrOutOfBounds, got %T", err)
	}
}

func TestWriteBlockAndDump(t *testing.T) {
	m := New(16)
	if err := m.WriteBlock(0, []byte{1, 2, 3, 4}); err != nil {
		t.Fatal(err)
	}
	if got := m.Dump(0, 4); got[2] != 3 {
		t.Fatalf("Dump()[2] = %d, want 3", got[2])
	}
}
