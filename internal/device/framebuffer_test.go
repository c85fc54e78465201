package device

import "testing"

// TestMorton10KnownValues locks down morton10 against spec.md §8 scenario
// 11: setPixel(33,0,...) writes at tiled index 1024+morton(1,0)==1026.
func TestMorton10KnownValues(t *testing.T) {
	cases := []struct {
		x, y, want uint32
	}{
		{0, 0, 0},
		{1, 0, 0b10},
		{0, 1, 0b01},
		{1, 1, 0b11},
	}
	for _, c := range cases {
		if got := morton10(c.x, c.y); got != c.want {
			t.Errorf("morton10(%d,%d) = %#b, want %#b", c.x, c.y, got, c.want)
		}
	}
}

func TestSetPixelTiledIndex(t *testing.T) {
	fb := NewFramebuffer(64, 64)
	fb.SetPixel(33, 0, 0xFF0000FF)
	idx, ok := fb.tileIndex(33, 0)
	if !ok || idx != 1026 {
		t.Fatalf("tileIndex(33,0) = (%d,%v), want (1026,true)", idx, ok)
	}
	if fb.tiled[1026] != 0xFF0000FF {
		t.Fatalf("tiled[1026] = 0x%08X, want 0xFF0000FF", fb.tiled[1026])
	}
}

func TestUpdateScreenDetiles(t *testing.T) {
	fb := NewFramebuffer(64, 64)
	fb.SetPixel(33, 0, 0xFF0000FF)
	screen := fb.UpdateScreen()
	if screen[33] != 0xFF0000FF {
		t.Fatalf("linear index 33 = 0x%08X, want 0xFF0000FF", screen[33])
	}
}

func TestFramebufferWordRoundTrip(t *testing.T) {
	fb := NewFramebuffer(64, 64)
	fb.WriteWord(4*10, 0xAABBCCDD) // pixel 10 -> (10,0)
	if got := fb.ReadWord(4 * 10); got != 0xAABBCCDD {
		t.Fatalf("ReadWord = 0x%08X, want 0xAABBCCDD", got)
	}
	if got := fb.Pixel(10, 0); got != 0xAABBCCDD {
		t.Fatalf("Pixel(10,0) = 0x%08X, want 0xAABBCCDD", got)
	}
}

func TestFramebufferOutOfRangeReadsBlack(t *testing.T) {
	fb := NewFramebuffer(64, 64)
	if got := fb.Pixel(1000, 1000); got != 0 {
		t.Fatalf("out-of-range pixel = 0x%08X, want 0", got)
	}
}

func TestTiledAliasWindow(t *testing.T) {
	fb := NewFramebuffer(64, 64)
	alias := NewTiledAlias(fb, 0x2000)
	alias.WriteWord(0, 0x11223344)
	if fb.tiled[0] != 0x11223344 {
		t.Fatalf("tiled alias write did not reach backing store")
	}
	if got := alias.ReadWord(0); got != 0x11223344 {
		t.Fatalf("alias ReadWord = 0x%08X, want 0x11223344", got)
	}
}
