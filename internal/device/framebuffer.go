package device

// Framebuffer is the tiled ARGB framebuffer device from spec.md §6: the
// backing store holds width×height 32-bit pixels arranged in 32×32
// macro-tiles, with pixels inside a tile addressed by a 10-bit Morton
// (Z-order) curve — Y bits land in the even output bit positions, X bits
// in the odd ones (verified against spec.md §8 scenario 11:
// setPixel(33,0,...) writes tiled index 1024+morton(1,0) == 1024+2).
//
// Grounded on video_chip.go's HandleRead/HandleWrite-over-a-pixel-buffer
// shape and its dirty-region bookkeeping (here reduced to the single
// "last write wins, visible to the next read" guarantee spec.md §5
// requires — no coalescing, no threading, since the core never observes
// pixels itself).
type Framebuffer struct {
	width, height int
	tilesPerRow   int
	tiled         []uint32 // backing store, tiled order

	// MMIO windows, relative to the device's own base.
	linearSize uint32 // byte length of the linear (untiled-view) window
	tiledAlias uint32 // byte length of the control/tiled-alias window
}

// NewFramebuffer allocates a tiled framebuffer of width×height pixels.
// Both dimensions must be multiples of 32 (one macro-tile).
func NewFramebuffer(width, height int) *Framebuffer {
	if width <= 0 {
		width = 32
	}
	if height <= 0 {
		height = 32
	}
	width -= width % 32
	if width == 0 {
		width = 32
	}
	height -= height % 32
	if height == 0 {
		height = 32
	}
	return &Framebuffer{
		width:       width,
		height:      height,
		tilesPerRow: width / 32,
		tiled:       make([]uint32, width*height),
		linearSize:  uint32(width * height * 4),
		tiledAlias:  uint32(width * height * 4), // may be windowed smaller by the bus mapping
	}
}

// Width and Height report the framebuffer's pixel dimensions.
func (f *Framebuffer) Width() int  { return f.width }
func (f *Framebuffer) Height() int { return f.height }

// morton10 interleaves the low 5 bits of x and y into a 10-bit Morton
// code with Y in the even bit positions and X in the odd ones.
func morton10(x, y uint32) uint32 {
	var m uint32
	for i := uint32(0); i < 5; i++ {
		m |= ((x >> i) & 1) << (2*i + 1)
		m |= ((y >> i) & 1) << (2 * i)
	}
	return m
}

// tileIndex returns the tiled-buffer index for linear coordinate (x,y),
// and whether that coordinate is within the framebuffer.
func (f *Framebuffer) tileIndex(x, y int) (int, bool) {
	if x < 0 || y < 0 || x >= f.width || y >= f.height {
		return 0, false
	}
	macroX, macroY := x/32, y/32
	localX, localY := uint32(x%32), uint32(y%32)
	macroIndex := (macroY*f.tilesPerRow + macroX) * 1024
	return macroIndex + int(morton10(localX, localY)), true
}

// SetPixel writes argb at linear coordinate (x,y), storing it in tiled
// order. Out-of-range coordinates are silently ignored.
func (f *Framebuffer) SetPixel(x, y int, argb uint32) {
	idx, ok := f.tileIndex(x, y)
	if !ok {
		return
	}
	f.tiled[idx] = argb
}

// Pixel reads the pixel at linear coordinate (x,y). Out-of-range
// coordinates read as 0 (black).
func (f *Framebuffer) Pixel(x, y int) uint32 {
	idx, ok := f.tileIndex(x, y)
	if !ok {
		return 0
	}
	return f.tiled[idx]
}

// UpdateScreen detiles the backing store into a row-major ARGB slice
// suitable for display. Destination pixels with no corresponding source
// (never the case for a fully covered rectangle, but kept for
// robustness against partial tile coverage) are filled with 0 per
// spec.md §6's "out-of-range destination pixels are filled with 0"
// rule.
func (f *Framebuffer) UpdateScreen() []uint32 {
	out := make([]uint32, f.width*f.height)
	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			idx, ok := f.tileIndex(x, y)
			v := uint32(0)
			if ok {
				v = f.tiled[idx]
			}
			out[y*f.width+x] = v
		}
	}
	return out
}

// Contains implements Device over the linear (untiled) view window.
func (f *Framebuffer) Contains(offset uint32) bool { return offset < f.linearSize }

func (f *Framebuffer) wordOffsetToXY(offset uint32) (int, int) {
	pixelIndex := int(offset / 4)
	return pixelIndex % f.width, pixelIndex / f.width
}

func (f *Framebuffer) ReadWord(offset uint32) uint32 {
	x, y := f.wordOffsetToXY(offset)
	return f.Pixel(x, y)
}

func (f *Framebuffer) WriteWord(offset uint32, v uint32) {
	x, y := f.wordOffsetToXY(offset)
	f.SetPixel(x, y, v)
}

func (f *Framebuffer) ReadByte(offset uint32) byte {
	word := f.ReadWord(offset &^ 3)
	shift := (3 - offset%4) * 8
	return byte(word >> shift)
}

func (f *Framebuffer) WriteByte(offset uint32, v byte) {
	wordOff := offset &^ 3
	word := f.ReadWord(wordOff)
	shift := (3 - offset%4) * 8
	mask := uint32(0xFF) << shift
	word = (word &^ mask) | (uint32(v) << shift)
	f.WriteWord(wordOff, word)
}

// TiledAlias exposes the control/tiled-alias view: raw word-indexed
// access directly into the tiled backing store, for the smaller
// 0xC8000000 MMIO window named in spec.md §6. Diagnostic/control use
// only — the core never needs this path.
type TiledAlias struct {
	fb   *Framebuffer
	size uint32
}

// NewTiledAlias wraps fb with a windowed raw view of `size` bytes.
func NewTiledAlias(fb *Framebuffer, size uint32) *TiledAlias {
	return &TiledAlias{fb: fb, size: size}
}

func (t *TiledAlias) Contains(offset uint32) bool { return offset < t.size }

func (t *TiledAlias) ReadWord(offset uint32) uint32 {
	idx := int(offset / 4)
	if idx < 0 || idx >= len(t.fb.tiled) {
		return 0
	}
	return t.fb.tiled[idx]
}

func (t *TiledAlias) WriteWord(offset uint32, v uint32) {
	idx := int(offset / 4)
	if idx < 0 || idx >= len(t.fb.tiled) {
		return
	}
	t.fb.tiled[idx] = v
}

func (t *TiledAlias) ReadByte(offset uint32) byte {
	word := t.ReadWord(offset &^ 3)
	shift := (3 - offset%4) * 8
	return byte(word >> shift)
}

func (t *TiledAlias) WriteByte(offset uint32, v byte) {
	wordOff := offset &^ 3
	word := t.ReadWord(wordOff)
	shift := (3 - offset%4) * 8
	mask := uint32(0xFF) << shift
	word = (word &^ mask) | (uint32(v) << shift)
	t.WriteWord(wordOff, word)
}
