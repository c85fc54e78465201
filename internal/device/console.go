package device

import (
	"bytes"
	"io"
	"os"
)

// Console is the character console MMIO device from spec.md §6: a write
// of any byte to offset 0 appends to a line buffer, and a '\n' flushes
// the buffered line to the configured writer. Reads always return 0.
//
// Grounded on video_screen_buffer.go's PutChar line-buffering (control
// characters handled specially, ordinary bytes appended) collapsed down
// to the console device's much smaller contract.
type Console struct {
	base, size uint32
	out        io.Writer
	line       bytes.Buffer
}

// NewConsole creates a Console mapped at [base, base+size). Writing is
// sent to w; nil defaults to os.Stdout.
func NewConsole(base, size uint32, w io.Writer) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{base: base, size: size, out: w}
}

func (c *Console) Contains(offset uint32) bool { return offset < c.size }

func (c *Console) ReadByte(uint32) byte { return 0 }

func (c *Console) WriteByte(offset uint32, v byte) {
	if offset != 0 {
		return
	}
	c.line.WriteByte(v)
	if v == '\n' {
		_, _ = c.out.Write(c.line.Bytes())
		c.line.Reset()
	}
}

func (c *Console) ReadWord(uint32) uint32 { return 0 }

func (c *Console) WriteWord(offset uint32, v uint32) {
	// Only the low byte is architecturally meaningful; match the
	// byte-write contract for a word-sized MMIO poke.
	c.WriteByte(offset, byte(v))
}

// Drain returns and clears any buffered (not yet newline-terminated)
// output, for asynchronous consumers per spec.md §5.
func (c *Console) Drain() string {
	s := c.line.String()
	c.line.Reset()
	return s
}
