package elfload

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/aayes89/JPPC/internal/bus"
	"github.com/aayes89/JPPC/internal/memmap"
)

func newTestBus() *bus.Bus {
	return bus.New(memmap.New(1 << 20))
}

// buildMinimalPPCELF hand-assembles a 32-bit big-endian ELF with a
// single PT_LOAD segment, matching the field layout debug/elf parses
// (e_ident/e_type/e_machine/e_entry/... followed by one Elf32_Phdr and
// its backing bytes).
func buildMinimalPPCELF(t *testing.T, code []byte, vaddr uint32) []byte {
	t.Helper()
	const ehsize = 52
	const phsize = 32
	phoff := uint32(ehsize)
	dataOff := phoff + phsize

	var buf bytes.Buffer
	ident := [16]byte{0x7F, 'E', 'L', 'F', 1, 2, 1, 0} // ELFCLASS32, ELFDATA2MSB
	buf.Write(ident[:])
	binary.Write(&buf, binary.BigEndian, uint16(elf.ET_EXEC))
	binary.Write(&buf, binary.BigEndian, uint16(elf.EM_PPC))
	binary.Write(&buf, binary.BigEndian, uint32(elf.EV_CURRENT))
	binary.Write(&buf, binary.BigEndian, uint32(vaddr))    // e_entry
	binary.Write(&buf, binary.BigEndian, uint32(phoff))    // e_phoff
	binary.Write(&buf, binary.BigEndian, uint32(0))        // e_shoff
	binary.Write(&buf, binary.BigEndian, uint32(0))        // e_flags
	binary.Write(&buf, binary.BigEndian, uint16(ehsize))   // e_ehsize
	binary.Write(&buf, binary.BigEndian, uint16(phsize))   // e_phentsize
	binary.Write(&buf, binary.BigEndian, uint16(1))        // e_phnum
	binary.Write(&buf, binary.BigEndian, uint16(0))        // e_shentsize
	binary.Write(&buf, binary.BigEndian, uint16(0))        // e_shnum
	binary.Write(&buf, binary.BigEndian, uint16(0))        // e_shstrndx
	if buf.Len() != ehsize {
		t.Fatalf("header length = %d, want %d", buf.Len(), ehsize)
	}

	binary.Write(&buf, binary.BigEndian, uint32(elf.PT_LOAD))
	binary.Write(&buf, binary.BigEndian, uint32(dataOff))      // p_offset
	binary.Write(&buf, binary.BigEndian, uint32(vaddr))        // p_vaddr
	binary.Write(&buf, binary.BigEndian, uint32(vaddr))        // p_paddr
	binary.Write(&buf, binary.BigEndian, uint32(len(code)))    // p_filesz
	binary.Write(&buf, binary.BigEndian, uint32(len(code)+16)) // p_memsz (extra bss tail)
	binary.Write(&buf, binary.BigEndian, uint32(elf.PF_X|elf.PF_R))
	binary.Write(&buf, binary.BigEndian, uint32(4)) // p_align

	buf.Write(code)
	return buf.Bytes()
}

func TestLoadFilePlacesSegmentAtPhysicalAddress(t *testing.T) {
	code := []byte{0x38, 0x60, 0x00, 0x2A} // li r3,42
	img := buildMinimalPPCELF(t, code, 0x1000)

	dir := t.TempDir()
	path := filepath.Join(dir, "test.elf")
	if err := os.WriteFile(path, img, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	b := newTestBus()
	loader := New(b, nil)
	loaded, err := loader.LoadFile(path, 0)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if loaded.Entry != 0x1000 {
		t.Fatalf("Entry = 0x%X, want 0x1000", loaded.Entry)
	}
	if got := b.ReadWord(0x1000); got != 0x3860002A {
		t.Fatalf("memory at 0x1000 = 0x%08X, want 0x3860002A", got)
	}
	// bss tail beyond filesz must be zeroed, not left at whatever RAM held.
	if got := b.ReadByte(0x1000 + uint32(len(code))); got != 0 {
		t.Fatalf("bss byte = 0x%02X, want 0", got)
	}
}

func TestLoadFileRejectsWrongMachine(t *testing.T) {
	code := []byte{0, 0, 0, 0}
	img := buildMinimalPPCELF(t, code, 0x1000)
	// Overwrite e_machine (bytes 18-19) with EM_X86_64.
	binary.BigEndian.PutUint16(img[18:20], uint16(elf.EM_X86_64))

	dir := t.TempDir()
	path := filepath.Join(dir, "wrong.elf")
	os.WriteFile(path, img, 0644)

	b := newTestBus()
	loader := New(b, nil)
	_, err := loader.LoadFile(path, 0)
	if err == nil {
		t.Fatal("expected an error for a non-PowerPC ELF")
	}
	if _, ok := err.(*ErrUnsupportedMachine); !ok {
		t.Fatalf("error = %T, want *ErrUnsupportedMachine", err)
	}
}

func TestLoadFileRejectsMisalignedSegment(t *testing.T) {
	code := []byte{0, 0, 0, 0}
	img := buildMinimalPPCELF(t, code, 0x1000)
	// Phdr layout: p_type(0) p_offset(4) p_vaddr(8) p_paddr(12)
	// p_filesz(16) p_memsz(20) p_flags(24) p_align(28). Force p_paddr to
	// 0x1002 against a 0x1000 alignment requirement.
	const phoff = 52
	binary.BigEndian.PutUint32(img[phoff+12:phoff+16], 0x1002) // p_paddr
	binary.BigEndian.PutUint32(img[phoff+28:phoff+32], 0x1000) // p_align

	dir := t.TempDir()
	path := filepath.Join(dir, "misaligned.elf")
	os.WriteFile(path, img, 0644)

	b := newTestBus()
	loader := New(b, nil)
	if _, err := loader.LoadFile(path, 0); err == nil {
		t.Fatal("expected an error for a segment violating its own alignment")
	}
}

func TestLoadFileRejectsSegmentExceedingRAMSize(t *testing.T) {
	code := []byte{0, 0, 0, 0}
	// Place the segment right at the edge of a 1MiB RAM so memsz pushes
	// it past the backing store.
	img := buildMinimalPPCELF(t, code, (1<<20)-8)
	const phoff = 52
	binary.BigEndian.PutUint32(img[phoff+20:phoff+24], 32) // p_memsz: well past the 8 bytes left in RAM

	dir := t.TempDir()
	path := filepath.Join(dir, "toobig.elf")
	os.WriteFile(path, img, 0644)

	b := newTestBus()
	loader := New(b, nil)
	if _, err := loader.LoadFile(path, 0); err == nil {
		t.Fatal("expected an error for a segment exceeding backing RAM size")
	}
}

func TestLoadFileFallsBackToRawBinary(t *testing.T) {
	raw := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x01, 0x02}
	dir := t.TempDir()
	path := filepath.Join(dir, "firmware.bin")
	os.WriteFile(path, raw, 0644)

	b := newTestBus()
	loader := New(b, nil)
	img, err := loader.LoadFile(path, 0x2000)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if img.Entry != 0x2000 {
		t.Fatalf("Entry = 0x%X, want 0x2000", img.Entry)
	}
	if got := b.ReadWord(0x2000); got != 0xDEADBEEF {
		t.Fatalf("memory at 0x2000 = 0x%08X, want 0xDEADBEEF", got)
	}
}
