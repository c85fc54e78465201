// Package elfload loads a PowerPC/PPC64 ELF image into the emulator's
// physical bus memory, placing every PT_LOAD segment at its physical
// address and reporting the entry point and symbol table, the same
// host-file-to-bus-memory copy shape as file_io.go's doRead generalized
// from a flat byte copy to a segment-table-driven placement.
package elfload

import (
	"bytes"
	"debug/elf"
	"fmt"
	"os"

	"github.com/aayes89/JPPC/internal/bus"
	"github.com/aayes89/JPPC/internal/logging"
)

// Symbol is one entry from .symtab, with its name resolved via .strtab.
type Symbol struct {
	Name  string
	Value uint64
	Size  uint64
}

// Image describes a loaded executable: its entry point and any symbols
// recovered from .symtab/.strtab (absent for a stripped binary or a raw
// binary fallback load).
type Image struct {
	Entry   uint64
	Symbols []Symbol
}

// ErrUnsupportedMachine is returned when the ELF's e_machine is neither
// PowerPC (EM_PPC) nor PowerPC64 (EM_PPC64).
type ErrUnsupportedMachine struct {
	Machine elf.Machine
}

func (e *ErrUnsupportedMachine) Error() string {
	return fmt.Sprintf("elfload: unsupported machine %s, want EM_PPC or EM_PPC64", e.Machine)
}

// Loader writes PT_LOAD segments onto a bus and logs placement/errors.
type Loader struct {
	Bus *bus.Bus
	Log logging.Logger
}

// New returns a Loader writing onto b. A nil logger discards diagnostics.
func New(b *bus.Bus, log logging.Logger) *Loader {
	if log == nil {
		log = logging.NopLogger{}
	}
	return &Loader{Bus: b, Log: log}
}

// LoadFile reads path and loads it as an ELF image, falling back to a
// raw flat binary placed at loadAddr if the file isn't a valid ELF (no
// 0x7F 'E' 'L' 'F' magic) — the same fallback a raw firmware/kernel blob
// needs when it carries no container format at all.
func (l *Loader) LoadFile(path string, loadAddr uint32) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("elfload: %w", err)
	}
	if len(data) < 4 || !bytes.Equal(data[:4], []byte{0x7F, 'E', 'L', 'F'}) {
		l.Log.Printf("elfload: %s has no ELF magic, loading as raw binary at 0x%08X", path, loadAddr)
		return l.loadRaw(data, loadAddr), nil
	}
	return l.loadELF(bytes.NewReader(data))
}

func (l *Loader) loadRaw(data []byte, loadAddr uint32) *Image {
	for i, b := range data {
		l.Bus.WriteByte(loadAddr+uint32(i), b)
	}
	return &Image{Entry: uint64(loadAddr)}
}

func (l *Loader) loadELF(r *bytes.Reader) (*Image, error) {
	f, err := elf.NewFile(r)
	if err != nil {
		return nil, fmt.Errorf("elfload: %w", err)
	}
	defer f.Close()

	if f.Machine != elf.EM_PPC && f.Machine != elf.EM_PPC64 {
		return nil, &ErrUnsupportedMachine{Machine: f.Machine}
	}

	for _, prog := range f.Progs {
		if prog.Type != elf.PT_LOAD {
			continue
		}
		if err := l.placeSegment(prog); err != nil {
			return nil, err
		}
	}

	syms, err := l.readSymbols(f)
	if err != nil {
		l.Log.Printf("elfload: no symbol table: %v", err)
	}

	l.Log.Printf("elfload: loaded %s entry=0x%08X, %d symbols", f.Machine, f.Entry, len(syms))
	return &Image{Entry: f.Entry, Symbols: syms}, nil
}

// placeSegment copies a PT_LOAD segment's file-backed bytes to its
// physical address and zero-fills the remainder up to MemSiz (the
// .bss-style tail a segment's FileSiz < MemSiz leaves uninitialized).
func (l *Loader) placeSegment(prog *elf.Prog) error {
	if prog.Paddr > 0xFFFFFFFF || prog.Paddr+prog.Memsz > 0x100000000 {
		return fmt.Errorf("elfload: segment at 0x%X size 0x%X exceeds 32-bit physical address space", prog.Paddr, prog.Memsz)
	}
	if prog.Align > 1 && prog.Paddr%prog.Align != 0 {
		return fmt.Errorf("elfload: segment at 0x%X is not aligned to its required 0x%X boundary", prog.Paddr, prog.Align)
	}
	if ramSize := uint64(l.Bus.RAM().Size()); prog.Paddr+prog.Memsz > ramSize {
		return fmt.Errorf("elfload: segment at 0x%X size 0x%X exceeds backing RAM size 0x%X", prog.Paddr, prog.Memsz, ramSize)
	}
	base := uint32(prog.Paddr)
	data := make([]byte, prog.Filesz)
	if _, err := prog.ReadAt(data, 0); err != nil {
		return fmt.Errorf("elfload: reading segment at 0x%X: %w", prog.Paddr, err)
	}
	for i, b := range data {
		l.Bus.WriteByte(base+uint32(i), b)
	}
	for i := prog.Filesz; i < prog.Memsz; i++ {
		l.Bus.WriteByte(base+uint32(i), 0)
	}
	l.Log.Printf("elfload: placed segment vaddr=0x%X paddr=0x%X filesz=0x%X memsz=0x%X", prog.Vaddr, prog.Paddr, prog.Filesz, prog.Memsz)
	return nil
}

func (l *Loader) readSymbols(f *elf.File) ([]Symbol, error) {
	raw, err := f.Symbols()
	if err != nil {
		return nil, err
	}
	syms := make([]Symbol, 0, len(raw))
	for _, s := range raw {
		if s.Name == "" {
			continue
		}
		syms = append(syms, Symbol{Name: s.Name, Value: s.Value, Size: s.Size})
	}
	return syms, nil
}
