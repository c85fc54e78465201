// Package mmu implements spec.md §4.4's address translation: real-mode
// bypass, BAT block matching, and SR+TLB page translation, plus the
// reservation cell shared by lwarx/stwcx. (spec.md §4.6.5, §5).
//
// No teacher MMU exists — IntuitionEngine's SystemBus is a flat 16 MiB
// space with no translation layer — so control flow here is grounded
// directly on spec.md §4.4's five numbered steps, and storage for the
// BAT/SR/TLB register files follows registers.go's flat-struct-of-fields
// convention (fixed-size arrays of small value types, no dynamic
// allocation per access).
//
// Per the Design Notes "Exception control flow" rule, Translate never
// raises an exception itself: it returns a Fault the caller (the CPU
// core) turns into a vectored interrupt, setting DAR/DSISR itself.
package mmu

// Fault classifies why a translation could not complete.
type Fault int

const (
	NoFault Fault = iota
	FaultISI
	FaultDSI
)

// Bat is one BAT register pair (e.g. IBAT0 or DBAT0).
type Bat struct {
	Upper uint32 // BEPI[0:14] | reserved[15:18] | BL[19:29] | Vs[30] | Vp[31] (IBM bit numbering)
	Lower uint32 // BRPN[0:14] | reserved | WIMG[25:28] | PP[30:31]
}

func (b Bat) valid() bool   { return b.Upper&0x3 != 0 } // Vs or Vp set
func (b Bat) bepi() uint32  { return b.Upper >> 17 }
func (b Bat) bl() uint32    { return (b.Upper >> 2) & 0x7FF }
func (b Bat) brpn() uint32  { return b.Lower >> 17 }

// blockMask returns the bits of the shifted effective/physical page
// number that this BAT treats as "don't care" within its block.
func (b Bat) blockMask() uint32 { return b.bl() }

func (b Bat) match(eaPage uint32) bool {
	if !b.valid() {
		return false
	}
	mask := b.blockMask()
	return (eaPage &^ mask) == (b.bepi() &^ mask)
}

func (b Bat) translate(ea uint32) uint32 {
	mask := b.blockMask()
	eaPage := ea >> 17
	physPage := (b.brpn() &^ mask) | (eaPage & mask)
	return (physPage << 17) | (ea & 0x1FFFF)
}

// SegmentRegister models one of the 16 segment registers. T marks a
// direct-store (I/O) segment, which this core treats as a translation
// fault per spec.md §4.4 step 2.
type SegmentRegister struct {
	VSID uint32
	T    bool
}

// TLBEntry is one entry of the fixed 64-entry direct-indexed TLB.
type TLBEntry struct {
	VSID  uint32
	VPN   uint32
	PPN   uint32
	Valid bool
}

const tlbSize = 64

// MMU holds the BAT, segment, and TLB register files.
type MMU struct {
	IBAT [4]Bat
	DBAT [4]Bat
	SR   [16]SegmentRegister
	TLB  [tlbSize]TLBEntry
}

// New returns a zeroed MMU (all BATs/TLB entries invalid, all segment
// registers non-direct-store with VSID 0).
func New() *MMU { return &MMU{} }

// Translate converts an effective address to a physical address.
// translate is false when the relevant MSR[IR]/MSR[DR] bit is clear
// (real mode), in which case ea passes through unchanged.
func (m *MMU) Translate(ea uint32, translate, isWrite, isInstruction bool) (pa uint32, fault Fault) {
	if !translate {
		return ea, NoFault
	}

	segIdx := ea >> 28
	sr := m.SR[segIdx]
	if sr.T {
		if isInstruction {
			return 0, FaultISI
		}
		return 0, FaultDSI
	}

	bats := m.DBAT[:]
	if isInstruction {
		bats = m.IBAT[:]
	}
	eaPage := ea >> 17
	for _, b := range bats {
		if b.match(eaPage) {
			return b.translate(ea), NoFault
		}
	}

	vpn := (ea >> 12) & 0xFFFF
	for _, e := range m.TLB {
		if e.Valid && e.VSID == sr.VSID && e.VPN == vpn {
			return (e.PPN << 12) | (ea & 0xFFF), NoFault
		}
	}

	if isInstruction {
		return 0, FaultISI
	}
	return 0, FaultDSI
}

// SetTLBEntry installs a TLB entry at a caller-chosen index (software
// TLB miss handlers address the table directly).
func (m *MMU) SetTLBEntry(index int, vpn, ppn, vsid uint32) {
	if index < 0 || index >= tlbSize {
		return
	}
	m.TLB[index] = TLBEntry{VSID: vsid, VPN: vpn, PPN: ppn, Valid: true}
}

// InvalidateAll clears every TLB entry (slbia-adjacent maintenance).
func (m *MMU) InvalidateAll() {
	for i := range m.TLB {
		m.TLB[i].Valid = false
	}
}

// TLBIE invalidates every valid TLB entry whose VPN matches ea's page
// index (the VSID is not compared), per the tlbie instruction
// (spec.md §4.6.10).
func (m *MMU) TLBIE(ea uint32) {
	vpn := (ea >> 12) & 0xFFFF
	for i := range m.TLB {
		if m.TLB[i].Valid && m.TLB[i].VPN == vpn {
			m.TLB[i].Valid = false
		}
	}
}

// Reservation is the single per-CPU cell backing lwarx/stwcx. (and the
// 64-bit ldarx/stdcx. pair), per spec.md §4.6.5 and §5.
type Reservation struct {
	active bool
	addr   uint32
}

// Set records a reservation at a physical address.
func (r *Reservation) Set(addr uint32) {
	r.active = true
	r.addr = addr
}

// Check reports whether a reservation is active for addr, and clears the
// reservation unconditionally: spec.md §4.6.5 says stwcx./stdcx. clear
// the reservation "regardless" of whether the store succeeds.
func (r *Reservation) Check(addr uint32) bool {
	ok := r.active && r.addr == addr
	r.active = false
	return ok
}

// Clear drops any active reservation, e.g. because a different CPU (or,
// in this single-core interpreter, a cache writeback) touched the
// reserved line.
func (r *Reservation) Clear() { r.active = false }
