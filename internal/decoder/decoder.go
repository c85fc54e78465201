// Package decoder classifies a 32-bit big-endian PowerPC instruction
// word into its primary opcode, extended opcode, operand fields, and
// instruction format, per spec.md §4.5.
//
// Grounded on cpu_ie32.go's constant-table-plus-field-extraction style
// (named bit masks, a single decode entry point) generalized from the
// teacher's fixed 8-byte instruction layout to PowerPC's dense,
// format-dependent 32-bit encoding, and cross-checked against the
// general "shift-and-mask into a field struct" idiom shared by the
// pack's other RISC decoders (e.g. insts-decoder.go for ARM64 in
// other_examples, SchawnnDev's MIPS COP0 field layout).
package decoder

import "fmt"

// Format identifies which of the PowerPC instruction encodings (I, B, D,
// DS, X, XO, XL, XFX, M, MD, MDS, A, SC) produced this Instruction.
type Format int

const (
	FormatUnknown Format = iota
	FormatI
	FormatB
	FormatD
	FormatDS
	FormatX
	FormatXO
	FormatXL
	FormatXFX
	FormatM
	FormatMD
	FormatMDS
	FormatA
	FormatSC
)

// UnsupportedOpcodeError is returned by Decode when the primary opcode
// (and, where relevant, extended opcode) is reserved or not implemented
// by this core.
type UnsupportedOpcodeError struct {
	Op, XO uint32
}

func (e *UnsupportedOpcodeError) Error() string {
	return fmt.Sprintf("decoder: unsupported opcode %d/%d", e.Op, e.XO)
}

// Instruction is the decoded form of one 32-bit instruction word.
type Instruction struct {
	Word   uint32
	Op     uint32 // primary opcode, bits [0:5]
	XO     uint32 // extended opcode, format-dependent width/position
	Format Format

	RT, RS   uint32 // bits [6:10]; RT (target) and RS (source) alias the same field
	RA, RB   uint32 // bits [11:15], [16:20]
	RC       uint32 // bits [21:25] (A-form third source register)
	BO, BI   uint32 // branch condition fields
	BD       int32  // sign-extended, x4, branch displacement (B-form)
	LI       int32  // sign-extended, x4, branch target (I-form)
	AA, LK   bool
	Rc       bool
	OE       bool
	SH, MB   uint32
	ME       uint32
	SI       int32  // sign-extended 16-bit immediate
	UI       uint32 // zero-extended 16-bit immediate
	Spr      uint32 // decoded mfspr/mtspr SPR number
	Fxm, Crm uint32
	TO       uint32
	L        bool
	BF, BFA  uint32 // compare/FP crfields
}

func signExtend16(v uint32) int32 { return int32(int16(v)) }

func signExtend14x4(v uint32) int32 {
	// 14-bit field with an implicit two low zero bits, sign-extended.
	shifted := v << 2
	if shifted&0x8000 != 0 {
		return int32(shifted) | ^0xFFFF
	}
	return int32(shifted)
}

func signExtend24x4(v uint32) int32 {
	shifted := v << 2
	if shifted&0x02000000 != 0 {
		return int32(shifted) | ^0x03FFFFFF
	}
	return int32(shifted)
}

func field(word uint32, hiIBM, loIBM int) uint32 {
	// IBM bit numbering: bit 0 is the MSB of the 32-bit word. A field
	// spanning IBM bits [hi, lo] (hi <= lo) is (width = lo-hi+1 bits).
	width := loIBM - hiIBM + 1
	shift := 31 - loIBM
	mask := uint32(1)<<uint(width) - 1
	return (word >> uint(shift)) & mask
}

// Decode classifies word into an Instruction. It returns
// UnsupportedOpcodeError for primary opcodes this core never implements
// (56, 57, 60, 61 unless reinterpreted, per spec.md §4.5); it does not
// itself validate that every extended-opcode combination for a
// supported primary opcode is implemented — unimplemented extended
// opcodes are surfaced by the executor dispatch as Program exceptions
// (spec.md §9, "Exception control flow").
func Decode(word uint32) (Instruction, error) {
	ins := Instruction{Word: word}
	ins.Op = field(word, 0, 5)
	ins.RT = field(word, 6, 10)
	ins.RS = ins.RT
	ins.RA = field(word, 11, 15)
	ins.RB = field(word, 16, 20)
	ins.RC = field(word, 21, 25)
	ins.Rc = word&1 != 0

	switch ins.Op {
	case 56, 57:
		return Instruction{}, &UnsupportedOpcodeError{Op: ins.Op}
	case 60, 61:
		// Reinterpreted as the Xenon paired-double forms (60: lfdp/lfdpx,
		// 61: stfdp/stfdpx; spec.md §4.5); decoded below as DS-family forms.
	}

	switch {
	case ins.Op == 18:
		ins.Format = FormatI
		ins.LI = signExtend24x4(field(word, 6, 29))
		ins.AA = field(word, 30, 30) != 0
		ins.LK = word&1 != 0
	case ins.Op == 16:
		ins.Format = FormatB
		ins.BO = field(word, 6, 10)
		ins.BI = field(word, 11, 15)
		ins.BD = signExtend14x4(field(word, 16, 29))
		ins.AA = field(word, 30, 30) != 0
		ins.LK = word&1 != 0
	case ins.Op == 17:
		ins.Format = FormatSC
	case ins.Op == 19:
		ins.Format = FormatXL
		ins.XO = field(word, 21, 30)
		ins.BO = field(word, 6, 10)
		ins.BI = field(word, 11, 15)
		ins.BF = field(word, 6, 8)
		ins.BFA = field(word, 11, 13)
	case ins.Op == 31:
		ins.XO = field(word, 21, 30)
		ins.Format = FormatX
		ins.TO = ins.RT
		ins.Spr = (field(word, 16, 20) << 5) | field(word, 11, 15)
		ins.Fxm = field(word, 12, 19)
		ins.BF = field(word, 6, 8)
		if isXOForm(ins.XO) {
			ins.Format = FormatXO
			ins.XO = field(word, 22, 30)
			ins.OE = field(word, 21, 21) != 0
		}
	case ins.Op == 30:
		ins.Format = FormatMD
		ins.SH = field(word, 16, 20) | (field(word, 30, 30) << 5)
		ins.MB = field(word, 21, 25) | (field(word, 26, 26) << 5)
		ins.XO = field(word, 27, 29)
		if ins.XO <= 3 {
			ins.Format = FormatMD
		} else {
			ins.Format = FormatMDS
			ins.XO = field(word, 27, 30)
		}
	case ins.Op >= 20 && ins.Op <= 23:
		ins.Format = FormatM
		ins.SH = field(word, 16, 20)
		ins.MB = field(word, 21, 25)
		ins.ME = field(word, 26, 30)
	case ins.Op == 59 || ins.Op == 63:
		ins.XO = field(word, 26, 30)
		ins.Format = FormatA
		if isXFormFP(word) {
			ins.Format = FormatX
			ins.XO = field(word, 21, 30)
		}
		ins.BF = field(word, 6, 8)
	case ins.Op == 4:
		ins.Format = FormatX
		ins.XO = field(word, 21, 30)
	case ins.Op == 34, ins.Op == 35, ins.Op == 36, ins.Op == 37,
		ins.Op == 32, ins.Op == 33, ins.Op == 40, ins.Op == 41,
		ins.Op == 42, ins.Op == 43, ins.Op == 44, ins.Op == 45,
		ins.Op == 46, ins.Op == 47, ins.Op == 48, ins.Op == 49,
		ins.Op == 50, ins.Op == 51, ins.Op == 52, ins.Op == 53,
		ins.Op == 54, ins.Op == 55:
		ins.Format = FormatD
		ins.SI = signExtend16(field(word, 16, 31))
		ins.UI = field(word, 16, 31)
	case ins.Op == 58, ins.Op == 62:
		ins.Format = FormatDS
		ins.XO = field(word, 30, 31)
		ins.SI = signExtend16(field(word, 16, 31)) &^ 3
	case ins.Op == 60, ins.Op == 61:
		// Xenon paired-double forms (lfdp/lfdpx, stfdp/stfdpx): XO bit
		// distinguishes immediate (0) from indexed (1) addressing, same
		// split ld/ldu uses.
		ins.Format = FormatDS
		ins.XO = field(word, 30, 31)
		ins.SI = signExtend16(field(word, 16, 31)) &^ 3
	default:
		ins.Format = FormatD
		ins.SI = signExtend16(field(word, 16, 31))
		ins.UI = field(word, 16, 31)
	}

	switch ins.Op {
	case 10, 11:
		// cmpli / cmpi: BF field replaces RT.
		ins.BF = field(word, 6, 8)
		ins.L = field(word, 10, 10) != 0
	case 28, 29, 24, 25, 26, 27:
		// andi./andis./ori/oris/xori/xoris: RA/RT already correct,
		// UI already zero-extended above.
	}

	return ins, nil
}

// xoFormBases lists the 9-bit extended opcode (bits [22:30], i.e. the
// 10-bit field at [21:30] with the OE bit at 21 masked out) of every
// XO-form arithmetic instruction this core implements: add, addc,
// adde, addme, addze, subf, subfc, subfe, subfme, subfze, neg, mulhw,
// mulhwu, mullw, divw, divwu.
var xoFormBases = map[uint32]bool{
	266: true, // add
	10:  true, // addc
	138: true, // adde
	234: true, // addme
	202: true, // addze
	40:  true, // subf
	8:   true, // subfc
	136: true, // subfe
	232: true, // subfme
	200: true, // subfze
	104: true, // neg
	75:  true, // mulhw
	11:  true, // mulhwu
	235: true, // mullw
	491: true, // divw
	459: true, // divwu
}

// isXOForm reports whether a primary-31 extended opcode (decoded as a
// full 10-bit X-form field, OE bit included at position 21) is one of
// the arithmetic instructions actually encoded in XO-form: a 9-bit
// extended opcode at bits [22:30] plus a separate OE bit at [21], as
// opposed to plain X-form's fixed 10-bit extended opcode at [21:30].
func isXOForm(xo10 uint32) bool {
	return xoFormBases[xo10&^0x200]
}

// isXFormFP detects the FP extended opcodes under primary 59/63 that are
// X-form (fixed 10-bit XO, no FRC operand: compares, conversions, class
// and status-register instructions) rather than A-form (fadd/fmul/fmadd
// and kin, which carry an FRC operand in bits [16:20]).
func isXFormFP(word uint32) bool {
	xo := field(word, 21, 30)
	switch xo {
	case 0, // fcmpu
		32,  // fcmpo
		38,  // mtfsb1
		40,  // fneg
		64,  // mcrfs
		70,  // mtfsb0
		72,  // fmr
		134, // mtfsfi
		136, // fnabs
		264, // fabs
		583, // mffs
		711, // mtfsf
		814, // fctid
		815, // fctidz
		846, // fcfid
		14, 15: // fctiw, fctiwz
		return true
	}
	return false
}
