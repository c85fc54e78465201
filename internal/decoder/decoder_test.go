package decoder

import "testing"

func TestDecodeAddiNegativeOne(t *testing.T) {
	// addi r3,0,-1 -> 0x3860FFFF
	ins, err := Decode(0x3860FFFF)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ins.Op != 14 {
		t.Fatalf("Op = %d, want 14 (addi)", ins.Op)
	}
	if ins.RT != 3 {
		t.Fatalf("RT = %d, want 3", ins.RT)
	}
	if ins.RA != 0 {
		t.Fatalf("RA = %d, want 0", ins.RA)
	}
	if ins.SI != -1 {
		t.Fatalf("SI = %d, want -1", ins.SI)
	}
}

func TestDecodeAddis(t *testing.T) {
	// lis r4,0x1234 -> addis r4,0,0x1234 -> 0x3C801234
	ins, err := Decode(0x3C801234)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ins.Op != 15 {
		t.Fatalf("Op = %d, want 15 (addis)", ins.Op)
	}
	if ins.RT != 4 || ins.RA != 0 {
		t.Fatalf("RT/RA = %d/%d, want 4/0", ins.RT, ins.RA)
	}
	if ins.UI != 0x1234 {
		t.Fatalf("UI = 0x%X, want 0x1234", ins.UI)
	}
}

func TestDecodeCmpwi(t *testing.T) {
	// cmpwi cr0,r3,0 -> 0x2C030000
	ins, err := Decode(0x2C030000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ins.Op != 11 {
		t.Fatalf("Op = %d, want 11 (cmpi)", ins.Op)
	}
	if ins.BF != 0 {
		t.Fatalf("BF = %d, want 0", ins.BF)
	}
	if ins.RA != 3 {
		t.Fatalf("RA = %d, want 3", ins.RA)
	}
	if ins.SI != 0 {
		t.Fatalf("SI = %d, want 0", ins.SI)
	}
}

func TestDecodeBranchLinkPlus8(t *testing.T) {
	// bl +8 -> opcode 18, LI=8, AA=0, LK=1 -> 0x48000009
	ins, err := Decode(0x48000009)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ins.Format != FormatI {
		t.Fatalf("Format = %v, want FormatI", ins.Format)
	}
	if ins.LI != 8 {
		t.Fatalf("LI = %d, want 8", ins.LI)
	}
	if !ins.LK {
		t.Fatal("LK should be set")
	}
	if ins.AA {
		t.Fatal("AA should be clear")
	}
}

func TestDecodeLwz(t *testing.T) {
	// lwz r5,4(r3) -> 0x80A30004
	ins, err := Decode(0x80A30004)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ins.Op != 32 {
		t.Fatalf("Op = %d, want 32 (lwz)", ins.Op)
	}
	if ins.RT != 5 || ins.RA != 3 {
		t.Fatalf("RT/RA = %d/%d, want 5/3", ins.RT, ins.RA)
	}
	if ins.SI != 4 {
		t.Fatalf("SI = %d, want 4", ins.SI)
	}
}

func TestDecodeStwcxDot(t *testing.T) {
	// stwcx. r5,r0,r3 -> opcode 31, XO=150, Rc=1
	// 31<<26 | RS(5)<<21 | RA(0)<<16 | RB(3)<<11 | XO(150)<<1 | Rc(1)
	word := uint32(31)<<26 | uint32(5)<<21 | uint32(0)<<16 | uint32(3)<<11 | uint32(150)<<1 | 1
	ins, err := Decode(word)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ins.Op != 31 {
		t.Fatalf("Op = %d, want 31", ins.Op)
	}
	if ins.XO != 150 {
		t.Fatalf("XO = %d, want 150 (stwcx.)", ins.XO)
	}
	if !ins.Rc {
		t.Fatal("Rc should be set")
	}
	if ins.RS != 5 || ins.RA != 0 || ins.RB != 3 {
		t.Fatalf("RS/RA/RB = %d/%d/%d, want 5/0/3", ins.RS, ins.RA, ins.RB)
	}
}

func TestDecodeVaddubm(t *testing.T) {
	// vaddubm v3,v4,v5 -> opcode 4, VD=3,VA=4,VB=5, XO=0
	word := uint32(4)<<26 | uint32(3)<<21 | uint32(4)<<16 | uint32(5)<<11
	ins, err := Decode(word)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ins.Op != 4 {
		t.Fatalf("Op = %d, want 4", ins.Op)
	}
	if ins.RT != 3 || ins.RA != 4 || ins.RB != 5 {
		t.Fatalf("VD/VA/VB = %d/%d/%d, want 3/4/5", ins.RT, ins.RA, ins.RB)
	}
	if ins.XO != 0 {
		t.Fatalf("XO = %d, want 0 (vaddubm)", ins.XO)
	}
}

func TestDecodePsAdd(t *testing.T) {
	// ps_add fp1,fp2,fp3 -> opcode 4, FRT=1,FRA=2,FRB=3, XO=21 (A-form)
	word := uint32(4)<<26 | uint32(1)<<21 | uint32(2)<<16 | uint32(3)<<11 | uint32(21)<<1
	ins, err := Decode(word)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ins.Op != 4 {
		t.Fatalf("Op = %d, want 4", ins.Op)
	}
	if ins.RT != 1 || ins.RA != 2 || ins.RB != 3 {
		t.Fatalf("FRT/FRA/FRB = %d/%d/%d, want 1/2/3", ins.RT, ins.RA, ins.RB)
	}
}

func TestDecodeReservedOpcode56Errors(t *testing.T) {
	word := uint32(56) << 26
	_, err := Decode(word)
	if err == nil {
		t.Fatal("expected an UnsupportedOpcodeError for primary opcode 56")
	}
	var uerr *UnsupportedOpcodeError
	if !asUnsupported(err, &uerr) {
		t.Fatalf("expected *UnsupportedOpcodeError, got %T", err)
	}
	if uerr.Op != 56 {
		t.Fatalf("Op = %d, want 56", uerr.Op)
	}
}

func TestDecodeReservedOpcode57Errors(t *testing.T) {
	word := uint32(57) << 26
	if _, err := Decode(word); err == nil {
		t.Fatal("expected an UnsupportedOpcodeError for primary opcode 57")
	}
}

func TestDecodeXenonReinterpretedOpcode60DoesNotError(t *testing.T) {
	word := uint32(60) << 26
	if _, err := Decode(word); err != nil {
		t.Fatalf("opcode 60 is reinterpreted as lfdp, should not error: %v", err)
	}
}

func TestDecodeAndiDotZeroExtendsImmediate(t *testing.T) {
	// andi. r3,r4,0x8000 -> opcode 28
	word := uint32(28)<<26 | uint32(4)<<21 | uint32(3)<<16 | uint32(0x8000)
	ins, err := Decode(word)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ins.UI != 0x8000 {
		t.Fatalf("UI = 0x%X, want 0x8000 (zero-extended, not sign-extended)", ins.UI)
	}
}

func TestDecodeRlwinm(t *testing.T) {
	// rlwinm r3,r4,2,0,29 -> opcode 21 (M-form)
	word := uint32(21)<<26 | uint32(4)<<21 | uint32(3)<<16 | uint32(2)<<11 | uint32(0)<<6 | uint32(29)<<1
	ins, err := Decode(word)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ins.Format != FormatM {
		t.Fatalf("Format = %v, want FormatM", ins.Format)
	}
	if ins.SH != 2 || ins.MB != 0 || ins.ME != 29 {
		t.Fatalf("SH/MB/ME = %d/%d/%d, want 2/0/29", ins.SH, ins.MB, ins.ME)
	}
}

func asUnsupported(err error, target **UnsupportedOpcodeError) bool {
	if u, ok := err.(*UnsupportedOpcodeError); ok {
		*target = u
		return true
	}
	return false
}
