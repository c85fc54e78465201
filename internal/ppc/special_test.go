package ppc

import "testing"

func TestSlbiaInvalidatesTLB(t *testing.T) {
	c := newTestCPU(t)
	c.MMU.TLB[0].Valid = true
	c.MMU.TLB[5].Valid = true
	// slbia: op=31, XO=498
	word := uint32(31)<<26 | uint32(498)<<1
	storeWord(c, 0, word)
	c.PC = 0
	if err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if c.MMU.TLB[0].Valid || c.MMU.TLB[5].Valid {
		t.Fatal("slbia should have invalidated every TLB entry")
	}
}
