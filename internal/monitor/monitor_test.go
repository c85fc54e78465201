package monitor

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aayes89/JPPC/internal/bus"
	"github.com/aayes89/JPPC/internal/cache"
	"github.com/aayes89/JPPC/internal/memmap"
	"github.com/aayes89/JPPC/internal/mmu"
	"github.com/aayes89/JPPC/internal/ppc"
)

func newTestCPU(t *testing.T) *ppc.CPU {
	t.Helper()
	mem := memmap.New(1 << 16)
	b := bus.New(mem)
	ch := cache.New(b, cache.WriteThrough)
	m := mmu.New()
	return ppc.New(b, ch, m)
}

func TestDispatchStepAdvancesPC(t *testing.T) {
	c := newTestCPU(t)
	c.Bus.WriteWord(0, 0x60000000) // ori r0,r0,0 (nop)
	c.PC = 0
	var out bytes.Buffer
	mon := New(c, &out)

	if stop := mon.dispatch("step"); stop {
		t.Fatal("step should not stop the monitor")
	}
	if c.PC != 4 {
		t.Fatalf("PC = 0x%X, want 4", c.PC)
	}
	if !strings.Contains(out.String(), "PC=0x00000004") {
		t.Fatalf("expected register dump to report new PC, got %q", out.String())
	}
}

func TestDispatchBreakThenContinueStopsAtBreakpoint(t *testing.T) {
	c := newTestCPU(t)
	c.Bus.WriteWord(0, 0x60000000)
	c.Bus.WriteWord(4, 0x60000000)
	c.Bus.WriteWord(8, 0x60000000)
	c.PC = 0
	var out bytes.Buffer
	mon := New(c, &out)

	mon.dispatch("break 0x8")
	mon.dispatch("continue")
	if c.PC != 8 {
		t.Fatalf("PC = 0x%X, want 8 (stopped at breakpoint)", c.PC)
	}
	if !strings.Contains(out.String(), "breakpoint hit at 0x00000008") {
		t.Fatalf("expected breakpoint-hit message, got %q", out.String())
	}
}

func TestDispatchQuitSignalsStop(t *testing.T) {
	c := newTestCPU(t)
	var out bytes.Buffer
	mon := New(c, &out)
	if stop := mon.dispatch("quit"); !stop {
		t.Fatal("quit should signal the run loop to stop")
	}
}

func TestDispatchUnknownCommandDoesNotStop(t *testing.T) {
	c := newTestCPU(t)
	var out bytes.Buffer
	mon := New(c, &out)
	if stop := mon.dispatch("frobnicate"); stop {
		t.Fatal("an unknown command should not stop the monitor")
	}
	if !strings.Contains(out.String(), `unknown command "frobnicate"`) {
		t.Fatalf("expected an unknown-command message, got %q", out.String())
	}
}
