// Package monitor implements an interactive stepping/breakpoint console
// around internal/ppc.CPU: raw-mode stdin with a hand-rolled line buffer,
// the same toggle-raw-mode-then-buffer-your-own-lines shape as
// terminal_host.go/terminal_io.go's TerminalHost+TerminalMMIO pair, here
// driving CPU single-step/continue/breakpoint commands instead of a
// virtual terminal MMIO device.
package monitor

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/aayes89/JPPC/internal/ppc"
)

// Monitor is a line-oriented debugger REPL wrapping a *ppc.CPU, used by
// cmd/xenoncore's interactive mode.
type Monitor struct {
	cpu          *ppc.CPU
	out          io.Writer
	breakpoints  map[uint64]bool
	fd           int
	oldTermState *term.State
}

// New returns a Monitor stepping cpu, writing prompts and register dumps
// to out.
func New(cpu *ppc.CPU, out io.Writer) *Monitor {
	return &Monitor{cpu: cpu, out: out, breakpoints: make(map[uint64]bool)}
}

// Run puts stdin into raw mode and services commands until "quit" is
// entered or stdin closes. Raw mode is restored unconditionally on
// return, mirroring TerminalHost.Stop()'s restore-on-exit guarantee.
func (m *Monitor) Run() error {
	m.fd = int(os.Stdin.Fd())
	if term.IsTerminal(m.fd) {
		oldState, err := term.MakeRaw(m.fd)
		if err != nil {
			return fmt.Errorf("monitor: failed to set raw mode: %w", err)
		}
		m.oldTermState = oldState
		defer func() {
			_ = term.Restore(m.fd, m.oldTermState)
		}()
	}

	fmt.Fprint(m.out, "xenoncore monitor — step/continue/break/regs/quit\r\n")
	var line []byte
	buf := make([]byte, 1)
	for {
		fmt.Fprint(m.out, "(xc) ")
		line = line[:0]
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				return nil
			}
			if n == 0 {
				continue
			}
			b := buf[0]
			if b == '\r' {
				b = '\n'
			}
			if b == 0x7F { // DEL sent by raw-mode terminals for Backspace
				if len(line) > 0 {
					line = line[:len(line)-1]
					fmt.Fprint(m.out, "\b \b")
				}
				continue
			}
			fmt.Fprintf(m.out, "%c", b)
			if b == '\n' {
				fmt.Fprint(m.out, "\r")
				break
			}
			if b == '\x03' { // Ctrl-C
				fmt.Fprint(m.out, "\r\n")
				return nil
			}
			line = append(line, b)
		}
		cmd := strings.TrimSpace(string(line))
		if cmd == "" {
			continue
		}
		if stop := m.dispatch(cmd); stop {
			return nil
		}
	}
}

func (m *Monitor) dispatch(cmd string) (stop bool) {
	fields := strings.Fields(cmd)
	switch fields[0] {
	case "step", "s":
		n := 1
		if len(fields) > 1 {
			if v, err := strconv.Atoi(fields[1]); err == nil {
				n = v
			}
		}
		for i := 0; i < n; i++ {
			if err := m.cpu.Step(); err != nil {
				fmt.Fprintf(m.out, "step error: %v\r\n", err)
				break
			}
		}
		m.printRegs()
	case "continue", "c":
		m.runUntilBreakpoint()
	case "break", "b":
		if len(fields) < 2 {
			fmt.Fprint(m.out, "usage: break <hex addr>\r\n")
			break
		}
		addr, err := strconv.ParseUint(strings.TrimPrefix(fields[1], "0x"), 16, 64)
		if err != nil {
			fmt.Fprintf(m.out, "bad address: %v\r\n", err)
			break
		}
		m.breakpoints[addr] = true
		fmt.Fprintf(m.out, "breakpoint set at 0x%08X\r\n", addr)
	case "regs", "r":
		m.printRegs()
	case "quit", "q":
		return true
	default:
		fmt.Fprintf(m.out, "unknown command %q\r\n", fields[0])
	}
	return false
}

// runUntilBreakpoint single-steps until a breakpoint's PC is reached or
// Step returns an error (the same "fetch loop drives faults, commands
// never touch CPU internals directly" separation internal/ppc's executors
// keep between fault reporting and vector dispatch).
func (m *Monitor) runUntilBreakpoint() {
	for {
		if m.breakpoints[m.cpu.PC] {
			fmt.Fprintf(m.out, "breakpoint hit at 0x%08X\r\n", m.cpu.PC)
			return
		}
		if err := m.cpu.Step(); err != nil {
			fmt.Fprintf(m.out, "halted: %v\r\n", err)
			return
		}
	}
}

func (m *Monitor) printRegs() {
	s := m.cpu.State()
	fmt.Fprintf(m.out, "PC=0x%08X LR=0x%08X CTR=0x%08X CR=0x%08X XER=0x%08X MSR=0x%08X cycles=%d\r\n",
		s.PC, s.LR, s.CTR, s.CR, s.XER, s.MSR, s.Cycles)
	for i := 0; i < 32; i += 4 {
		fmt.Fprintf(m.out, "r%-2d=0x%016X r%-2d=0x%016X r%-2d=0x%016X r%-2d=0x%016X\r\n",
			i, s.GPR[i], i+1, s.GPR[i+1], i+2, s.GPR[i+2], i+3, s.GPR[i+3])
	}
}
