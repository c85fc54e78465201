// Command xenoncore wires memmap+devices+bus+cache+mmu+decoder+ppc+elfload
// into a running PowerPC/Xenon core, the same construct-then-run order as
// the teacher's main.go (system bus, peripherals, I/O mapping, then
// execution) adapted from its interactive GUI wiring to a headless
// fetch-execute loop.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/aayes89/JPPC/internal/bus"
	"github.com/aayes89/JPPC/internal/cache"
	"github.com/aayes89/JPPC/internal/device"
	"github.com/aayes89/JPPC/internal/elfload"
	"github.com/aayes89/JPPC/internal/logging"
	"github.com/aayes89/JPPC/internal/memmap"
	"github.com/aayes89/JPPC/internal/mmu"
	"github.com/aayes89/JPPC/internal/monitor"
	"github.com/aayes89/JPPC/internal/ppc"
)

const (
	consoleBase  = 0x0FFF0000
	consoleSize  = 0x00000010
	fbLinearBase = 0x10000000
	fbTiledBase  = 0xC8000000
	fbTiledSize  = 0x00002000

	fbWidth  = 960
	fbHeight = 640
)

func main() {
	var (
		memSize    = flag.Uint("mem", 64<<20, "backing RAM size in bytes (a power of two wraps addresses; other sizes are bounds-checked)")
		maxCycles  = flag.Uint64("max-cycles", 0, "stop after this many retired instructions (0 = unbounded)")
		loadAddr   = flag.Uint("load-addr", 0, "physical load address for a raw (non-ELF) binary")
		writeBack  = flag.Bool("writeback", false, "use write-back instead of write-through cache policy")
		interactive = flag.Bool("monitor", false, "drop into the interactive stepping console instead of free-running")
		verbose    = flag.Bool("v", false, "log exceptions and loader diagnostics to stderr")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <image>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	image := flag.Arg(0)

	log := logging.Logger(logging.NopLogger{})
	if *verbose {
		log = logging.StdLogger()
	}

	mem := memmap.New(uint32(*memSize))
	b := bus.New(mem)

	console := device.NewConsole(consoleBase, consoleSize, os.Stdout)
	b.Map(consoleBase, consoleBase+consoleSize-1, console)

	fb := device.NewFramebuffer(fbWidth, fbHeight)
	b.Map(fbLinearBase, fbLinearBase+uint32(fbWidth*fbHeight*4)-1, fb)
	tiled := device.NewTiledAlias(fb, fbTiledSize)
	b.Map(fbTiledBase, fbTiledBase+fbTiledSize-1, tiled)

	mode := cache.WriteThrough
	if *writeBack {
		mode = cache.WriteBack
	}
	ch := cache.New(b, mode)
	m := mmu.New()

	loader := elfload.New(b, log)
	loaded, err := loader.LoadFile(image, uint32(*loadAddr))
	if err != nil {
		fmt.Fprintf(os.Stderr, "xenoncore: %v\n", err)
		os.Exit(1)
	}

	cpu := ppc.New(b, ch, m, ppc.WithLogger(log), ppc.WithPVR(0x710200)) // PVR for a 3.2GHz Xenon core
	cpu.Reset(loaded.Entry)

	if *interactive {
		mon := monitor.New(cpu, os.Stdout)
		if err := mon.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "xenoncore: monitor: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := cpu.Run(*maxCycles); err != nil {
		fmt.Fprintf(os.Stderr, "xenoncore: %v\n", err)
		os.Exit(1)
	}
}
