package gnes

import (
	"sync/atomic"

	"gnes/nes/apu"
	"gnes/nes/common"
	"gnes/nes/cpu"
	"gnes/nes/ppu"
	"gnes/nes/ui"
)

// the cpu and ppu are cooperative: this many instructions, then one frame's
// worth of ppu work (~29780 ppu-ish cycles per frame, ~3 per instruction)
const cpuStepsPerFrame = 29780 / 3

type nes struct {
	cart Cartridge

	cpuBus common.MemoryController
	ppuBus common.MemoryController
	ints   common.IntLine

	ram    common.MirroredRam
	vRam   common.Ram
	palRam common.MirroredRam

	// test harness backing for the rom windows when no cartridge is loaded
	testPrg common.Ram
	testChr common.Ram

	cpu  cpu.Cpu
	ppu  ppu.Ppu
	apu  apu.Apu
	ctrl controllers
	dma  oamDma

	screen ui.Screen

	stopRq  int32
	resetRq int32

	// options
	verbose  bool
	cartPath string
	headless bool
}

func NewNES(options ...func(*nes) error) (*nes, error) {
	n := &nes{}
	if err := n.setOptions(options...); err != nil {
		return nil, err
	}
	if err := n.init(); err != nil {
		return nil, err
	}
	return n, nil
}

func (n *nes) init() error {
	n.ints.Init()
	n.ctrl.init()
	n.apu.Init()

	if n.cartPath != "" {
		if err := n.cart.Init(n.cartPath); err != nil {
			return err
		}
	}

	// PPU address space
	// 0x0000-0x2000  pattern tables (chr rom)
	// 0x2000-0x3000  nametables
	// 0x3F00-0x4000  palette ram, 32 bytes mirrored
	n.ppuBus.Init()
	n.vRam.Init(0x1000)
	n.palRam.Init(0x20)
	if n.cartPath != "" {
		n.ppuBus.AddMemory(&n.cart.chr, 0x0000, 0x2000)
	} else {
		n.testChr.Init(0x2000)
		n.ppuBus.AddMemory(&n.testChr, 0x0000, 0x2000)
	}
	n.ppuBus.AddMemory(&n.vRam, 0x2000, 0x3000)
	n.ppuBus.AddMemory(&n.palRam, 0x3F00, 0x4000)

	n.ppu.Init(&n.ppuBus, &n.ints)

	// CPU address space
	// 0x0000-0x2000  2KiB internal ram, mirrored
	// 0x2000-0x4000  ppu registers, mirrored every 8 bytes
	// 0x4000-0x4018  apu and io registers
	// 0x8000-0x10000 prg rom (NROM: mirrored by repetition)
	n.cpuBus.Init()
	n.ram.Init(0x800)
	n.dma = oamDma{cpuBus: &n.cpuBus, ppu: &n.ppu}
	n.cpuBus.AddMemory(&n.ram, 0x0000, 0x2000)
	n.cpuBus.AddMemory(&ppuBusAdapter{ppu: &n.ppu}, 0x2000, 0x4000)
	n.cpuBus.AddMemory(&apuBusAdapter{apu: &n.apu, ctrl: &n.ctrl, dma: &n.dma}, 0x4000, 0x4018)
	if n.cartPath != "" {
		n.cpuBus.AddMemory(&n.cart.prgRom, 0x8000, 0x10000)
	} else {
		n.testPrg.Init(0x8000)
		n.cpuBus.AddMemory(&n.testPrg, 0x8000, 0x10000)
	}

	n.cpu.Init(&n.cpuBus, &n.ints, n.verbose)
	n.cpu.Reset()

	return nil
}

// Poke updates the pad 1 key state; the strobe write snapshots it.
func (n *nes) Poke(controllerId uint8, button uint8, pressed bool) {
	if controllerId == 0 {
		n.ctrl.poke(button, pressed)
	}
}

// Request delivers an asynchronous host request.
func (n *nes) Request(request common.NesOpRequest) {
	switch request {
	case common.StopRequest:
		atomic.StoreInt32(&n.stopRq, 1)
	case common.ResetRequest:
		atomic.StoreInt32(&n.resetRq, 1)
	}
}

func (n *nes) stopped() bool {
	return atomic.LoadInt32(&n.stopRq) != 0
}

// Run drives the machine until the host closes the window or a fault
// bubbles out of the cpu or the ppu.
func (n *nes) Run() error {
	if n.headless {
		return n.loop()
	}

	n.screen.Init(n, &n.ppu.Fb)
	n.screen.Run()
	return n.loop()
}

func (n *nes) loop() error {
	for !n.stopped() {
		if atomic.CompareAndSwapInt32(&n.resetRq, 1, 0) {
			n.reset()
		}

		for i := 0; i < cpuStepsPerFrame; i++ {
			if err := n.cpu.Step(); err != nil {
				return err
			}
		}

		if err := n.ppu.Frame(); err != nil {
			return err
		}
	}
	return nil
}

func (n *nes) reset() {
	n.ppu.Reset()
	n.apu.Reset()
	n.ctrl.init()
	n.cpu.Reset()
}
