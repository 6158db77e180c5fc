package gnes

import (
	"gnes/curated"
	"gnes/nes/apu"
	"gnes/nes/common"
	"gnes/nes/ppu"
)

// ppuBusAdapter exposes the eight ppu register ports across the cpu window
// 0x2000..0x4000, mirrored every 8 bytes. Offsets are window local; the
// memory controller has already subtracted the window base.
//
//	busInt
type ppuBusAdapter struct {
	ppu *ppu.Ppu
}

func (a *ppuBusAdapter) Read8(offset uint16) (uint8, error) {
	return a.ppu.ReadReg(offset%8, 0x2000+offset)
}

func (a *ppuBusAdapter) Write8(offset uint16, val uint8) error {
	return a.ppu.WriteReg(offset%8, val)
}

// controllers implements the two joypad shift registers behind $4016/$4017.
// The host pokes the current pad 1 key state in; a strobe write with the
// low bit clear snapshots it, LSB first in the order A, B, Select, Start,
// Up, Down, Left, Right.
type controllers struct {
	buttons [8]bool

	pads [2]uint8
}

func (c *controllers) init() {
	c.buttons = [8]bool{}
	c.pads = [2]uint8{}
}

func (c *controllers) poke(button uint8, pressed bool) {
	c.buttons[button] = pressed
}

func (c *controllers) strobe(val uint8) {
	if val&1 != 0 {
		return
	}

	var snap uint8
	for b := uint(0); b < 8; b++ {
		if c.buttons[b] {
			snap |= 1 << b
		}
	}
	c.pads[0] = snap

	// no input source is wired to the second pad in this core
	c.pads[1] = 0
}

func (c *controllers) readButton(pad int) uint8 {
	val := c.pads[pad] & 1
	c.pads[pad] >>= 1
	return val
}

// oamDma services writes to $4014: an atomic copy of one 256 byte page from
// cpu memory into the ppu oam through 256 OAMDATA writes.
type oamDma struct {
	cpuBus *common.MemoryController
	ppu    *ppu.Ppu
}

func (d *oamDma) transfer(page uint8) error {
	addr := uint16(page) << 8
	for i := uint16(0); i < 256; i++ {
		val, err := d.cpuBus.Read8(addr + i)
		if err != nil {
			return err
		}
		if err := d.ppu.WriteReg(ppu.OAMDATA, val); err != nil {
			return err
		}
	}
	return nil
}

// apuBusAdapter covers the cpu window 0x4000..0x4018: the apu register
// latch, the oam dma trigger and the two joypad ports. Anything else in the
// window fails loudly.
//
//	busInt
type apuBusAdapter struct {
	apu  *apu.Apu
	ctrl *controllers
	dma  *oamDma
}

func (a *apuBusAdapter) Read8(offset uint16) (uint8, error) {
	switch offset {
	case 0x16:
		return a.ctrl.readButton(0), nil
	case 0x17:
		return a.ctrl.readButton(1), nil
	}
	return 0, curated.Errorf(curated.UnimplementedRegister, "read", 0x4000+offset)
}

func (a *apuBusAdapter) Write8(offset uint16, val uint8) error {
	switch offset {
	case 0x11:
		a.apu.SetDmcValue(val)
	case 0x14:
		return a.dma.transfer(val)
	case 0x15:
		a.apu.SetStatus(val)
	case 0x16:
		a.ctrl.strobe(val)
	case 0x17:
		a.apu.SetFrameCounterOptions(val)
	default:
		return curated.Errorf(curated.UnimplementedRegister, "write", 0x4000+offset)
	}
	return nil
}
