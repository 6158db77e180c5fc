package ppu

import (
	"gnes/curated"
)

const (
	PPUCTRL = iota
	PPUMASK
	PPUSTATUS
	OAMADDR
	OAMDATA
	PPUSCROLL
	PPUADDR
	PPUDATA
)

// which of the eight ports answer reads; the rest fault
var readablePorts = map[uint16]bool{
	PPUSTATUS: true,
	OAMDATA:   true,
}

/* PPUCTRL
7  bit  0
---- ----
VPHB SINN
|||| ||||
|||| ||++- Base nametable address
|||| ||    (0 = $2000; 1 = $2400; 2 = $2800; 3 = $2C00)
|||| |+--- VRAM address increment per CPU read/write of PPUDATA
|||| |     (0: add 1, going across; 1: add 32, going down)
|||| +---- Sprite pattern table address for 8x8 sprites
|||+------ Background pattern table address (0: $0000; 1: $1000)
||+------- Sprite size (0: 8x8 pixels; 1: 8x16 pixels)
|+-------- PPU master/slave select
+--------- Generate an NMI at the start of vertical blanking
*/
func (p *Ppu) getBaseNameTable() uint16 {
	return 0x2000 + uint16(p.regs[PPUCTRL].Val&0x3)*0x400
}

func (p *Ppu) getVRAMAddrInc() uint16 {
	if p.regs[PPUCTRL].Val&4 == 0 {
		return 1
	}
	return 32
}

func (p *Ppu) getSpritePattern() uint16 {
	return (uint16(p.regs[PPUCTRL].Val&8) >> 3) * 0x1000
}

func (p *Ppu) getBackgroundTable() uint16 {
	return (uint16(p.regs[PPUCTRL].Val&16) >> 4) * 0x1000
}

// sprite size in pixels, x and y
func (p *Ppu) getSpriteSize() (uint8, uint8) {
	return 8, (((p.regs[PPUCTRL].Val >> 5) & 0x1) * 8) + 8
}

func (p *Ppu) getNMIVertical() bool {
	return (p.regs[PPUCTRL].Val & 128) != 0
}

/* PPUMASK
7  bit  0
---- ----
BGRs bMmG
|||| ||||
|||| |||+- Greyscale
|||| ||+-- Show background in leftmost 8 pixels
|||| |+--- Show sprites in leftmost 8 pixels
|||| +---- Show background
|||+------ Show sprites
||+------- Emphasize red
|+-------- Emphasize green
+--------- Emphasize blue
*/
func (p *Ppu) getGreyScale() bool {
	return p.regs[PPUMASK].Val&1 != 0
}

func (p *Ppu) showBackgroundLeft() bool {
	return p.regs[PPUMASK].Val&2 != 0
}

func (p *Ppu) showSpritesLeft() bool {
	return p.regs[PPUMASK].Val&4 != 0
}

func (p *Ppu) showBackground() bool {
	return p.regs[PPUMASK].Val&8 != 0
}

func (p *Ppu) showSprites() bool {
	return p.regs[PPUMASK].Val&16 != 0
}

// 0 B G R (bit 0 red, bit 1 green, bit 2 blue)
func (p *Ppu) showEmphasize() uint8 {
	return (p.regs[PPUMASK].Val & 0xE0) >> 5
}

func (p *Ppu) writeControl() {
	// nothing beyond the latch; everything is decoded through the getters
}

/* PPUSTATUS
7  bit  0
---- ----
VSO. ....
|+-------- Sprite 0 hit
||+------- Sprite overflow
+--------- Vertical blank has started; cleared after reading $2002
*/
const (
	statusSpriteOverflow = 1 << 5
	statusSprite0Hit     = 1 << 6
	statusVBlank         = 1 << 7
)

func (p *Ppu) readPPUStatus() uint8 {
	var val uint8
	if p.nmiPending {
		val |= statusVBlank
	}
	if p.sprite0Hit {
		val |= statusSprite0Hit
	}
	if p.spriteOverflow {
		val |= statusSpriteOverflow
	}

	// reading the status register clears both the write latch and the
	// pending vblank
	p.wToggle.Val = 0
	p.nmiPending = false

	return val
}

// two write state machine, gated by w:
// first write latches the high 6 bits of t, the second the low byte and
// copies t into v
func (p *Ppu) writePPUAddr() {
	val := p.regs[PPUADDR].Val
	if p.wToggle.Val == 0 {
		p.tRAM.Write((p.tRAM.Read() & 0x00FF) | (uint16(val&0x3F) << 8))
		p.wToggle.Val = 1
	} else {
		p.tRAM.Write((p.tRAM.Read() & 0xFF00) | uint16(val))
		p.vRAM.Write(p.tRAM.Read())
		p.wToggle.Val = 0
	}
}

// first write is the x scroll, the second the y scroll
func (p *Ppu) writePPUScroll() {
	val := p.regs[PPUSCROLL].Val
	if p.wToggle.Val == 0 {
		p.xScroll = val
		p.wToggle.Val = 1
	} else {
		p.yScroll = val
		p.wToggle.Val = 0
	}
}

func (p *Ppu) writePPUData() {
	if err := p.busInt.Write8(p.vRAM.Read(), p.regs[PPUDATA].Val); err != nil {
		p.err = err
		return
	}
	p.vRAM.Write(p.vRAM.Read() + p.getVRAMAddrInc())
}

func (p *Ppu) writeOAMAddr() {
	p.oamAddr.Val = p.regs[OAMADDR].Val
}

// the oam cursor selects entry oamAddr/4 and field oamAddr%4, post
// incrementing modulo 256
func (p *Ppu) writeOAMData() {
	val := p.regs[OAMDATA].Val
	entry := &p.oam[p.oamAddr.Val/4]
	switch p.oamAddr.Val % 4 {
	case 0:
		entry.Y = val
	case 1:
		entry.Tile = val
	case 2:
		entry.Attribute = val
	case 3:
		entry.X = val
	}
	p.oamAddr.Val++
}

func (p *Ppu) readOAMData() uint8 {
	entry := p.oam[p.oamAddr.Val/4]
	switch p.oamAddr.Val % 4 {
	case 0:
		return entry.Y
	case 1:
		return entry.Tile
	case 2:
		return entry.Attribute
	}
	return entry.X
}

func (p *Ppu) initRegisters() {
	// external cpu mapped registers
	p.regs[PPUCTRL].Initx("PPUCTRL", 0, p.writeControl, nil)
	p.regs[PPUMASK].Initx("PPUMASK", 0, nil, nil)
	p.regs[PPUSTATUS].Initx("PPUSTATUS", 0, nil, p.readPPUStatus)
	p.regs[OAMADDR].Initx("OAMADDR", 0, p.writeOAMAddr, nil)
	p.regs[OAMDATA].Initx("OAMDATA", 0, p.writeOAMData, p.readOAMData)
	p.regs[PPUSCROLL].Initx("PPUSCROLL", 0, p.writePPUScroll, nil)
	p.regs[PPUADDR].Initx("PPUADDR", 0, p.writePPUAddr, nil)
	p.regs[PPUDATA].Initx("PPUDATA", 0, p.writePPUData, nil)

	// internal registers
	p.vRAM.Init("v", 0)
	p.tRAM.Init("t", 0)
	p.xFine.Init("x", 0)
	p.wToggle.Init("w", 0)
	p.oamAddr.Init("oam", 0)
}

// WriteReg dispatches a cpu write to one of the eight register ports.
func (p *Ppu) WriteReg(reg uint16, val uint8) error {
	p.err = nil
	p.regs[reg%8].Write(val)

	err := p.err
	p.err = nil
	return err
}

// ReadReg dispatches a cpu read. Write only ports fault; addr names the
// absolute bus address for the error message.
func (p *Ppu) ReadReg(reg uint16, addr uint16) (uint8, error) {
	reg %= 8
	if !readablePorts[reg] {
		return 0, curated.Errorf(curated.WriteOnlyRegister, addr)
	}

	p.err = nil
	val := p.regs[reg].Read()

	err := p.err
	p.err = nil
	return val, err
}
