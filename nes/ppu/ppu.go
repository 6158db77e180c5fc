package ppu

import (
	"gnes/nes/common"
)

// OamEntry is one sprite: screen y, pattern tile, attributes, screen x.
type OamEntry struct {
	Y         uint8
	Tile      uint8
	Attribute uint8
	X         uint8
}

type Ppu struct {
	busInt *common.MemoryController
	ints   *common.IntLine

	// the eight cpu mapped registers
	regs [8]common.Register

	// internal scrolling/addressing latches
	// http://wiki.nesdev.com/w/index.php/PPU_scrolling
	vRAM    common.Register16 // current vram address (v)
	tRAM    common.Register16 // temporary vram address (t)
	xFine   common.Register   // fine x scroll (x)
	wToggle common.Register   // write latch (w)

	oam     [64]OamEntry
	oamAddr common.Register

	nmiPending     bool
	sprite0Hit     bool
	spriteOverflow bool

	xScroll uint8
	yScroll uint8

	Fb common.Framebuffer

	// faults raised inside register hooks, surfaced by WriteReg/ReadReg
	err error
}

func (p *Ppu) Init(busInt *common.MemoryController, ints *common.IntLine) {
	p.busInt = busInt
	p.ints = ints

	p.Fb.Init()
	p.initRegisters()

	p.nmiPending = false
	p.sprite0Hit = false
	p.spriteOverflow = false
}

func (p *Ppu) Reset() {
	p.Init(p.busInt, p.ints)
}

// Oam exposes the sprite table, eg for the host debug view and tests.
func (p *Ppu) Oam() *[64]OamEntry {
	return &p.oam
}

// VramAddr exposes the current vram address (v).
func (p *Ppu) VramAddr() uint16 {
	return p.vRAM.Read()
}

// FetchTileBackground decodes tile index from the background pattern table
// into an 8x8 grid of 2 bit palette indexes. The two bit planes are 8 bytes
// apart; within each byte pixels run msb first.
func (p *Ppu) FetchTileBackground(index uint8) ([8][8]uint8, error) {
	var tile [8][8]uint8

	base := p.getBackgroundTable() + 16*uint16(index)
	plane1, err := p.busInt.Read64(base)
	if err != nil {
		return tile, err
	}
	plane2, err := p.busInt.Read64(base + 8)
	if err != nil {
		return tile, err
	}

	for row := uint(0); row < 8; row++ {
		b1 := uint8(plane1 >> (8 * row))
		b2 := uint8(plane2 >> (8 * row))
		for col := uint(0); col < 8; col++ {
			bit := 7 - col
			tile[row][col] = ((b1>>bit)&1)<<1 | (b2>>bit)&1
		}
	}

	return tile, nil
}

// paletteLookup maps a 2 bit pixel of the given background palette row to
// its NES color index via palette ram.
func (p *Ppu) paletteLookup(paletteRow uint8, pixel uint8) (uint8, error) {
	if pixel == 0 {
		// universal background color
		return p.busInt.Read8(0x3F00)
	}
	return p.busInt.Read8(0x3F00 + uint16(paletteRow)*4 + uint16(pixel))
}

// drawSpritesheet paints both pattern tables into the framebuffer as two
// 128x128 tile sheets, a stand in for a full raster that keeps the frame
// loop honest about tile fetch and palette ram.
func (p *Ppu) drawSpritesheet() error {
	for half := uint16(0); half < 2; half++ {
		for index := 0; index < 256; index++ {
			var tile [8][8]uint8

			base := half*0x1000 + 16*uint16(index)
			plane1, err := p.busInt.Read64(base)
			if err != nil {
				return err
			}
			plane2, err := p.busInt.Read64(base + 8)
			if err != nil {
				return err
			}
			for row := uint(0); row < 8; row++ {
				b1 := uint8(plane1 >> (8 * row))
				b2 := uint8(plane2 >> (8 * row))
				for col := uint(0); col < 8; col++ {
					bit := 7 - col
					tile[row][col] = ((b1>>bit)&1)<<1 | (b2>>bit)&1
				}
			}

			x := (index % 16) * 8
			y := (index / 16) * 8
			for row := 0; row < 8; row++ {
				for col := 0; col < 8; col++ {
					color, err := p.paletteLookup(0, tile[row][col])
					if err != nil {
						return err
					}
					px := int(half)*128 + x + col
					py := y + row
					p.Fb.Pixels[py*common.FrameXWidth+px] = color
				}
			}
		}
	}
	return nil
}

// Frame runs one vertical blank's worth of work: clear the per frame status
// flags, repaint, commit the frame to the host and raise the nmi.
func (p *Ppu) Frame() error {
	p.nmiPending = false
	p.sprite0Hit = false
	p.spriteOverflow = false

	if p.showBackground() || p.showSprites() {
		if err := p.drawSpritesheet(); err != nil {
			return err
		}
	}

	back := p.Fb.BackBuffer()
	for i, idx := range p.Fb.Pixels {
		back[i] = Palette[idx&0x3F]
	}
	p.Fb.Commit()

	p.nmiPending = true
	if p.getNMIVertical() {
		// non blocking; dropped when the line is full
		p.ints.Raise(common.IntNmi)
	}

	return nil
}
