package cpu

import (
	"gnes/nes/common"
)

// per operation addressing mode allow-lists, as mode bitmasks
const (
	mZp    = 1 << ModeZeroPage
	mZpX   = 1 << ModeIndexedZeroPageX
	mZpY   = 1 << ModeIndexedZeroPageY
	mAbs   = 1 << ModeAbsolute
	mAbsX  = 1 << ModeIndexedAbsoluteX
	mAbsY  = 1 << ModeIndexedAbsoluteY
	mInd   = 1 << ModeAbsoluteIndirect
	mIndAX = 1 << ModeAbsoluteIndexedIndirect
	mZpInd = 1 << ModeZeroPageIndirect
	mImp   = 1 << ModeImplied
	mAcc   = 1 << ModeAccumulator
	mImm   = 1 << ModeImmediate
	mRel   = 1 << ModeRelative
	mIndX  = 1 << ModeIndexedIndirect
	mIndY  = 1 << ModeIndirectIndexed

	// the load group: every mode that can produce a value for the
	// accumulator ALU operations
	mLoad = mImm | mAbs | mZp | mIndX | mIndY | mZpX | mAbsX | mAbsY | mZpInd
	// the store group: the load group minus immediate
	mStore = mLoad &^ mImm
	// shift/rotate targets
	mShift = mAcc | mAbs | mZp | mZpX | mAbsX
)

var opModes = map[uint8]uint32{
	Adc: mLoad,
	And: mLoad,
	Asl: mShift,
	Bcc: mRel,
	Bcs: mRel,
	Beq: mRel,
	Bit: mImm | mAbs | mZp | mZpX | mAbsX,
	Bmi: mRel,
	Bne: mRel,
	Bpl: mRel,
	Bra: mRel,
	Brk: mImp,
	Bvc: mRel,
	Bvs: mRel,
	Clc: mImp,
	Cld: mImp,
	Cli: mImp,
	Clv: mImp,
	Cmp: mLoad,
	Cpx: mImm | mAbs | mZp,
	Cpy: mImm | mAbs | mZp,
	Dec: mAbs | mZp | mZpX | mAbsX,
	Dex: mImp,
	Dey: mImp,
	Eor: mLoad,
	Inc: mAbs | mZp | mZpX | mAbsX,
	Inx: mImp,
	Iny: mImp,
	Jmp: mAbs | mInd | mIndAX,
	Jsr: mAbs,
	Lda: mLoad,
	Ldx: mImm | mAbs | mZp | mZpY | mAbsY,
	Ldy: mImm | mAbs | mZp | mZpX | mAbsX,
	Lsr: mShift,
	Nop: mImp,
	Ora: mLoad,
	Pha: mImp,
	Php: mImp,
	Phx: mImp,
	Phy: mImp,
	Pla: mImp,
	Plp: mImp,
	Plx: mImp,
	Ply: mImp,
	Rol: mShift,
	Ror: mShift,
	Rti: mImp,
	Rts: mImp,
	Sbc: mLoad,
	Sec: mImp,
	Sed: mImp,
	Sei: mImp,
	Sta: mStore,
	Stx: mAbs | mZp | mZpY,
	Sty: mAbs | mZp | mZpX,
	Stz: mStore,
	Tax: mImp,
	Tay: mImp,
	Trb: mAbs | mZp,
	Tsb: mAbs | mZp,
	Tsx: mImp,
	Txa: mImp,
	Txs: mImp,
	Tya: mImp,
}

func (c *Cpu) execute(ins Instruction) error {
	if opModes[ins.Def.Op]&(1<<ins.Def.Mode) == 0 {
		return c.illegalMode(ins)
	}

	switch ins.Def.Op {
	case Lda:
		return c.lda(ins)
	case Ldx:
		return c.ldx(ins)
	case Ldy:
		return c.ldy(ins)
	case Sta:
		return c.store(ins, c.Rg.Gp.Ac.Read())
	case Stx:
		return c.store(ins, c.Rg.Gp.Ix.X.Read())
	case Sty:
		return c.store(ins, c.Rg.Gp.Ix.Y.Read())
	case Stz:
		return c.store(ins, 0)
	case Tax:
		c.loadReg(&c.Rg.Gp.Ix.X, c.Rg.Gp.Ac.Read())
	case Tay:
		c.loadReg(&c.Rg.Gp.Ix.Y, c.Rg.Gp.Ac.Read())
	case Txa:
		c.loadReg(&c.Rg.Gp.Ac, c.Rg.Gp.Ix.X.Read())
	case Tya:
		c.loadReg(&c.Rg.Gp.Ac, c.Rg.Gp.Ix.Y.Read())
	case Txs:
		c.Rg.Spc.Sp.Write(c.Rg.Gp.Ix.X.Read())
	case Tsx:
		c.loadReg(&c.Rg.Gp.Ix.X, c.Rg.Spc.Sp.Read())
	case Adc:
		return c.adc(ins)
	case Sbc:
		return c.sbc(ins)
	case Cmp:
		return c.compare(ins, c.Rg.Gp.Ac.Read())
	case Cpx:
		return c.compare(ins, c.Rg.Gp.Ix.X.Read())
	case Cpy:
		return c.compare(ins, c.Rg.Gp.Ix.Y.Read())
	case And:
		return c.bitwise(ins, func(a, v uint8) uint8 { return a & v })
	case Ora:
		return c.bitwise(ins, func(a, v uint8) uint8 { return a | v })
	case Eor:
		return c.bitwise(ins, func(a, v uint8) uint8 { return a ^ v })
	case Bit:
		return c.bit(ins)
	case Asl:
		return c.asl(ins)
	case Lsr:
		return c.lsr(ins)
	case Rol:
		return c.rol(ins)
	case Ror:
		return c.ror(ins)
	case Inc:
		return c.rmw(ins, func(v uint8) uint8 { return v + 1 })
	case Dec:
		return c.rmw(ins, func(v uint8) uint8 { return v - 1 })
	case Inx:
		c.loadReg(&c.Rg.Gp.Ix.X, c.Rg.Gp.Ix.X.Read()+1)
	case Iny:
		c.loadReg(&c.Rg.Gp.Ix.Y, c.Rg.Gp.Ix.Y.Read()+1)
	case Dex:
		c.loadReg(&c.Rg.Gp.Ix.X, c.Rg.Gp.Ix.X.Read()-1)
	case Dey:
		c.loadReg(&c.Rg.Gp.Ix.Y, c.Rg.Gp.Ix.Y.Read()-1)
	case Bpl:
		return c.branch(ins, BN, 0)
	case Bmi:
		return c.branch(ins, BN, BN)
	case Bvc:
		return c.branch(ins, BV, 0)
	case Bvs:
		return c.branch(ins, BV, BV)
	case Bcc:
		return c.branch(ins, BC, 0)
	case Bcs:
		return c.branch(ins, BC, BC)
	case Bne:
		return c.branch(ins, BZ, 0)
	case Beq:
		return c.branch(ins, BZ, BZ)
	case Bra:
		return c.branch(ins, 0, 0)
	case Jmp:
		return c.jmp(ins)
	case Jsr:
		return c.jsr(ins)
	case Rts:
		return c.rts()
	case Rti:
		return c.rti()
	case Pha:
		return c.push8(c.Rg.Gp.Ac.Read())
	case Php:
		return c.push8(c.Rg.Spc.Ps.Read())
	case Phx:
		return c.push8(c.Rg.Gp.Ix.X.Read())
	case Phy:
		return c.push8(c.Rg.Gp.Ix.Y.Read())
	case Pla:
		return c.pullReg(&c.Rg.Gp.Ac)
	case Plx:
		return c.pullReg(&c.Rg.Gp.Ix.X)
	case Ply:
		return c.pullReg(&c.Rg.Gp.Ix.Y)
	case Plp:
		return c.plp()
	case Clc:
		c.Rg.Spc.Ps.Set(BC, 0)
	case Sec:
		c.Rg.Spc.Ps.Set(BC, BC)
	case Cli:
		c.Rg.Spc.Ps.Set(BI, 0)
	case Sei:
		c.Rg.Spc.Ps.Set(BI, BI)
	case Cld:
		c.Rg.Spc.Ps.Set(BD, 0)
	case Sed:
		c.Rg.Spc.Ps.Set(BD, BD)
	case Clv:
		c.Rg.Spc.Ps.Set(BV, 0)
	case Nop:
	case Trb:
		return c.trb(ins)
	case Tsb:
		return c.tsb(ins)
	case Brk:
		// software interrupt through the IRQ vector; the pushed return
		// address is the BRK opcode itself
		return c.service(common.IntBrk)
	}

	return nil
}

// loadReg stores val and updates Z/N, the invariant shared by every load
// and transfer destination.
func (c *Cpu) loadReg(reg *common.Register, val uint8) {
	reg.Write(val)
	c.Rg.Spc.Ps.Set(BZ|BN, int8(val))
}

func (c *Cpu) lda(ins Instruction) error {
	v, err := c.resolveRead(ins)
	if err != nil {
		return err
	}
	c.loadReg(&c.Rg.Gp.Ac, v)
	return nil
}

func (c *Cpu) ldx(ins Instruction) error {
	v, err := c.resolveRead(ins)
	if err != nil {
		return err
	}
	c.loadReg(&c.Rg.Gp.Ix.X, v)
	return nil
}

func (c *Cpu) ldy(ins Instruction) error {
	v, err := c.resolveRead(ins)
	if err != nil {
		return err
	}
	c.loadReg(&c.Rg.Gp.Ix.Y, v)
	return nil
}

func (c *Cpu) store(ins Instruction, val uint8) error {
	addr, err := c.resolveAddr(ins)
	if err != nil {
		return err
	}
	return c.bus.Write8(addr, val)
}

func (c *Cpu) adc(ins Instruction) error {
	v, err := c.resolveRead(ins)
	if err != nil {
		return err
	}

	carry := c.Rg.Spc.Ps.Read() & BC
	r := int(c.Rg.Gp.Ac.Read()) + int(v) + int(carry)

	if r > 0xFF {
		c.Rg.Spc.Ps.Set(BC, BC)
		c.Rg.Spc.Ps.Set(BV, BV)
	} else {
		c.Rg.Spc.Ps.Set(BC, 0)
		c.Rg.Spc.Ps.Set(BV, 0)
	}

	c.Rg.Gp.Ac.Write(uint8(r & 0xFF))
	c.Rg.Spc.Ps.Set(BZ|BN, int8(r&0xFF))
	return nil
}

func (c *Cpu) sbc(ins Instruction) error {
	v, err := c.resolveRead(ins)
	if err != nil {
		return err
	}

	carry := int(c.Rg.Spc.Ps.Read() & BC)
	r := int(c.Rg.Gp.Ac.Read()) - int(v) - (1 - carry)

	if r == 0 {
		c.Rg.Spc.Ps.Set(BZ, 0)
	} else {
		c.Rg.Spc.Ps.Set(BZ, 1)
	}
	if r >= 0 {
		c.Rg.Spc.Ps.Set(BC, BC)
	} else {
		c.Rg.Spc.Ps.Set(BC, 0)
	}
	if r < -128 {
		c.Rg.Spc.Ps.Set(BV, BV)
	} else {
		c.Rg.Spc.Ps.Set(BV, 0)
	}
	if r < 0 {
		c.Rg.Spc.Ps.Set(BN, -1)
	} else {
		c.Rg.Spc.Ps.Set(BN, 1)
	}

	c.Rg.Gp.Ac.Write(uint8(r & 0xFF))
	return nil
}

func (c *Cpu) compare(ins Instruction, reg uint8) error {
	v, err := c.resolveRead(ins)
	if err != nil {
		return err
	}

	if reg >= v {
		c.Rg.Spc.Ps.Set(BC, BC)
	} else {
		c.Rg.Spc.Ps.Set(BC, 0)
	}
	c.Rg.Spc.Ps.Set(BZ|BN, int8(reg-v))
	return nil
}

func (c *Cpu) bitwise(ins Instruction, f func(a, v uint8) uint8) error {
	v, err := c.resolveRead(ins)
	if err != nil {
		return err
	}
	c.loadReg(&c.Rg.Gp.Ac, f(c.Rg.Gp.Ac.Read(), v))
	return nil
}

func (c *Cpu) bit(ins Instruction) error {
	v, err := c.resolveRead(ins)
	if err != nil {
		return err
	}
	r := v & c.Rg.Gp.Ac.Read()
	c.Rg.Spc.Ps.Set(BZ|BN|BV, int8(r))
	return nil
}

// rmw applies f to the addressed value with a single read and a single
// write, or to the accumulator, and updates Z/N on the result.
func (c *Cpu) rmw(ins Instruction, f func(uint8) uint8) error {
	if ins.Def.Mode == ModeAccumulator {
		v := f(c.Rg.Gp.Ac.Read())
		c.Rg.Gp.Ac.Write(v)
		c.Rg.Spc.Ps.Set(BZ|BN, int8(v))
		return nil
	}

	addr, err := c.resolveAddr(ins)
	if err != nil {
		return err
	}
	v, err := c.bus.Read8(addr)
	if err != nil {
		return err
	}
	v = f(v)
	if err := c.bus.Write8(addr, v); err != nil {
		return err
	}
	c.Rg.Spc.Ps.Set(BZ|BN, int8(v))
	return nil
}

func (c *Cpu) asl(ins Instruction) error {
	return c.rmw(ins, func(v uint8) uint8 {
		c.Rg.Spc.Ps.Set(BC, int8(v>>7)&BC)
		return v << 1
	})
}

func (c *Cpu) lsr(ins Instruction) error {
	return c.rmw(ins, func(v uint8) uint8 {
		c.Rg.Spc.Ps.Set(BC, int8(v)&BC)
		return v >> 1
	})
}

func (c *Cpu) rol(ins Instruction) error {
	return c.rmw(ins, func(v uint8) uint8 {
		fC := c.Rg.Spc.Ps.Read() & BC
		c.Rg.Spc.Ps.Set(BC, int8(v>>7)&BC)
		return (v << 1) | fC
	})
}

func (c *Cpu) ror(ins Instruction) error {
	return c.rmw(ins, func(v uint8) uint8 {
		fC := c.Rg.Spc.Ps.Read() & BC
		c.Rg.Spc.Ps.Set(BC, int8(v)&BC)
		return (v >> 1) | (fC << 7)
	})
}

// branch takes the relative target when ps&flag == test. Bra passes
// (0, 0) so the condition always holds.
func (c *Cpu) branch(ins Instruction, flag uint8, test uint8) error {
	if (c.Rg.Spc.Ps.Read() & flag) == test {
		addr, err := c.resolveAddr(ins)
		if err != nil {
			return err
		}
		c.Rg.Spc.Pc.Write(addr)
	}
	return nil
}

func (c *Cpu) jmp(ins Instruction) error {
	addr, err := c.resolveAddr(ins)
	if err != nil {
		return err
	}
	c.Rg.Spc.Pc.Write(addr)
	return nil
}

func (c *Cpu) jsr(ins Instruction) error {
	if err := c.push16(c.Rg.Spc.Pc.Read()); err != nil {
		return err
	}
	return c.jmp(ins)
}

func (c *Cpu) rts() error {
	pc, err := c.pull16()
	if err != nil {
		return err
	}
	c.Rg.Spc.Pc.Write(pc)
	return nil
}

func (c *Cpu) rti() error {
	if err := c.plp(); err != nil {
		return err
	}
	return c.rts()
}

func (c *Cpu) pullReg(reg *common.Register) error {
	v, err := c.pull8()
	if err != nil {
		return err
	}
	c.loadReg(reg, v)
	return nil
}

func (c *Cpu) plp() error {
	v, err := c.pull8()
	if err != nil {
		return err
	}
	c.Rg.Spc.Ps.Write(v)
	return nil
}

func (c *Cpu) trb(ins Instruction) error {
	return c.testBits(ins, func(v, a uint8) uint8 { return v &^ a })
}

func (c *Cpu) tsb(ins Instruction) error {
	return c.testBits(ins, func(v, a uint8) uint8 { return v | a })
}

func (c *Cpu) testBits(ins Instruction, f func(v, a uint8) uint8) error {
	addr, err := c.resolveAddr(ins)
	if err != nil {
		return err
	}
	v, err := c.bus.Read8(addr)
	if err != nil {
		return err
	}

	a := c.Rg.Gp.Ac.Read()
	c.Rg.Spc.Ps.Set(BZ, int8(v&a))

	return c.bus.Write8(addr, f(v, a))
}
