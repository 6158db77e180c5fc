package cpu

import (
	"fmt"
	"log"
	"strings"

	"gnes/curated"
	"gnes/nes/common"
)

type Cpu struct {
	bus  *common.MemoryController
	ints *common.IntLine

	Rg Registers

	// pc at the start of the currently executing instruction; interrupts
	// push this so the discarded instruction is re-fetched on return
	prevPc uint16

	verbose bool

	// internal buffer so partial trace writes end up on one log line
	bufStr string
}

func (c *Cpu) Init(bus *common.MemoryController, ints *common.IntLine, verbose bool) {
	c.bus = bus
	c.ints = ints
	c.verbose = verbose

	c.Rg.Init()
}

// Reset re-initialises the register file and queues a reset; the vector is
// taken at the next Step, like any other interrupt source.
func (c *Cpu) Reset() {
	c.Rg.Init()
	c.ints.Raise(common.IntReset)
}

func (c *Cpu) logf(format string, a ...interface{}) {
	if !c.verbose {
		return
	}
	s := fmt.Sprintf(format, a...)
	c.bufStr += s

	if strings.IndexByte(s, '\n') >= 0 {
		log.Print(strings.TrimSuffix(c.bufStr, "\n"))
		c.bufStr = ""
	}
}

// Step runs one fetch/decode/execute cycle, servicing a pending interrupt
// instead of the fetched instruction when one is waiting. Every fault
// surfaces wrapped with the pc of the instruction it happened in.
func (c *Cpu) Step() error {
	c.prevPc = c.Rg.Spc.Pc.Read()

	if err := c.step(); err != nil {
		return curated.Errorf(curated.StepFault, c.prevPc, err)
	}
	return nil
}

func (c *Cpu) step() error {
	opCode, err := c.fetch8()
	if err != nil {
		return err
	}

	def, err := Decode(opCode)
	if err != nil {
		return err
	}

	ins := Instruction{Def: def}
	for i := uint8(0); i < OperandLength(def.Mode); i++ {
		ins.Operands[i], err = c.fetch8()
		if err != nil {
			return err
		}
	}

	// the only point where external events are observed; the fetched
	// instruction is discarded and will be re-fetched on return since the
	// pushed address is the instruction start
	if src, ok := c.ints.Poll(); ok {
		c.logf("0x%04x: %s\n", c.prevPc, src)
		return c.service(src)
	}

	c.logf("0x%04x: 0x%02x - %-24s %s\n", c.prevPc, opCode, ins, c.Rg)
	return c.execute(ins)
}

func (c *Cpu) fetch8() (uint8, error) {
	pc := c.Rg.Spc.Pc.Read()
	val, err := c.bus.Read8(pc)
	if err != nil {
		return 0, err
	}
	c.Rg.Spc.Pc.Write(pc + 1)
	return val, nil
}

// interrupt vectors, low byte first
func vector(src common.Interrupt) uint16 {
	switch src {
	case common.IntReset:
		return 0xFFFC
	case common.IntNmi:
		return 0xFFFA
	case common.IntIrq, common.IntBrk:
		return 0xFFFE
	case common.IntAbort:
		return 0xFFF8
	}
	panic("unknown interrupt source")
}

func (c *Cpu) service(src common.Interrupt) error {
	if err := c.push16(c.prevPc); err != nil {
		return err
	}
	if err := c.push8(c.Rg.Spc.Ps.Read()); err != nil {
		return err
	}

	// the interrupt disable bit is set before vectoring, even if the
	// vector read itself faults
	c.Rg.Spc.Ps.Set(BI, BI)

	vec := vector(src)
	lo, err := c.bus.Read8(vec)
	if err != nil {
		return err
	}
	hi, err := c.bus.Read8(vec + 1)
	if err != nil {
		return err
	}
	c.Rg.Spc.Pc.Write(uint16(lo) | uint16(hi)<<8)
	return nil
}

func (c *Cpu) illegalMode(ins Instruction) error {
	return curated.Errorf(curated.IllegalAddressMode, ins.Def.Name, modeNames[ins.Def.Mode])
}

// resolveAddr computes the effective address an instruction writes to (or
// jumps to). Pure with respect to the register file.
func (c *Cpu) resolveAddr(ins Instruction) (uint16, error) {
	op1 := uint16(ins.Operands[0])
	op12 := uint16(ins.Operands[0]) | uint16(ins.Operands[1])<<8

	switch ins.Def.Mode {
	case ModeZeroPage:
		return op1, nil

	case ModeIndexedZeroPageX:
		return (op1 + uint16(c.Rg.Gp.Ix.X.Read())) % 256, nil

	case ModeIndexedZeroPageY:
		return (op1 + uint16(c.Rg.Gp.Ix.Y.Read())) % 256, nil

	case ModeAbsolute:
		return op12, nil

	case ModeIndexedAbsoluteX:
		return op12 + uint16(c.Rg.Gp.Ix.X.Read()), nil

	case ModeIndexedAbsoluteY:
		return op12 + uint16(c.Rg.Gp.Ix.Y.Read()), nil

	case ModeIndexedIndirect:
		// both pointer bytes wrap inside the zero page
		lo, err := c.bus.Read8((op1 + uint16(c.Rg.Gp.Ix.X.Read())) % 256)
		if err != nil {
			return 0, err
		}
		hi, err := c.bus.Read8((op1 + uint16(c.Rg.Gp.Ix.X.Read()) + 1) % 256)
		if err != nil {
			return 0, err
		}
		return uint16(lo) | uint16(hi)<<8, nil

	case ModeIndirectIndexed:
		lo, err := c.bus.Read8(op1)
		if err != nil {
			return 0, err
		}
		hi, err := c.bus.Read8(op1 + 1)
		if err != nil {
			return 0, err
		}
		return (uint16(lo) | uint16(hi)<<8) + uint16(c.Rg.Gp.Ix.Y.Read()), nil

	case ModeZeroPageIndirect:
		lo, err := c.bus.Read8(op1)
		if err != nil {
			return 0, err
		}
		hi, err := c.bus.Read8(op1 + 1)
		if err != nil {
			return 0, err
		}
		return uint16(lo) | uint16(hi)<<8, nil

	case ModeRelative:
		// operand is -128..127 so we can jump backwards
		return c.Rg.Spc.Pc.Read() + uint16(int8(ins.Operands[0])), nil

	case ModeAbsoluteIndirect:
		lo, err := c.bus.Read8(op12)
		if err != nil {
			return 0, err
		}
		hi, err := c.bus.Read8(op12 + 1)
		if err != nil {
			return 0, err
		}
		return uint16(lo) | uint16(hi)<<8, nil

	case ModeAbsoluteIndexedIndirect:
		ptr := op12 + uint16(c.Rg.Gp.Ix.X.Read())
		lo, err := c.bus.Read8(ptr)
		if err != nil {
			return 0, err
		}
		hi, err := c.bus.Read8(ptr + 1)
		if err != nil {
			return 0, err
		}
		return uint16(lo) | uint16(hi)<<8, nil
	}

	return 0, c.illegalMode(ins)
}

// resolveRead yields the operand value for the read path, possibly through
// indirection.
func (c *Cpu) resolveRead(ins Instruction) (uint8, error) {
	switch ins.Def.Mode {
	case ModeImmediate:
		return ins.Operands[0], nil
	case ModeAccumulator:
		return c.Rg.Gp.Ac.Read(), nil
	case ModeImplied, ModeRelative:
		return 0, c.illegalMode(ins)
	}

	addr, err := c.resolveAddr(ins)
	if err != nil {
		return 0, err
	}
	return c.bus.Read8(addr)
}

func (c *Cpu) push8(val uint8) error {
	sp := c.Rg.Spc.Sp.Read()
	if err := c.bus.Write8(0x0100|uint16(sp), val); err != nil {
		return err
	}
	c.Rg.Spc.Sp.Write(sp - 1)
	return nil
}

func (c *Cpu) push16(val uint16) error {
	if err := c.push8(uint8(val >> 8)); err != nil {
		return err
	}
	return c.push8(uint8(val & 0xFF))
}

func (c *Cpu) pull8() (uint8, error) {
	sp := c.Rg.Spc.Sp.Read() + 1
	c.Rg.Spc.Sp.Write(sp)
	return c.bus.Read8(0x0100 | uint16(sp))
}

func (c *Cpu) pull16() (uint16, error) {
	lo, err := c.pull8()
	if err != nil {
		return 0, err
	}
	hi, err := c.pull8()
	if err != nil {
		return 0, err
	}
	return uint16(lo) | uint16(hi)<<8, nil
}
