package cpu

import (
	"testing"

	"gnes/curated"
	"gnes/nes/common"
)

// a cpu wired to 64KiB of flat ram, so tests can place programs, pointers
// and vectors anywhere
func testCpu(t *testing.T) *Cpu {
	t.Helper()

	bus := &common.MemoryController{}
	bus.Init()
	ram := &common.Ram{}
	ram.Init(0x10000)
	bus.AddMemory(ram, 0x0000, 0x10000)

	ints := &common.IntLine{}
	ints.Init()

	c := &Cpu{}
	c.Init(bus, ints, false)
	return c
}

func poke(t *testing.T, c *Cpu, addr uint16, bytes ...uint8) {
	t.Helper()
	for i, b := range bytes {
		if err := c.bus.Write8(addr+uint16(i), b); err != nil {
			t.Fatalf("poke 0x%04x: %v", addr+uint16(i), err)
		}
	}
}

func peek(t *testing.T, c *Cpu, addr uint16) uint8 {
	t.Helper()
	v, err := c.bus.Read8(addr)
	if err != nil {
		t.Fatalf("peek 0x%04x: %v", addr, err)
	}
	return v
}

// load places a program and points the pc at it
func load(t *testing.T, c *Cpu, addr uint16, bytes ...uint8) {
	t.Helper()
	poke(t, c, addr, bytes...)
	c.Rg.Spc.Pc.Write(addr)
}

func steps(t *testing.T, c *Cpu, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := c.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
}

func Test_LdaImmediate(t *testing.T) {
	c := testCpu(t)

	load(t, c, 0x8000, 0xA9, 0x10) // LDA #$10
	steps(t, c, 1)

	if ac := c.Rg.Gp.Ac.Read(); ac != 0x10 {
		t.Errorf("Ac = 0x%02x, wanted 0x10", ac)
	}
	if c.Rg.Spc.Ps.bit[Z] != 0 || c.Rg.Spc.Ps.bit[N] != 0 {
		t.Errorf("Ps = %s, wanted Z=0 N=0", c.Rg.Spc.Ps)
	}
}

func Test_LoadFlagInvariant(t *testing.T) {
	tests := []struct {
		val  uint8
		z, n byte
	}{
		{0x00, 1, 0},
		{0x01, 0, 0},
		{0x7F, 0, 0},
		{0x80, 0, 1},
		{0xFF, 0, 1},
	}

	for _, test := range tests {
		c := testCpu(t)
		load(t, c, 0x8000, 0xA9, test.val)
		steps(t, c, 1)

		if c.Rg.Spc.Ps.bit[Z] != test.z || c.Rg.Spc.Ps.bit[N] != test.n {
			t.Errorf("lda #$%02x: %s, wanted Z=%d N=%d", test.val, c.Rg.Spc.Ps, test.z, test.n)
		}
	}
}

func Test_StaAbsolute(t *testing.T) {
	c := testCpu(t)

	// LDA #$10; STA $0003
	load(t, c, 0x8000, 0xA9, 0x10, 0x8D, 0x03, 0x00)
	steps(t, c, 2)

	if v := peek(t, c, 0x0003); v != 0x10 {
		t.Errorf("[0x0003] = 0x%02x, wanted 0x10", v)
	}
}

func Test_StaIndexedIndirect(t *testing.T) {
	c := testCpu(t)

	poke(t, c, 0x50, 0x20, 0x00)
	// LDX #$28; LDA #$17; STA ($28,X)
	load(t, c, 0x8000, 0xA2, 0x28, 0xA9, 0x17, 0x81, 0x28)
	steps(t, c, 3)

	if v := peek(t, c, 0x0020); v != 0x17 {
		t.Errorf("[0x0020] = 0x%02x, wanted 0x17", v)
	}
}

func Test_StaIndirectIndexed(t *testing.T) {
	c := testCpu(t)

	poke(t, c, 0x86, 0x28, 0x40)
	// LDY #$10; LDA #$41; STA ($86),Y
	load(t, c, 0x8000, 0xA0, 0x10, 0xA9, 0x41, 0x91, 0x86)
	steps(t, c, 3)

	if v := peek(t, c, 0x4038); v != 0x41 {
		t.Errorf("[0x4038] = 0x%02x, wanted 0x41", v)
	}
}

func Test_BranchRelative(t *testing.T) {
	c := testCpu(t)

	// the resolver computes the target against the current pc, so drive
	// the instruction directly
	c.Rg.Spc.Pc.Write(0x8000)
	bra := Instruction{Def: OpDef{Bra, "BRA", ModeRelative}}

	bra.Operands[0] = 0x80 // -128
	if err := c.execute(bra); err != nil {
		t.Fatalf("bra: %v", err)
	}
	if pc := c.Rg.Spc.Pc.Read(); pc != 0x7F80 {
		t.Fatalf("Pc = 0x%04x, wanted 0x7F80", pc)
	}

	bra.Operands[0] = 0x7F // +127
	if err := c.execute(bra); err != nil {
		t.Fatalf("bra: %v", err)
	}
	if pc := c.Rg.Spc.Pc.Read(); pc != 0x7FFF {
		t.Fatalf("Pc = 0x%04x, wanted 0x7FFF", pc)
	}
}

func Test_ConditionalBranches(t *testing.T) {
	// BNE skips the LDA #$22 when the loaded value is non zero
	c := testCpu(t)
	load(t, c, 0x8000, 0xA9, 0x01, 0xD0, 0x02, 0xA9, 0x22, 0xEA)
	steps(t, c, 2)
	if pc := c.Rg.Spc.Pc.Read(); pc != 0x8006 {
		t.Errorf("bne taken: Pc = 0x%04x, wanted 0x8006", pc)
	}

	// BEQ falls through for the same program
	c = testCpu(t)
	load(t, c, 0x8000, 0xA9, 0x01, 0xF0, 0x02, 0xA9, 0x22, 0xEA)
	steps(t, c, 3)
	if ac := c.Rg.Gp.Ac.Read(); ac != 0x22 {
		t.Errorf("beq not taken: Ac = 0x%02x, wanted 0x22", ac)
	}
}

func Test_ResetVector(t *testing.T) {
	c := testCpu(t)

	poke(t, c, 0xFFFC, 0x34, 0x12)
	c.ints.Raise(common.IntReset)
	steps(t, c, 1)

	if pc := c.Rg.Spc.Pc.Read(); pc != 0x1234 {
		t.Errorf("Pc = 0x%04x, wanted 0x1234", pc)
	}
	if c.Rg.Spc.Ps.bit[I] != 1 {
		t.Errorf("interrupt disable not set after reset")
	}
}

func Test_NmiDiscardsFetchedInstruction(t *testing.T) {
	c := testCpu(t)

	poke(t, c, 0xFFFA, 0x00, 0x90) // nmi handler at 0x9000
	poke(t, c, 0x9000, 0x40)       // RTI
	load(t, c, 0x8000, 0xA9, 0x55) // LDA #$55

	c.ints.Raise(common.IntNmi)
	steps(t, c, 1)

	// the fetched lda was discarded
	if ac := c.Rg.Gp.Ac.Read(); ac != 0 {
		t.Fatalf("Ac = 0x%02x, interrupted instruction executed", ac)
	}
	if pc := c.Rg.Spc.Pc.Read(); pc != 0x9000 {
		t.Fatalf("Pc = 0x%04x, wanted 0x9000", pc)
	}

	// rti returns to the instruction start, which then executes
	steps(t, c, 2)
	if ac := c.Rg.Gp.Ac.Read(); ac != 0x55 {
		t.Errorf("Ac = 0x%02x after rti, wanted 0x55", ac)
	}
}

func Test_Brk(t *testing.T) {
	c := testCpu(t)

	poke(t, c, 0xFFFE, 0x00, 0xA0) // irq/brk vector at 0xA000
	load(t, c, 0x8000, 0x00)       // BRK
	steps(t, c, 1)

	if pc := c.Rg.Spc.Pc.Read(); pc != 0xA000 {
		t.Errorf("Pc = 0x%04x, wanted 0xA000", pc)
	}
	if c.Rg.Spc.Ps.bit[I] != 1 {
		t.Errorf("interrupt disable not set after brk")
	}

	// the pushed return address is the brk opcode itself
	lo := peek(t, c, 0x01FE)
	hi := peek(t, c, 0x01FF)
	if addr := uint16(lo) | uint16(hi)<<8; addr != 0x8000 {
		t.Errorf("pushed return address 0x%04x, wanted 0x8000", addr)
	}
}

func Test_StackRoundTrips(t *testing.T) {
	c := testCpu(t)

	// PHA; LDA #$00; PLA
	load(t, c, 0x8000, 0xA9, 0x77, 0x48, 0xA9, 0x00, 0x68)
	steps(t, c, 4)
	if ac := c.Rg.Gp.Ac.Read(); ac != 0x77 {
		t.Errorf("pha/pla: Ac = 0x%02x, wanted 0x77", ac)
	}
	if sp := c.Rg.Spc.Sp.Read(); sp != 0xFF {
		t.Errorf("pha/pla: Sp = 0x%02x, wanted 0xFF", sp)
	}

	// PHP; SEC; PLP restores the status byte
	c = testCpu(t)
	before := c.Rg.Spc.Ps.Read()
	load(t, c, 0x8000, 0x08, 0x38, 0x28)
	steps(t, c, 3)
	if after := c.Rg.Spc.Ps.Read(); after != before {
		t.Errorf("php/plp: Ps = 0x%02x, wanted 0x%02x", after, before)
	}
}

func Test_PhxPhyRoundTrips(t *testing.T) {
	c := testCpu(t)

	// LDX #$12; LDY #$34; PHX; PHY; LDX #$00; LDY #$00; PLY; PLX
	load(t, c, 0x8000,
		0xA2, 0x12, 0xA0, 0x34, 0xDA, 0x5A,
		0xA2, 0x00, 0xA0, 0x00, 0x7A, 0xFA)
	steps(t, c, 8)

	if x := c.Rg.Gp.Ix.X.Read(); x != 0x12 {
		t.Errorf("phx/plx: X = 0x%02x, wanted 0x12", x)
	}
	if y := c.Rg.Gp.Ix.Y.Read(); y != 0x34 {
		t.Errorf("phy/ply: Y = 0x%02x, wanted 0x34", y)
	}
}

func Test_JsrRts(t *testing.T) {
	c := testCpu(t)

	// JSR $8005; NOP at 0x8003 / LDA #$11; RTS at the subroutine
	poke(t, c, 0x8005, 0xA9, 0x11, 0x60)
	load(t, c, 0x8000, 0x20, 0x05, 0x80, 0xEA)
	steps(t, c, 3)

	// rts must land on the byte after the jsr
	if pc := c.Rg.Spc.Pc.Read(); pc != 0x8003 {
		t.Errorf("Pc = 0x%04x, wanted 0x8003", pc)
	}
	if ac := c.Rg.Gp.Ac.Read(); ac != 0x11 {
		t.Errorf("Ac = 0x%02x, wanted 0x11", ac)
	}
}

func Test_Adc(t *testing.T) {
	tests := []struct {
		a, v, carry uint8
		wantAc      uint8
		wantC       byte
		wantZ       byte
		wantN       byte
	}{
		{0x01, 0x01, 0, 0x02, 0, 0, 0},
		{0xFF, 0x01, 0, 0x00, 1, 1, 0},
		{0x7F, 0x01, 0, 0x80, 0, 0, 1},
		{0x10, 0x20, 1, 0x31, 0, 0, 0},
	}

	for _, test := range tests {
		c := testCpu(t)
		c.Rg.Gp.Ac.Write(test.a)
		if test.carry == 1 {
			c.Rg.Spc.Ps.Set(BC, BC)
		} else {
			c.Rg.Spc.Ps.Set(BC, 0)
		}
		load(t, c, 0x8000, 0x69, test.v) // ADC #v
		steps(t, c, 1)

		if ac := c.Rg.Gp.Ac.Read(); ac != test.wantAc {
			t.Errorf("adc 0x%02x+0x%02x+%d: Ac = 0x%02x, wanted 0x%02x",
				test.a, test.v, test.carry, ac, test.wantAc)
		}
		ps := &c.Rg.Spc.Ps
		if ps.bit[C] != test.wantC || ps.bit[Z] != test.wantZ || ps.bit[N] != test.wantN {
			t.Errorf("adc 0x%02x+0x%02x+%d: %s, wanted C=%d Z=%d N=%d",
				test.a, test.v, test.carry, ps, test.wantC, test.wantZ, test.wantN)
		}
	}
}

func Test_Sbc(t *testing.T) {
	tests := []struct {
		a, v, carry uint8
		wantAc      uint8
		wantC       byte
		wantZ       byte
		wantN       byte
	}{
		{0x10, 0x08, 1, 0x08, 1, 0, 0},
		{0x10, 0x10, 1, 0x00, 1, 1, 0},
		{0x10, 0x20, 1, 0xF0, 0, 0, 1},
		{0x10, 0x08, 0, 0x07, 1, 0, 0},
	}

	for _, test := range tests {
		c := testCpu(t)
		c.Rg.Gp.Ac.Write(test.a)
		if test.carry == 1 {
			c.Rg.Spc.Ps.Set(BC, BC)
		} else {
			c.Rg.Spc.Ps.Set(BC, 0)
		}
		load(t, c, 0x8000, 0xE9, test.v) // SBC #v
		steps(t, c, 1)

		if ac := c.Rg.Gp.Ac.Read(); ac != test.wantAc {
			t.Errorf("sbc 0x%02x-0x%02x-%d: Ac = 0x%02x, wanted 0x%02x",
				test.a, test.v, 1-test.carry, ac, test.wantAc)
		}
		ps := &c.Rg.Spc.Ps
		if ps.bit[C] != test.wantC || ps.bit[Z] != test.wantZ || ps.bit[N] != test.wantN {
			t.Errorf("sbc 0x%02x-0x%02x-%d: %s, wanted C=%d Z=%d N=%d",
				test.a, test.v, 1-test.carry, ps, test.wantC, test.wantZ, test.wantN)
		}
	}
}

func Test_SbcLeavesMemoryAlone(t *testing.T) {
	c := testCpu(t)

	poke(t, c, 0x0040, 0x05)
	c.Rg.Gp.Ac.Write(0x10)
	c.Rg.Spc.Ps.Set(BC, BC)
	load(t, c, 0x8000, 0xE5, 0x40) // SBC $40
	steps(t, c, 1)

	if v := peek(t, c, 0x0040); v != 0x05 {
		t.Errorf("[0x0040] = 0x%02x, sbc must not write memory", v)
	}
	if ac := c.Rg.Gp.Ac.Read(); ac != 0x0B {
		t.Errorf("Ac = 0x%02x, wanted 0x0B", ac)
	}
}

func Test_Compare(t *testing.T) {
	tests := []struct {
		a, v  uint8
		wantC byte
		wantZ byte
		wantN byte
	}{
		{0x03, 0x05, 0, 0, 1},
		{0x03, 0x03, 1, 1, 0},
		{0x03, 0x01, 1, 0, 0},
		{0x85, 0x01, 1, 0, 1},
	}

	for _, test := range tests {
		c := testCpu(t)
		c.Rg.Gp.Ac.Write(test.a)
		load(t, c, 0x8000, 0xC9, test.v) // CMP #v
		steps(t, c, 1)

		ps := &c.Rg.Spc.Ps
		if ps.bit[C] != test.wantC || ps.bit[Z] != test.wantZ || ps.bit[N] != test.wantN {
			t.Errorf("cmp 0x%02x vs 0x%02x: %s, wanted C=%d Z=%d N=%d",
				test.a, test.v, ps, test.wantC, test.wantZ, test.wantN)
		}
	}
}

func Test_ShiftsAndRotates(t *testing.T) {
	// ASL on the accumulator: carry takes bit 7
	c := testCpu(t)
	c.Rg.Gp.Ac.Write(0x81)
	load(t, c, 0x8000, 0x0A)
	steps(t, c, 1)
	if ac := c.Rg.Gp.Ac.Read(); ac != 0x02 {
		t.Errorf("asl: Ac = 0x%02x, wanted 0x02", ac)
	}
	if c.Rg.Spc.Ps.bit[C] != 1 {
		t.Errorf("asl: carry not set from bit 7")
	}

	// ROR rotates through carry; carry in becomes bit 7
	c = testCpu(t)
	c.Rg.Gp.Ac.Write(0x01)
	c.Rg.Spc.Ps.Set(BC, BC)
	load(t, c, 0x8000, 0x6A)
	steps(t, c, 1)
	if ac := c.Rg.Gp.Ac.Read(); ac != 0x80 {
		t.Errorf("ror: Ac = 0x%02x, wanted 0x80", ac)
	}
	if c.Rg.Spc.Ps.bit[C] != 1 || c.Rg.Spc.Ps.bit[N] != 1 {
		t.Errorf("ror: %s, wanted C=1 N=1", c.Rg.Spc.Ps)
	}

	// LSR memory form: a single read and a single write of the operand
	c = testCpu(t)
	poke(t, c, 0x0040, 0x03)
	load(t, c, 0x8000, 0x46, 0x40)
	steps(t, c, 1)
	if v := peek(t, c, 0x0040); v != 0x01 {
		t.Errorf("lsr $40: [0x0040] = 0x%02x, wanted 0x01", v)
	}
	if c.Rg.Spc.Ps.bit[C] != 1 || c.Rg.Spc.Ps.bit[N] != 0 {
		t.Errorf("lsr: %s, wanted C=1 N=0", c.Rg.Spc.Ps)
	}
}

func Test_TrbTsb(t *testing.T) {
	c := testCpu(t)
	poke(t, c, 0x0040, 0xF0)
	c.Rg.Gp.Ac.Write(0x30)
	load(t, c, 0x8000, 0x14, 0x40) // TRB $40
	steps(t, c, 1)
	if v := peek(t, c, 0x0040); v != 0xC0 {
		t.Errorf("trb: [0x0040] = 0x%02x, wanted 0xC0", v)
	}
	if c.Rg.Spc.Ps.bit[Z] != 0 {
		t.Errorf("trb: Z set although A and the operand overlap")
	}

	c = testCpu(t)
	poke(t, c, 0x0040, 0xC0)
	c.Rg.Gp.Ac.Write(0x03)
	load(t, c, 0x8000, 0x04, 0x40) // TSB $40
	steps(t, c, 1)
	if v := peek(t, c, 0x0040); v != 0xC3 {
		t.Errorf("tsb: [0x0040] = 0x%02x, wanted 0xC3", v)
	}
	if c.Rg.Spc.Ps.bit[Z] != 1 {
		t.Errorf("tsb: Z clear although A and the operand are disjoint")
	}
}

func Test_Stz(t *testing.T) {
	c := testCpu(t)
	poke(t, c, 0x0040, 0xAA)
	load(t, c, 0x8000, 0x64, 0x40) // STZ $40
	steps(t, c, 1)
	if v := peek(t, c, 0x0040); v != 0x00 {
		t.Errorf("stz: [0x0040] = 0x%02x, wanted 0x00", v)
	}
}

func Test_JmpIndirectForms(t *testing.T) {
	c := testCpu(t)
	poke(t, c, 0x0200, 0x34, 0x12)
	load(t, c, 0x8000, 0x6C, 0x00, 0x02) // JMP ($0200)
	steps(t, c, 1)
	if pc := c.Rg.Spc.Pc.Read(); pc != 0x1234 {
		t.Errorf("jmp ind: Pc = 0x%04x, wanted 0x1234", pc)
	}

	c = testCpu(t)
	poke(t, c, 0x0204, 0x78, 0x56)
	c.Rg.Gp.Ix.X.Write(0x04)
	load(t, c, 0x8000, 0x7C, 0x00, 0x02) // JMP ($0200,X)
	steps(t, c, 1)
	if pc := c.Rg.Spc.Pc.Read(); pc != 0x5678 {
		t.Errorf("jmp ind,x: Pc = 0x%04x, wanted 0x5678", pc)
	}
}

func Test_IllegalAddressMode(t *testing.T) {
	c := testCpu(t)

	ins := Instruction{Def: OpDef{Lda, "LDA", ModeImplied}}
	err := c.execute(ins)
	if !curated.Is(err, curated.IllegalAddressMode) {
		t.Errorf("lda implied = %v, wanted an illegal address mode fault", err)
	}
}

func Test_StepWrapsFaultsWithPc(t *testing.T) {
	c := testCpu(t)

	load(t, c, 0x8000, 0xFF)
	err := c.Step()
	if !curated.Is(err, curated.StepFault) {
		t.Fatalf("err = %v, wanted a step fault", err)
	}
	if !curated.Has(err, curated.IllegalOpcode) {
		t.Errorf("err = %v, wanted the illegal opcode inside", err)
	}
}

func Test_RegisterWrapping(t *testing.T) {
	c := testCpu(t)

	// INX wraps x modulo 256
	c.Rg.Gp.Ix.X.Write(0xFF)
	load(t, c, 0x8000, 0xE8)
	steps(t, c, 1)
	if x := c.Rg.Gp.Ix.X.Read(); x != 0x00 {
		t.Errorf("inx: X = 0x%02x, wanted 0x00", x)
	}
	if c.Rg.Spc.Ps.bit[Z] != 1 {
		t.Errorf("inx: Z clear after wrap to zero")
	}

	// the stack pointer wraps modulo 256 as well
	c = testCpu(t)
	c.Rg.Spc.Sp.Write(0x00)
	load(t, c, 0x8000, 0x48) // PHA
	steps(t, c, 1)
	if sp := c.Rg.Spc.Sp.Read(); sp != 0xFF {
		t.Errorf("pha: Sp = 0x%02x, wanted 0xFF", sp)
	}
}
