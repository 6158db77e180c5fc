package cpu

import (
	"fmt"

	"gnes/curated"
)

// Addressing modes
// https://www.nesdev.org/obelisk-6502-guide/addressing.html
const (
	// allows for validity test
	ModeInvalid = iota
	ModeZeroPage
	ModeIndexedZeroPageX
	ModeIndexedZeroPageY
	ModeAbsolute
	ModeIndexedAbsoluteX
	ModeIndexedAbsoluteY
	ModeAbsoluteIndirect
	ModeAbsoluteIndexedIndirect
	ModeZeroPageIndirect
	ModeImplied
	ModeAccumulator
	ModeImmediate
	ModeRelative
	ModeIndexedIndirect
	ModeIndirectIndexed
)

var modeNames = map[uint8]string{
	ModeInvalid:                 "INVALID",
	ModeZeroPage:                "ZERO_PAGE",
	ModeIndexedZeroPageX:        "ZERO_PAGE_X",
	ModeIndexedZeroPageY:        "ZERO_PAGE_Y",
	ModeAbsolute:                "ABSOLUTE",
	ModeIndexedAbsoluteX:        "ABSOLUTE_X",
	ModeIndexedAbsoluteY:        "ABSOLUTE_Y",
	ModeAbsoluteIndirect:        "INDIRECT",
	ModeAbsoluteIndexedIndirect: "INDIRECT_X_ABS",
	ModeZeroPageIndirect:        "ZERO_PAGE_INDIRECT",
	ModeImplied:                 "IMPLIED",
	ModeAccumulator:             "ACCUMULATOR",
	ModeImmediate:               "IMMEDIATE",
	ModeRelative:                "RELATIVE",
	ModeIndexedIndirect:         "INDIRECT_X",
	ModeIndirectIndexed:         "INDIRECT_Y",
}

// OperandLength returns how many operand bytes follow the opcode byte for
// the given addressing mode.
func OperandLength(mode uint8) uint8 {
	switch mode {
	case ModeAccumulator, ModeImplied:
		return 0
	case ModeImmediate, ModeZeroPage, ModeIndexedIndirect, ModeIndirectIndexed,
		ModeIndexedZeroPageX, ModeIndexedZeroPageY, ModeRelative, ModeZeroPageIndirect:
		return 1
	case ModeAbsolute, ModeIndexedAbsoluteX, ModeIndexedAbsoluteY,
		ModeAbsoluteIndirect, ModeAbsoluteIndexedIndirect:
		return 2
	}
	return 0
}

// Operations
// https://www.nesdev.org/obelisk-6502-guide/instructions.html
// The table targets the 65C02 superset: BRA, PHX/PHY/PLX/PLY, STZ, TRB/TSB
// and the (zp)/(abs,X) addressing forms on top of the original set.
const (
	Adc = iota // Add with Carry
	And        // Logical AND
	Asl        // Arithmetic Shift Left
	Bcc        // Branch if Carry Clear
	Bcs        // Branch if Carry Set
	Beq        // Branch if Equal
	Bit        // Bit Test
	Bmi        // Branch if Minus
	Bne        // Branch if Not Equal
	Bpl        // Branch if Positive
	Bra        // Branch Always
	Brk        // Force Interrupt
	Bvc        // Branch if Overflow Clear
	Bvs        // Branch if Overflow Set
	Clc        // Clear Carry Flag
	Cld        // Clear Decimal Mode
	Cli        // Clear Interrupt Disable
	Clv        // Clear Overflow Flag
	Cmp        // Compare
	Cpx        // Compare X Register
	Cpy        // Compare Y Register
	Dec        // Decrement Memory
	Dex        // Decrement X Register
	Dey        // Decrement Y Register
	Eor        // Exclusive OR
	Inc        // Increment Memory
	Inx        // Increment X Register
	Iny        // Increment Y Register
	Jmp        // Jump
	Jsr        // Jump to Subroutine
	Lda        // Load Accumulator
	Ldx        // Load X Register
	Ldy        // Load Y Register
	Lsr        // Logical Shift Right
	Nop        // No Operation
	Ora        // Logical Inclusive OR
	Pha        // Push Accumulator
	Php        // Push Processor Status
	Phx        // Push X Register
	Phy        // Push Y Register
	Pla        // Pull Accumulator
	Plp        // Pull Processor Status
	Plx        // Pull X Register
	Ply        // Pull Y Register
	Rol        // Rotate Left
	Ror        // Rotate Right
	Rti        // Return from Interrupt
	Rts        // Return from Subroutine
	Sbc        // Subtract with Carry
	Sec        // Set Carry Flag
	Sed        // Set Decimal Flag
	Sei        // Set Interrupt Disable
	Sta        // Store Accumulator
	Stx        // Store X Register
	Sty        // Store Y Register
	Stz        // Store Zero
	Tax        // Transfer Accumulator to X
	Tay        // Transfer Accumulator to Y
	Trb        // Test and Reset Bits
	Tsb        // Test and Set Bits
	Tsx        // Transfer Stack Pointer to X
	Txa        // Transfer X to Accumulator
	Txs        // Transfer X to Stack Pointer
	Tya        // Transfer Y to Accumulator
)

// OpDef is what the decoder knows about one opcode byte.
type OpDef struct {
	Op   uint8
	Name string
	Mode uint8
}

func (o OpDef) String() string {
	return fmt.Sprintf("{%s, %s}", o.Name, modeNames[o.Mode])
}

// Instruction is an immutable (operation, mode, operands) triple. The
// operand count is trusted from the decoder; the address resolvers fault on
// a mode inconsistent with its operation.
type Instruction struct {
	Def      OpDef
	Operands [2]uint8
}

func (i Instruction) String() string {
	op1 := uint16(i.Operands[0])
	op12 := uint16(i.Operands[0]) | uint16(i.Operands[1])<<8
	str := i.Def.Name
	switch i.Def.Mode {
	case ModeImplied, ModeAccumulator:
	case ModeImmediate:
		str += fmt.Sprintf(" #$%02x", op1)
	case ModeZeroPage:
		str += fmt.Sprintf(" $%02x", op1)
	case ModeIndexedZeroPageX:
		str += fmt.Sprintf(" $%02x, X", op1)
	case ModeIndexedZeroPageY:
		str += fmt.Sprintf(" $%02x, Y", op1)
	case ModeAbsolute:
		str += fmt.Sprintf(" $%04x", op12)
	case ModeIndexedAbsoluteX:
		str += fmt.Sprintf(" $%04x, X", op12)
	case ModeIndexedAbsoluteY:
		str += fmt.Sprintf(" $%04x, Y", op12)
	case ModeIndexedIndirect:
		str += fmt.Sprintf(" ($%02x, X)", op1)
	case ModeIndirectIndexed:
		str += fmt.Sprintf(" ($%02x), Y", op1)
	case ModeZeroPageIndirect:
		str += fmt.Sprintf(" ($%02x)", op1)
	case ModeAbsoluteIndirect:
		str += fmt.Sprintf(" ($%04x)", op12)
	case ModeAbsoluteIndexedIndirect:
		str += fmt.Sprintf(" ($%04x, X)", op12)
	case ModeRelative:
		str += fmt.Sprintf(" *%+d", int8(op1))
	}
	return str
}

var opcodes = map[uint8]OpDef{
	0x69: {Adc, "ADC", ModeImmediate},
	0x65: {Adc, "ADC", ModeZeroPage},
	0x75: {Adc, "ADC", ModeIndexedZeroPageX},
	0x6D: {Adc, "ADC", ModeAbsolute},
	0x7D: {Adc, "ADC", ModeIndexedAbsoluteX},
	0x79: {Adc, "ADC", ModeIndexedAbsoluteY},
	0x61: {Adc, "ADC", ModeIndexedIndirect},
	0x71: {Adc, "ADC", ModeIndirectIndexed},
	0x72: {Adc, "ADC", ModeZeroPageIndirect},
	0x29: {And, "AND", ModeImmediate},
	0x25: {And, "AND", ModeZeroPage},
	0x35: {And, "AND", ModeIndexedZeroPageX},
	0x2D: {And, "AND", ModeAbsolute},
	0x3D: {And, "AND", ModeIndexedAbsoluteX},
	0x39: {And, "AND", ModeIndexedAbsoluteY},
	0x21: {And, "AND", ModeIndexedIndirect},
	0x31: {And, "AND", ModeIndirectIndexed},
	0x32: {And, "AND", ModeZeroPageIndirect},
	0x0A: {Asl, "ASL", ModeAccumulator},
	0x06: {Asl, "ASL", ModeZeroPage},
	0x16: {Asl, "ASL", ModeIndexedZeroPageX},
	0x0E: {Asl, "ASL", ModeAbsolute},
	0x1E: {Asl, "ASL", ModeIndexedAbsoluteX},
	0x90: {Bcc, "BCC", ModeRelative},
	0xB0: {Bcs, "BCS", ModeRelative},
	0xF0: {Beq, "BEQ", ModeRelative},
	0x89: {Bit, "BIT", ModeImmediate},
	0x24: {Bit, "BIT", ModeZeroPage},
	0x34: {Bit, "BIT", ModeIndexedZeroPageX},
	0x2C: {Bit, "BIT", ModeAbsolute},
	0x3C: {Bit, "BIT", ModeIndexedAbsoluteX},
	0x30: {Bmi, "BMI", ModeRelative},
	0xD0: {Bne, "BNE", ModeRelative},
	0x10: {Bpl, "BPL", ModeRelative},
	0x80: {Bra, "BRA", ModeRelative},
	0x00: {Brk, "BRK", ModeImplied},
	0x50: {Bvc, "BVC", ModeRelative},
	0x70: {Bvs, "BVS", ModeRelative},
	0x18: {Clc, "CLC", ModeImplied},
	0xD8: {Cld, "CLD", ModeImplied},
	0x58: {Cli, "CLI", ModeImplied},
	0xB8: {Clv, "CLV", ModeImplied},
	0xC9: {Cmp, "CMP", ModeImmediate},
	0xC5: {Cmp, "CMP", ModeZeroPage},
	0xD5: {Cmp, "CMP", ModeIndexedZeroPageX},
	0xCD: {Cmp, "CMP", ModeAbsolute},
	0xDD: {Cmp, "CMP", ModeIndexedAbsoluteX},
	0xD9: {Cmp, "CMP", ModeIndexedAbsoluteY},
	0xC1: {Cmp, "CMP", ModeIndexedIndirect},
	0xD1: {Cmp, "CMP", ModeIndirectIndexed},
	0xD2: {Cmp, "CMP", ModeZeroPageIndirect},
	0xE0: {Cpx, "CPX", ModeImmediate},
	0xE4: {Cpx, "CPX", ModeZeroPage},
	0xEC: {Cpx, "CPX", ModeAbsolute},
	0xC0: {Cpy, "CPY", ModeImmediate},
	0xC4: {Cpy, "CPY", ModeZeroPage},
	0xCC: {Cpy, "CPY", ModeAbsolute},
	0xC6: {Dec, "DEC", ModeZeroPage},
	0xD6: {Dec, "DEC", ModeIndexedZeroPageX},
	0xCE: {Dec, "DEC", ModeAbsolute},
	0xDE: {Dec, "DEC", ModeIndexedAbsoluteX},
	0xCA: {Dex, "DEX", ModeImplied},
	0x88: {Dey, "DEY", ModeImplied},
	0x49: {Eor, "EOR", ModeImmediate},
	0x45: {Eor, "EOR", ModeZeroPage},
	0x55: {Eor, "EOR", ModeIndexedZeroPageX},
	0x4D: {Eor, "EOR", ModeAbsolute},
	0x5D: {Eor, "EOR", ModeIndexedAbsoluteX},
	0x59: {Eor, "EOR", ModeIndexedAbsoluteY},
	0x41: {Eor, "EOR", ModeIndexedIndirect},
	0x51: {Eor, "EOR", ModeIndirectIndexed},
	0x52: {Eor, "EOR", ModeZeroPageIndirect},
	0xE6: {Inc, "INC", ModeZeroPage},
	0xF6: {Inc, "INC", ModeIndexedZeroPageX},
	0xEE: {Inc, "INC", ModeAbsolute},
	0xFE: {Inc, "INC", ModeIndexedAbsoluteX},
	0xE8: {Inx, "INX", ModeImplied},
	0xC8: {Iny, "INY", ModeImplied},
	0x4C: {Jmp, "JMP", ModeAbsolute},
	0x6C: {Jmp, "JMP", ModeAbsoluteIndirect},
	0x7C: {Jmp, "JMP", ModeAbsoluteIndexedIndirect},
	0x20: {Jsr, "JSR", ModeAbsolute},
	0xA9: {Lda, "LDA", ModeImmediate},
	0xA5: {Lda, "LDA", ModeZeroPage},
	0xB5: {Lda, "LDA", ModeIndexedZeroPageX},
	0xAD: {Lda, "LDA", ModeAbsolute},
	0xBD: {Lda, "LDA", ModeIndexedAbsoluteX},
	0xB9: {Lda, "LDA", ModeIndexedAbsoluteY},
	0xA1: {Lda, "LDA", ModeIndexedIndirect},
	0xB1: {Lda, "LDA", ModeIndirectIndexed},
	0xB2: {Lda, "LDA", ModeZeroPageIndirect},
	0xA2: {Ldx, "LDX", ModeImmediate},
	0xA6: {Ldx, "LDX", ModeZeroPage},
	0xB6: {Ldx, "LDX", ModeIndexedZeroPageY},
	0xAE: {Ldx, "LDX", ModeAbsolute},
	0xBE: {Ldx, "LDX", ModeIndexedAbsoluteY},
	0xA0: {Ldy, "LDY", ModeImmediate},
	0xA4: {Ldy, "LDY", ModeZeroPage},
	0xB4: {Ldy, "LDY", ModeIndexedZeroPageX},
	0xAC: {Ldy, "LDY", ModeAbsolute},
	0xBC: {Ldy, "LDY", ModeIndexedAbsoluteX},
	0x4A: {Lsr, "LSR", ModeAccumulator},
	0x46: {Lsr, "LSR", ModeZeroPage},
	0x56: {Lsr, "LSR", ModeIndexedZeroPageX},
	0x4E: {Lsr, "LSR", ModeAbsolute},
	0x5E: {Lsr, "LSR", ModeIndexedAbsoluteX},
	0xEA: {Nop, "NOP", ModeImplied},
	0x09: {Ora, "ORA", ModeImmediate},
	0x05: {Ora, "ORA", ModeZeroPage},
	0x15: {Ora, "ORA", ModeIndexedZeroPageX},
	0x0D: {Ora, "ORA", ModeAbsolute},
	0x1D: {Ora, "ORA", ModeIndexedAbsoluteX},
	0x19: {Ora, "ORA", ModeIndexedAbsoluteY},
	0x01: {Ora, "ORA", ModeIndexedIndirect},
	0x11: {Ora, "ORA", ModeIndirectIndexed},
	0x12: {Ora, "ORA", ModeZeroPageIndirect},
	0x48: {Pha, "PHA", ModeImplied},
	0x08: {Php, "PHP", ModeImplied},
	0xDA: {Phx, "PHX", ModeImplied},
	0x5A: {Phy, "PHY", ModeImplied},
	0x68: {Pla, "PLA", ModeImplied},
	0x28: {Plp, "PLP", ModeImplied},
	0xFA: {Plx, "PLX", ModeImplied},
	0x7A: {Ply, "PLY", ModeImplied},
	0x2A: {Rol, "ROL", ModeAccumulator},
	0x26: {Rol, "ROL", ModeZeroPage},
	0x36: {Rol, "ROL", ModeIndexedZeroPageX},
	0x2E: {Rol, "ROL", ModeAbsolute},
	0x3E: {Rol, "ROL", ModeIndexedAbsoluteX},
	0x6A: {Ror, "ROR", ModeAccumulator},
	0x66: {Ror, "ROR", ModeZeroPage},
	0x76: {Ror, "ROR", ModeIndexedZeroPageX},
	0x6E: {Ror, "ROR", ModeAbsolute},
	0x7E: {Ror, "ROR", ModeIndexedAbsoluteX},
	0x40: {Rti, "RTI", ModeImplied},
	0x60: {Rts, "RTS", ModeImplied},
	0xE9: {Sbc, "SBC", ModeImmediate},
	0xE5: {Sbc, "SBC", ModeZeroPage},
	0xF5: {Sbc, "SBC", ModeIndexedZeroPageX},
	0xED: {Sbc, "SBC", ModeAbsolute},
	0xFD: {Sbc, "SBC", ModeIndexedAbsoluteX},
	0xF9: {Sbc, "SBC", ModeIndexedAbsoluteY},
	0xE1: {Sbc, "SBC", ModeIndexedIndirect},
	0xF1: {Sbc, "SBC", ModeIndirectIndexed},
	0xF2: {Sbc, "SBC", ModeZeroPageIndirect},
	0x38: {Sec, "SEC", ModeImplied},
	0xF8: {Sed, "SED", ModeImplied},
	0x78: {Sei, "SEI", ModeImplied},
	0x85: {Sta, "STA", ModeZeroPage},
	0x95: {Sta, "STA", ModeIndexedZeroPageX},
	0x8D: {Sta, "STA", ModeAbsolute},
	0x9D: {Sta, "STA", ModeIndexedAbsoluteX},
	0x99: {Sta, "STA", ModeIndexedAbsoluteY},
	0x81: {Sta, "STA", ModeIndexedIndirect},
	0x91: {Sta, "STA", ModeIndirectIndexed},
	0x92: {Sta, "STA", ModeZeroPageIndirect},
	0x86: {Stx, "STX", ModeZeroPage},
	0x96: {Stx, "STX", ModeIndexedZeroPageY},
	0x8E: {Stx, "STX", ModeAbsolute},
	0x84: {Sty, "STY", ModeZeroPage},
	0x94: {Sty, "STY", ModeIndexedZeroPageX},
	0x8C: {Sty, "STY", ModeAbsolute},
	0x64: {Stz, "STZ", ModeZeroPage},
	0x74: {Stz, "STZ", ModeIndexedZeroPageX},
	0x9C: {Stz, "STZ", ModeAbsolute},
	0x9E: {Stz, "STZ", ModeIndexedAbsoluteX},
	0xAA: {Tax, "TAX", ModeImplied},
	0xA8: {Tay, "TAY", ModeImplied},
	0x14: {Trb, "TRB", ModeZeroPage},
	0x1C: {Trb, "TRB", ModeAbsolute},
	0x04: {Tsb, "TSB", ModeZeroPage},
	0x0C: {Tsb, "TSB", ModeAbsolute},
	0xBA: {Tsx, "TSX", ModeImplied},
	0x8A: {Txa, "TXA", ModeImplied},
	0x9A: {Txs, "TXS", ModeImplied},
	0x98: {Tya, "TYA", ModeImplied},
}

// Decode maps one opcode byte to its (operation, addressing mode) pair.
// Pure; called exactly once per instruction fetch.
func Decode(code uint8) (OpDef, error) {
	def, ok := opcodes[code]
	if !ok {
		return OpDef{Mode: ModeInvalid}, curated.Errorf(curated.IllegalOpcode, code)
	}
	return def, nil
}
