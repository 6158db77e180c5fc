package curated

// The closed list of fault patterns raised by the emulator core.
const (
	// decoder
	IllegalOpcode = "illegal opcode: 0x%02x"

	// cpu
	IllegalAddressMode = "illegal address mode: %s with %s"
	StepFault          = "cpu: pc 0x%04x: %v"

	// bus
	UnmappedAddress       = "memory access violation: %s of unmapped address 0x%04x"
	ReadOnlyMemory        = "memory access violation: write to read only memory at 0x%04x"
	WriteOnlyRegister     = "memory access violation: read of write only register at 0x%04x"
	UnimplementedRegister = "unimplemented: %s of register 0x%04x"

	// cartridge
	InvalidHeader = "invalid iNes header: %v"
	Unimplemented = "unimplemented: %v"
)
