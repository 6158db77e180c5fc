package common

import (
	"gnes/curated"
)

//	busInt
type Rom struct {
	rom []byte
}

func (r *Rom) Init(bytes []byte) {
	r.rom = bytes
}

func (r *Rom) Size() int {
	return len(r.rom)
}

func (r *Rom) Read8(addr uint16) (uint8, error) {
	if int(addr) >= len(r.rom) {
		return 0, curated.Errorf(curated.UnmappedAddress, "read", addr)
	}
	return r.rom[addr], nil
}

func (r *Rom) Write8(addr uint16, val uint8) error {
	return curated.Errorf(curated.ReadOnlyMemory, addr)
}

// MirroredRom wraps a rom image by repetition into a larger window, eg the
// NROM-128 16KiB prg rom which appears twice across 0x8000..0x10000.
//
//	busInt
type MirroredRom struct {
	Rom
}

func (r *MirroredRom) Init(bytes []byte, targetSize int) {
	rom := make([]byte, targetSize)
	for i := range rom {
		rom[i] = bytes[i%len(bytes)]
	}
	r.Rom.Init(rom)
}
