package gnes

import (
	"fmt"
	"os"

	"gnes/curated"
	"gnes/nes/common"
)

// "NES" + EOF
var inesMagic = [4]byte{0x4E, 0x45, 0x53, 0x1A}

const (
	inesHeaderSize  = 16
	inesTrainerSize = 512

	prgBankSize = 16384
	chrBankSize = 8192
	ramBankSize = 8192
)

// nametable arrangement, flags6 bit 0
const (
	MirrorVertical = iota
	MirrorHorizontal
)

// tv system, flags9 bits 0-1
const (
	PlatformNTSC = iota
	PlatformDual1
	PlatformPAL
	PlatformDual2
)

type inesConfig struct {
	prgSize int
	chrSize int
	ramSize int

	mapper uint8
	mirror uint8

	hasPrgRam    bool
	trainer      bool
	altNametable bool

	platform uint8
}

// parseINesConfig decodes the 12 bytes following the magic number. Only the
// iNES 1.0 layout is accepted.
func parseINesConfig(header []byte) (inesConfig, error) {
	if len(header) != inesHeaderSize-len(inesMagic) {
		return inesConfig{}, curated.Errorf(curated.InvalidHeader, "truncated header")
	}

	flags6 := header[2]
	flags7 := header[3]

	if flags7&0x0C != 0 {
		return inesConfig{}, curated.Errorf(curated.InvalidHeader, "only iNes 1.0 is supported")
	}
	if header[0] == 0 {
		return inesConfig{}, curated.Errorf(curated.InvalidHeader, "no prg rom")
	}

	ramSize := int(header[4]) * ramBankSize
	if ramSize == 0 {
		// value 0 infers 1 (8 KB) for compatibility
		ramSize = ramBankSize
	}

	return inesConfig{
		prgSize:      int(header[0]) * prgBankSize,
		chrSize:      int(header[1]) * chrBankSize,
		ramSize:      ramSize,
		mapper:       flags6>>4 | flags7&0xF0,
		mirror:       flags6 & 1,
		hasPrgRam:    flags6&2 != 0,
		trainer:      flags6&4 != 0,
		altNametable: flags6&8 != 0,
		platform:     header[5] & 3,
	}, nil
}

// Cartridge holds the prg and chr images as bus devices. NROM only: the prg
// rom is mirrored by repetition across 0x8000..0x10000.
type Cartridge struct {
	config inesConfig

	prgRom common.MirroredRom
	chr    common.Rom
}

func (c *Cartridge) Init(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if len(data) < inesHeaderSize {
		return curated.Errorf(curated.InvalidHeader, "file smaller than the header")
	}
	for i, m := range inesMagic {
		if data[i] != m {
			return curated.Errorf(curated.InvalidHeader, "wrong magic number")
		}
	}

	c.config, err = parseINesConfig(data[len(inesMagic):inesHeaderSize])
	if err != nil {
		return err
	}

	if c.config.mapper != 0 {
		return curated.Errorf(curated.Unimplemented, fmt.Sprintf("mapper %d", c.config.mapper))
	}

	offset := inesHeaderSize
	if c.config.trainer {
		offset += inesTrainerSize
	}
	if len(data) < offset+c.config.prgSize+c.config.chrSize {
		return curated.Errorf(curated.InvalidHeader, "file smaller than the rom sizes it declares")
	}

	prg := data[offset : offset+c.config.prgSize]
	chr := data[offset+c.config.prgSize : offset+c.config.prgSize+c.config.chrSize]

	if len(chr) == 0 {
		// chr ram boards; an empty pattern table keeps the ppu bus mapped
		chr = make([]byte, chrBankSize)
	}

	c.prgRom.Init(prg, 0x8000)
	c.chr.Init(chr)
	return nil
}
