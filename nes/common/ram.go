package common

import (
	"gnes/curated"
)

//	busInt
type Ram struct {
	ram []byte
}

func (r *Ram) Init(size int) {
	r.ram = make([]byte, size)
}

func (r *Ram) Size() uint16 {
	return uint16(len(r.ram))
}

func (r *Ram) Read8(addr uint16) (uint8, error) {
	if int(addr) >= len(r.ram) {
		return 0, curated.Errorf(curated.UnmappedAddress, "read", addr)
	}
	return r.ram[addr], nil
}

func (r *Ram) Write8(addr uint16, val uint8) error {
	if int(addr) >= len(r.ram) {
		return curated.Errorf(curated.UnmappedAddress, "write", addr)
	}
	r.ram[addr] = val
	return nil
}

// MirroredRam repeats a Ram across a larger bus window by taking the offset
// modulo its nominal size.
//
//	busInt
type MirroredRam struct {
	Ram
}

func (r *MirroredRam) Read8(addr uint16) (uint8, error) {
	return r.Ram.Read8(addr % r.Size())
}

func (r *MirroredRam) Write8(addr uint16, val uint8) error {
	return r.Ram.Write8(addr%r.Size(), val)
}
