package common

import (
	"gnes/curated"
)

// BusInt is implemented by every device reachable over a memory bus.
// Addresses are device local; the memory controller subtracts the region
// base before dispatch.
type BusInt interface {
	Read8(addr uint16) (uint8, error)
	Write8(addr uint16, val uint8) error
}

type memoryRegion struct {
	dev BusInt

	// half open range [start, end) in the 16 bit address space; end may be
	// 0x10000 so the pair is kept wide
	start uint32
	end   uint32
}

// MemoryController dispatches bus accesses to the owning device. Regions are
// scanned in insertion order and the first match wins; the core wires them
// disjoint.
type MemoryController struct {
	regions []memoryRegion
}

func (m *MemoryController) Init() {
	m.regions = nil
}

// AddMemory maps dev over the half open range [start, end).
func (m *MemoryController) AddMemory(dev BusInt, start uint32, end uint32) {
	if end <= start || end > 0x10000 {
		panic("bad memory region")
	}
	m.regions = append(m.regions, memoryRegion{dev: dev, start: start, end: end})
}

func (m *MemoryController) find(addr uint16) *memoryRegion {
	a := uint32(addr)
	for i := range m.regions {
		r := &m.regions[i]
		if a >= r.start && a < r.end {
			return r
		}
	}
	return nil
}

func (m *MemoryController) Read8(addr uint16) (uint8, error) {
	r := m.find(addr)
	if r == nil {
		return 0, curated.Errorf(curated.UnmappedAddress, "read", addr)
	}
	return r.dev.Read8(addr - uint16(r.start))
}

func (m *MemoryController) Write8(addr uint16, val uint8) error {
	r := m.find(addr)
	if r == nil {
		return curated.Errorf(curated.UnmappedAddress, "write", addr)
	}
	return r.dev.Write8(addr-uint16(r.start), val)
}

// little endian
func (m *MemoryController) Read16(addr uint16) (uint16, error) {
	lsb, err := m.Read8(addr)
	if err != nil {
		return 0, err
	}
	msb, err := m.Read8(addr + 1)
	if err != nil {
		return 0, err
	}
	return uint16(lsb) | uint16(msb)<<8, nil
}

// Read64 assembles the 8 consecutive bytes starting at addr in little endian
// order. The ppu uses it to grab a whole pattern table plane in one go.
func (m *MemoryController) Read64(addr uint16) (uint64, error) {
	var val uint64
	for i := uint16(0); i < 8; i++ {
		b, err := m.Read8(addr + i)
		if err != nil {
			return 0, err
		}
		val |= uint64(b) << (8 * i)
	}
	return val, nil
}
