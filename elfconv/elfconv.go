// Package elfconv flattens a firmware ELF into the contiguous binary image
// expected by the flashing tools: all loadable segments laid out at their
// physical addresses, with the gaps between them filled with erased-flash
// bytes (0xFF).
package elfconv

import (
	"debug/elf"
	"fmt"
	"io"
	"math"
	"sort"
)

// MaxImageSize caps the flattened image at 16 MiB, comfortably above any
// supported part's flash. A larger span means the ELF declares segments at
// wildly separated addresses and is almost certainly not a firmware image.
const MaxImageSize = 16 << 20

// fillByte is the value of unprogrammed flash.
const fillByte = 0xFF

// Image is a flattened firmware image ready for flashing.
type Image struct {
	// Addr is the physical load address of the first byte
	Addr uint32

	// Data is the contiguous image content
	Data []byte
}

// ConvertFile flattens the ELF at the given path.
func ConvertFile(path string) (*Image, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ELF: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Convert(f)
}

// Convert flattens an already opened ELF file.
func Convert(f *elf.File) (*Image, error) {
	var loads []*elf.Prog
	for _, p := range f.Progs {
		if p.Type == elf.PT_LOAD && p.Filesz > 0 {
			loads = append(loads, p)
		}
	}
	if len(loads) == 0 {
		return nil, fmt.Errorf("no loadable segments")
	}

	sort.Slice(loads, func(i, j int) bool {
		return loads[i].Paddr < loads[j].Paddr
	})

	base := loads[0].Paddr
	end := base
	for _, p := range loads {
		if segEnd := p.Paddr + p.Filesz; segEnd > end {
			end = segEnd
		}
	}

	if base > math.MaxUint32 {
		return nil, fmt.Errorf("load address 0x%X does not fit in 32 bits", base)
	}
	if end-base > MaxImageSize {
		return nil, fmt.Errorf("image span 0x%X exceeds maximum 0x%X", end-base, uint64(MaxImageSize))
	}

	data := make([]byte, end-base)
	for i := range data {
		data[i] = fillByte
	}

	for _, p := range loads {
		if _, err := io.ReadFull(p.Open(), data[p.Paddr-base:p.Paddr-base+p.Filesz]); err != nil {
			return nil, fmt.Errorf("failed to read segment at 0x%X: %w", p.Paddr, err)
		}
	}

	return &Image{Addr: uint32(base), Data: data}, nil
}
