package elfconv

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"testing"
)

type testSegment struct {
	paddr uint64
	data  []byte
}

// buildELF assembles a minimal little-endian ELF64 executable with one
// PT_LOAD program header per segment.
func buildELF(t *testing.T, segs []testSegment) *elf.File {
	t.Helper()

	const (
		ehsize    = 64
		phentsize = 56
	)
	dataOff := uint64(ehsize + phentsize*len(segs))

	var buf bytes.Buffer
	le := binary.LittleEndian

	// e_ident
	buf.Write([]byte{0x7F, 'E', 'L', 'F'})
	buf.WriteByte(byte(elf.ELFCLASS64))
	buf.WriteByte(byte(elf.ELFDATA2LSB))
	buf.WriteByte(byte(elf.EV_CURRENT))
	buf.Write(make([]byte, 9))

	write16 := func(v uint16) { _ = binary.Write(&buf, le, v) }
	write32 := func(v uint32) { _ = binary.Write(&buf, le, v) }
	write64 := func(v uint64) { _ = binary.Write(&buf, le, v) }

	write16(uint16(elf.ET_EXEC))
	write16(uint16(elf.EM_RISCV))
	write32(uint32(elf.EV_CURRENT))
	write64(segs[0].paddr)  // e_entry
	write64(ehsize)         // e_phoff
	write64(0)              // e_shoff
	write32(0)              // e_flags
	write16(ehsize)         // e_ehsize
	write16(phentsize)      // e_phentsize
	write16(uint16(len(segs)))
	write16(0) // e_shentsize
	write16(0) // e_shnum
	write16(0) // e_shstrndx

	off := dataOff
	for _, s := range segs {
		write32(uint32(elf.PT_LOAD))
		write32(uint32(elf.PF_R | elf.PF_X))
		write64(off)                // p_offset
		write64(s.paddr)            // p_vaddr
		write64(s.paddr)            // p_paddr
		write64(uint64(len(s.data))) // p_filesz
		write64(uint64(len(s.data))) // p_memsz
		write64(4)                  // p_align
		off += uint64(len(s.data))
	}

	for _, s := range segs {
		buf.Write(s.data)
	}

	f, err := elf.NewFile(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("failed to parse built ELF: %v", err)
	}
	return f
}

func TestConvertSingleSegment(t *testing.T) {
	f := buildELF(t, []testSegment{
		{paddr: 0x21000000, data: []byte{1, 2, 3, 4}},
	})

	img, err := Convert(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if img.Addr != 0x21000000 {
		t.Errorf("Addr = 0x%X, want 0x21000000", img.Addr)
	}
	if !bytes.Equal(img.Data, []byte{1, 2, 3, 4}) {
		t.Errorf("Data = % X, want 01 02 03 04", img.Data)
	}
}

func TestConvertGapFill(t *testing.T) {
	f := buildELF(t, []testSegment{
		{paddr: 0x21000008, data: []byte{8, 9, 10}},
		{paddr: 0x21000000, data: []byte{1, 2, 3, 4}},
	})

	img, err := Convert(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []byte{1, 2, 3, 4, 0xFF, 0xFF, 0xFF, 0xFF, 8, 9, 10}
	if img.Addr != 0x21000000 {
		t.Errorf("Addr = 0x%X, want 0x21000000", img.Addr)
	}
	if !bytes.Equal(img.Data, want) {
		t.Errorf("Data = % X, want % X", img.Data, want)
	}
}

func TestConvertNoLoadableSegments(t *testing.T) {
	f := buildELF(t, []testSegment{
		{paddr: 0x21000000, data: []byte{1}},
	})
	f.Progs = nil

	if _, err := Convert(f); err == nil {
		t.Error("expected error for ELF without loadable segments")
	}
}

func TestConvertSpanTooLarge(t *testing.T) {
	f := buildELF(t, []testSegment{
		{paddr: 0x21000000, data: []byte{1}},
		{paddr: 0x21000000 + MaxImageSize + 1, data: []byte{2}},
	})

	if _, err := Convert(f); err == nil {
		t.Error("expected error for oversized image span")
	}
}
