// Package elfx provides helpers for opening ELF binaries and extracting
// their loadable segments as address-tagged byte images.
package elfx

import (
	"debug/elf"
	"fmt"
	"io"
	"sort"

	"github.com/ianlancetaylor/demangle"
)

// Image is an opened ELF together with its file-backed load segments.
type Image struct {
	Path  string
	File  *elf.File
	Entry uint64
	Loads []Seg
}

// Seg is one PT_LOAD segment's file-backed bytes at its load address.
// The load (physical) address is used, matching objcopy's choice of LMA
// when emitting hex images.
type Seg struct {
	Addr  uint64
	Vaddr uint64
	Data  []byte
	Flags elf.ProgFlag
}

// Sym is a named address from the symbol table, with C++ names demangled.
type Sym struct {
	Name string
	Addr uint64
}

// Open reads path as an ELF and collects its loadable segments in program
// header order. Segments with no file-backed bytes (pure BSS) are skipped.
func Open(path string) (*Image, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open elf: %w", err)
	}

	im := &Image{Path: path, File: f, Entry: f.Entry}
	for _, p := range f.Progs {
		if p.Type != elf.PT_LOAD || p.Filesz == 0 {
			continue
		}
		data := make([]byte, p.Filesz)
		if _, err := io.ReadFull(p.Open(), data); err != nil {
			f.Close()
			return nil, fmt.Errorf("read segment at %#x: %w", p.Paddr, err)
		}
		im.Loads = append(im.Loads, Seg{
			Addr:  p.Paddr,
			Vaddr: p.Vaddr,
			Data:  data,
			Flags: p.Flags,
		})
	}
	return im, nil
}

// Close releases the underlying ELF file.
func (im *Image) Close() error {
	return im.File.Close()
}

// Symbols returns the defined symbols sorted by address. Stripped binaries
// yield an empty slice rather than an error.
func (im *Image) Symbols() []Sym {
	syms, err := im.File.Symbols()
	if err != nil {
		return nil
	}

	out := make([]Sym, 0, len(syms))
	for _, s := range syms {
		if s.Name == "" || s.Section == elf.SHN_UNDEF {
			continue
		}
		out = append(out, Sym{Name: demangle.Filter(s.Name), Addr: s.Value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Addr < out[j].Addr })
	return out
}
