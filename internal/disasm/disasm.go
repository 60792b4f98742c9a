// Package disasm defines a common instruction representation used
// by the word-image disassembly listing.
package disasm

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/arch/riscv64/riscv64asm"
)

// Inst is a simplified decoded instruction.
type Inst struct {
	VA   uint64  // byte address of the word
	Word uint32  // raw encoding, as packed
	Text string  // formatted disassembly string
	Raw  [4]byte // little-endian encoding bytes
}

// Stream is a linear sequence of instructions.
type Stream []Inst

// Decode interprets one packed 32-bit word at va as a RISC-V instruction.
// Words that do not decode are kept in the stream as .word data.
func Decode(va uint64, word uint32) Inst {
	var raw [4]byte
	binary.LittleEndian.PutUint32(raw[:], word)

	in := Inst{VA: va, Word: word, Raw: raw}
	inst, err := riscv64asm.Decode(raw[:])
	if err != nil {
		in.Text = fmt.Sprintf(".word 0x%08x", word)
		return in
	}
	in.Text = riscv64asm.GNUSyntax(inst)
	return in
}
