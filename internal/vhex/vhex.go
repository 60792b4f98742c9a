// Package vhex converts byte-addressed Verilog-style hex dumps, as produced
// by objcopy -O verilog, into the 32-bit-word-addressed form that $readmemh
// expects for a word-wide memory array. Consecutive bytes are packed into
// little-endian words and byte addresses are translated to word addresses.
package vhex

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// WordSize is the only supported memory width, in bytes.
const WordSize = 4

// Run is one contiguous block of input bytes starting at a byte address,
// as delimited by @ directives in the input.
type Run struct {
	Addr uint32 // starting byte address, not necessarily word-aligned
	Data []byte
}

// Block is the packed, word-addressed equivalent of a Run.
type Block struct {
	Addr  uint32 // starting word address
	Words []uint32
}

// Stats summarizes one conversion for operator reporting.
type Stats struct {
	Bytes  int `json:"bytes" jsonschema:"title=Bytes,description=Input bytes consumed"`
	Words  int `json:"words" jsonschema:"title=Words,description=Output words produced"`
	Blocks int `json:"blocks" jsonschema:"title=Blocks,description=Output blocks emitted"`
}

// Parse reads a byte-addressed hex dump into an ordered sequence of runs.
// A token starting a line with @ opens a new run at the hex address that
// follows; every other token is a hex byte appended to the current run.
// Input that opens with byte tokens gets an implicit run at address 0.
// Runs left empty by back-to-back directives are dropped.
func Parse(r io.Reader) ([]Run, error) {
	var (
		runs    []Run
		cur     Run
		open    bool
		lineNum uint
	)

	flush := func() {
		if open && len(cur.Data) > 0 {
			runs = append(runs, cur)
		}
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		for i, tok := range strings.Fields(line) {
			if i == 0 && strings.HasPrefix(tok, "@") {
				flush()
				addr, err := parseAddr(tok[1:])
				if err != nil {
					return nil, newParseError(AddressError, err.Error(), lineNum, line)
				}
				cur = Run{Addr: addr}
				open = true
				continue
			}
			b, err := strconv.ParseUint(tok, 16, 8)
			if err != nil {
				return nil, newParseError(SyntaxError, fmt.Sprintf("invalid byte token %q", tok), lineNum, line)
			}
			if !open {
				cur = Run{}
				open = true
			}
			cur.Data = append(cur.Data, byte(b))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()

	return runs, nil
}

func parseAddr(s string) (uint32, error) {
	if len(s) == 0 {
		return 0, fmt.Errorf("empty address directive")
	}
	addr, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q", s)
	}
	return uint32(addr), nil
}

// Pack converts one run into one block: the byte sequence is zero-padded to
// a word boundary and assembled into little-endian words, and the byte
// address truncates down to the containing word address. Fractional byte
// offsets within a word are absorbed, matching the consuming load tooling.
func Pack(run Run) Block {
	data := run.Data
	if rem := len(data) % WordSize; rem != 0 {
		padded := make([]byte, len(data)+WordSize-rem)
		copy(padded, data)
		data = padded
	}

	words := make([]uint32, 0, len(data)/WordSize)
	for i := 0; i < len(data); i += WordSize {
		words = append(words, binary.LittleEndian.Uint32(data[i:i+WordSize]))
	}
	return Block{Addr: run.Addr / WordSize, Words: words}
}

// PackAll packs runs in order, accumulating conversion stats. Byte counts
// reflect the input before padding.
func PackAll(runs []Run) ([]Block, Stats) {
	blocks := make([]Block, 0, len(runs))
	var st Stats
	for _, run := range runs {
		st.Bytes += len(run.Data)
		b := Pack(run)
		st.Words += len(b.Words)
		blocks = append(blocks, b)
	}
	st.Blocks = len(blocks)
	return blocks, st
}

// Dump renders blocks in order: one @ directive line per block, then one
// line per word, all as 8 lowercase hex digits.
func Dump(blocks []Block, w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, b := range blocks {
		fmt.Fprintf(bw, "@%08x\n", b.Addr)
		for _, word := range b.Words {
			fmt.Fprintf(bw, "%08x\n", word)
		}
	}
	return bw.Flush()
}

// DumpBare renders a single block as a word list with no directive line,
// for images loaded at a fixed offset 0.
func DumpBare(b Block, w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, word := range b.Words {
		fmt.Fprintf(bw, "%08x\n", word)
	}
	return bw.Flush()
}

// Convert runs the whole pass: parse byte-addressed hex from r, pack, and
// dump word-addressed hex to w. Nothing is written on a parse error.
func Convert(r io.Reader, w io.Writer) (Stats, error) {
	runs, err := Parse(r)
	if err != nil {
		return Stats{}, err
	}
	blocks, st := PackAll(runs)
	return st, Dump(blocks, w)
}

// ParseWords reads an already word-addressed hex dump (the Dump format)
// back into blocks. Directive addresses and tokens are word-sized here.
func ParseWords(r io.Reader) ([]Block, error) {
	var (
		blocks  []Block
		cur     Block
		open    bool
		lineNum uint
	)

	flush := func() {
		if open && len(cur.Words) > 0 {
			blocks = append(blocks, cur)
		}
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		for i, tok := range strings.Fields(line) {
			if i == 0 && strings.HasPrefix(tok, "@") {
				flush()
				addr, err := parseAddr(tok[1:])
				if err != nil {
					return nil, newParseError(AddressError, err.Error(), lineNum, line)
				}
				cur = Block{Addr: addr}
				open = true
				continue
			}
			word, err := strconv.ParseUint(tok, 16, 32)
			if err != nil {
				return nil, newParseError(SyntaxError, fmt.Sprintf("invalid word token %q", tok), lineNum, line)
			}
			if !open {
				cur = Block{}
				open = true
			}
			cur.Words = append(cur.Words, uint32(word))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()

	return blocks, nil
}
