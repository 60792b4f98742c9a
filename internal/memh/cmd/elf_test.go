package cmd

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// testELF builds an ELF32 little-endian RISC-V executable with one PT_LOAD
// segment carrying payload at loadAddr.
func testELF(loadAddr uint32, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0x7f, 'E', 'L', 'F', 1, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0})

	hdr := []uint32{
		2 | 0xf3<<16, // e_type EXEC, e_machine RISC-V
		1,            // e_version
		loadAddr,     // e_entry
		52,           // e_phoff
		0,            // e_shoff
		0,            // e_flags
		52 | 32<<16,  // e_ehsize, e_phentsize
		1,            // e_phnum (e_shentsize 0)
		0,            // e_shnum, e_shstrndx
	}
	ph := []uint32{
		1,                    // p_type PT_LOAD
		84,                   // p_offset
		loadAddr,             // p_vaddr
		loadAddr,             // p_paddr
		uint32(len(payload)), // p_filesz
		uint32(len(payload)), // p_memsz
		5,                    // p_flags R+X
		4,                    // p_align
	}
	binary.Write(&buf, binary.LittleEndian, hdr)
	binary.Write(&buf, binary.LittleEndian, ph)
	buf.Write(payload)
	return buf.Bytes()
}

func TestRunElf(t *testing.T) {
	tmpDir := t.TempDir()
	inPath := filepath.Join(tmpDir, "in.elf")
	outPath := filepath.Join(tmpDir, "out.hex")

	payload := []byte{0x13, 0x00, 0x00, 0x00, 0xef}
	if err := os.WriteFile(inPath, testELF(0x80000000, payload), 0o644); err != nil {
		t.Fatal(err)
	}

	st, err := runElf(inPath, outPath)
	if err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	want := "@20000000\n00000013\n000000ef\n"
	if string(got) != want {
		t.Errorf("wrong output:\n%s", got)
	}
	if st.Bytes != 5 || st.Words != 2 {
		t.Errorf("wrong stats: %+v", st)
	}
}

func TestRunElfNotELF(t *testing.T) {
	tmpDir := t.TempDir()
	inPath := filepath.Join(tmpDir, "not.elf")
	if err := os.WriteFile(inPath, []byte("plain text\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runElf(inPath, filepath.Join(tmpDir, "out.hex")); err == nil {
		t.Fatal("expected error for non-ELF input")
	}
}
