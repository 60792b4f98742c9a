package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/marcinbor85/gohex"
)

func TestRunIhex(t *testing.T) {
	tmpDir := t.TempDir()

	mem := gohex.NewMemory()
	if err := mem.AddBinary(0x100, []byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee}); err != nil {
		t.Fatal(err)
	}
	var in bytes.Buffer
	mem.DumpIntelHex(&in, 16)

	inPath := filepath.Join(tmpDir, "in.ihex")
	outPath := filepath.Join(tmpDir, "out.hex")
	if err := os.WriteFile(inPath, in.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	st, err := runIhex(inPath, outPath)
	if err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	want := "@00000040\nddccbbaa\n000000ee\n"
	if string(got) != want {
		t.Errorf("wrong output:\n%s", got)
	}
	if st.Bytes != 5 || st.Words != 2 || st.Blocks != 1 {
		t.Errorf("wrong stats: %+v", st)
	}
}

func TestRunIhexMalformedInput(t *testing.T) {
	tmpDir := t.TempDir()
	inPath := filepath.Join(tmpDir, "bad.ihex")
	if err := os.WriteFile(inPath, []byte("not intel hex\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runIhex(inPath, filepath.Join(tmpDir, "out.hex")); err == nil {
		t.Fatal("expected parse error")
	}
}
