package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"memh/internal/disasm"
	"memh/internal/vhex"
)

var disasmCmd = &cobra.Command{
	Use:   "disasm <input.hex>",
	Short: "Disassemble a word hex file as RISC-V",
	Long: `Decode each packed word of a 32-bit word hex file as a RISC-V
instruction and print an address / word / mnemonic listing. Words that do
not decode are shown as .word data. Useful for eyeballing a converted
image against the original disassembly.`,
	Example: `
memh disasm firmware.hex
  `,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runDisasm(args[0], cmd.OutOrStdout())
	},
}

func runDisasm(inPath string, w io.Writer) error {
	f, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	defer f.Close()

	blocks, err := vhex.ParseWords(f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", inPath, err)
	}

	var stream disasm.Stream
	for _, b := range blocks {
		va := uint64(b.Addr) * vhex.WordSize
		for _, word := range b.Words {
			stream = append(stream, disasm.Decode(va, word))
			va += vhex.WordSize
		}
	}

	bw := bufio.NewWriter(w)
	for _, in := range stream {
		fmt.Fprintf(bw, "%8x:\t%08x\t%s\n", in.VA, in.Word, in.Text)
	}
	return bw.Flush()
}

func init() {
	rootCmd.AddCommand(disasmCmd)
}
