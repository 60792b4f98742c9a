package cmd

import (
	"bytes"
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/spf13/cobra"

	"memh/internal/elfx"
	"memh/internal/vhex"
)

var elfCmd = &cobra.Command{
	Use:   "elf <input.elf> <output.hex>",
	Short: "Extract ELF load segments into 32-bit word hex",
	Long: `Extract the loadable segments of an ELF executable and pack them
into a 32-bit word hex file, collapsing the usual objcopy -O verilog step
and the byte-to-word conversion into one. Segment load (physical) addresses
are used, matching objcopy's LMA behavior.`,
	Example: `
# One-step firmware image from a linked executable
memh elf firmware.elf firmware.hex
  `,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		st, err := runElf(args[0], args[1])
		if err != nil {
			return err
		}
		return printSummary(cmd, args[0], args[1], st)
	},
}

func runElf(inPath, outPath string) (vhex.Stats, error) {
	im, err := elfx.Open(inPath)
	if err != nil {
		return vhex.Stats{}, err
	}
	defer im.Close()

	slog.Debug("Opened ELF", "path", inPath, "entry", fmt.Sprintf("%#x", im.Entry), "segments", len(im.Loads))
	for _, sym := range im.Symbols() {
		slog.Debug("Symbol", "addr", fmt.Sprintf("%#x", sym.Addr), "name", sym.Name)
	}

	var runs []vhex.Run
	for _, seg := range im.Loads {
		if seg.Addr > math.MaxUint32 {
			return vhex.Stats{}, fmt.Errorf("segment load address %#x exceeds 32 bits", seg.Addr)
		}
		runs = append(runs, vhex.Run{Addr: uint32(seg.Addr), Data: seg.Data})
	}

	blocks, st := vhex.PackAll(runs)

	var out bytes.Buffer
	if err := vhex.Dump(blocks, &out); err != nil {
		return vhex.Stats{}, err
	}
	if err := os.WriteFile(outPath, out.Bytes(), 0o644); err != nil {
		return vhex.Stats{}, fmt.Errorf("write output: %w", err)
	}
	return st, nil
}

func init() {
	elfCmd.Flags().Bool("json", false, "Print the conversion summary as JSON")
	rootCmd.AddCommand(elfCmd)
}
