package cmd

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"

	"github.com/marcinbor85/gohex"
	"github.com/spf13/cobra"

	"memh/internal/vhex"
)

var ihexCmd = &cobra.Command{
	Use:   "ihex <input.hex> <output.hex>",
	Short: "Convert Intel HEX to 32-bit word hex",
	Long: `Convert an Intel HEX file to a 32-bit word hex file. Each data
segment becomes one run at its byte address and is packed exactly like the
byte-hex conversion. Segments are emitted in ascending address order.`,
	Example: `
# Toolchains that emit Intel HEX instead of objcopy -O verilog
memh ihex firmware.ihex firmware.hex
  `,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		st, err := runIhex(args[0], args[1])
		if err != nil {
			return err
		}
		return printSummary(cmd, args[0], args[1], st)
	},
}

func runIhex(inPath, outPath string) (vhex.Stats, error) {
	f, err := os.Open(inPath)
	if err != nil {
		return vhex.Stats{}, fmt.Errorf("read input: %w", err)
	}
	defer f.Close()

	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(f); err != nil {
		return vhex.Stats{}, fmt.Errorf("parse %s: %w", inPath, err)
	}

	var runs []vhex.Run
	for _, seg := range mem.GetDataSegments() {
		slog.Debug("Intel HEX segment", "addr", fmt.Sprintf("%#x", seg.Address), "bytes", len(seg.Data))
		runs = append(runs, vhex.Run{Addr: seg.Address, Data: seg.Data})
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
	ihexCmd.Flags().Bool("json", false, "Print the conversion summary as JSON")
	rootCmd.AddCommand(ihexCmd)
}
