package cmd

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"memh/internal/vhex"
)

var binCmd = &cobra.Command{
	Use:   "bin <input.bin> <output.hex>",
	Short: "Convert a flat binary to 32-bit word hex",
	Long: `Convert a flat binary image to a 32-bit word hex file. The whole
file is treated as a single run starting at address 0, packed exactly like
the byte-hex conversion. Output is a bare word list unless --at supplies a
load address, in which case the word-address directive is emitted.`,
	Example: `
# Firmware image loaded at offset 0
memh bin firmware.bin firmware.hex

# Image loaded at a nonzero byte address
memh bin --at 80000000 firmware.bin firmware.hex
  `,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		at, _ := cmd.Flags().GetString("at")
		addr, err := strconv.ParseUint(at, 16, 32)
		if err != nil {
			return fmt.Errorf("invalid --at address %q", at)
		}

		st, err := runBin(args[0], args[1], uint32(addr), cmd.Flags().Changed("at"))
		if err != nil {
			return err
		}
		return printSummary(cmd, args[0], args[1], st)
	},
}

func runBin(inPath, outPath string, addr uint32, withDirective bool) (vhex.Stats, error) {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return vhex.Stats{}, fmt.Errorf("read input: %w", err)
	}

	blocks, st := vhex.PackAll([]vhex.Run{{Addr: addr, Data: data}})
	slog.Debug("Packed flat binary", "bytes", st.Bytes, "words", st.Words)

	var out bytes.Buffer
	if withDirective {
		err = vhex.Dump(blocks, &out)
	} else {
		err = vhex.DumpBare(blocks[0], &out)
	}
	if err != nil {
		return vhex.Stats{}, err
	}

	if err := os.WriteFile(outPath, out.Bytes(), 0o644); err != nil {
		return vhex.Stats{}, fmt.Errorf("write output: %w", err)
	}
	return st, nil
}

func init() {
	binCmd.Flags().String("at", "0", "Load byte address (hex); emits the @ directive")
	binCmd.Flags().Bool("json", false, "Print the conversion summary as JSON")
	rootCmd.AddCommand(binCmd)
}
