package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"memh/internal/memh/log"
	"memh/internal/vhex"
)

// Report is the machine-readable conversion summary emitted by --json.
type Report struct {
	Input  string `json:"input" jsonschema:"title=Input,description=Source file path"`
	Output string `json:"output" jsonschema:"title=Output,description=Destination file path"`
	Bytes  int    `json:"bytes" jsonschema:"title=Bytes,description=Input bytes consumed"`
	Words  int    `json:"words" jsonschema:"title=Words,description=Output words produced"`
	Blocks int    `json:"blocks" jsonschema:"title=Blocks,description=Output blocks emitted"`
}

var summaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("36"))

var rootCmd = &cobra.Command{
	Use:   "memh <input.hex> <output.hex>",
	Short: "Convert byte-addressed hex dumps to 32-bit word hex for $readmemh",
	Long: `memh packs byte-addressed Verilog hex dumps, as produced by
objcopy -O verilog, into the 32-bit-word-addressed form that a $readmemh
directive on a word-wide memory array expects. Consecutive bytes become
little-endian words and @ directive addresses are translated from byte to
word addressing.`,
	Example: `
# Convert an objcopy -O verilog dump
memh firmware.byte.hex firmware.hex

# Convert with debug logging
memh -d firmware.byte.hex firmware.hex
  `,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		st, err := runConvert(args[0], args[1])
		if err != nil {
			return err
		}
		return printSummary(cmd, args[0], args[1], st)
	},
}

// runConvert performs one whole byte-to-word pass. The output document is
// built in memory first so a failed conversion never leaves a partial file.
func runConvert(inPath, outPath string) (vhex.Stats, error) {
	src, err := os.ReadFile(inPath)
	if err != nil {
		return vhex.Stats{}, fmt.Errorf("read input: %w", err)
	}

	runs, err := vhex.Parse(bytes.NewReader(src))
	if err != nil {
		return vhex.Stats{}, fmt.Errorf("parse %s: %w", inPath, err)
	}
	for _, r := range runs {
		if r.Addr%vhex.WordSize != 0 {
			slog.Debug("Run address not word aligned, truncating to containing word",
				"addr", fmt.Sprintf("%#x", r.Addr))
		}
	}

	blocks, st := vhex.PackAll(runs)
	slog.Debug("Packed input", "runs", len(runs), "bytes", st.Bytes, "words", st.Words)

	var out bytes.Buffer
	if err := vhex.Dump(blocks, &out); err != nil {
		return vhex.Stats{}, err
	}
	if err := os.WriteFile(outPath, out.Bytes(), 0o644); err != nil {
		return vhex.Stats{}, fmt.Errorf("write output: %w", err)
	}
	return st, nil
}

func printSummary(cmd *cobra.Command, inPath, outPath string, st vhex.Stats) error {
	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(Report{
			Input:  inPath,
			Output: outPath,
			Bytes:  st.Bytes,
			Words:  st.Words,
			Blocks: st.Blocks,
		})
	}

	msg := fmt.Sprintf("Converted %d bytes -> %d words (%d blocks)", st.Bytes, st.Words, st.Blocks)
	if term.IsTerminal(os.Stdout.Fd()) {
		msg = summaryStyle.Render(msg)
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Debug logging")
	rootCmd.Flags().Bool("json", false, "Print the conversion summary as JSON")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		debug, _ := cmd.Flags().GetBool("debug")
		log.Setup(debug)
	}
}

func Execute() {
	// Bypass fang's rendering when output is piped so summaries stay
	// machine-consumable.
	if !term.IsTerminal(os.Stdout.Fd()) {
		if err := rootCmd.Execute(); err != nil {
			os.Exit(1)
		}
		return
	}

	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
