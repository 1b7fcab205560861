// Package main is the entry point for the opb2midi CLI
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opbtools/opb2midi/pkg/api"
	"github.com/opbtools/opb2midi/pkg/converter"
	"github.com/opbtools/opb2midi/pkg/opb"
	"github.com/opbtools/opb2midi/pkg/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	outputFile     string
	jsonOutput     bool
	strictVarints  bool
	ticksPerSecond float64
	serverPort     int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "opb2midi",
	Short: "Decode OPB register captures and convert them to MIDI",
	Long: `opb2midi decodes OPB binary captures of OPL-family register writes
into per-channel command tracks and converts them to standard MIDI files.

Examples:
  opb2midi convert song.opb -o song.mid
  opb2midi inspect song.opb
  opb2midi inspect song.opb --json
  opb2midi tui
  opb2midi serve --port 8080`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
}

var convertCmd = &cobra.Command{
	Use:   "convert <input.opb>",
	Short: "Convert an OPB file to MIDI",
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <input.opb>",
	Short: "Show the contents of an OPB file",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().Float64Var(&ticksPerSecond, "tick-rate", opb.DefaultTicksPerSecond, "Delta ticks per second")
	rootCmd.PersistentFlags().BoolVar(&strictVarints, "strict", false, "Reject non-minimal varint encodings")

	convertCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .mid file path")

	inspectCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the summary as JSON")

	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "Server port")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
}

func newConverter() *converter.Converter {
	return converter.NewWithOptions(opb.DecodeOptions{
		TicksPerSecond: ticksPerSecond,
		StrictVarints:  strictVarints,
	})
}

func getOutputPath(input, defaultExt string) string {
	if outputFile != "" {
		return outputFile
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + defaultExt
}

func runConvert(cmd *cobra.Command, args []string) error {
	input := args[0]
	output := getOutputPath(input, ".mid")

	if err := newConverter().ConvertFile(input, output); err != nil {
		return err
	}

	fmt.Printf("Converted %s -> %s\n", input, output)
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	sum, err := newConverter().Inspect(data)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	}

	fmt.Printf("Format:      %s\n", sum.Format)
	fmt.Printf("Size:        %d bytes declared\n", sum.Size)
	fmt.Printf("Instruments: %d\n", sum.Instruments)
	fmt.Printf("Dictionary:  %d entries\n", sum.Chunks)
	fmt.Printf("Commands:    %d\n", sum.Commands)
	fmt.Printf("Duration:    %.3fs\n", sum.Duration)
	for _, tr := range sum.Tracks {
		if tr.Channel == opb.GlobalTrack {
			fmt.Printf("  global      %d commands\n", tr.Commands)
		} else {
			fmt.Printf("  channel %-2d  %d commands\n", tr.Channel, tr.Commands)
		}
	}
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	return tui.Run()
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Printf("Starting API server on port %d...\n", serverPort)
	return api.StartServer(serverPort)
}
