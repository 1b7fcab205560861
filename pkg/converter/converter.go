// Package converter renders decoded OPB register captures to standard
// MIDI files and provides file-level conversion around the opb decoder.
package converter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/opbtools/opb2midi/pkg/opb"
)

// Format represents a file format
type Format string

const (
	FormatOPB     Format = "opb"
	FormatMIDI    Format = "midi"
	FormatUnknown Format = "unknown"
)

// DetectFormat detects the format of a file based on extension
func DetectFormat(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".opb":
		return FormatOPB
	case ".mid", ".midi":
		return FormatMIDI
	default:
		return FormatUnknown
	}
}

// DetectFormatFromContent detects format from file content
func DetectFormatFromContent(data []byte) Format {
	if len(data) < 7 {
		return FormatUnknown
	}
	if string(data[:7]) == "OPBin1\x00" {
		return FormatOPB
	}
	if string(data[:4]) == "MThd" {
		return FormatMIDI
	}
	return FormatUnknown
}

// GetSupportedConversions lists the conversions this package performs
func GetSupportedConversions() []string {
	return []string{"opb2midi"}
}

// Converter handles OPB decoding and rendering
type Converter struct {
	opts opb.DecodeOptions
}

// New creates a new Converter with default decode options
func New() *Converter {
	return &Converter{}
}

// NewWithOptions creates a new Converter with explicit decode options
func NewWithOptions(opts opb.DecodeOptions) *Converter {
	return &Converter{opts: opts}
}

// Decode decodes OPB data with the converter's options
func (c *Converter) Decode(data []byte) (*opb.File, error) {
	return opb.DecodeWithOptions(data, c.opts)
}

// OPBToMIDI decodes OPB data and renders it as a standard MIDI file
func (c *Converter) OPBToMIDI(data []byte) ([]byte, error) {
	f, err := c.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode OPB: %w", err)
	}
	return NewMIDIConverter().GenerateMIDI(f)
}

// Inspect decodes OPB data and returns a summary of its contents
func (c *Converter) Inspect(data []byte) (Summary, error) {
	f, err := c.Decode(data)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(f), nil
}

// ConvertFile converts an OPB file on disk to a MIDI file
func (c *Converter) ConvertFile(inputPath, outputPath string) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	if f := DetectFormatFromContent(data); f != FormatOPB {
		return fmt.Errorf("input is not an OPB file (detected %s)", f)
	}

	result, err := c.OPBToMIDI(data)
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	if err := os.WriteFile(outputPath, result, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// TrackSummary reports the command count routed to one track
type TrackSummary struct {
	Channel  int `json:"channel"`
	Commands int `json:"commands"`
}

// Summary describes a decoded OPB file for inspection surfaces
type Summary struct {
	Format      string         `json:"format"`
	Size        uint32         `json:"size"`
	Instruments int            `json:"instruments"`
	Chunks      int            `json:"chunks"`
	Commands    int            `json:"commands"`
	Duration    float64        `json:"duration_seconds"`
	Tracks      []TrackSummary `json:"tracks"`
}

// Summarize builds a Summary from a decoded file. Only tracks that
// received at least one command are listed.
func Summarize(f *opb.File) Summary {
	s := Summary{
		Format:      f.Header.Format.String(),
		Size:        f.Header.Size,
		Instruments: len(f.Instruments),
		Chunks:      len(f.Chunks),
		Commands:    len(f.Commands),
	}
	if n := len(f.Commands); n > 0 {
		s.Duration = f.Commands[n-1].Time
	}
	for _, tr := range f.Tracks {
		if len(tr.Commands) > 0 {
			s.Tracks = append(s.Tracks, TrackSummary{Channel: tr.Channel, Commands: len(tr.Commands)})
		}
	}
	return s
}
