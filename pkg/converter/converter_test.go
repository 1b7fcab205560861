package converter

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/opbtools/opb2midi/pkg/opb"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		filename string
		expected Format
	}{
		{"song.opb", FormatOPB},
		{"SONG.OPB", FormatOPB},
		{"test.mid", FormatMIDI},
		{"test.midi", FormatMIDI},
		{"test.txt", FormatUnknown},
		{"test", FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			result := DetectFormat(tt.filename)
			if result != tt.expected {
				t.Errorf("DetectFormat(%q) = %v, want %v", tt.filename, result, tt.expected)
			}
		})
	}
}

func TestDetectFormatFromContent(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected Format
	}{
		{"OPB file", []byte("OPBin1\x00\x00more"), FormatOPB},
		{"MIDI file", []byte("MThd\x00\x00\x00\x06\x00"), FormatMIDI},
		{"short data", []byte{0x00, 0x01}, FormatUnknown},
		{"other binary", []byte{0x3C, 0x01, 0x3E, 0x02, 0x40, 0x03, 0x42}, FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DetectFormatFromContent(tt.data)
			if result != tt.expected {
				t.Errorf("DetectFormatFromContent() = %v, want %v", result, tt.expected)
			}
		})
	}
}

// buildRawOPB assembles a Raw-format capture from (delta, addr, data)
// triples.
func buildRawOPB(cmds [][3]uint32) []byte {
	b := []byte("OPBin1\x00")
	b = append(b, 1) // raw format
	b = binary.BigEndian.AppendUint32(b, 0)
	b = binary.BigEndian.AppendUint32(b, 0)
	b = binary.BigEndian.AppendUint32(b, 0)
	for _, c := range cmds {
		b = opb.AppendUint7(b, c[0])
		b = opb.AppendUint7(b, c[1])
		b = append(b, byte(c[2]))
	}
	return b
}

func TestMIDINote(t *testing.T) {
	// block 4, fnum 577 is the closest OPL pitch to A4 (440 Hz)
	if got := midiNote(0x41, 0x12); got != 69 {
		t.Errorf("midiNote(0x41, 0x12) = %d, want 69", got)
	}
	if got := midiNote(0, 0); got != -1 {
		t.Errorf("midiNote(0, 0) = %d, want -1", got)
	}
}

func TestOPBToMIDI(t *testing.T) {
	// set pitch on channel 0, key on, key off half a second later
	data := buildRawOPB([][3]uint32{
		{0, 0xA0, 0x41},
		{0, 0xB0, 0x32},
		{500, 0xB0, 0x12},
	})

	out, err := New().OPBToMIDI(data)
	if err != nil {
		t.Fatalf("OPBToMIDI returned error: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("MThd")) {
		t.Errorf("output is not a MIDI file: % X", out[:8])
	}
}

func TestOPBToMIDIRejectsGarbage(t *testing.T) {
	if _, err := New().OPBToMIDI([]byte("not an opb file at all")); err == nil {
		t.Fatal("expected error for non-OPB input")
	}
}

func TestInspect(t *testing.T) {
	data := buildRawOPB([][3]uint32{
		{0, 0xA0, 0x41},
		{0, 0xB0, 0x32},
		{500, 0xB0, 0x12},
		{0, 0x01, 0x20},
	})

	sum, err := New().Inspect(data)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Format != "raw" || sum.Commands != 4 {
		t.Errorf("summary = %+v", sum)
	}
	if math.Abs(sum.Duration-0.5) > 1e-9 {
		t.Errorf("duration = %v, want 0.5", sum.Duration)
	}
	want := []TrackSummary{
		{Channel: 0, Commands: 3},
		{Channel: opb.GlobalTrack, Commands: 1},
	}
	if len(sum.Tracks) != 2 || sum.Tracks[0] != want[0] || sum.Tracks[1] != want[1] {
		t.Errorf("tracks = %+v, want %+v", sum.Tracks, want)
	}
}
