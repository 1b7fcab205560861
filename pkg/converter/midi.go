package converter

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/opbtools/opb2midi/pkg/opb"
)

// MIDIConverter renders decoded OPB tracks as a standard MIDI file
type MIDIConverter struct {
	ticksPerQuarter uint16
	tempo           float64
	velocity        uint8
}

// NewMIDIConverter creates a new MIDI converter
func NewMIDIConverter() *MIDIConverter {
	return &MIDIConverter{
		ticksPerQuarter: 480,
		tempo:           120.0,
		velocity:        100,
	}
}

// opl3Clock is the master clock of an OPL3 chip in Hz. Channel frequency
// is fnum * clock/288 / 2^(20-block).
const opl3Clock = 14318182.0

// midiNote converts an OPL fnum/block pair to the nearest MIDI note
// number, or -1 if the pair encodes no usable pitch.
func midiNote(fnumLo, fnumHi byte) int {
	fnum := int(fnumLo) | int(fnumHi&0x03)<<8
	if fnum == 0 {
		return -1
	}
	block := uint(fnumHi>>2) & 0x07
	freq := float64(fnum) * (opl3Clock / 288.0) / float64(uint32(1)<<(20-block))
	note := int(math.Round(69 + 12*math.Log2(freq/440.0)))
	if note < 0 || note > 127 {
		return -1
	}
	return note
}

// GenerateMIDI creates MIDI data from a decoded OPB file. Each OPL
// channel that produces at least one note becomes its own MIDI track;
// note on/off events follow the key-on bit of the channel's 0xB0
// register, pitched from the fnum/block state at the moment of key-on.
func (m *MIDIConverter) GenerateMIDI(f *opb.File) ([]byte, error) {
	if f == nil {
		return nil, errors.New("nil file")
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(m.ticksPerQuarter)

	ticksPerSecond := float64(m.ticksPerQuarter) * m.tempo / 60.0

	// conductor track: tempo and 4/4 time signature
	var conductor smf.Track
	microsecondsPerBeat := uint32(60000000.0 / m.tempo)
	conductor.Add(0, smf.Message([]byte{
		0xFF, 0x51, 0x03,
		byte(microsecondsPerBeat >> 16),
		byte(microsecondsPerBeat >> 8),
		byte(microsecondsPerBeat),
	}))
	conductor.Add(0, smf.Message([]byte{0xFF, 0x58, 0x04, 0x04, 0x02, 0x18, 0x08}))
	conductor.Close(0)
	if err := s.Add(conductor); err != nil {
		return nil, fmt.Errorf("failed to add conductor track: %w", err)
	}

	for _, tr := range f.Tracks[:opb.NumChannels] {
		events := channelNotes(tr, ticksPerSecond, m.velocity)
		if len(events) == 0 {
			continue
		}

		var track smf.Track
		var currentTick uint32
		for _, ev := range events {
			track.Add(ev.tick-currentTick, ev.msg)
			currentTick = ev.tick
		}
		track.Close(0)
		if err := s.Add(track); err != nil {
			return nil, fmt.Errorf("failed to add track for channel %d: %w", tr.Channel, err)
		}
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write MIDI: %w", err)
	}
	return buf.Bytes(), nil
}

type noteEvent struct {
	tick uint32
	msg  midi.Message
}

// channelNotes reconstructs note on/off events for one OPL channel from
// its register-write track.
func channelNotes(tr opb.Track, ticksPerSecond float64, velocity uint8) []noteEvent {
	var events []noteEvent
	var fnumLo, fnumHi byte
	keyOn := false
	current := -1
	midiCh := uint8(tr.Channel % 16)

	for _, c := range tr.Commands {
		reg := byte(c.Addr)
		switch {
		case reg >= 0xA0 && reg <= 0xA8:
			fnumLo = c.Data
		case reg >= 0xB0 && reg <= 0xB8:
			fnumHi = c.Data
			on := c.Data&0x20 != 0
			if on == keyOn {
				continue
			}
			tick := uint32(c.Time * ticksPerSecond)
			if on {
				if note := midiNote(fnumLo, fnumHi); note >= 0 {
					events = append(events, noteEvent{tick, midi.NoteOn(midiCh, uint8(note), velocity)})
					current = note
				}
			} else if current >= 0 {
				events = append(events, noteEvent{tick, midi.NoteOff(midiCh, uint8(current))})
				current = -1
			}
			keyOn = on
		}
	}

	// close a note left hanging at the end of the capture
	if current >= 0 && len(events) > 0 {
		events = append(events, noteEvent{events[len(events)-1].tick, midi.NoteOff(midiCh, uint8(current))})
	}
	return events
}

// WriteMIDIFile renders a decoded OPB file and writes it to filename
func (m *MIDIConverter) WriteMIDIFile(f *opb.File, filename string) error {
	data, err := m.GenerateMIDI(f)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}
