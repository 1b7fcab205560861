// Package opb decodes OPB binary captures of OPL-family register writes.
//
// An OPB file packs a fixed header, a table of FM instrument definitions,
// a dictionary of recurring register-write patterns ("chunks"), and an
// encoded command timeline. Decoding reconstructs a flat, time-ordered
// command stream and partitions it into one track per OPL channel plus a
// global track for non-channel registers. The decoder works entirely on an
// in-memory buffer and performs no I/O.
package opb

// Format is the container's command-stream encoding discriminant.
type Format byte

const (
	// FormatStandard encodes commands as dictionary back-references.
	FormatStandard Format = 0
	// FormatRaw encodes an explicit address/data pair per command.
	FormatRaw Format = 1
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatStandard:
		return "standard"
	case FormatRaw:
		return "raw"
	default:
		return "unknown"
	}
}

const (
	idSize     = 7
	headerSize = idSize + 1 + 12

	// NumChannels is the number of OPL3 voice channels.
	NumChannels = 18
	// NumTracks is NumChannels plus the global track.
	NumTracks = NumChannels + 1
	// GlobalTrack is the track index for non-channel registers.
	GlobalTrack = NumChannels

	// MaxChunkPayload is the maximum dictionary entry payload length.
	MaxChunkPayload = 16

	instrumentSize = 18
)

var fileID = [idSize]byte{'O', 'P', 'B', 'i', 'n', '1', 0}

// Header is the container metadata read from the first 20 bytes.
type Header struct {
	Format         Format
	Size           uint32 // declared total file size
	NumInstruments uint32
	NumChunks      uint32
}

// Operator holds the four raw register values of one FM operator.
// The decoder treats them as opaque; interpretation is the renderer's job.
type Operator struct {
	Characteristic int16
	AttackDecay    int16
	SustainRelease int16
	WaveSelect     int16
}

// Instrument is one FM voice definition from the instrument table.
type Instrument struct {
	FeedConn  int16
	Modulator Operator
	Carrier   Operator
	Index     int
}

// Chunk is one dictionary entry: a repeat count and a raw payload of
// (address-low, data) byte pairs. Payloads are copied verbatim and never
// deduplicated against each other.
type Chunk struct {
	Count   uint32
	Payload []byte
}

// NoChunkRef marks a command decoded from a literal pair rather than
// a dictionary reference.
const NoChunkRef = -1

// Command is one timestamped register write.
type Command struct {
	Addr uint16 // register address, 0-511
	Data byte
	Time float64 // absolute seconds from the start of the capture
	// OrderIndex is the command's position in decode order. It is unique
	// across the whole stream and used only to break timestamp ties.
	OrderIndex int
	// ChunkRef is the dictionary index this command was expanded from,
	// or NoChunkRef for a literal pair.
	ChunkRef int
}

// Track is the ordered command sequence routed to one channel, or to the
// global track for registers that are not channel-specific. Commands are
// shared with the flat stream; a track owns none of them.
type Track struct {
	Channel  int
	Commands []Command
}

// File is the aggregate result of a successful decode. It is never
// produced partially: any decode error aborts the whole pipeline.
type File struct {
	Header      Header
	Instruments []Instrument
	Chunks      []Chunk
	Commands    []Command
	Tracks      [NumTracks]Track
}

// DefaultTicksPerSecond is the delta-tick rate assumed when DecodeOptions
// does not supply one. OPB captures log register writes at millisecond
// resolution.
const DefaultTicksPerSecond = 1000.0

// DecodeOptions carries the decode-time knobs the container itself does
// not encode.
type DecodeOptions struct {
	// TicksPerSecond converts command time deltas to seconds.
	// Zero or negative selects DefaultTicksPerSecond.
	TicksPerSecond float64
	// StrictVarints rejects non-minimal and overflowing varint encodings
	// with MalformedIntegerError instead of accepting them.
	StrictVarints bool
}
