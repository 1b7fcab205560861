package opb

import (
	"encoding/binary"
	"errors"
)

// Decode decodes a complete OPB file from data using default options.
func Decode(data []byte) (*File, error) {
	return DecodeWithOptions(data, DecodeOptions{})
}

// DecodeWithOptions decodes a complete OPB file from data. The pipeline
// is a single left-to-right pass: header, instrument table, pattern
// dictionary, command stream, then track demultiplexing. The first error
// aborts the decode; no partial File is ever returned.
func DecodeWithOptions(data []byte, opts DecodeOptions) (*File, error) {
	if opts.TicksPerSecond <= 0 {
		opts.TicksPerSecond = DefaultTicksPerSecond
	}
	d := decoder{opts: opts}

	hdr, rest, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}

	f := &File{Header: hdr}
	f.Instruments, rest, err = d.readInstruments(rest, hdr.NumInstruments)
	if err != nil {
		return nil, err
	}
	f.Chunks, rest, err = d.readChunks(rest, hdr.NumChunks)
	if err != nil {
		return nil, err
	}
	f.Commands, err = d.readCommands(rest, hdr.Format, f.Chunks)
	if err != nil {
		return nil, err
	}

	f.Demux()
	return f, nil
}

// ParseHeader validates the magic tag and format byte and reads the three
// big-endian size fields. It returns the header and the unconsumed
// remainder of data. Counts are not checked against the remaining length
// here; later stages fail with TruncatedError if they run out of input.
func ParseHeader(data []byte) (Header, []byte, error) {
	if len(data) < headerSize {
		return Header{}, nil, &TruncatedError{Stage: "header", Needed: headerSize - len(data)}
	}
	var id [idSize]byte
	copy(id[:], data[:idSize])
	if id != fileID {
		return Header{}, nil, &NotAnOpbFileError{ID: id}
	}
	fmtByte := data[idSize]
	if fmtByte > 1 {
		return Header{}, nil, &UnsupportedFormatError{Format: fmtByte}
	}
	h := Header{
		Format:         Format(fmtByte),
		Size:           binary.BigEndian.Uint32(data[8:12]),
		NumInstruments: binary.BigEndian.Uint32(data[12:16]),
		NumChunks:      binary.BigEndian.Uint32(data[16:20]),
	}
	return h, data[headerSize:], nil
}

type decoder struct {
	opts DecodeOptions
}

// readVarint decodes one varint and tags any failure with the stage name.
func (d decoder) readVarint(in []byte, stage string) (uint32, []byte, error) {
	v, n, err := ReadUint7(in)
	if err != nil {
		var te *TruncatedError
		if errors.As(err, &te) {
			te.Stage = stage
		}
		return 0, nil, err
	}
	if d.opts.StrictVarints {
		if n > SizeUint7(v) || (n == 4 && in[3] >= 0x80) {
			return 0, nil, &MalformedIntegerError{Stage: stage, Bytes: append([]byte(nil), in[:n]...)}
		}
	}
	return v, in[n:], nil
}

func (d decoder) readInstruments(in []byte, count uint32) ([]Instrument, []byte, error) {
	var insts []Instrument
	for i := 0; i < int(count); i++ {
		if len(in) < instrumentSize {
			return nil, nil, &TruncatedError{Stage: "instruments", Needed: instrumentSize - len(in)}
		}
		rec := in[:instrumentSize]
		insts = append(insts, Instrument{
			FeedConn:  readInt16(rec[0:]),
			Modulator: readOperator(rec[2:]),
			Carrier:   readOperator(rec[10:]),
			Index:     i,
		})
		in = in[instrumentSize:]
	}
	return insts, in, nil
}

func readOperator(b []byte) Operator {
	return Operator{
		Characteristic: readInt16(b[0:]),
		AttackDecay:    readInt16(b[2:]),
		SustainRelease: readInt16(b[4:]),
		WaveSelect:     readInt16(b[6:]),
	}
}

func readInt16(b []byte) int16 {
	return int16(binary.BigEndian.Uint16(b))
}

func (d decoder) readChunks(in []byte, count uint32) ([]Chunk, []byte, error) {
	var chunks []Chunk
	for i := 0; i < int(count); i++ {
		repeat, rest, err := d.readVarint(in, "dictionary")
		if err != nil {
			return nil, nil, err
		}
		in = rest
		if len(in) == 0 {
			return nil, nil, &TruncatedError{Stage: "dictionary", Needed: 1}
		}
		size := int(in[0])
		in = in[1:]
		if size > MaxChunkPayload || size%2 != 0 {
			return nil, nil, &ChunkSizeError{Index: i, Size: size}
		}
		if len(in) < size {
			return nil, nil, &TruncatedError{Stage: "dictionary", Needed: size - len(in)}
		}
		chunks = append(chunks, Chunk{
			Count:   repeat,
			Payload: append([]byte(nil), in[:size]...),
		})
		in = in[size:]
	}
	return chunks, in, nil
}

// readCommands consumes the rest of the buffer as the command stream.
// Every command starts with a time delta varint. Raw format follows with
// an address varint and a data byte; Standard format follows with a
// selector varint whose low bit is the register bank and whose remaining
// bits index the dictionary, expanding the entry's payload into
// (address, data) pairs that share the command's timestamp.
func (d decoder) readCommands(in []byte, format Format, chunks []Chunk) ([]Command, error) {
	var cmds []Command
	var cursor float64
	order := 0

	for len(in) > 0 {
		delta, rest, err := d.readVarint(in, "commands")
		if err != nil {
			return nil, err
		}
		in = rest
		cursor += float64(delta) / d.opts.TicksPerSecond

		if format == FormatRaw {
			addr, rest, err := d.readVarint(in, "commands")
			if err != nil {
				return nil, err
			}
			in = rest
			if len(in) == 0 {
				return nil, &TruncatedError{Stage: "commands", Needed: 1}
			}
			cmds = append(cmds, Command{
				Addr:       uint16(addr) & 0x1FF,
				Data:       in[0],
				Time:       cursor,
				OrderIndex: order,
				ChunkRef:   NoChunkRef,
			})
			order++
			in = in[1:]
			continue
		}

		sel, rest, err := d.readVarint(in, "commands")
		if err != nil {
			return nil, err
		}
		in = rest
		bank := uint16(sel&1) << 8
		idx := int(sel >> 1)
		if idx >= len(chunks) {
			return nil, &ChunkRefError{Index: idx, Len: len(chunks)}
		}
		p := chunks[idx].Payload
		for i := 0; i+1 < len(p); i += 2 {
			cmds = append(cmds, Command{
				Addr:       bank | uint16(p[i]),
				Data:       p[i+1],
				Time:       cursor,
				OrderIndex: order,
				ChunkRef:   idx,
			})
			order++
		}
	}
	return cmds, nil
}

// Demux rebuilds Tracks from the flat command stream. Each command lands
// on exactly one track by ChannelForAddress. The flat stream is already
// non-decreasing in time with strictly increasing order indexes, so
// appending in stream order keeps every track sorted by
// (time, order_index) without a resort; running Demux again always
// produces identical tracks.
func (f *File) Demux() {
	for ch := range f.Tracks {
		f.Tracks[ch] = Track{Channel: ch}
	}
	for _, c := range f.Commands {
		ch := ChannelForAddress(c.Addr)
		f.Tracks[ch].Commands = append(f.Tracks[ch].Commands, c)
	}
}
