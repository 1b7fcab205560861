package opb

import "fmt"

// NotAnOpbFileError reports a magic tag mismatch. ID holds the 7 bytes
// actually read.
type NotAnOpbFileError struct {
	ID [idSize]byte
}

func (e *NotAnOpbFileError) Error() string {
	return fmt.Sprintf("not an OPB file: bad magic % X", e.ID[:])
}

// UnsupportedFormatError reports a format byte outside {0, 1}.
type UnsupportedFormatError struct {
	Format byte
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported OPB format byte %d", e.Format)
}

// TruncatedError reports that a decode stage needed more bytes than the
// buffer held. Needed is the shortfall when known, otherwise zero.
type TruncatedError struct {
	Stage  string
	Needed int
}

func (e *TruncatedError) Error() string {
	if e.Needed > 0 {
		return fmt.Sprintf("truncated OPB data in %s: %d more bytes needed", e.Stage, e.Needed)
	}
	return fmt.Sprintf("truncated OPB data in %s", e.Stage)
}

// ChunkRefError reports a command referencing a dictionary index at or
// past the end of the dictionary.
type ChunkRefError struct {
	Index int
	Len   int
}

func (e *ChunkRefError) Error() string {
	return fmt.Sprintf("bad dictionary reference: index %d, dictionary has %d entries", e.Index, e.Len)
}

// ChunkSizeError reports a dictionary entry whose payload length cannot
// form address/data pairs: odd, or longer than MaxChunkPayload.
type ChunkSizeError struct {
	Index int
	Size  int
}

func (e *ChunkSizeError) Error() string {
	return fmt.Sprintf("bad dictionary entry %d: payload size %d (want even, at most %d)", e.Index, e.Size, MaxChunkPayload)
}

// MalformedIntegerError reports a varint rejected under strict decoding:
// a non-minimal encoding, or a 4-byte encoding with its top bit set.
type MalformedIntegerError struct {
	Stage string
	Bytes []byte
}

func (e *MalformedIntegerError) Error() string {
	return fmt.Sprintf("malformed varint in %s: % X", e.Stage, e.Bytes)
}
