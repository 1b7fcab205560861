package opb

// The OPB varint is little-endian base-128: the high bit of each of the
// first three bytes signals a following group. The fourth byte, read only
// when the third byte's continuation bit is set, is combined WITHOUT
// masking its top bit. The reference decoder has always done this (a
// conformant encoder never sets that bit), so it is preserved here
// byte-for-byte rather than fixed.

// ReadUint7 decodes a varint from the front of in, returning the value
// and the number of bytes consumed (1-4). It fails with TruncatedError
// if the encoding runs past the end of in.
func ReadUint7(in []byte) (uint32, int, error) {
	if len(in) == 0 {
		return 0, 0, &TruncatedError{Stage: "varint", Needed: 1}
	}
	b0 := in[0]
	if b0 < 0x80 {
		return uint32(b0), 1, nil
	}
	if len(in) < 2 {
		return 0, 0, &TruncatedError{Stage: "varint", Needed: 1}
	}
	b0 &= 0x7F
	b1 := in[1]
	if b1 < 0x80 {
		return uint32(b0) | uint32(b1)<<7, 2, nil
	}
	if len(in) < 3 {
		return 0, 0, &TruncatedError{Stage: "varint", Needed: 1}
	}
	b1 &= 0x7F
	b2 := in[2]
	if b2 < 0x80 {
		return uint32(b0) | uint32(b1)<<7 | uint32(b2)<<14, 3, nil
	}
	if len(in) < 4 {
		return 0, 0, &TruncatedError{Stage: "varint", Needed: 1}
	}
	b2 &= 0x7F
	b3 := in[3] // final group: top bit intentionally not masked
	return uint32(b0) | uint32(b1)<<7 | uint32(b2)<<14 | uint32(b3)<<21, 4, nil
}

// AppendUint7 appends the minimal-length encoding of v to dst.
// Values are truncated to 28 bits of payload.
func AppendUint7(dst []byte, v uint32) []byte {
	switch {
	case v < 1<<7:
		return append(dst, byte(v))
	case v < 1<<14:
		return append(dst, byte(v&0x7F)|0x80, byte(v>>7))
	case v < 1<<21:
		return append(dst, byte(v&0x7F)|0x80, byte(v>>7&0x7F)|0x80, byte(v>>14))
	default:
		return append(dst, byte(v&0x7F)|0x80, byte(v>>7&0x7F)|0x80, byte(v>>14&0x7F)|0x80, byte(v>>21&0x7F))
	}
}

// SizeUint7 returns the length in bytes of the minimal encoding of v.
func SizeUint7(v uint32) int {
	switch {
	case v >= 1<<21:
		return 4
	case v >= 1<<14:
		return 3
	case v >= 1<<7:
		return 2
	default:
		return 1
	}
}
