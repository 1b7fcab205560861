package opb

import (
	"bytes"
	"errors"
	"testing"
)

func TestReadUint7(t *testing.T) {
	tests := []struct {
		name  string
		in    []byte
		want  uint32
		wantN int
	}{
		{"zero", []byte{0x00}, 0, 1},
		{"single byte", []byte{0x05}, 5, 1},
		{"max one byte", []byte{0x7F}, 127, 1},
		{"two bytes", []byte{0x85, 0x01}, 133, 2},
		{"min two bytes", []byte{0x80, 0x01}, 128, 2},
		{"max two bytes", []byte{0xFF, 0x7F}, 16383, 2},
		{"min three bytes", []byte{0x80, 0x80, 0x01}, 16384, 3},
		{"max three bytes", []byte{0xFF, 0xFF, 0x7F}, 2097151, 3},
		{"min four bytes", []byte{0x80, 0x80, 0x80, 0x01}, 2097152, 4},
		{"trailing bytes ignored", []byte{0x05, 0xFF, 0xFF}, 5, 1},
		{"non-minimal accepted", []byte{0x85, 0x00}, 5, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n, err := ReadUint7(tt.in)
			if err != nil {
				t.Fatalf("ReadUint7(% X) returned error: %v", tt.in, err)
			}
			if got != tt.want || n != tt.wantN {
				t.Errorf("ReadUint7(% X) = (%d, %d), want (%d, %d)", tt.in, got, n, tt.want, tt.wantN)
			}
		})
	}
}

func TestReadUint7Truncated(t *testing.T) {
	inputs := [][]byte{
		nil,
		{0x80},
		{0x80, 0x80},
		{0x80, 0x80, 0x80},
	}

	for _, in := range inputs {
		_, _, err := ReadUint7(in)
		var te *TruncatedError
		if !errors.As(err, &te) {
			t.Errorf("ReadUint7(% X) = %v, want TruncatedError", in, err)
		}
	}
}

// The final byte group is combined without masking its continuation bit.
// Pins the reference decoder's behavior so nobody "fixes" it.
func TestReadUint7FourthByteUnmasked(t *testing.T) {
	got, n, err := ReadUint7([]byte{0x80, 0x80, 0x80, 0xFF})
	if err != nil {
		t.Fatal(err)
	}
	want := uint32(0xFF) << 21
	if got != want || n != 4 {
		t.Errorf("got (%d, %d), want (%d, 4)", got, n, want)
	}
}

func TestUint7RoundTrip(t *testing.T) {
	values := []uint32{
		0, 1, 5, 127, 128, 133, 255, 16383, 16384, 65535,
		2097151, 2097152, 1<<24 - 1, 1<<28 - 1,
	}
	// step through the whole range coarsely too
	for v := uint32(0); v < 1<<28; v += 99991 {
		values = append(values, v)
	}

	for _, v := range values {
		enc := AppendUint7(nil, v)
		if len(enc) != SizeUint7(v) {
			t.Fatalf("AppendUint7(%d) emitted %d bytes, SizeUint7 says %d", v, len(enc), SizeUint7(v))
		}
		got, n, err := ReadUint7(enc)
		if err != nil {
			t.Fatalf("decode of encoded %d failed: %v", v, err)
		}
		if got != v || n != len(enc) {
			t.Fatalf("round trip of %d = (%d, %d), want (%d, %d)", v, got, n, v, len(enc))
		}
	}
}

func TestAppendUint7Minimal(t *testing.T) {
	tests := []struct {
		v    uint32
		want []byte
	}{
		{5, []byte{0x05}},
		{133, []byte{0x85, 0x01}},
		{128, []byte{0x80, 0x01}},
		{16384, []byte{0x80, 0x80, 0x01}},
		{2097152, []byte{0x80, 0x80, 0x80, 0x01}},
	}

	for _, tt := range tests {
		if got := AppendUint7(nil, tt.v); !bytes.Equal(got, tt.want) {
			t.Errorf("AppendUint7(%d) = % X, want % X", tt.v, got, tt.want)
		}
	}
}
