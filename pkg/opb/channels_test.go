package opb

import "testing"

func TestChannelForAddress(t *testing.T) {
	tests := []struct {
		addr uint16
		want int
	}{
		// channel-level registers, bank 0
		{0xA0, 0},
		{0xA8, 8},
		{0xB3, 3},
		{0xC8, 8},
		// channel-level registers, bank 1
		{0x1A0, 9},
		{0x1B3, 12},
		{0x1C8, 17},
		// operator-level registers follow the slot layout
		{0x20, 0},
		{0x21, 1},
		{0x22, 2},
		{0x23, 0}, // second operator of channel 0
		{0x25, 2},
		{0x28, 3},
		{0x2B, 3},
		{0x30, 6},
		{0x35, 8},
		{0x40, 0},
		{0x55, 8},
		{0x60, 0},
		{0x80, 0},
		{0x95, 8},
		{0xE0, 0},
		{0xF5, 8},
		{0x135, 17},
		{0x1E0, 9},
		// unused operator slots
		{0x26, GlobalTrack},
		{0x27, GlobalTrack},
		{0x2E, GlobalTrack},
		{0x4F, GlobalTrack},
		// non-channel registers
		{0x01, GlobalTrack},
		{0x02, GlobalTrack},
		{0x04, GlobalTrack},
		{0x08, GlobalTrack},
		{0xBD, GlobalTrack},
		{0x105, GlobalTrack},
		{0x1BD, GlobalTrack},
	}

	for _, tt := range tests {
		if got := ChannelForAddress(tt.addr); got != tt.want {
			t.Errorf("ChannelForAddress(%#x) = %d, want %d", tt.addr, got, tt.want)
		}
	}
}
