package opb

// OPL3 addresses split into two banks of 9 channels. Channel-level
// registers (0xA0, 0xB0, 0xC0 rows) carry the channel in their low
// nibble. Operator-level registers (0x20, 0x40, 0x60, 0x80, 0xE0 rows)
// carry an operator slot 0-21 whose layout skips slots 6, 7, 14 and 15.
// Everything else (timers, waveform enable, rhythm, 4-op enable, ...)
// belongs to no single channel.

// ChannelForAddress maps a register address to a logical channel 0-17,
// or GlobalTrack for registers that are not channel-specific. The mapping
// is a pure function of the address and independent of the file format.
func ChannelForAddress(addr uint16) int {
	bank := 0
	if addr >= 0x100 {
		bank = 9
	}
	reg := byte(addr)

	switch {
	case reg >= 0xA0 && reg <= 0xA8:
		return bank + int(reg-0xA0)
	case reg >= 0xB0 && reg <= 0xB8:
		return bank + int(reg-0xB0)
	case reg >= 0xC0 && reg <= 0xC8:
		return bank + int(reg-0xC0)
	}

	var base byte
	switch {
	case reg >= 0x20 && reg <= 0x35:
		base = 0x20
	case reg >= 0x40 && reg <= 0x55:
		base = 0x40
	case reg >= 0x60 && reg <= 0x75:
		base = 0x60
	case reg >= 0x80 && reg <= 0x95:
		base = 0x80
	case reg >= 0xE0 && reg <= 0xF5:
		base = 0xE0
	default:
		return GlobalTrack
	}

	slot := reg - base
	within := int(slot & 7)
	if within >= 6 {
		// unused slot in the operator layout
		return GlobalTrack
	}
	if within >= 3 {
		within -= 3
	}
	return bank + int(slot>>3)*3 + within
}
