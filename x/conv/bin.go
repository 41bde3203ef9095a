package conv

// Bin8 writes the 8-digit binary representation of v (MSB first) into buf
// and returns the used slice. buf must have length >= 8.
func Bin8(buf []byte, v uint8) []byte {
	if len(buf) < 8 {
		return buf[:0]
	}
	for i := 0; i < 8; i++ {
		if v&(0x80>>i) != 0 {
			buf[i] = '1'
		} else {
			buf[i] = '0'
		}
	}
	return buf[:8]
}

// Bits8 is Bin8 returning a string.
func Bits8(v uint8) string {
	var buf [8]byte
	return string(Bin8(buf[:], v))
}
