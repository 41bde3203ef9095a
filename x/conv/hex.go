package conv

const hexd = "0123456789ABCDEF"

// U8Hex writes 2-digit uppercase hex without 0x.
func U8Hex(buf []byte, n uint8) []byte {
	if len(buf) < 2 {
		return buf[:0]
	}
	buf[0] = hexd[n>>4]
	buf[1] = hexd[n&0xF]
	return buf[:2]
}
