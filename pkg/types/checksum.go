package types

// Checksum computes the CRC-8 (polynomial 0x07, no initial value,
// no reflection, no final xor) of the given payload bytes.
// It covers the payload only, never the packet header.
func Checksum(payload []byte) byte {
	var crc byte

	for _, b := range payload {
		crc ^= b

		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = (crc << 1) ^ 0x07
			} else {
				crc <<= 1
			}
		}
	}

	return crc
}
