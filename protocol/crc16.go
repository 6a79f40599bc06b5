package protocol

// CRC16Init is the starting value for CRC16Update
const CRC16Init = 0xFFFF

// CRC16Update folds one byte into a running CCITT CRC16 (the variant used
// by Klipper's framing).
func CRC16Update(crc uint16, b byte) uint16 {
	b = b ^ uint8(crc&0xFF)
	b = b ^ (b << 4)
	b16 := uint16(b)
	return (b16<<8 | crc>>8) ^ (b16 >> 4) ^ (b16 << 3)
}

// CRC16 calculates the checksum of data
func CRC16(data []byte) uint16 {
	crc := uint16(CRC16Init)
	for _, b := range data {
		crc = CRC16Update(crc, b)
	}
	return crc
}

// CRC16Words checksums 32-bit words in little-endian byte order without
// allocating, for NVM records.
func CRC16Words(words ...uint32) uint16 {
	crc := uint16(CRC16Init)
	for _, w := range words {
		crc = CRC16Update(crc, byte(w))
		crc = CRC16Update(crc, byte(w>>8))
		crc = CRC16Update(crc, byte(w>>16))
		crc = CRC16Update(crc, byte(w>>24))
	}
	return crc
}
