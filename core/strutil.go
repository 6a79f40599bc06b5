package core

// Itoa converts an integer to a string without using fmt package
// This is a lightweight alternative for embedded systems
func Itoa(n int) string {
	if n < 0 {
		return "-" + Utoa(uint32(-n))
	}
	return Utoa(uint32(n))
}

// Utoa converts an unsigned integer to a string
func Utoa(n uint32) string {
	if n == 0 {
		return "0"
	}

	var buf [10]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[pos:])
}

// Pad2 formats n with at least two digits, as in "07"
func Pad2(n uint32) string {
	if n < 10 {
		return "0" + Utoa(n)
	}
	return Utoa(n)
}
