package hexconv

// Halfbyte maps an ASCII hex digit to its value. Every other byte maps to 0xFF.
var Halfbyte = [256]byte{}

func init() {
	for i := range Halfbyte {
		Halfbyte[i] = 0xFF
	}

	for c := byte('0'); c <= '9'; c++ {
		Halfbyte[c] = c - '0'
	}

	for c := byte('a'); c <= 'f'; c++ {
		Halfbyte[c] = c - 'a' + 10
		Halfbyte[c-'a'+'A'] = c - 'a' + 10
	}
}

// Is reports whether the char is a hex digit.
func Is(char byte) bool {
	return Halfbyte[char] != 0xFF
}
