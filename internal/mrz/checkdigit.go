package mrz

var weights = [3]int{7, 3, 1}

func charValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	}
	return 0
}

// CheckDigit computes the ICAO 9303 check digit of s.
func CheckDigit(s string) byte {
	sum := 0
	for i := 0; i < len(s); i++ {
		sum += charValue(s[i]) * weights[i%3]
	}
	return byte('0' + sum%10)
}

// verify reports whether check is the check digit of field. A filler check
// character is accepted only where the computed digit is 0.
func verify(field string, check byte) bool {
	want := CheckDigit(field)
	if check == '<' {
		return want == '0'
	}
	return check == want
}
