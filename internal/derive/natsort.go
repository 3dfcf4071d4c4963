package derive

// compareNatural orders strings case-insensitively with embedded digit runs
// compared by numeric value, so "7" sorts before "10" and "1","2","3" come
// ahead of letter codes. Line codes are ASCII in practice.
func compareNatural(a, b string) int {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		ca, cb := a[i], b[j]

		if isDigit(ca) && isDigit(cb) {
			ai := i
			for i < len(a) && isDigit(a[i]) {
				i++
			}
			bj := j
			for j < len(b) && isDigit(b[j]) {
				j++
			}

			na := trimLeadingZeros(a[ai:i])
			nb := trimLeadingZeros(b[bj:j])
			if len(na) != len(nb) {
				return len(na) - len(nb)
			}
			for k := 0; k < len(na); k++ {
				if na[k] != nb[k] {
					return int(na[k]) - int(nb[k])
				}
			}
			continue
		}

		la, lb := lowerASCII(ca), lowerASCII(cb)
		if la != lb {
			return int(la) - int(lb)
		}
		i++
		j++
	}
	return (len(a) - i) - (len(b) - j)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func lowerASCII(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

func trimLeadingZeros(s string) string {
	for len(s) > 1 && s[0] == '0' {
		s = s[1:]
	}
	return s
}
