package rast

import "strconv"

func parseUint(s string) (uint, bool) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(v), true
}

func uintToDecimal(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
