package domain

import "strconv"

// FormatVND renders an amount in Vietnamese dong with dot-grouped thousands,
// e.g. 1250000 -> "1.250.000đ". VND has no subunits, so amounts are whole.
func FormatVND(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	digits := strconv.FormatInt(amount, 10)
	var out []byte
	for i, d := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, d)
	}

	s := string(out) + "đ"
	if neg {
		return "-" + s
	}
	return s
}
