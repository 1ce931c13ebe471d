package core

import "math"

// Itoa converts an integer to a string without using fmt package
// This is a lightweight alternative for embedded systems
func Itoa(n int) string {
	return itoa(n)
}

// Ftoa formats a float with a fixed number of decimals, rounding half away
// from zero. NaN and infinities are spelled out.
func Ftoa(f float64, decimals int) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	negative := f < 0
	if negative {
		f = -f
	}

	scale := 1.0
	for i := 0; i < decimals; i++ {
		scale *= 10
	}

	var s string
	if f*scale+0.5 >= 1<<63 {
		// Too big for uint64, and too big to carry a fraction
		s = ftoaWhole(math.Floor(f))
		if decimals > 0 {
			s += "." + zeros(decimals)
		}
	} else {
		scaled := uint64(f*scale + 0.5)
		whole := scaled / uint64(scale)
		frac := scaled % uint64(scale)

		s = utoa64(whole)
		if decimals > 0 {
			digits := utoa64(frac)
			s += "." + zeros(decimals-len(digits)) + digits
		}
		if scaled == 0 {
			negative = false
		}
	}
	if negative {
		s = "-" + s
	}
	return s
}

// ftoaWhole prints a non-negative integral float digit by digit
func ftoaWhole(f float64) string {
	var buf []byte
	for f >= 1 {
		d := math.Mod(f, 10)
		buf = append(buf, byte('0'+int(d)))
		f = (f - d) / 10
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}

func zeros(n int) string {
	var s string
	for i := 0; i < n; i++ {
		s += "0"
	}
	return s
}

// itoa converts an integer to a string without using fmt package
func itoa(n int) string {
	if n == 0 {
		return "0"
	}

	negative := n < 0
	if negative {
		n = -n
	}

	// Count digits
	temp := n
	digits := 0
	for temp > 0 {
		digits++
		temp /= 10
	}

	// Add space for negative sign
	if negative {
		digits++
	}

	// Build string from right to left
	buf := make([]byte, digits)
	pos := digits - 1

	for n > 0 {
		buf[pos] = byte('0' + n%10)
		n /= 10
		pos--
	}

	if negative {
		buf[0] = '-'
	}

	return string(buf)
}

// utoa converts an unsigned integer to a string
func utoa(n uint32) string {
	return utoa64(uint64(n))
}

func utoa64(n uint64) string {
	if n == 0 {
		return "0"
	}

	var buf [20]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[pos:])
}
