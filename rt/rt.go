// Package rt implements the print primitives that generated Gone code
// calls at runtime. Each primitive formats one machine value and writes
// it, followed by a newline, to standard output.
package rt

import (
	"io"
	"math"
	"strconv"
)

// === Formatting ===

// FormatInt returns the decimal form of x.
func FormatInt(x int32) string {
	return string(AppendInt(nil, x))
}

// FormatFloat returns x in fixed-point notation with six fractional digits.
func FormatFloat(x float64) string {
	return string(AppendFloat(nil, x))
}

// FormatBool returns "true" when x is exactly 1 and "false" for every
// other value, including other nonzero values.
func FormatBool(x int32) string {
	return string(AppendBool(nil, x))
}

// AppendInt appends the decimal form of x to dst.
func AppendInt(dst []byte, x int32) []byte {
	return strconv.AppendInt(dst, int64(x), 10)
}

// AppendFloat matches C's "%f": non-finite values render as inf, -inf,
// nan and -nan.
func AppendFloat(dst []byte, x float64) []byte {
	switch {
	case math.IsNaN(x):
		if math.Signbit(x) {
			return append(dst, "-nan"...)
		}
		return append(dst, "nan"...)
	case math.IsInf(x, 1):
		return append(dst, "inf"...)
	case math.IsInf(x, -1):
		return append(dst, "-inf"...)
	}
	return strconv.AppendFloat(dst, x, 'f', 6, 64)
}

// AppendBool appends "true" to dst when x is 1 and "false" otherwise.
func AppendBool(dst []byte, x int32) []byte {
	if x == 1 {
		return append(dst, "true"...)
	}
	return append(dst, "false"...)
}

// === Output ===

// maxLine fits the longest float line: 309 integer digits, sign, point,
// six decimals and the newline.
const maxLine = 320

// writeLine emits the line with a single Write. Errors are dropped.
func writeLine(w io.Writer, line []byte) {
	line = append(line, '\n')
	_, _ = w.Write(line)
}

// FprintInt writes the decimal form of x and a newline to w.
func FprintInt(w io.Writer, x int32) {
	var buf [16]byte
	writeLine(w, AppendInt(buf[:0], x))
}

// FprintFloat writes x with six fractional digits and a newline to w.
func FprintFloat(w io.Writer, x float64) {
	var buf [maxLine]byte
	writeLine(w, AppendFloat(buf[:0], x))
}

// FprintBool writes "true" or "false" and a newline to w.
func FprintBool(w io.Writer, x int32) {
	var buf [8]byte
	writeLine(w, AppendBool(buf[:0], x))
}

// Stdout is where the Print functions write. It defaults to the process's
// file descriptor 1.
var Stdout io.Writer = stdoutWriter{}

// PrintInt writes the decimal form of x and a newline to Stdout.
func PrintInt(x int32) {
	FprintInt(Stdout, x)
}

// PrintFloat writes x with six fractional digits and a newline to Stdout.
func PrintFloat(x float64) {
	FprintFloat(Stdout, x)
}

// PrintBool writes "true" or "false" and a newline to Stdout. Only the
// value 1 is true.
func PrintBool(x int32) {
	FprintBool(Stdout, x)
}
