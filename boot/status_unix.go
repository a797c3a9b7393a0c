//go:build unix

package boot

// ExitStatus returns the status a parent observes after Exit(code). The
// kernel keeps only the low 8 bits, so 256 reads as 0 and -1 as 255.
func ExitStatus(code int32) int {
	return int(uint8(code))
}
