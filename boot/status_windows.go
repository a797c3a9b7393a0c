//go:build windows

package boot

// ExitStatus returns the status a parent observes after Exit(code).
// Windows exit codes are unsigned 32-bit values.
func ExitStatus(code int32) int {
	return int(uint32(code))
}
