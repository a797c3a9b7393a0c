//go:build !unix && !windows

package boot

// ExitStatus returns code unchanged; no truncation is known here.
func ExitStatus(code int32) int {
	return int(code)
}
