//go:build unix

package rt

import "golang.org/x/sys/unix"

// stdoutWriter writes straight to fd 1 with no buffering in between.
type stdoutWriter struct{}

func (stdoutWriter) Write(p []byte) (int, error) {
	written := 0
	for written < len(p) {
		n, err := unix.Write(1, p[written:])
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return written, err
		}
		if n <= 0 {
			return written, unix.EIO
		}
		written += n
	}
	return written, nil
}
