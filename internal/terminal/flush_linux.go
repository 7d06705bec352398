//go:build linux

package terminal

import "golang.org/x/sys/unix"

// discardInput drops bytes the terminal has received but nobody has read yet.
func discardInput(fd int) error {
	return unix.IoctlSetInt(fd, unix.TCFLSH, unix.TCIFLUSH)
}
