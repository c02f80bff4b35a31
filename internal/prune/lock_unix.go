//go:build unix

package prune

import (
	"os"
	"syscall"
)

// lockExclusive takes a non-blocking exclusive advisory lock on f.
// Returns an error when another process holds the file. The lock is
// released when the file is closed.
func lockExclusive(f *os.File) error {
	return syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
}
