package provisioning

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// LockFileName is the advisory lock taken in the working directory for the
// duration of a run. The package database, the firmware descriptor path and
// the artifact destinations are host-global state; the lock serializes
// concurrent invocations instead of assuming a single writer.
const LockFileName = ".virtup.lock"

// Lock represents a held provisioning lock.
type Lock struct {
	file *os.File
}

// AcquireLock takes an exclusive, non-blocking flock on LockFileName.
// A second concurrent run fails immediately with an error naming the file.
func AcquireLock() (*Lock, error) {
	// #nosec G302
	file, err := os.OpenFile(LockFileName, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file %s: %w", LockFileName, err)
	}

	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("another provisioning run holds %s: %w", LockFileName, err)
	}

	_ = file.Truncate(0)
	_, _ = fmt.Fprintf(file, "%d\n", os.Getpid())

	return &Lock{file: file}, nil
}

// Release drops the lock and removes the lock file.
func (l *Lock) Release() {
	if l == nil || l.file == nil {
		return
	}

	_ = os.Remove(LockFileName)
	_ = unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	_ = l.file.Close()
	l.file = nil
}
