package provisioning

import "errors"

// Sentinel errors for the provisioning pipeline. Every one of them is
// fatal: the pipeline halts on the first error.
var (
	// ErrSourceUnreachable indicates an artifact source did not respond to
	// the pre-fetch probe.
	ErrSourceUnreachable = errors.New("source unreachable")

	// ErrTransferFailed indicates an artifact download started but did not
	// complete.
	ErrTransferFailed = errors.New("transfer failed")

	// ErrDelegateFailed indicates an external command (package manager,
	// daemon reload, virt-install) exited with an error.
	ErrDelegateFailed = errors.New("delegate command failed")
)
