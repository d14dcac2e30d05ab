// Package provisioning provides shared types and interfaces for bringing a
// KVM host into the state required to define one virtual machine.
//
// The provisioning domain is organized into focused subpackages:
//   - packages/ — host package presence check and installation
//   - firmware/ — UEFI firmware descriptor installation
//   - artifacts/ — fetch-if-missing for firmware and disk images
//   - define/ — virt-install invocation and definition verification
//
// This root package contains the phase pipeline, shared state, sentinel
// errors, and the console observer used across subpackages.
package provisioning

// Phase defines the interface for a provisioning phase.
type Phase interface {
	// Name returns the human-readable name of this phase.
	Name() string

	// Provision executes the provisioning logic for this phase.
	Provision(ctx *Context) error
}
