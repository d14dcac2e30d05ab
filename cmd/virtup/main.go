// Package main is the entry point for the virtup CLI.
//
// virtup is a command-line tool for provisioning a single libvirt/KVM
// virtual machine from a declarative configuration file. It verifies the
// host packages, installs a QEMU firmware descriptor for custom OVMF
// builds, fetches the firmware and disk image artifacts, and emits a
// ready-to-define domain XML via virt-install.
//
// Commands: init, apply, doctor, version, completion.
//
// For detailed usage information, run:
//
//	virtup --help
package main

import (
	"fmt"
	"os"

	"github.com/virtup/virtup/cmd/virtup/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
