package rapl

import "errors"

var (
	// ErrAccess indicates that the MSR device of the requested CPU could not be
	// opened (missing msr module, missing device node, no CAP_SYS_RAWIO) or
	// that the mandatory power unit register is not readable, which means the
	// CPU has no RAPL support.
	ErrAccess = errors.New("rapl: msr access (requires root or CAP_SYS_RAWIO and the msr module)")

	// ErrUnsupported indicates that an optional register (PP1 energy, package
	// power info) is not readable on this CPU. It is never returned by Init;
	// it is recorded in Reader.Probes and the feature is disabled.
	ErrUnsupported = errors.New("rapl: unsupported capability")

	// ErrRead indicates that a mandatory energy register could not be read
	// after a successful Init. The reader stays active.
	ErrRead = errors.New("rapl: register read")

	// ErrInvalidState indicates that Delta was called on a reader that is not
	// active (Init not called, failed, or reader closed).
	ErrInvalidState = errors.New("rapl: reader not active")
)
