package cpu

import "errors"

var (
	// ErrNoSibling indicates that the thread has no hyperthread sibling.
	ErrNoSibling = errors.New("cpu: no sibling thread")

	// ErrSMTUnsupported indicates that SMT cannot be toggled at runtime
	// (smt/control is forceoff, notsupported or notimplemented).
	ErrSMTUnsupported = errors.New("cpu: smt control not supported")

	// ErrNoSensor indicates that no package temperature sensor was found.
	ErrNoSensor = errors.New("cpu: no package temperature sensor")

	// ErrBadRange indicates a malformed possible/online cpu list.
	ErrBadRange = errors.New("cpu: malformed cpu list")
)
