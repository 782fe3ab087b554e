package cpu

import (
	"fmt"

	"github.com/ja7ad/cpupower/pkg/system/util"
)

// SMTControl returns the content of smt/control: on, off, forceoff,
// notsupported or notimplemented.
func (s Sysfs) SMTControl() (string, error) {
	return util.ReadTrimmed(s.path(cpuDir, "smt", "control"))
}

// HyperthreadingEnabled reports whether sibling threads are online.
func (s Sysfs) HyperthreadingEnabled() (bool, error) {
	v, err := util.ReadInt(s.path(cpuDir, "smt", "active"))
	if err != nil {
		return false, err
	}
	return v == 1, nil
}

// SetHyperthreading switches sibling threads on or off.
func (s Sysfs) SetHyperthreading(on bool) error {
	ctl, err := s.SMTControl()
	if err != nil {
		return err
	}
	switch ctl {
	case "on", "off":
	default:
		return fmt.Errorf("%w: %s", ErrSMTUnsupported, ctl)
	}
	want := "off"
	if on {
		want = "on"
	}
	if ctl == want {
		return nil
	}
	return util.WriteString(s.path(cpuDir, "smt", "control"), want)
}
