package cpu

import (
	"strconv"

	"github.com/ja7ad/cpupower/pkg/system/util"
	"github.com/ja7ad/cpupower/pkg/types"
)

// cpufreq attribute names, values in kHz.
const (
	scalingMin = "scaling_min_freq"
	scalingMax = "scaling_max_freq"
	scalingCur = "scaling_cur_freq"
	limitMin   = "cpuinfo_min_freq"
	limitMax   = "cpuinfo_max_freq"
)

// Limits is the frequency state of one thread.
type Limits struct {
	Min      types.Hertz `json:"min_hz" yaml:"min_hz"`
	Max      types.Hertz `json:"max_hz" yaml:"max_hz"`
	Current  types.Hertz `json:"cur_hz" yaml:"cur_hz"`
	HWMin    types.Hertz `json:"hw_min_hz" yaml:"hw_min_hz"`
	HWMax    types.Hertz `json:"hw_max_hz" yaml:"hw_max_hz"`
	Governor string      `json:"governor" yaml:"governor"`
}

func (s Sysfs) speed(thread int, attr string) (types.Hertz, error) {
	v, err := util.ReadInt(s.threadPath(thread, "cpufreq", attr))
	if err != nil {
		return 0, err
	}
	if v < 0 {
		v = 0
	}
	return types.FromKHz(uint64(v)), nil
}

func (s Sysfs) setSpeed(thread int, attr string, hz types.Hertz) error {
	return util.WriteString(s.threadPath(thread, "cpufreq", attr), strconv.FormatUint(hz.KHz(), 10))
}

// MinSpeed returns the current lower scaling limit.
func (s Sysfs) MinSpeed(thread int) (types.Hertz, error) { return s.speed(thread, scalingMin) }

// MaxSpeed returns the current upper scaling limit.
func (s Sysfs) MaxSpeed(thread int) (types.Hertz, error) { return s.speed(thread, scalingMax) }

// CurrentSpeed returns the frequency last requested by the governor.
func (s Sysfs) CurrentSpeed(thread int) (types.Hertz, error) { return s.speed(thread, scalingCur) }

// MinLimit returns the lowest frequency the hardware supports.
func (s Sysfs) MinLimit(thread int) (types.Hertz, error) { return s.speed(thread, limitMin) }

// MaxLimit returns the highest frequency the hardware supports.
func (s Sysfs) MaxLimit(thread int) (types.Hertz, error) { return s.speed(thread, limitMax) }

// Limits reads every frequency attribute of thread. The governor is left
// empty when the driver does not expose one.
func (s Sysfs) Limits(thread int) (Limits, error) {
	var (
		l   Limits
		err error
	)
	for _, f := range []struct {
		dst  *types.Hertz
		attr string
	}{
		{&l.Min, scalingMin},
		{&l.Max, scalingMax},
		{&l.Current, scalingCur},
		{&l.HWMin, limitMin},
		{&l.HWMax, limitMax},
	} {
		if *f.dst, err = s.speed(thread, f.attr); err != nil {
			return Limits{}, err
		}
	}
	l.Governor, _ = util.ReadTrimmed(s.threadPath(thread, "cpufreq", "scaling_governor"))
	return l, nil
}

// clamp bounds hz to the hardware limits of thread.
func (s Sysfs) clamp(thread int, hz types.Hertz) (types.Hertz, error) {
	lo, err := s.MinLimit(thread)
	if err != nil {
		return 0, err
	}
	hi, err := s.MaxLimit(thread)
	if err != nil {
		return 0, err
	}
	return min(max(hz, lo), hi), nil
}

// SetMinSpeed sets the lower scaling limit, clamped to the hardware
// limits. It returns the value written.
func (s Sysfs) SetMinSpeed(thread int, hz types.Hertz) (types.Hertz, error) {
	v, err := s.clamp(thread, hz)
	if err != nil {
		return 0, err
	}
	return v, s.setSpeed(thread, scalingMin, v)
}

// SetMaxSpeed sets the upper scaling limit, clamped to the hardware
// limits. It returns the value written.
func (s Sysfs) SetMaxSpeed(thread int, hz types.Hertz) (types.Hertz, error) {
	v, err := s.clamp(thread, hz)
	if err != nil {
		return 0, err
	}
	return v, s.setSpeed(thread, scalingMax, v)
}

// ResetSpeed restores the scaling limits to the hardware limits. The upper
// limit is written first so the lower one never exceeds it.
func (s Sysfs) ResetSpeed(thread int) error {
	hi, err := s.MaxLimit(thread)
	if err != nil {
		return err
	}
	lo, err := s.MinLimit(thread)
	if err != nil {
		return err
	}
	if err := s.setSpeed(thread, scalingMax, hi); err != nil {
		return err
	}
	return s.setSpeed(thread, scalingMin, lo)
}

func MinSpeed(thread int) (types.Hertz, error)     { return Default.MinSpeed(thread) }
func MaxSpeed(thread int) (types.Hertz, error)     { return Default.MaxSpeed(thread) }
func CurrentSpeed(thread int) (types.Hertz, error) { return Default.CurrentSpeed(thread) }
func ResetSpeed(thread int) error                  { return Default.ResetSpeed(thread) }

func SetMinSpeed(thread int, hz types.Hertz) (types.Hertz, error) {
	return Default.SetMinSpeed(thread, hz)
}

func SetMaxSpeed(thread int, hz types.Hertz) (types.Hertz, error) {
	return Default.SetMaxSpeed(thread, hz)
}
