package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Hertz is a frequency. cpufreq reports kHz, use FromKHz/KHz at the sysfs
// boundary.
type Hertz uint64

const (
	KHz Hertz = 1000
	MHz Hertz = 1000 * KHz
	GHz Hertz = 1000 * MHz
)

// FromKHz converts a cpufreq value to Hertz.
func FromKHz(k uint64) Hertz { return Hertz(k) * KHz }

// KHz returns the value in kHz as written to cpufreq attributes.
func (h Hertz) KHz() uint64 { return uint64(h / KHz) }

// Humanized returns a human-readable string with automatic unit (Hz, kHz, MHz, GHz).
func (h Hertz) Humanized() string {
	v := float64(h)
	switch {
	case h >= GHz:
		return fmt.Sprintf("%.2f GHz", v/float64(GHz))
	case h >= MHz:
		return fmt.Sprintf("%.2f MHz", v/float64(MHz))
	case h >= KHz:
		return fmt.Sprintf("%.2f kHz", v/float64(KHz))
	default:
		return fmt.Sprintf("%d Hz", h)
	}
}

// ParseHertz parses "2.4GHz", "800MHz", "1200000kHz" or "100Hz". A bare
// number is taken as kHz, the unit cpufreq uses.
func ParseHertz(s string) (Hertz, error) {
	in := strings.TrimSpace(s)
	lower := strings.ToLower(in)
	unit := KHz
	for _, u := range []struct {
		suffix string
		unit   Hertz
	}{{"ghz", GHz}, {"mhz", MHz}, {"khz", KHz}, {"hz", 1}} {
		if strings.HasSuffix(lower, u.suffix) {
			lower = strings.TrimSpace(strings.TrimSuffix(lower, u.suffix))
			unit = u.unit
			break
		}
	}
	v, err := strconv.ParseFloat(lower, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid frequency %q", in)
	}
	hz := v*float64(unit) + 0.5
	// float64(math.MaxUint64) rounds up to 2^64
	if hz >= float64(math.MaxUint64) {
		return 0, fmt.Errorf("frequency %q out of range", in)
	}
	return Hertz(hz), nil
}

// Celsius is a temperature in degrees Celsius.
type Celsius float64

// FromMilliCelsius converts a hwmon/thermal_zone reading.
func FromMilliCelsius(m int64) Celsius { return Celsius(float64(m) / 1000) }

func (c Celsius) String() string { return fmt.Sprintf("%.1f °C", float64(c)) }
