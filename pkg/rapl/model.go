package rapl

import (
	"fmt"
	"strings"
	"time"
)

// State is the lifecycle state of a Reader.
type State int

const (
	Uninitialized State = iota // constructed or closed
	Initializing               // Init in progress
	Active                     // device open, units probed, baseline present
	Failed                     // Init could not open the device or read units
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Active:
		return "active"
	case Failed:
		return "failed"
	default:
		return "uninitialized"
	}
}

// Units is the calibration record read once by Init.
// Units:
//   - PowerUnits: Watts per raw count
//   - EnergyUnits: Joules per raw count
//   - TimeUnits: seconds per raw count
//   - ThermalSpecPower/MinimumPower/MaximumPower: Watts (advisory, zero if unreadable)
//   - TimeWindow: seconds (advisory, zero if unreadable)
type Units struct {
	PowerUnits  float64 `json:"power_units" yaml:"power_units"`
	EnergyUnits float64 `json:"energy_units" yaml:"energy_units"`
	TimeUnits   float64 `json:"time_units" yaml:"time_units"`

	ThermalSpecPower float64 `json:"thermal_spec_power_w" yaml:"thermal_spec_power_w"`
	MinimumPower     float64 `json:"minimum_power_w" yaml:"minimum_power_w"`
	MaximumPower     float64 `json:"maximum_power_w" yaml:"maximum_power_w"`
	TimeWindow       float64 `json:"time_window_sec" yaml:"time_window_sec"`

	SupportsSecondaryPlane bool `json:"supports_pp1" yaml:"supports_pp1"`
}

func (u Units) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Power units: %f W\n", u.PowerUnits)
	fmt.Fprintf(&b, "Energy units: %.8f J\n", u.EnergyUnits)
	fmt.Fprintf(&b, "Time units: %f s\n", u.TimeUnits)
	b.WriteString("---\n")
	fmt.Fprintf(&b, "Package thermal spec: %f W\n", u.ThermalSpecPower)
	fmt.Fprintf(&b, "Package minimum power: %f W\n", u.MinimumPower)
	fmt.Fprintf(&b, "Package maximum power: %f W\n", u.MaximumPower)
	fmt.Fprintf(&b, "Package maximum time window: %f s\n", u.TimeWindow)
	fmt.Fprintf(&b, "PP1 (graphics) plane: %t\n", u.SupportsSecondaryPlane)
	return b.String()
}

// Sample is one reading of the four energy counters. Raw values are the
// low 32 bits of the registers, zero-extended.
type Sample struct {
	Package  uint64
	Core     uint64 // PP0
	Graphics uint64 // PP1, stays 0 when unsupported
	DRAM     uint64
	Time     time.Time
}

// Delta is the energy consumed between two samples.
// Diff fields are Joules, Avg fields are Watts.
type Delta struct {
	PackageDiff  float64 `json:"pkg_diff_j" yaml:"pkg_diff_j"`
	CoreDiff     float64 `json:"pp0_diff_j" yaml:"pp0_diff_j"`
	GraphicsDiff float64 `json:"pp1_diff_j" yaml:"pp1_diff_j"`
	DRAMDiff     float64 `json:"dram_diff_j" yaml:"dram_diff_j"`

	PackageAvg  float64 `json:"pkg_avg_w" yaml:"pkg_avg_w"`
	CoreAvg     float64 `json:"pp0_avg_w" yaml:"pp0_avg_w"`
	GraphicsAvg float64 `json:"pp1_avg_w" yaml:"pp1_avg_w"`
	DRAMAvg     float64 `json:"dram_avg_w" yaml:"dram_avg_w"`

	Elapsed float64 `json:"elapsed_sec" yaml:"elapsed_sec"`
}

func (d Delta) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "pkgDiff: %f J\n", d.PackageDiff)
	fmt.Fprintf(&b, "pp0Diff: %f J\n", d.CoreDiff)
	fmt.Fprintf(&b, "pp1Diff: %f J\n", d.GraphicsDiff)
	fmt.Fprintf(&b, "dramDiff: %f J\n", d.DRAMDiff)
	b.WriteString("---\n")
	fmt.Fprintf(&b, "pkgAvg: %f W\n", d.PackageAvg)
	fmt.Fprintf(&b, "pp0Avg: %f W\n", d.CoreAvg)
	fmt.Fprintf(&b, "pp1Avg: %f W\n", d.GraphicsAvg)
	fmt.Fprintf(&b, "dramAvg: %f W\n", d.DRAMAvg)
	fmt.Fprintf(&b, "elapsed: %f s\n", d.Elapsed)
	return b.String()
}
