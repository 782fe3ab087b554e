package consumption

// Config holds accumulator settings.
//   - Alpha: EMA smoothing factor for the package power [0..1], 1 disables smoothing
//   - Warmup: number of initial deltas to drop from totals and averages
type Config struct {
	Alpha  float64
	Warmup int
}

// _defaultConfig returns a Config pre-filled with the CLI defaults.
func _defaultConfig() *Config {
	return &Config{
		Alpha:  0.5,
		Warmup: 0,
	}
}

// Domains holds one value per RAPL domain.
// Units depend on context: Joules for energy, Watts for power.
type Domains struct {
	Package  float64 `json:"pkg" yaml:"pkg"`
	Core     float64 `json:"pp0" yaml:"pp0"`
	Graphics float64 `json:"pp1" yaml:"pp1"`
	DRAM     float64 `json:"dram" yaml:"dram"`
}

func (d Domains) add(o Domains) Domains {
	return Domains{
		Package:  d.Package + o.Package,
		Core:     d.Core + o.Core,
		Graphics: d.Graphics + o.Graphics,
		DRAM:     d.DRAM + o.DRAM,
	}
}

func (d Domains) scale(f float64) Domains {
	return Domains{
		Package:  d.Package * f,
		Core:     d.Core * f,
		Graphics: d.Graphics * f,
		DRAM:     d.DRAM * f,
	}
}

// Result is the power breakdown for one delta.
type Result struct {
	Power        Domains `json:"power_w" yaml:"power_w"`
	SmoothedPkgW float64 `json:"pkg_smoothed_w" yaml:"pkg_smoothed_w"`
	EnergyCumJ   Domains `json:"energy_cum_j" yaml:"energy_cum_j"`
	Warmup       bool    `json:"warmup,omitempty" yaml:"warmup,omitempty"`
}
