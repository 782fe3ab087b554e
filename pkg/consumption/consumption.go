//go:build linux

// Package consumption folds RAPL deltas into cumulative energy and session
// averages.
package consumption

import (
	"github.com/ja7ad/cpupower/pkg/rapl"
	"github.com/ja7ad/cpupower/pkg/system/util"
)

// Accumulator keeps running energy and averages.
type Accumulator struct {
	cfg     *Config
	energyJ Domains
	elapsed float64
	count   int
	seen    int
	ema     *util.EMA
}

// New creates an accumulator with the given config.
// Notes:
//   - Alpha outside [0..1] is treated as "unset" and defaulted.
//   - Negative Warmup is treated as 0.
func New(cfg *Config) *Accumulator {
	base := _defaultConfig()

	// No user cfg: use defaults as-is.
	if cfg == nil {
		return &Accumulator{cfg: base, ema: util.NewEMA(base.Alpha)}
	}

	merged := *base
	if cfg.Alpha >= 0 && cfg.Alpha <= 1 {
		merged.Alpha = cfg.Alpha
	}
	if cfg.Warmup > 0 {
		merged.Warmup = cfg.Warmup
	}
	return &Accumulator{cfg: &merged, ema: util.NewEMA(merged.Alpha)}
}

// Apply folds one delta into the totals and returns its power split.
// Deltas inside the warmup window are reported but not accumulated.
func (a *Accumulator) Apply(d rapl.Delta) Result {
	power := Domains{
		Package:  d.PackageAvg,
		Core:     d.CoreAvg,
		Graphics: d.GraphicsAvg,
		DRAM:     d.DRAMAvg,
	}

	a.seen++
	if a.seen <= a.cfg.Warmup {
		return Result{Power: power, SmoothedPkgW: d.PackageAvg, EnergyCumJ: a.energyJ, Warmup: true}
	}

	a.energyJ = a.energyJ.add(Domains{
		Package:  d.PackageDiff,
		Core:     d.CoreDiff,
		Graphics: d.GraphicsDiff,
		DRAM:     d.DRAMDiff,
	})
	a.elapsed += d.Elapsed
	a.count++

	return Result{
		Power:        power,
		SmoothedPkgW: a.ema.Next(d.PackageAvg),
		EnergyCumJ:   a.energyJ,
	}
}

// EnergyCumJ returns cumulative energy in Joules per domain.
func (a *Accumulator) EnergyCumJ() Domains { return a.energyJ }

// Elapsed returns the accumulated interval in seconds.
func (a *Accumulator) Elapsed() float64 { return a.elapsed }

// Count returns the number of accumulated deltas.
func (a *Accumulator) Count() int { return a.count }

// Averages returns the time-weighted average power per domain, i.e. total
// energy over total elapsed time.
func (a *Accumulator) Averages() Domains {
	if a.count == 0 {
		return Domains{}
	}
	return a.energyJ.scale(util.SafeDiv(1, a.elapsed))
}
