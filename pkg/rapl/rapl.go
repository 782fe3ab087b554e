//go:build linux

package rapl

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ja7ad/cpupower/pkg/system/util"
)

// Option configures a Reader.
type Option func(*Reader)

// WithDevicePath sets the device path format. A %d verb is replaced by the
// thread id; a path without it is opened as is.
func WithDevicePath(format string) Option {
	return func(r *Reader) { r.path = format }
}

// WithOpener replaces the function used to open the device.
func WithOpener(open func(path string) (Device, error)) Option {
	return func(r *Reader) { r.open = open }
}

// WithClock replaces time.Now. The clock must be monotonic.
func WithClock(now func() time.Time) Option {
	return func(r *Reader) { r.now = now }
}

// Reader samples the RAPL energy counters of the package that owns one
// logical CPU.
//
// A Reader has a single writer: Init, Delta and Close must not be called
// concurrently on the same instance. There is no internal locking.
type Reader struct {
	threadID int
	path     string
	open     func(path string) (Device, error)
	now      func() time.Time

	dev    Device
	state  State
	units  Units
	last   Sample
	probes []error
}

// New returns a Reader bound to threadID. It performs no I/O.
func New(threadID int, opts ...Option) *Reader {
	r := &Reader{
		threadID: threadID,
		path:     DefaultMSRFormat,
		open:     OpenMSR,
		now:      time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Init opens the MSR device, derives the units, probes the optional
// registers and captures the baseline sample. An error wrapping ErrAccess
// means RAPL is unavailable on this host; callers may skip energy
// reporting and carry on. Init on an active reader is a no-op.
func (r *Reader) Init() error {
	if r.state == Active {
		return nil
	}
	r.state = Initializing
	r.probes = nil

	path := r.devicePath()
	dev, err := r.open(path)
	if err != nil {
		r.state = Failed
		return fmt.Errorf("%w: open %s: %w", ErrAccess, path, err)
	}

	raw, err := dev.ReadRegister(MSRPowerUnit)
	if err != nil {
		_ = dev.Close()
		r.state = Failed
		return fmt.Errorf("%w: cpu %d power unit: %w", ErrAccess, r.threadID, err)
	}
	units := decodeUnits(raw)

	// Advisory only, zero-filled when missing.
	if info, err := dev.ReadRegister(MSRPkgPowerInfo); err == nil {
		units.applyPowerInfo(info)
	} else {
		r.probes = append(r.probes, fmt.Errorf("%w: package power info: %w", ErrUnsupported, err))
	}

	if _, err := dev.ReadRegister(MSRPP1Energy); err == nil {
		units.SupportsSecondaryPlane = true
	} else {
		r.probes = append(r.probes, fmt.Errorf("%w: pp1 energy: %w", ErrUnsupported, err))
	}

	r.dev = dev
	r.units = units

	base, err := r.sample()
	if err != nil {
		_ = dev.Close()
		r.dev = nil
		r.state = Failed
		return err
	}
	r.last = base
	r.state = Active
	return nil
}

// IsActive reports whether Init succeeded and the reader is not closed.
func (r *Reader) IsActive() bool { return r.state == Active }

// State returns the current lifecycle state.
func (r *Reader) State() State { return r.state }

// ThreadID returns the logical CPU the reader is bound to.
func (r *Reader) ThreadID() int { return r.threadID }

// Units returns the calibration record read by Init.
func (r *Reader) Units() Units { return r.units }

// Probes returns the optional capabilities Init found missing. Every error
// wraps ErrUnsupported.
func (r *Reader) Probes() []error { return r.probes }

// Delta samples the counters and returns the energy consumed since the
// previous sample (or since Init). On error the baseline is kept, so the
// next successful call covers the skipped interval.
func (r *Reader) Delta() (Delta, error) {
	if r.state != Active {
		return Delta{}, fmt.Errorf("%w: state %s", ErrInvalidState, r.state)
	}
	cur, err := r.sample()
	if err != nil {
		return Delta{}, err
	}
	d := diff(r.last, cur, r.units.EnergyUnits)
	r.last = cur
	return d, nil
}

// Close releases the device. The reader returns to Uninitialized and may be
// initialized again.
func (r *Reader) Close() error {
	r.state = Uninitialized
	r.last = Sample{}
	if r.dev == nil {
		return nil
	}
	err := r.dev.Close()
	r.dev = nil
	return err
}

func (r *Reader) devicePath() string {
	if !strings.Contains(r.path, "%d") {
		return r.path
	}
	return fmt.Sprintf(r.path, r.threadID)
}

type counter struct {
	offset int64
	name   string
	dst    *uint64
}

func (r *Reader) sample() (Sample, error) {
	var s Sample
	regs := []counter{
		{MSRPkgEnergy, "package", &s.Package},
		{MSRPP0Energy, "pp0", &s.Core},
		{MSRDRAMEnergy, "dram", &s.DRAM},
	}
	if r.units.SupportsSecondaryPlane {
		regs = append(regs, counter{MSRPP1Energy, "pp1", &s.Graphics})
	}

	for _, reg := range regs {
		v, err := r.dev.ReadRegister(reg.offset)
		if err != nil {
			return Sample{}, fmt.Errorf("%w: cpu %d %s energy: %w", ErrRead, r.threadID, reg.name, err)
		}
		*reg.dst = v & counterMask
	}
	s.Time = r.now()
	return s, nil
}

// diff converts two samples into Joules and Watts. Counters wrap at 32
// bits; an interval of zero (or a clock going backwards) yields 0 W.
func diff(prev, cur Sample, energyUnits float64) Delta {
	elapsed := math.Max(cur.Time.Sub(prev.Time).Seconds(), 0)

	joules := func(now, old uint64) float64 {
		return float64(util.DeltaU32(now, old)) * energyUnits
	}

	d := Delta{
		PackageDiff:  joules(cur.Package, prev.Package),
		CoreDiff:     joules(cur.Core, prev.Core),
		GraphicsDiff: joules(cur.Graphics, prev.Graphics),
		DRAMDiff:     joules(cur.DRAM, prev.DRAM),
		Elapsed:      elapsed,
	}
	d.PackageAvg = util.SafeDiv(d.PackageDiff, elapsed)
	d.CoreAvg = util.SafeDiv(d.CoreDiff, elapsed)
	d.GraphicsAvg = util.SafeDiv(d.GraphicsDiff, elapsed)
	d.DRAMAvg = util.SafeDiv(d.DRAMDiff, elapsed)
	return d
}
