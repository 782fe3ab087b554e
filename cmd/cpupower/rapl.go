//go:build linux

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ja7ad/cpupower/pkg/consumption"
	"github.com/ja7ad/cpupower/pkg/cpu"
	"github.com/ja7ad/cpupower/pkg/rapl"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type raplOpts struct {
	thread      int
	allPackages bool
	samples     int
	interval    time.Duration
	ema         float64
	warmup      int
	msrPath     string
	outPath     string
	htmlPath    string
	unitsOnly   bool
}

// openDevice opens the msr device of one thread.
var openDevice = rapl.OpenMSR

func addRaplFlags(fs *pflag.FlagSet, o *raplOpts, env envConfig) {
	fs.IntVarP(&o.thread, "thread", "t", env.Thread, "logical CPU whose package is sampled")
	fs.BoolVarP(&o.allPackages, "all-packages", "a", false, "sample one thread of every package")
	fs.IntVarP(&o.samples, "samples", "s", env.Samples, "number of samples to collect (0 = run until Ctrl-C)")
	fs.DurationVarP(&o.interval, "interval", "i", env.Interval, "sampling interval (e.g. 1s, 500ms)")
	fs.Float64Var(&o.ema, "ema", 0.5, "EMA alpha for the smoothed package power [0..1]")
	fs.IntVar(&o.warmup, "warmup", 0, "number of initial samples to skip from display and averages")
	fs.StringVar(&o.msrPath, "msr-path", env.MSRPath, "msr device path, %d is replaced by the thread id")
	fs.StringVar(&o.outPath, "output", "", "write samples to this file instead of stdout")
	fs.StringVar(&o.htmlPath, "html", "", "also write per-tick rows and the summary to this HTML file")
	fs.BoolVar(&o.unitsOnly, "units", false, "print the RAPL units and power info, then exit")
}

func newRaplCmd(g *globals, env envConfig) *cobra.Command {
	var o raplOpts
	cmd := &cobra.Command{
		Use:   "rapl",
		Short: "Sample RAPL package/core/graphics/dram energy (needs root)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRapl(cmd, g, o)
		},
	}
	addRaplFlags(cmd.Flags(), &o, env)
	return cmd
}

func (o raplOpts) validate() error {
	if o.interval <= 0 {
		return fmt.Errorf("interval must be > 0")
	}
	if o.ema < 0 || o.ema > 1 {
		return fmt.Errorf("ema must be in [0,1]")
	}
	if o.samples < 0 || o.warmup < 0 {
		return fmt.Errorf("samples and warmup must be >= 0")
	}
	return nil
}

func raplThreads(g *globals, o raplOpts) ([]int, error) {
	if !o.allPackages {
		return []int{o.thread}, nil
	}
	topo, err := g.sysfs().Topology()
	if err != nil {
		return nil, fmt.Errorf("topology: %w", err)
	}
	return cpu.PackageLeaders(topo), nil
}

// openReaders initializes one reader per thread. Threads without RAPL
// access are skipped with a warning.
func openReaders(threads []int, msrPath string) []*rapl.Reader {
	var out []*rapl.Reader
	for _, t := range threads {
		r := rapl.New(t, rapl.WithDevicePath(msrPath), rapl.WithOpener(openDevice))
		if err := r.Init(); err != nil {
			slog.Warn("rapl unavailable", "thread", t, "err", err)
			continue
		}
		for _, p := range r.Probes() {
			slog.Debug("rapl optional register disabled", "thread", t, "err", p)
		}
		out = append(out, r)
	}
	return out
}

func runRapl(cmd *cobra.Command, g *globals, o raplOpts) error {
	if err := o.validate(); err != nil {
		return err
	}
	threads, err := raplThreads(g, o)
	if err != nil {
		return err
	}

	readers := openReaders(threads, o.msrPath)
	if len(readers) == 0 {
		return errors.New("RAPL not available (needs root, the msr module and an Intel/AMD CPU with RAPL)")
	}
	defer func() {
		for _, r := range readers {
			_ = r.Close()
		}
	}()

	var out io.Writer = cmd.OutOrStdout()
	if o.outPath != "" {
		if err := os.MkdirAll(filepath.Dir(o.outPath), 0o755); err != nil {
			return err
		}
		f, err := os.Create(o.outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	if o.unitsOnly {
		units := make(map[string]rapl.Units, len(readers))
		for _, r := range readers {
			units[fmt.Sprintf("cpu%d", r.ThreadID())] = r.Units()
		}
		return printValue(out, g.format, units, func(w io.Writer) {
			for _, r := range readers {
				fmt.Fprintf(w, "cpu%d\n%s\n", r.ThreadID(), r.Units())
			}
		})
	}

	host := describeHost(g.sysfs())
	if g.format == "table" {
		writeBanner(out, host, time.Now())
	}
	snk, err := newSink(g.format, out)
	if err != nil {
		return err
	}
	if o.htmlPath != "" {
		if err := os.MkdirAll(filepath.Dir(o.htmlPath), 0o755); err != nil {
			return err
		}
		f, err := os.Create(o.htmlPath)
		if err != nil {
			return err
		}
		defer f.Close()
		snk = multiSink{snk, &htmlSink{w: f, host: host}}
	}

	accs := make([]*consumption.Accumulator, len(readers))
	for i := range readers {
		accs[i] = consumption.New(&consumption.Config{Alpha: o.ema, Warmup: o.warmup})
	}

	// Ctrl-C handling
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	ticks := 0
loop:
	for {
		select {
		case <-ctx.Done():
			slog.Info("interrupted")
			break loop

		case now := <-ticker.C:
			for i, r := range readers {
				d, err := r.Delta()
				if err != nil {
					slog.Warn("rapl delta", "thread", r.ThreadID(), "err", err)
					continue
				}
				res := accs[i].Apply(d)
				if res.Warmup {
					continue
				}
				if err := snk.Row(row{
					At:           now,
					Thread:       r.ThreadID(),
					Delta:        d,
					SmoothedPkgW: res.SmoothedPkgW,
					EnergyCumJ:   res.EnergyCumJ.Package,
				}); err != nil {
					return fmt.Errorf("write sample: %w", err)
				}
			}

			// stop condition counts only post-warmup samples
			ticks++
			if o.samples > 0 && ticks-o.warmup >= o.samples {
				break loop
			}
		}
	}

	sums := make([]summary, len(readers))
	for i, r := range readers {
		sums[i] = summary{
			Thread:   r.ThreadID(),
			Samples:  accs[i].Count(),
			Elapsed:  accs[i].Elapsed(),
			EnergyJ:  accs[i].EnergyCumJ(),
			AverageW: accs[i].Averages(),
		}
	}
	return snk.Close(sums)
}
