//go:build linux

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"text/tabwriter"

	"github.com/ja7ad/cpupower/pkg/cpu"
	"github.com/ja7ad/cpupower/pkg/memory"
	"github.com/ja7ad/cpupower/pkg/types"
	"github.com/spf13/cobra"
)

type infoView struct {
	Threads        int          `json:"threads" yaml:"threads"`
	Sockets        int          `json:"sockets" yaml:"sockets"`
	Hyperthreading bool         `json:"hyperthreading" yaml:"hyperthreading"`
	SMTControl     string       `json:"smt_control,omitempty" yaml:"smt_control,omitempty"`
	Memory         memory.Stats `json:"memory" yaml:"memory"`
	Topology       []cpu.Thread `json:"topology" yaml:"topology"`
}

func newInfoCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show CPU topology, SMT state and memory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := g.sysfs()
			var v infoView
			var err error

			if v.Threads, err = fs.NumThreads(); err != nil {
				return fmt.Errorf("threads: %w", err)
			}
			if v.Sockets, err = fs.NumSockets(); err != nil {
				slog.Warn("sockets", "err", err)
			}
			if v.Topology, err = fs.Topology(); err != nil {
				return fmt.Errorf("topology: %w", err)
			}
			if v.Hyperthreading, err = fs.HyperthreadingEnabled(); err != nil {
				slog.Debug("smt active", "err", err)
			}
			v.SMTControl, _ = fs.SMTControl()
			if v.Memory, err = memory.Read(); err != nil {
				slog.Warn("memory", "err", err)
			}

			return printValue(cmd.OutOrStdout(), g.format, v, func(w io.Writer) {
				fmt.Fprintf(w, "Threads:        %d\n", v.Threads)
				fmt.Fprintf(w, "Sockets:        %d\n", v.Sockets)
				fmt.Fprintf(w, "Hyperthreading: %t (%s)\n", v.Hyperthreading, v.SMTControl)
				fmt.Fprintf(w, "Memory:         %s total, %s free, page %s\n",
					v.Memory.Total.Humanized(), v.Memory.Free.Humanized(), v.Memory.PageSize.Humanized())
				fmt.Fprintln(w)

				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "CPU\tSOCKET\tCORE\tSIBLINGS")
				for _, t := range v.Topology {
					fmt.Fprintf(tw, "%d\t%d\t%d\t%v\n", t.ID, t.Socket, t.Core, t.Siblings)
				}
				tw.Flush()
			})
		},
	}
}

func parseThread(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid thread id %q", s)
	}
	return n, nil
}

func newFreqCmd(g *globals) *cobra.Command {
	freq := &cobra.Command{
		Use:   "freq",
		Short: "Show or change frequency scaling limits",
	}

	get := &cobra.Command{
		Use:   "get [THREAD]",
		Short: "Show the frequency limits of a thread (default 0)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			thread := 0
			if len(args) == 1 {
				var err error
				if thread, err = parseThread(args[0]); err != nil {
					return err
				}
			}
			l, err := g.sysfs().Limits(thread)
			if err != nil {
				return err
			}
			return printValue(cmd.OutOrStdout(), g.format, l, func(w io.Writer) {
				fmt.Fprintf(w, "cpu%d (%s)\n", thread, l.Governor)
				fmt.Fprintf(w, "  current: %s\n", l.Current.Humanized())
				fmt.Fprintf(w, "  scaling: %s - %s\n", l.Min.Humanized(), l.Max.Humanized())
				fmt.Fprintf(w, "  hardware: %s - %s\n", l.HWMin.Humanized(), l.HWMax.Humanized())
			})
		},
	}

	var minS, maxS string
	set := &cobra.Command{
		Use:   "set THREAD",
		Short: "Set the scaling limits of a thread (clamped to hardware limits)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			thread, err := parseThread(args[0])
			if err != nil {
				return err
			}
			if minS == "" && maxS == "" {
				return errors.New("at least one of --min or --max is required")
			}
			fs := g.sysfs()
			if maxS != "" {
				hz, err := types.ParseHertz(maxS)
				if err != nil {
					return err
				}
				got, err := fs.SetMaxSpeed(thread, hz)
				if err != nil {
					return fmt.Errorf("set max: %w", err)
				}
				slog.Info("scaling max set", "thread", thread, "freq", got.Humanized())
			}
			if minS != "" {
				hz, err := types.ParseHertz(minS)
				if err != nil {
					return err
				}
				got, err := fs.SetMinSpeed(thread, hz)
				if err != nil {
					return fmt.Errorf("set min: %w", err)
				}
				slog.Info("scaling min set", "thread", thread, "freq", got.Humanized())
			}
			return nil
		},
	}
	set.Flags().StringVar(&minS, "min", "", "lower scaling limit (e.g. 800MHz, 1.2GHz, kHz if no unit)")
	set.Flags().StringVar(&maxS, "max", "", "upper scaling limit (e.g. 3.4GHz)")

	reset := &cobra.Command{
		Use:   "reset THREAD",
		Short: "Restore the scaling limits of a thread to the hardware limits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			thread, err := parseThread(args[0])
			if err != nil {
				return err
			}
			return g.sysfs().ResetSpeed(thread)
		},
	}

	freq.AddCommand(get, set, reset)
	return freq
}

func newHTCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:       "ht [on|off]",
		Short:     "Show or toggle hyperthreading (SMT)",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := g.sysfs()
			if len(args) == 1 {
				if err := fs.SetHyperthreading(args[0] == "on"); err != nil {
					return err
				}
				slog.Info("smt control set", "state", args[0])
			}
			on, err := fs.HyperthreadingEnabled()
			if err != nil {
				return err
			}
			ctl, _ := fs.SMTControl()
			v := map[string]any{"hyperthreading": on, "smt_control": ctl}
			return printValue(cmd.OutOrStdout(), g.format, v, func(w io.Writer) {
				fmt.Fprintf(w, "hyperthreading: %t (%s)\n", on, ctl)
			})
		},
	}
}

func newTempCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "temp",
		Short: "Show the CPU package temperature",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.sysfs().PackageTemperature()
			if err != nil {
				return err
			}
			v := map[string]float64{"package_celsius": float64(c)}
			return printValue(cmd.OutOrStdout(), g.format, v, func(w io.Writer) {
				fmt.Fprintf(w, "package: %s\n", c)
			})
		},
	}
}
