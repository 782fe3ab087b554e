//go:build linux

package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/ja7ad/cpupower/pkg/consumption"
	"github.com/ja7ad/cpupower/pkg/rapl"
	"gopkg.in/yaml.v3"
)

type row struct {
	At           time.Time `json:"time" yaml:"time"`
	Thread       int       `json:"thread" yaml:"thread"`
	rapl.Delta   `yaml:",inline"`
	SmoothedPkgW float64 `json:"pkg_smoothed_w" yaml:"pkg_smoothed_w"`
	EnergyCumJ   float64 `json:"pkg_cum_j" yaml:"pkg_cum_j"`
}

type summary struct {
	Thread   int                 `json:"thread" yaml:"thread"`
	Samples  int                 `json:"samples" yaml:"samples"`
	Elapsed  float64             `json:"elapsed_sec" yaml:"elapsed_sec"`
	EnergyJ  consumption.Domains `json:"energy_j" yaml:"energy_j"`
	AverageW consumption.Domains `json:"average_w" yaml:"average_w"`
}

// sink renders sampling rows in one output format.
type sink interface {
	Row(r row) error
	Close(sums []summary) error
}

var formats = []string{"table", "csv", "json", "yaml"}

func newSink(format string, w io.Writer) (sink, error) {
	switch format {
	case "table":
		return newTableSink(w), nil
	case "csv":
		return newCSVSink(w)
	case "json":
		return &jsonSink{w: w}, nil
	case "yaml":
		return &yamlSink{enc: yaml.NewEncoder(w)}, nil
	default:
		return nil, fmt.Errorf("format must be one of %v, got %q", formats, format)
	}
}

type tableSink struct {
	tw *tabwriter.Writer
	w  io.Writer
}

func newTableSink(w io.Writer) *tableSink {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tCPU\tP_pkg (W)\tP_pp0 (W)\tP_pp1 (W)\tP_dram (W)\tP_pkg~ (W)\tE_pkg (J)\tdt (s)")
	fmt.Fprintln(tw, "----\t---\t---------\t---------\t---------\t----------\t----------\t--------\t------")
	tw.Flush()
	return &tableSink{tw: tw, w: w}
}

func (s *tableSink) Row(r row) error {
	// fixed decimals; aligned by tabs
	fmt.Fprintf(s.tw, "%s\t%d\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\n",
		r.At.Format("2006-01-02 15:04:05"), r.Thread,
		r.PackageAvg, r.CoreAvg, r.GraphicsAvg, r.DRAMAvg, r.SmoothedPkgW, r.EnergyCumJ, r.Elapsed,
	)
	return s.tw.Flush()
}

func (s *tableSink) Close(sums []summary) error {
	for _, sum := range sums {
		fmt.Fprintln(s.w)
		fmt.Fprintf(s.w, "cpu%d avg (over %d samples, %.1fs):\n", sum.Thread, sum.Samples, sum.Elapsed)
		fmt.Fprintf(s.w, "- watt (pkg):   %.3f W  (%.3f J)\n", sum.AverageW.Package, sum.EnergyJ.Package)
		fmt.Fprintf(s.w, "- watt (pp0):   %.3f W  (%.3f J)\n", sum.AverageW.Core, sum.EnergyJ.Core)
		fmt.Fprintf(s.w, "- watt (pp1):   %.3f W  (%.3f J)\n", sum.AverageW.Graphics, sum.EnergyJ.Graphics)
		fmt.Fprintf(s.w, "- watt (dram):  %.3f W  (%.3f J)\n", sum.AverageW.DRAM, sum.EnergyJ.DRAM)
	}
	return nil
}

type csvSink struct {
	w *csv.Writer
}

func newCSVSink(w io.Writer) (*csvSink, error) {
	cw := csv.NewWriter(w)
	err := cw.Write([]string{
		"time", "thread", "pkg_diff_j", "pp0_diff_j", "pp1_diff_j", "dram_diff_j",
		"pkg_avg_w", "pp0_avg_w", "pp1_avg_w", "dram_avg_w", "pkg_smoothed_w", "pkg_cum_j", "elapsed_sec",
	})
	cw.Flush()
	if err != nil {
		return nil, err
	}
	return &csvSink{w: cw}, cw.Error()
}

func fmtFloat(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }

func (s *csvSink) Row(r row) error {
	_ = s.w.Write([]string{
		r.At.Format(time.RFC3339),
		strconv.Itoa(r.Thread),
		fmtFloat(r.PackageDiff), fmtFloat(r.CoreDiff), fmtFloat(r.GraphicsDiff), fmtFloat(r.DRAMDiff),
		fmtFloat(r.PackageAvg), fmtFloat(r.CoreAvg), fmtFloat(r.GraphicsAvg), fmtFloat(r.DRAMAvg),
		fmtFloat(r.SmoothedPkgW), fmtFloat(r.EnergyCumJ), fmtFloat(r.Elapsed),
	})
	s.w.Flush()
	return s.w.Error()
}

func (s *csvSink) Close([]summary) error {
	s.w.Flush()
	return s.w.Error()
}

// jsonSink streams {"rows":[...],"summary":[...]} so partial output is
// still useful after an interrupt.
type jsonSink struct {
	w io.Writer
	n int
}

func (s *jsonSink) Row(r row) error {
	b, err := json.MarshalIndent(r, "    ", "  ")
	if err != nil {
		return err
	}
	prefix := ",\n    "
	if s.n == 0 {
		prefix = "{\n  \"rows\": [\n    "
	}
	s.n++
	if _, err := io.WriteString(s.w, prefix); err != nil {
		return err
	}
	_, err = s.w.Write(b)
	return err
}

func (s *jsonSink) Close(sums []summary) error {
	if s.n == 0 {
		if _, err := io.WriteString(s.w, "{\n  \"rows\": ["); err != nil {
			return err
		}
	}
	if sums == nil {
		sums = []summary{}
	}
	b, err := json.MarshalIndent(sums, "  ", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(s.w, "\n  ],\n  \"summary\": %s\n}\n", b)
	return err
}

// yamlSink writes one document per row and a final summary document.
type yamlSink struct {
	enc *yaml.Encoder
}

func (s *yamlSink) Row(r row) error { return s.enc.Encode(r) }

func (s *yamlSink) Close(sums []summary) error {
	if err := s.enc.Encode(map[string][]summary{"summary": sums}); err != nil {
		return err
	}
	return s.enc.Close()
}

// printValue renders v as json or yaml, or calls text for table/csv.
func printValue(w io.Writer, format string, v any, text func(io.Writer)) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "table", "csv":
		text(w)
		return nil
	default:
		return fmt.Errorf("format must be one of %v, got %q", formats, format)
	}
}
