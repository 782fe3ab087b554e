//go:build linux

package main

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/ja7ad/cpupower/pkg/cpu"
	"github.com/ja7ad/cpupower/pkg/memory"
	"golang.org/x/sys/unix"
)

type hostInfo struct {
	Host   string
	Kernel string
	CPUs   string
	Mem    string
}

// describeHost collects the banner fields. Missing pieces are left as "?".
func describeHost(fs cpu.Sysfs) hostInfo {
	h := hostInfo{Host: "?", Kernel: "?", CPUs: "?", Mem: "?"}
	if name, err := os.Hostname(); err == nil {
		h.Host = name
	}
	var uts unix.Utsname
	if err := unix.Uname(&uts); err == nil {
		h.Kernel = unix.ByteSliceToString(uts.Release[:])
	}
	if n, err := fs.NumThreads(); err == nil {
		sockets, _ := fs.NumSockets()
		h.CPUs = fmt.Sprintf("%d threads, %d packages", n, sockets)
	} else {
		slog.Debug("host threads", "err", err)
	}
	if total := memory.Total(); total > 0 {
		h.Mem = total.Humanized()
	}
	return h
}

func writeBanner(w io.Writer, h hostInfo, at time.Time) {
	fmt.Fprintf(w, _console, h.Host, h.Kernel, h.CPUs, h.Mem, at.Format("2006-01-02 15:04:05"))
}

// htmlSink keeps every row and renders a single report on Close.
type htmlSink struct {
	w    io.Writer
	host hostInfo
	rows []row
}

func (s *htmlSink) Row(r row) error {
	s.rows = append(s.rows, r)
	return nil
}

func (s *htmlSink) Close(sums []summary) error {
	data := struct {
		Host    hostInfo
		Rows    []row
		Summary []summary
	}{s.host, s.rows, sums}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return err
	}
	_, err := s.w.Write(buf.Bytes())
	return err
}

// multiSink fans rows out to several sinks.
type multiSink []sink

func (m multiSink) Row(r row) error {
	for _, s := range m {
		if err := s.Row(r); err != nil {
			return err
		}
	}
	return nil
}

func (m multiSink) Close(sums []summary) error {
	var first error
	for _, s := range m {
		if err := s.Close(sums); err != nil && first == nil {
			first = err
		}
	}
	return first
}

var tpl = template.Must(template.New("rep").Parse(`<!doctype html>
<html lang="en"><meta charset="utf-8">
<title>RAPL Energy Report</title>
<style>
body{font-family:system-ui,Segoe UI,Roboto,Helvetica,Arial,sans-serif;margin:20px}
h1,h2{margin:0 0 8px}
table{border-collapse:collapse;width:100%;font-size:14px;margin-bottom:14px}
th,td{border:1px solid #ddd;padding:6px 8px;text-align:right}
th:first-child,td:first-child{text-align:left}
.small{color:#555}
</style>

<h1>RAPL Energy Report</h1>

<p class="small">
Host: {{.Host.Host}} &nbsp;|&nbsp;
Kernel: {{.Host.Kernel}} &nbsp;|&nbsp;
CPUs: {{.Host.CPUs}} &nbsp;|&nbsp;
Mem: {{.Host.Mem}} &nbsp;|&nbsp;
Rows: {{len .Rows}}
</p>

<h2>Summary</h2>
<table>
<thead>
<tr>
<th>cpu</th><th>samples</th><th>elapsed (s)</th>
<th>P_pkg (W)</th><th>P_pp0 (W)</th><th>P_pp1 (W)</th><th>P_dram (W)</th>
<th>E_pkg (J)</th><th>E_pp0 (J)</th><th>E_pp1 (J)</th><th>E_dram (J)</th>
</tr>
</thead>
<tbody>
{{range .Summary}}
<tr>
<td>cpu{{.Thread}}</td>
<td>{{.Samples}}</td>
<td>{{printf "%.1f" .Elapsed}}</td>
<td>{{printf "%.3f" .AverageW.Package}}</td>
<td>{{printf "%.3f" .AverageW.Core}}</td>
<td>{{printf "%.3f" .AverageW.Graphics}}</td>
<td>{{printf "%.3f" .AverageW.DRAM}}</td>
<td>{{printf "%.3f" .EnergyJ.Package}}</td>
<td>{{printf "%.3f" .EnergyJ.Core}}</td>
<td>{{printf "%.3f" .EnergyJ.Graphics}}</td>
<td>{{printf "%.3f" .EnergyJ.DRAM}}</td>
</tr>
{{end}}
</tbody>
</table>

<h2>Per-tick</h2>
<table>
<thead>
<tr>
<th>time</th><th>cpu</th>
<th>P_pkg (W)</th><th>P_pp0 (W)</th><th>P_pp1 (W)</th><th>P_dram (W)</th>
<th>P_pkg~ (W)</th><th>E_pkg (J)</th><th>dt (s)</th>
</tr>
</thead>
<tbody>
{{range .Rows}}
<tr>
<td>{{.At.Format "2006-01-02 15:04:05"}}</td>
<td>cpu{{.Thread}}</td>
<td>{{printf "%.3f" .PackageAvg}}</td>
<td>{{printf "%.3f" .CoreAvg}}</td>
<td>{{printf "%.3f" .GraphicsAvg}}</td>
<td>{{printf "%.3f" .DRAMAvg}}</td>
<td>{{printf "%.3f" .SmoothedPkgW}}</td>
<td>{{printf "%.3f" .EnergyCumJ}}</td>
<td>{{printf "%.3f" .Elapsed}}</td>
</tr>
{{end}}
</tbody>
</table>
</html>`))

const _console = `cpupower - CPU power and energy tool

       Host: %s
       Kernel: %s
       CPUs: %s
       Mem: %s

RAPL report as of %s:

`
