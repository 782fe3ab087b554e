//go:build linux

package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/ja7ad/cpupower/pkg/consumption"
	"github.com/ja7ad/cpupower/pkg/rapl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func testRows() []row {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return []row{
		{At: at, Thread: 0, Delta: rapl.Delta{PackageDiff: 5, PackageAvg: 5, Elapsed: 1}, SmoothedPkgW: 5, EnergyCumJ: 5},
		{At: at.Add(time.Second), Thread: 0, Delta: rapl.Delta{PackageDiff: 7, PackageAvg: 7, Elapsed: 1}, SmoothedPkgW: 6, EnergyCumJ: 12},
	}
}

func testSummary() []summary {
	return []summary{{
		Thread: 0, Samples: 2, Elapsed: 2,
		EnergyJ:  consumption.Domains{Package: 12},
		AverageW: consumption.Domains{Package: 6},
	}}
}

func writeAll(t *testing.T, format string) string {
	t.Helper()
	var buf bytes.Buffer
	s, err := newSink(format, &buf)
	require.NoError(t, err)
	for _, r := range testRows() {
		require.NoError(t, s.Row(r))
	}
	require.NoError(t, s.Close(testSummary()))
	return buf.String()
}

func TestSink_JSON(t *testing.T) {
	var doc struct {
		Rows []struct {
			Thread     int     `json:"thread"`
			PkgDiff    float64 `json:"pkg_diff_j"`
			PkgCumJ    float64 `json:"pkg_cum_j"`
			ElapsedSec float64 `json:"elapsed_sec"`
		} `json:"rows"`
		Summary []summary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(writeAll(t, "json")), &doc))
	require.Len(t, doc.Rows, 2)
	assert.Equal(t, 7.0, doc.Rows[1].PkgDiff)
	assert.Equal(t, 12.0, doc.Rows[1].PkgCumJ)
	require.Len(t, doc.Summary, 1)
	assert.Equal(t, 6.0, doc.Summary[0].AverageW.Package)
}

func TestSink_JSON_NoRows(t *testing.T) {
	var buf bytes.Buffer
	s, err := newSink("json", &buf)
	require.NoError(t, err)
	require.NoError(t, s.Close(nil))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Empty(t, doc["rows"])
}

func TestSink_CSV(t *testing.T) {
	records, err := csv.NewReader(strings.NewReader(writeAll(t, "csv"))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "time", records[0][0])
	assert.Equal(t, "pkg_cum_j", records[0][11])
	assert.Equal(t, "12.000000", records[2][11])
	assert.Equal(t, "2026-01-02T03:04:06Z", records[2][0])
}

func TestSink_YAML(t *testing.T) {
	dec := yaml.NewDecoder(strings.NewReader(writeAll(t, "yaml")))
	var docs []map[string]any
	for {
		var m map[string]any
		if err := dec.Decode(&m); err != nil {
			break
		}
		docs = append(docs, m)
	}
	require.Len(t, docs, 3)
	assert.EqualValues(t, 5, docs[0]["pkg_diff_j"])
	assert.Contains(t, docs[2], "summary")
}

func TestSink_Table(t *testing.T) {
	out := writeAll(t, "table")
	assert.Contains(t, out, "P_pkg (W)")
	assert.Contains(t, out, "2026-01-02 03:04:05")
	assert.Contains(t, out, "- watt (pkg):   6.000 W  (12.000 J)")
}

func TestSink_Unknown(t *testing.T) {
	_, err := newSink("xml", &bytes.Buffer{})
	assert.Error(t, err)
	assert.Error(t, printValue(&bytes.Buffer{}, "xml", 1, nil))
}

func TestSink_HTML(t *testing.T) {
	var table, html bytes.Buffer
	s := multiSink{newTableSink(&table), &htmlSink{w: &html, host: hostInfo{Host: "box<1>", Kernel: "6.1", CPUs: "2", Mem: "1 GB"}}}
	for _, r := range testRows() {
		require.NoError(t, s.Row(r))
	}
	require.NoError(t, s.Close(testSummary()))

	assert.Contains(t, table.String(), "2026-01-02 03:04:06")
	out := html.String()
	assert.Contains(t, out, "Host: box&lt;1&gt;")
	assert.Contains(t, out, "Rows: 2")
	assert.Contains(t, out, "<td>12.000</td>")
	assert.Contains(t, out, "<td>2026-01-02 03:04:05</td>")
}

func TestWriteBanner(t *testing.T) {
	var buf bytes.Buffer
	writeBanner(&buf, hostInfo{Host: "h", Kernel: "k", CPUs: "c", Mem: "m"}, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	assert.Contains(t, buf.String(), "Kernel: k")
	assert.Contains(t, buf.String(), "RAPL report as of 2026-01-02 03:04:05:")
}
