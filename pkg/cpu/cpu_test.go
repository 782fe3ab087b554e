package cpu

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ja7ad/cpupower/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTree builds a sysfs tree of 2 sockets x 2 cores x 2 threads:
// cpu0/cpu4, cpu1/cpu5 on socket 0; cpu2/cpu6, cpu3/cpu7 on socket 1.
func fakeTree(t *testing.T) Sysfs {
	t.Helper()
	root := t.TempDir()
	write := func(rel, content string) {
		p := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}

	write("sys/devices/system/cpu/possible", "0-7\n")
	write("sys/devices/system/node/possible", "0-1\n")
	write("sys/devices/system/cpu/smt/control", "on\n")
	write("sys/devices/system/cpu/smt/active", "1\n")
	for id := 0; id < 8; id++ {
		core := id % 4
		base := fmt.Sprintf("sys/devices/system/cpu/cpu%d/", id)
		write(base+"topology/physical_package_id", fmt.Sprintf("%d\n", core/2))
		write(base+"topology/core_id", fmt.Sprintf("%d\n", core%2))
		write(base+"topology/thread_siblings_list", fmt.Sprintf("%d,%d\n", core, core+4))
		write(base+"cpufreq/scaling_min_freq", "800000\n")
		write(base+"cpufreq/scaling_max_freq", "3400000\n")
		write(base+"cpufreq/scaling_cur_freq", "2100000\n")
		write(base+"cpufreq/cpuinfo_min_freq", "400000\n")
		write(base+"cpufreq/cpuinfo_max_freq", "4200000\n")
		write(base+"cpufreq/scaling_governor", "powersave\n")
	}
	return Sysfs{Root: root}
}

func writeAttr(t *testing.T, s Sysfs, rel, content string) {
	t.Helper()
	p := s.path(rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func readAttr(t *testing.T, s Sysfs, rel string) string {
	t.Helper()
	b, err := os.ReadFile(s.path(rel))
	require.NoError(t, err)
	return string(b)
}

func TestNumThreadsAndSockets(t *testing.T) {
	s := fakeTree(t)

	n, err := s.NumThreads()
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	n, err = s.NumSockets()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestNumThreads_SingleAndBroken(t *testing.T) {
	s := fakeTree(t)

	writeAttr(t, s, "sys/devices/system/node/possible", "0\n")
	n, err := s.NumSockets()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	writeAttr(t, s, "sys/devices/system/cpu/possible", "x-y\n")
	_, err = s.NumThreads()
	assert.ErrorIs(t, err, ErrBadRange)

	_, err = Sysfs{Root: t.TempDir()}.NumThreads()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSocketAndSibling(t *testing.T) {
	s := fakeTree(t)

	id, err := s.SocketID(3)
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	sib, err := s.SiblingID(1)
	require.NoError(t, err)
	assert.Equal(t, 5, sib)

	sib, err = s.SiblingID(5)
	require.NoError(t, err)
	assert.Equal(t, 1, sib)

	// range form, single thread core
	writeAttr(t, s, "sys/devices/system/cpu/cpu0/topology/thread_siblings_list", "0-1\n")
	sib, err = s.SiblingID(0)
	require.NoError(t, err)
	assert.Equal(t, 1, sib)

	writeAttr(t, s, "sys/devices/system/cpu/cpu2/topology/thread_siblings_list", "2\n")
	_, err = s.SiblingID(2)
	assert.ErrorIs(t, err, ErrNoSibling)

	_, err = s.SocketID(99)
	assert.Error(t, err)
}

func TestTopologyAndLeaders(t *testing.T) {
	s := fakeTree(t)
	// cpu6 offline: no topology directory
	require.NoError(t, os.RemoveAll(s.threadPath(6, "topology")))

	threads, err := s.Topology()
	require.NoError(t, err)
	require.Len(t, threads, 7)
	assert.Equal(t, Thread{ID: 3, Socket: 1, Core: 1, Siblings: []int{3, 7}}, threads[3])

	assert.Equal(t, []int{0, 2}, PackageLeaders(threads))
	assert.Empty(t, PackageLeaders(nil))
}

func TestSpeeds(t *testing.T) {
	s := fakeTree(t)

	l, err := s.Limits(2)
	require.NoError(t, err)
	assert.Equal(t, Limits{
		Min:      800 * types.MHz,
		Max:      3400 * types.MHz,
		Current:  2100 * types.MHz,
		HWMin:    400 * types.MHz,
		HWMax:    4200 * types.MHz,
		Governor: "powersave",
	}, l)

	cur, err := s.CurrentSpeed(0)
	require.NoError(t, err)
	assert.Equal(t, "2.10 GHz", cur.Humanized())
}

func TestSetSpeed_Clamped(t *testing.T) {
	s := fakeTree(t)

	got, err := s.SetMinSpeed(0, 1_000_000_000_000)
	require.NoError(t, err)
	assert.Equal(t, 4200*types.MHz, got)
	assert.Equal(t, "4200000", readAttr(t, s, "sys/devices/system/cpu/cpu0/cpufreq/scaling_min_freq"))

	got, err = s.SetMaxSpeed(0, 100*types.MHz)
	require.NoError(t, err)
	assert.Equal(t, 400*types.MHz, got)

	got, err = s.SetMaxSpeed(0, 3*types.GHz)
	require.NoError(t, err)
	assert.Equal(t, 3*types.GHz, got)
	assert.Equal(t, "3000000", readAttr(t, s, "sys/devices/system/cpu/cpu0/cpufreq/scaling_max_freq"))
}

func TestResetSpeed(t *testing.T) {
	s := fakeTree(t)
	_, err := s.SetMinSpeed(1, 3*types.GHz)
	require.NoError(t, err)

	require.NoError(t, s.ResetSpeed(1))
	minHz, err := s.MinSpeed(1)
	require.NoError(t, err)
	maxHz, err := s.MaxSpeed(1)
	require.NoError(t, err)
	assert.Equal(t, 400*types.MHz, minHz)
	assert.Equal(t, 4200*types.MHz, maxHz)
}

func TestHyperthreading(t *testing.T) {
	s := fakeTree(t)

	on, err := s.HyperthreadingEnabled()
	require.NoError(t, err)
	assert.True(t, on)

	require.NoError(t, s.SetHyperthreading(false))
	assert.Equal(t, "off", readAttr(t, s, "sys/devices/system/cpu/smt/control"))

	ctl, err := s.SMTControl()
	require.NoError(t, err)
	assert.Equal(t, "off", ctl)

	// already off: no write needed
	require.NoError(t, s.SetHyperthreading(false))

	writeAttr(t, s, "sys/devices/system/cpu/smt/control", "notsupported\n")
	err = s.SetHyperthreading(true)
	assert.ErrorIs(t, err, ErrSMTUnsupported)
}

func TestPackageTemperature_Hwmon(t *testing.T) {
	s := fakeTree(t)
	writeAttr(t, s, "sys/class/hwmon/hwmon0/name", "acpitz\n")
	writeAttr(t, s, "sys/class/hwmon/hwmon0/temp1_input", "27800\n")
	writeAttr(t, s, "sys/class/hwmon/hwmon1/name", "coretemp\n")
	writeAttr(t, s, "sys/class/hwmon/hwmon1/temp1_label", "Core 0\n")
	writeAttr(t, s, "sys/class/hwmon/hwmon1/temp1_input", "41000\n")
	writeAttr(t, s, "sys/class/hwmon/hwmon1/temp2_label", "Package id 0\n")
	writeAttr(t, s, "sys/class/hwmon/hwmon1/temp2_input", "52500\n")

	c, err := s.PackageTemperature()
	require.NoError(t, err)
	assert.InDelta(t, 52.5, float64(c), 1e-12)
}

func TestPackageTemperature_UnlabelledAndZone(t *testing.T) {
	s := fakeTree(t)
	writeAttr(t, s, "sys/class/thermal/thermal_zone0/type", "acpitz\n")
	writeAttr(t, s, "sys/class/thermal/thermal_zone0/temp", "20000\n")
	writeAttr(t, s, "sys/class/thermal/thermal_zone1/type", "x86_pkg_temp\n")
	writeAttr(t, s, "sys/class/thermal/thermal_zone1/temp", "61000\n")

	c, err := s.PackageTemperature()
	require.NoError(t, err)
	assert.InDelta(t, 61.0, float64(c), 1e-12)

	writeAttr(t, s, "sys/class/hwmon/hwmon3/name", "k10temp\n")
	writeAttr(t, s, "sys/class/hwmon/hwmon3/temp1_input", "45125\n")
	c, err = s.PackageTemperature()
	require.NoError(t, err)
	assert.InDelta(t, 45.125, float64(c), 1e-12)
}

func TestPackageTemperature_None(t *testing.T) {
	_, err := fakeTree(t).PackageTemperature()
	assert.ErrorIs(t, err, ErrNoSensor)
}
