package cpu

import (
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/ja7ad/cpupower/pkg/system/util"
	"github.com/ja7ad/cpupower/pkg/types"
)

// hwmon drivers that report a package (or die) temperature.
var tempDrivers = []string{
	"coretemp",
	"k10temp",
	"zenpower",
}

// labels of the package sensor, in order of preference.
var packageLabels = []string{
	"Package id",
	"Tctl",
	"Tdie",
}

// PackageTemperature returns the temperature of the first CPU package.
// hwmon drivers are preferred; the x86_pkg_temp thermal zone is the
// fallback.
func (s Sysfs) PackageTemperature() (types.Celsius, error) {
	dirs, _ := filepath.Glob(s.path(hwmonGlob))
	sort.Strings(dirs)
	for _, dir := range dirs {
		name, err := util.ReadTrimmed(filepath.Join(dir, "name"))
		if err != nil || !slices.Contains(tempDrivers, name) {
			continue
		}
		if c, err := readPackageInput(dir); err == nil {
			return c, nil
		}
	}

	zones, _ := filepath.Glob(s.path(zoneGlob))
	sort.Strings(zones)
	for _, z := range zones {
		typ, err := util.ReadTrimmed(filepath.Join(z, "type"))
		if err != nil || typ != "x86_pkg_temp" {
			continue
		}
		if v, err := util.ReadInt(filepath.Join(z, "temp")); err == nil {
			return types.FromMilliCelsius(v), nil
		}
	}
	return 0, ErrNoSensor
}

// readPackageInput picks the labelled package input of one hwmon device,
// or temp1_input when the driver has no labels.
func readPackageInput(dir string) (types.Celsius, error) {
	labels, _ := filepath.Glob(filepath.Join(dir, "temp*_label"))
	sort.Strings(labels)
	for _, want := range packageLabels {
		for _, l := range labels {
			v, err := util.ReadTrimmed(l)
			if err != nil || !strings.HasPrefix(v, want) {
				continue
			}
			input := strings.TrimSuffix(l, "_label") + "_input"
			if m, err := util.ReadInt(input); err == nil {
				return types.FromMilliCelsius(m), nil
			}
		}
	}
	m, err := util.ReadInt(filepath.Join(dir, "temp1_input"))
	if err != nil {
		return 0, err
	}
	return types.FromMilliCelsius(m), nil
}

func PackageTemperature() (types.Celsius, error) { return Default.PackageTemperature() }

