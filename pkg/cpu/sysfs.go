// Package cpu reads and writes CPU topology, frequency scaling limits, SMT
// state and package temperature through sysfs.
//
// Every accessor is a method on Sysfs so that tests can point Root at a
// fake tree. The package level functions use Default, rooted at "/".
// Writes need root.
package cpu

import (
	"fmt"
	"path/filepath"
)

const (
	cpuDir    = "sys/devices/system/cpu"
	nodeDir   = "sys/devices/system/node"
	hwmonGlob = "sys/class/hwmon/hwmon*"
	zoneGlob  = "sys/class/thermal/thermal_zone*"
)

// Sysfs is a sysfs tree mounted at Root.
type Sysfs struct {
	Root string
}

// Default is the host sysfs.
var Default = Sysfs{Root: "/"}

func (s Sysfs) path(elem ...string) string {
	return filepath.Join(append([]string{s.Root}, elem...)...)
}

func (s Sysfs) threadPath(thread int, elem ...string) string {
	return s.path(append([]string{cpuDir, fmt.Sprintf("cpu%d", thread)}, elem...)...)
}

func NumThreads() (int, error)             { return Default.NumThreads() }
func NumSockets() (int, error)             { return Default.NumSockets() }
func SocketID(thread int) (int, error)     { return Default.SocketID(thread) }
func SiblingID(thread int) (int, error)    { return Default.SiblingID(thread) }
func Topology() ([]Thread, error)          { return Default.Topology() }
func HyperthreadingEnabled() (bool, error) { return Default.HyperthreadingEnabled() }
func SetHyperthreading(on bool) error      { return Default.SetHyperthreading(on) }
