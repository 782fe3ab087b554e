package cpu

import (
	"fmt"
	"os"
	"sort"

	"github.com/ja7ad/cpupower/pkg/system/util"
)

// Thread describes one logical CPU.
type Thread struct {
	ID       int   `json:"id" yaml:"id"`
	Socket   int   `json:"socket" yaml:"socket"`
	Core     int   `json:"core" yaml:"core"`
	Siblings []int `json:"siblings" yaml:"siblings"`
}

// NumThreads returns the number of possible logical CPUs.
// "0" means one thread, "0-N" means N+1.
func (s Sysfs) NumThreads() (int, error) {
	return s.countList(s.path(cpuDir, "possible"))
}

// NumSockets returns the number of possible NUMA nodes, which the kernel
// exposes one per socket on common hardware.
func (s Sysfs) NumSockets() (int, error) {
	return s.countList(s.path(nodeDir, "possible"))
}

func (s Sysfs) countList(path string) (int, error) {
	raw, err := util.ReadTrimmed(path)
	if err != nil {
		return 0, err
	}
	ids, err := util.ParseList(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBadRange, err)
	}
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrBadRange, path)
	}
	return ids[len(ids)-1] + 1, nil
}

// SocketID returns the physical package id of thread.
func (s Sysfs) SocketID(thread int) (int, error) {
	v, err := util.ReadInt(s.threadPath(thread, "topology", "physical_package_id"))
	return int(v), err
}

// CoreID returns the core id of thread within its package.
func (s Sysfs) CoreID(thread int) (int, error) {
	v, err := util.ReadInt(s.threadPath(thread, "topology", "core_id"))
	return int(v), err
}

// Siblings returns all threads sharing a core with thread, thread included.
func (s Sysfs) Siblings(thread int) ([]int, error) {
	raw, err := util.ReadTrimmed(s.threadPath(thread, "topology", "thread_siblings_list"))
	if err != nil {
		return nil, err
	}
	return util.ParseList(raw)
}

// SiblingID returns the hyperthread sibling of thread. It returns
// ErrNoSibling when the core runs a single thread.
func (s Sysfs) SiblingID(thread int) (int, error) {
	ids, err := s.Siblings(thread)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		if id != thread {
			return id, nil
		}
	}
	return 0, fmt.Errorf("%w: cpu%d", ErrNoSibling, thread)
}

// Topology describes every online thread. Offline threads have no
// topology directory and are skipped.
func (s Sysfs) Topology() ([]Thread, error) {
	n, err := s.NumThreads()
	if err != nil {
		return nil, err
	}
	out := make([]Thread, 0, n)
	for id := 0; id < n; id++ {
		if _, err := os.Stat(s.threadPath(id, "topology")); err != nil {
			continue
		}
		t := Thread{ID: id}
		if t.Socket, err = s.SocketID(id); err != nil {
			return nil, err
		}
		if t.Core, err = s.CoreID(id); err != nil {
			return nil, err
		}
		if t.Siblings, err = s.Siblings(id); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// PackageLeaders returns the lowest thread id of every socket, sorted by
// socket. RAPL counters are per package, one reader per leader covers the
// machine.
func PackageLeaders(threads []Thread) []int {
	first := map[int]int{}
	for _, t := range threads {
		if cur, ok := first[t.Socket]; !ok || t.ID < cur {
			first[t.Socket] = t.ID
		}
	}
	sockets := make([]int, 0, len(first))
	for s := range first {
		sockets = append(sockets, s)
	}
	sort.Ints(sockets)
	out := make([]int, 0, len(sockets))
	for _, s := range sockets {
		out = append(out, first[s])
	}
	return out
}
