//go:build linux

// Package memory reports main memory size from sysinfo(2).
package memory

import (
	"fmt"
	"os"

	"github.com/ja7ad/cpupower/pkg/types"
	"golang.org/x/sys/unix"
)

// Stats is one sysinfo(2) reading.
type Stats struct {
	Total    types.Bytes `json:"total_bytes" yaml:"total_bytes"`
	Free     types.Bytes `json:"free_bytes" yaml:"free_bytes"`
	PageSize types.Bytes `json:"page_size" yaml:"page_size"`
}

// Read returns total and free main memory and the page size.
func Read() (Stats, error) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return Stats{}, fmt.Errorf("memory: sysinfo: %w", err)
	}
	unit := uint64(info.Unit)
	if unit == 0 {
		unit = 1
	}
	return Stats{
		Total:    types.Bytes(uint64(info.Totalram) * unit),
		Free:     types.Bytes(uint64(info.Freeram) * unit),
		PageSize: PageSize(),
	}, nil
}

// Total returns the total main memory, or 0 when sysinfo fails.
func Total() types.Bytes {
	s, _ := Read()
	return s.Total
}

// Free returns the free main memory, or 0 when sysinfo fails.
func Free() types.Bytes {
	s, _ := Read()
	return s.Free
}

// PageSize returns the memory page size.
func PageSize() types.Bytes { return types.Bytes(os.Getpagesize()) }
