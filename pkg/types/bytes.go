package types

import "fmt"

// Bytes is a memory size in bytes.
type Bytes uint64

const (
	KiB Bytes = 1 << (10 * (iota + 1))
	MiB
	GiB
	TiB
)

// FromPages converts a page count to Bytes.
func FromPages(pages, pageSize uint64) Bytes { return Bytes(pages * pageSize) }

// Humanized returns a human-readable string with automatic unit (B, KB, MB, GB, TB).
func (b Bytes) Humanized() string {
	units := []struct {
		size Bytes
		name string
	}{{TiB, "TB"}, {GiB, "GB"}, {MiB, "MB"}, {KiB, "KB"}}
	for _, u := range units {
		if b >= u.size {
			return fmt.Sprintf("%.2f %s", float64(b)/float64(u.size), u.name)
		}
	}
	return fmt.Sprintf("%d B", b)
}

// MB returns the number of megabytes (1024 base).
func (b Bytes) MB() float64 { return float64(b) / float64(MiB) }

// GB returns the number of gigabytes (1024 base).
func (b Bytes) GB() float64 { return float64(b) / float64(GiB) }
