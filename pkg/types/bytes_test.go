package types

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytes_Humanized_Boundaries(t *testing.T) {
	cases := []struct {
		in   Bytes
		want string
	}{
		{Bytes(0), "0 B"},
		{Bytes(1023), "1023 B"},
		{KiB, "1.00 KB"},
		{MiB - 1, "1024.00 KB"},
		{MiB, "1.00 MB"},
		{GiB, "1.00 GB"},
		{TiB - 1, "1024.00 GB"},
		{TiB, "1.00 TB"},
	}
	for i, tc := range cases {
		t.Run(fmt.Sprintf("case_%d_%d", i, uint64(tc.in)), func(t *testing.T) {
			require.Equal(t, tc.want, tc.in.Humanized())
		})
	}
}

func TestBytes_FromPages(t *testing.T) {
	b := FromPages(262144, 4096)
	assert.Equal(t, GiB, b)
	assert.InDelta(t, 1.0, b.GB(), 1e-12)
	assert.InDelta(t, 1024.0, b.MB(), 1e-12)
	assert.Equal(t, "1.00 GB", b.Humanized())
}
