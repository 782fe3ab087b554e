//go:build linux

package rapl

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"golang.org/x/sys/unix"
)

// MSR addresses (Intel SDM vol. 4, RAPL interfaces).
const (
	MSRPowerUnit     = 0x606
	MSRPkgPowerInfo  = 0x614
	MSRPkgEnergy     = 0x611
	MSRPP0Energy     = 0x639
	MSRPP1Energy     = 0x641
	MSRDRAMEnergy    = 0x619
	DefaultMSRFormat = "/dev/cpu/%d/msr"
)

const counterMask = 0xffffffff

// Device reads 64-bit model specific registers of one logical CPU.
type Device interface {
	ReadRegister(offset int64) (uint64, error)
	Close() error
}

type msrDevice struct {
	f *os.File
}

// OpenMSR opens an msr character device (or any file laid out like one)
// read-only.
func OpenMSR(path string) (Device, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	return &msrDevice{f: f}, nil
}

// ReadRegister reads the 8 byte little-endian register at offset.
// The msr driver uses the file offset as the register address.
func (d *msrDevice) ReadRegister(offset int64) (uint64, error) {
	if d.f == nil {
		return 0, os.ErrClosed
	}
	var buf [8]byte
	n, err := unix.Pread(int(d.f.Fd()), buf[:], offset)
	if err != nil {
		return 0, fmt.Errorf("pread msr 0x%x: %w", offset, err)
	}
	if n != len(buf) {
		return 0, fmt.Errorf("pread msr 0x%x: %w", offset, io.ErrUnexpectedEOF)
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func (d *msrDevice) Close() error {
	if d.f == nil {
		return nil
	}
	err := d.f.Close()
	d.f = nil
	return err
}

// decodeUnits extracts the unit exponents of MSR_RAPL_POWER_UNIT:
//
//	bits 0-3   power units  (1/2^n W)
//	bits 8-12  energy units (1/2^n J)
//	bits 16-19 time units   (1/2^n s)
func decodeUnits(raw uint64) Units {
	return Units{
		PowerUnits:  math.Ldexp(1, -int(raw&0xf)),
		EnergyUnits: math.Ldexp(1, -int((raw>>8)&0x1f)),
		TimeUnits:   math.Ldexp(1, -int((raw>>16)&0xf)),
	}
}

// applyPowerInfo decodes MSR_PKG_POWER_INFO with the already derived units.
// Each field is 15 bits wide.
func (u *Units) applyPowerInfo(raw uint64) {
	u.ThermalSpecPower = float64(raw&0x7fff) * u.PowerUnits
	u.MinimumPower = float64((raw>>16)&0x7fff) * u.PowerUnits
	u.MaximumPower = float64((raw>>32)&0x7fff) * u.PowerUnits
	u.TimeWindow = float64((raw>>48)&0x7fff) * u.TimeUnits
}
