// Package rapl reads the Intel RAPL (Running Average Power Limit) energy
// counters of one CPU package through the Linux msr driver
// (/dev/cpu/<n>/msr) and turns successive readings into Joules and Watts.
//
// # Usage
//
//	r := rapl.New(0)
//	if err := r.Init(); err != nil {
//		// errors.Is(err, rapl.ErrAccess): no msr module, no privilege,
//		// or no RAPL on this CPU. Skip energy reporting.
//	}
//	defer r.Close()
//
//	for range ticker.C {
//		d, err := r.Delta()
//		if err != nil {
//			continue // errors.Is(err, rapl.ErrRead): skip this interval
//		}
//		fmt.Printf("%.2f W\n", d.PackageAvg)
//	}
//
// # Lifecycle
//
//	Uninitialized -> Initializing -> Active   (Init succeeded)
//	Uninitialized -> Initializing -> Failed   (device or MSR_RAPL_POWER_UNIT unreadable)
//	Active        -> Uninitialized            (Close)
//
// Delta is only valid in Active and returns ErrInvalidState otherwise.
//
// # Registers
//
//	0x606 MSR_RAPL_POWER_UNIT     power/energy/time unit exponents (mandatory)
//	0x614 MSR_PKG_POWER_INFO      TDP, min/max power, time window (advisory)
//	0x611 MSR_PKG_ENERGY_STATUS   package energy
//	0x639 MSR_PP0_ENERGY_STATUS   core plane energy
//	0x641 MSR_PP1_ENERGY_STATUS   graphics plane energy (optional, client parts)
//	0x619 MSR_DRAM_ENERGY_STATUS  dram energy
//
// Energy counters are 32 bits wide and wrap. Deltas use modulo 2^32
// subtraction, so one wrap per interval is handled; polling intervals long
// enough for a counter to wrap twice lose energy silently.
//
// # Concurrency
//
// A Reader is owned by one goroutine. It has no locks; concurrent calls on
// the same Reader are a data race.
package rapl
