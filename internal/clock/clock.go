// Package clock implements the probe's logical clock: a 16-bit epoch
// paired with a 16-bit tick counter, packed into a single 32-bit word
// and compared with a wrap-aware ordering that lets
// an embedded probe's epoch legitimately roll over after a restart.
package clock

import "github.com/jeffweiss/modality-probe/internal/ids"

// Epoch is the high half of a logical clock. It increments (modulo
// 2^16) whenever Ticks overflows.
type Epoch uint16

// Ticks is the low half of a logical clock. It increments on every
// snapshot produce or merge.
type Ticks uint16

// MaxEpoch and MaxTicks are the largest representable values of each,
// useful for exercising wraparound in tests.
const (
	MaxEpoch Epoch = 0xFFFF
	MaxTicks Ticks = 0xFFFF
)

// WrapThreshold bounds how far an incoming epoch may
// have advanced, modulo 2^16, for it to still be considered "ahead" of
// the current epoch rather than a stale wraparound artifact.
const WrapThreshold = 3

// LogicalClock is a probe id paired with its epoch and tick counters.
type LogicalClock struct {
	ID    ids.ProbeId
	Epoch Epoch
	Ticks Ticks
}

// Pack encodes (epoch, ticks) into a 32-bit word: epoch in the high 16
// bits, ticks in the low 16 bits.
func Pack(epoch Epoch, ticks Ticks) uint32 {
	return uint32(epoch)<<16 | uint32(ticks)
}

// Unpack is the inverse of Pack.
func Unpack(word uint32) (Epoch, Ticks) {
	return Epoch(word >> 16), Ticks(word & 0xFFFF)
}

// Greater reports whether the incoming pair (xEpoch, xTicks) is
// causally ahead of the current pair (cEpoch, cTicks) under a
// wrap-aware ordering:
//
//	x > c  iff  (x.epoch - c.epoch) mod 2^16 is in [1, WrapThreshold]
//	            OR the epochs are equal and x.ticks > c.ticks
//
// This allows an epoch to legitimately wrap after a device restart
// (within WrapThreshold generations) while rejecting arbitrary rollback
// or stale data from far in the past.
func Greater(cEpoch Epoch, cTicks Ticks, xEpoch Epoch, xTicks Ticks) bool {
	diff := uint16(xEpoch - cEpoch)
	if diff >= 1 && diff <= WrapThreshold {
		return true
	}
	return xEpoch == cEpoch && xTicks > cTicks
}

// GreaterClock is the LogicalClock-typed convenience wrapper around
// Greater, used when comparing two clocks known to describe the same
// probe id.
func GreaterClock(current, incoming LogicalClock) bool {
	return Greater(current.Epoch, current.Ticks, incoming.Epoch, incoming.Ticks)
}

// Increment advances (epoch, ticks) by one tick, rolling ticks into
// epoch (both modulo 2^16) on overflow. This is legal under Greater:
// the resulting pair is always reachable from the input by the wrapped
// ordering above.
func Increment(epoch Epoch, ticks Ticks) (Epoch, Ticks) {
	ticks++
	if ticks == 0 {
		epoch++
	}
	return epoch, ticks
}
