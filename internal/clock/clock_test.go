package clock

import (
	"testing"

	"github.com/jeffweiss/modality-probe/internal/ids"
)

func newTestProbeID(t *testing.T, raw uint32) ids.ProbeId {
	t.Helper()
	id, err := ids.NewProbeId(raw)
	if err != nil {
		t.Fatalf("NewProbeId(%d) failed: %v", raw, err)
	}
	return id
}

func TestPackUnpackRoundTrip(t *testing.T) {
	cases := []struct {
		epoch Epoch
		ticks Ticks
	}{
		{0, 0},
		{1, 0},
		{0, 1},
		{0xFFFF, 0xFFFF},
		{0x1234, 0x5678},
	}
	for _, c := range cases {
		word := Pack(c.epoch, c.ticks)
		gotEpoch, gotTicks := Unpack(word)
		if gotEpoch != c.epoch || gotTicks != c.ticks {
			t.Errorf("Pack/Unpack(%d,%d) round-tripped to (%d,%d)", c.epoch, c.ticks, gotEpoch, gotTicks)
		}
	}
}

func TestIncrementRollsOverIntoEpoch(t *testing.T) {
	e, tk := Increment(0, 0xFFFF)
	if e != 1 || tk != 0 {
		t.Errorf("Increment(0, 0xFFFF) = (%d, %d), want (1, 0)", e, tk)
	}
}

func TestIncrementEpochWraps(t *testing.T) {
	e, tk := Increment(MaxEpoch, MaxTicks)
	if e != 0 || tk != 0 {
		t.Errorf("Increment(max, max) = (%d, %d), want (0, 0)", e, tk)
	}
}

func TestGreaterSanityTickAndEpoch(t *testing.T) {
	if !Greater(1, 1, 1, 2) {
		t.Error("tick-only advance should be Greater")
	}
	if !Greater(1, 2, 2, 2) {
		t.Error("epoch advance with same ticks should be Greater")
	}
	if Greater(2, 2, 2, 1) {
		t.Error("rolling back ticks in the same epoch must not be Greater")
	}
	if Greater(2, 2, 1, 3) {
		t.Error("rolling back epoch must not be Greater even with higher ticks")
	}
}

func TestGreaterEpochWrapWithinThreshold(t *testing.T) {
	// ..., 0xFFFD, 0xFFFE, 0xFFFF, 0x0000, 0x0001, ... all compare
	// monotonically under the wrap-aware order with threshold 3.
	if !Greater(MaxEpoch, 1, 1, 1) {
		t.Error("wraparound from max-2 style epoch to a small epoch within threshold should be Greater")
	}
	if !Greater(MaxEpoch-2, 1, 0, 1) {
		t.Error("merge sequence (max-2)->0 should be Greater (exactly at threshold 3)")
	}
}

func TestGreaterOutsideThresholdRejected(t *testing.T) {
	if Greater(MaxEpoch-2, 1, 5, 1) {
		t.Error("epoch advance outside the wrap threshold must not be Greater")
	}
}

func TestGreaterClock(t *testing.T) {
	probeA := newTestProbeID(t, 1)
	cur := LogicalClock{ID: probeA, Epoch: 2, Ticks: 2}
	inc := LogicalClock{ID: probeA, Epoch: 2, Ticks: 3}
	if !GreaterClock(cur, inc) {
		t.Error("expected GreaterClock to report the incoming clock as ahead")
	}
}
