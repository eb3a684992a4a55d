package wire

import (
	"testing"

	"github.com/jeffweiss/modality-probe/internal/clock"
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

func TestSnapshotRoundTrip(t *testing.T) {
	want := CausalSnapshot{Clock: clock.LogicalClock{ID: newTestProbeID(t, 42), Epoch: 7, Ticks: 99}}
	buf := make([]byte, SnapshotLen)
	n, err := EncodeSnapshot(buf, want)
	if err != nil {
		t.Fatal(err)
	}
	if n != SnapshotLen {
		t.Fatalf("EncodeSnapshot wrote %d bytes, want %d", n, SnapshotLen)
	}
	got, err := DecodeSnapshot(buf)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("DecodeSnapshot = %+v, want %+v", got, want)
	}
}

func TestSnapshotReservedWordsAreZeroOnEmit(t *testing.T) {
	buf := make([]byte, SnapshotLen)
	for i := range buf {
		buf[i] = 0xFF
	}
	_, err := EncodeSnapshot(buf, CausalSnapshot{Clock: clock.LogicalClock{ID: newTestProbeID(t, 1)}})
	if err != nil {
		t.Fatal(err)
	}
	for i := 8; i < SnapshotLen; i++ {
		if buf[i] != 0 {
			t.Fatalf("reserved byte %d = %#x, want 0", i, buf[i])
		}
	}
}

func TestDecodeSnapshotTruncated(t *testing.T) {
	if _, err := DecodeSnapshot(make([]byte, SnapshotLen-1)); err == nil {
		t.Fatal("expected an error decoding a truncated snapshot")
	}
}

func TestEncodeSnapshotInsufficientDestination(t *testing.T) {
	s := CausalSnapshot{Clock: clock.LogicalClock{ID: newTestProbeID(t, 1)}}
	if _, err := EncodeSnapshot(make([]byte, SnapshotLen-1), s); err == nil {
		t.Fatal("expected an error encoding into an undersized buffer")
	}
}
