package wire

import (
	"encoding/binary"

	"github.com/jeffweiss/modality-probe/internal/clock"
	"github.com/jeffweiss/modality-probe/internal/errs"
	"github.com/jeffweiss/modality-probe/internal/ids"
)

// SnapshotLen is the fixed size, in bytes, of a causal snapshot frame.
const SnapshotLen = 12

const (
	snapOffProbeId    = 0
	snapOffEpoch      = 4
	snapOffTicks      = 6
	snapOffReserved0  = 8
	snapOffReserved1  = 10
)

// CausalSnapshot is the decoded model of a snapshot frame: a single
// logical clock plus two reserved 16-bit words, always zero on emit and
// ignored on ingest.
type CausalSnapshot struct {
	Clock clock.LogicalClock
}

// EncodeSnapshot writes s into dst and returns the number of bytes
// written. dst must be at least SnapshotLen bytes.
func EncodeSnapshot(dst []byte, s CausalSnapshot) (int, error) {
	if len(dst) < SnapshotLen {
		return 0, errs.ErrInsufficientDestinationSize
	}
	binary.LittleEndian.PutUint32(dst[snapOffProbeId:], s.Clock.ID.Raw())
	binary.LittleEndian.PutUint16(dst[snapOffEpoch:], uint16(s.Clock.Epoch))
	binary.LittleEndian.PutUint16(dst[snapOffTicks:], uint16(s.Clock.Ticks))
	binary.LittleEndian.PutUint16(dst[snapOffReserved0:], 0)
	binary.LittleEndian.PutUint16(dst[snapOffReserved1:], 0)
	return SnapshotLen, nil
}

// DecodeSnapshot reconstructs a CausalSnapshot from bytes. Reserved
// fields are ignored, not validated.
func DecodeSnapshot(src []byte) (CausalSnapshot, error) {
	if len(src) < SnapshotLen {
		return CausalSnapshot{}, errs.ErrTruncated
	}
	rawID := binary.LittleEndian.Uint32(src[snapOffProbeId:])
	id, err := ids.NewProbeId(rawID)
	if err != nil {
		return CausalSnapshot{}, errs.ErrInvalidProbeId
	}
	epoch := clock.Epoch(binary.LittleEndian.Uint16(src[snapOffEpoch:]))
	ticks := clock.Ticks(binary.LittleEndian.Uint16(src[snapOffTicks:]))
	return CausalSnapshot{Clock: clock.LogicalClock{ID: id, Epoch: epoch, Ticks: ticks}}, nil
}
