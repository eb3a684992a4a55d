// Package wire implements the two bit-exact, little-endian wire frames
// a probe exchanges with the outside world: the report frame and the
// causal snapshot frame. Field layout is fixed; this package's job is
// to get every offset right and to never panic on malformed input.
package wire

import (
	"encoding/binary"

	"github.com/jeffweiss/modality-probe/internal/clock"
	"github.com/jeffweiss/modality-probe/internal/errs"
	"github.com/jeffweiss/modality-probe/internal/ids"
	"github.com/jeffweiss/modality-probe/internal/logword"
)

// FingerprintMagic resynchronizes a stream or file of concatenated
// report frames: every report begins with this exact 4 bytes.
const FingerprintMagic uint32 = 0x6DCB0A5C

// HeaderLen is the fixed size, in bytes, of everything in a report
// frame before the payload.
const HeaderLen = 24

const (
	offFingerprint   = 0
	offProbeId       = 4
	offPackedClock   = 8
	offSeqNum        = 12
	offNClocks       = 16
	offFlags         = 18
	offNLogEntries   = 20
	flagPersistEpoch = 1 << 0
)

// MaxFrontierClocks and MaxLogEntries are the wire format's maxima,
// bounded by the 16-bit n_clocks and 32-bit n_log_entries fields.
const (
	MaxFrontierClocks = 1<<16 - 1
	MaxLogEntries     = 1<<32 - 1
)

// Report is the decoded model of a report frame.
type Report struct {
	ProbeId                 ids.ProbeId
	SelfClock               clock.LogicalClock
	SeqNum                  uint32
	PersistentEpochCounting bool
	FrontierClocks          []clock.LogicalClock
	LogEntries              []logword.Word
}

// EncodedLen returns the total frame length for a report with the
// given number of frontier clocks and log words.
func EncodedLen(nClocks, nLogEntries int) int {
	return HeaderLen + 8*nClocks + 4*nLogEntries
}

// EncodeReport writes r into dst in the report frame's fixed layout
// and returns the number of bytes written. dst must be at least
// EncodedLen(len(r.FrontierClocks), len(r.LogEntries)) bytes.
func EncodeReport(dst []byte, r Report) (int, error) {
	if len(r.FrontierClocks) > MaxFrontierClocks {
		return 0, errs.ErrTooManyFrontierClocks
	}
	if len(r.LogEntries) > MaxLogEntries {
		return 0, errs.ErrTooManyLogEntries
	}
	need := EncodedLen(len(r.FrontierClocks), len(r.LogEntries))
	if len(dst) < need {
		return 0, errs.ErrInsufficientDestinationSize
	}

	binary.LittleEndian.PutUint32(dst[offFingerprint:], FingerprintMagic)
	binary.LittleEndian.PutUint32(dst[offProbeId:], r.ProbeId.Raw())
	binary.LittleEndian.PutUint32(dst[offPackedClock:], clock.Pack(r.SelfClock.Epoch, r.SelfClock.Ticks))
	binary.LittleEndian.PutUint32(dst[offSeqNum:], r.SeqNum)
	binary.LittleEndian.PutUint16(dst[offNClocks:], uint16(len(r.FrontierClocks)))
	var flags uint16
	if r.PersistentEpochCounting {
		flags |= flagPersistEpoch
	}
	binary.LittleEndian.PutUint16(dst[offFlags:], flags)
	binary.LittleEndian.PutUint32(dst[offNLogEntries:], uint32(len(r.LogEntries)))

	cursor := HeaderLen
	for _, c := range r.FrontierClocks {
		marker, word := logword.ClockPair(c.ID, clock.Pack(c.Epoch, c.Ticks))
		binary.LittleEndian.PutUint32(dst[cursor:], marker.Raw())
		binary.LittleEndian.PutUint32(dst[cursor+4:], word.Raw())
		cursor += 8
	}
	for _, w := range r.LogEntries {
		binary.LittleEndian.PutUint32(dst[cursor:], w.Raw())
		cursor += 4
	}
	return cursor, nil
}

// DecodeReport reconstructs a Report from bytes previously produced by
// EncodeReport (or a byte-compatible emitter). It validates the
// fingerprint, the declared lengths against the buffer's actual size,
// and every embedded probe id in the frontier clocks section — the
// decoder sits at a trust boundary, so unlike the in-memory log
// reconciliation path inside a probe, a zero probe id here is a hard
// error rather than a silent drop (see DESIGN.md).
func DecodeReport(src []byte) (Report, error) {
	if len(src) < HeaderLen {
		return Report{}, errs.ErrTruncated
	}
	if binary.LittleEndian.Uint32(src[offFingerprint:]) != FingerprintMagic {
		return Report{}, errs.ErrBadFingerprint
	}
	rawProbeId := binary.LittleEndian.Uint32(src[offProbeId:])
	probeId, err := ids.NewProbeId(rawProbeId)
	if err != nil {
		return Report{}, errs.ErrInvalidProbeId
	}
	epoch, ticks := clock.Unpack(binary.LittleEndian.Uint32(src[offPackedClock:]))
	seqNum := binary.LittleEndian.Uint32(src[offSeqNum:])
	nClocks := int(binary.LittleEndian.Uint16(src[offNClocks:]))
	flags := binary.LittleEndian.Uint16(src[offFlags:])
	nLogEntries := int(binary.LittleEndian.Uint32(src[offNLogEntries:]))

	want := EncodedLen(nClocks, nLogEntries)
	if len(src) < want {
		return Report{}, errs.ErrTruncated
	}
	if want != HeaderLen+8*nClocks+4*nLogEntries {
		return Report{}, errs.ErrInconsistentLength
	}

	r := Report{
		ProbeId:                 probeId,
		SelfClock:               clock.LogicalClock{ID: probeId, Epoch: epoch, Ticks: ticks},
		SeqNum:                  seqNum,
		PersistentEpochCounting: flags&flagPersistEpoch != 0,
		FrontierClocks:          make([]clock.LogicalClock, 0, nClocks),
		LogEntries:              make([]logword.Word, 0, nLogEntries),
	}

	cursor := HeaderLen
	for i := 0; i < nClocks; i++ {
		marker := logword.FromRaw(binary.LittleEndian.Uint32(src[cursor:]))
		word := binary.LittleEndian.Uint32(src[cursor+4:])
		cursor += 8
		if marker.Tag() != logword.TagClockMarker {
			return Report{}, errs.ErrInconsistentLength
		}
		rawID := marker.ProbeId()
		if rawID == 0 {
			return Report{}, errs.ErrInvalidProbeId
		}
		id, err := ids.NewProbeId(rawID)
		if err != nil {
			return Report{}, errs.ErrInvalidProbeId
		}
		e, t := clock.Unpack(word)
		r.FrontierClocks = append(r.FrontierClocks, clock.LogicalClock{ID: id, Epoch: e, Ticks: t})
	}

	end := cursor + 4*nLogEntries
	for cursor < end {
		w := logword.FromRaw(binary.LittleEndian.Uint32(src[cursor:]))
		cursor += 4
		r.LogEntries = append(r.LogEntries, w)

		switch w.Tag() {
		case logword.TagClockMarker:
			if w.ProbeId() == 0 {
				return Report{}, errs.ErrInvalidProbeId
			}
			if cursor >= end {
				return Report{}, errs.ErrUnpairedLogEntry
			}
			companion := logword.FromRaw(binary.LittleEndian.Uint32(src[cursor:]))
			cursor += 4
			r.LogEntries = append(r.LogEntries, companion)
		case logword.TagEventWithPayloadMarker:
			if w.EventId() == 0 {
				return Report{}, errs.ErrInvalidEventId
			}
			if cursor >= end {
				return Report{}, errs.ErrUnpairedLogEntry
			}
			companion := logword.FromRaw(binary.LittleEndian.Uint32(src[cursor:]))
			cursor += 4
			r.LogEntries = append(r.LogEntries, companion)
		default:
			if w.EventId() == 0 {
				return Report{}, errs.ErrInvalidEventId
			}
		}
	}

	return r, nil
}
