// Package logword implements the probe log's 32-bit tagged word format.
//
// The top two bits of every word discriminate its meaning:
//
//	bit31=0 bit30=0: plain event, low 31 bits are an EventId.
//	bit31=0 bit30=1: event-with-payload marker; the next word is the
//	                 32-bit payload.
//	bit31=1        : clock marker, low 31 bits are a ProbeId; the next
//	                 word is the packed (epoch, ticks).
//
// Clock markers and event-with-payload markers are two-word pairs that
// must be treated atomically by any reader.
package logword

import "github.com/jeffweiss/modality-probe/internal/ids"

const (
	clockBit   uint32 = 1 << 31
	payloadBit uint32 = 1 << 30
	lowMask31  uint32 = clockBit - 1
)

// Word is a single 32-bit entry in a probe's log. It implements
// internal/racebuf.Entry so the race buffer can detect and preserve
// two-word pairs across overwrites.
type Word uint32

// Tag identifies which of the three interpretations a Word carries.
type Tag int

const (
	TagPlainEvent Tag = iota
	TagEventWithPayloadMarker
	TagClockMarker
)

// PlainEvent builds a single-word plain event entry.
func PlainEvent(id ids.EventId) Word {
	return Word(id.Raw() & lowMask31)
}

// EventWithPayload builds the two-word pair for an event carrying a
// 32-bit payload: the marker word followed by the raw payload word.
// Unlike a plain event, which gets the full 31-bit id space, the
// payload bit itself occupies bit 30, so only the low 30 bits of id
// survive the round trip through this form (see EventId and
// DESIGN.md's note on internal/events.EventLogItemsMissed).
func EventWithPayload(id ids.EventId, payload uint32) (marker, payloadWord Word) {
	return Word(payloadBit | (id.Raw() & (payloadBit - 1))), Word(payload)
}

// ClockPair builds the two-word pair for a logical clock: the marker
// word (probe id with the clock bit set) followed by the packed
// (epoch, ticks) word.
func ClockPair(id ids.ProbeId, packedClock uint32) (marker, clockWord Word) {
	return Word(clockBit | (id.Raw() & lowMask31)), Word(packedClock)
}

// Tag reports which interpretation w carries.
func (w Word) Tag() Tag {
	switch {
	case uint32(w)&clockBit != 0:
		return TagClockMarker
	case uint32(w)&payloadBit != 0:
		return TagEventWithPayloadMarker
	default:
		return TagPlainEvent
	}
}

// IsPrefix reports whether w is the first word of a two-word pair
// (clock marker or event-with-payload marker). It implements
// internal/racebuf.Entry.
func (w Word) IsPrefix() bool {
	t := w.Tag()
	return t == TagClockMarker || t == TagEventWithPayloadMarker
}

// EventId extracts the EventId from a plain-event or
// event-with-payload-marker word. A plain event keeps all 31 low bits;
// an event-with-payload marker only has 30, since bit 30 is the
// payload tag itself, so ids at or above 1<<30 lose that bit when
// round-tripped through the payload form. The caller must have already
// checked Tag(); results are meaningless for a clock marker.
func (w Word) EventId() uint32 {
	if w.Tag() == TagEventWithPayloadMarker {
		return uint32(w) & (payloadBit - 1)
	}
	return uint32(w) & lowMask31
}

// ProbeId extracts the raw probe id from a clock marker word. The
// caller must have already checked Tag() == TagClockMarker.
func (w Word) ProbeId() uint32 {
	return uint32(w) & lowMask31
}

// Raw returns the underlying uint32 value.
func (w Word) Raw() uint32 { return uint32(w) }

// FromRaw wraps an arbitrary uint32 as a Word, for decoding wire bytes
// or race buffer storage back into the tagged representation.
func FromRaw(raw uint32) Word { return Word(raw) }
