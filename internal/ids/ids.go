// Package ids implements the probe and event identifier value types.
//
// Both identifiers are packed into the low 31 bits of a 32-bit word
// elsewhere (see internal/logword); that reserves the top bit as a tag,
// which is why both ranges top out at 2^31-1 rather than 2^32-1.
package ids

import "github.com/jeffweiss/modality-probe/internal/errs"

// ProbeId identifies a single tracing probe. Never zero, never reused
// within a system.
type ProbeId uint32

// MaxProbeId is the largest value a ProbeId may take (top bit reserved).
const MaxProbeId = 1<<31 - 1

// NewProbeId validates raw and returns a ProbeId, or
// errs.ErrInvalidProbeId if raw is zero or exceeds MaxProbeId.
func NewProbeId(raw uint32) (ProbeId, error) {
	if raw == 0 || raw > MaxProbeId {
		return 0, errs.ErrInvalidProbeId
	}
	return ProbeId(raw), nil
}

// Raw returns the underlying uint32 value.
func (p ProbeId) Raw() uint32 { return uint32(p) }

// EventId identifies an event or kind of event. The top 256 values of
// the valid range are reserved for internal bookkeeping events (see
// internal/events) and are not assignable to user events.
type EventId uint32

const (
	// MaxEventId is the largest raw value any EventId (user or
	// internal) may take.
	MaxEventId = 1<<31 - 1

	// NumReservedEventIds is the size of the internal event id range,
	// counted down from MaxEventId.
	NumReservedEventIds = 256

	// MaxUserEventId is the largest value a user-assigned EventId may
	// take; values above it through MaxEventId are reserved.
	MaxUserEventId = MaxEventId - NumReservedEventIds
)

// NewEventId validates raw as a user event id. Internal events are
// constructed directly by internal/events, which is permitted to use
// the reserved range.
func NewEventId(raw uint32) (EventId, error) {
	if raw == 0 || raw > MaxUserEventId {
		return 0, errs.ErrInvalidEventId
	}
	return EventId(raw), nil
}

// NewInternalEventId constructs an EventId in the reserved range
// without the user-range check. Only internal/events should call this.
func NewInternalEventId(raw uint32) (EventId, error) {
	if raw <= MaxUserEventId || raw > MaxEventId {
		return 0, errs.ErrInvalidEventId
	}
	return EventId(raw), nil
}

// IsInternal reports whether e falls in the reserved internal range.
func (e EventId) IsInternal() bool {
	return uint32(e) > MaxUserEventId
}

// Raw returns the underlying uint32 value.
func (e EventId) Raw() uint32 { return uint32(e) }
