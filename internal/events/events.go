// Package events names the reserved internal event ids every probe can
// record on its own, drawn from the top of the event id range (see
// internal/ids).
package events

import "github.com/jeffweiss/modality-probe/internal/ids"

func mustInternal(raw uint32) ids.EventId {
	id, err := ids.NewInternalEventId(raw)
	if err != nil {
		panic(err) // programmer error: these constants are fixed at compile time
	}
	return id
}

var (
	// ProbeInitialized is recorded automatically as a probe's very
	// first log entry.
	ProbeInitialized = mustInternal(ids.MaxEventId)

	// ProducedExternalReport marks that a report was successfully
	// emitted.
	ProducedExternalReport = mustInternal(ids.MaxEventId - 1)

	// NumClocksOverflowed is recorded when a merge's peer clock has no
	// free frontier slot and cannot replace an existing one.
	NumClocksOverflowed = mustInternal(ids.MaxEventId - 2)

	// EventLogItemsMissed is recorded with a payload equal to the
	// number of log words a reader is known to have lost.
	EventLogItemsMissed = mustInternal(ids.MaxEventId - 3)
)

// EventLogItemsMissedLowBits is the value a decoder sees when it reads
// back an EventLogItemsMissed entry through the event-with-payload
// form: that form only preserves the low 30 bits of an EventId (see
// internal/logword), and EventLogItemsMissed's raw id sits above
// 1<<30, so its payload marker's bit 30 is lost on the round trip.
// Code comparing a decoded payload event's id against
// EventLogItemsMissed must compare against this value, not against
// EventLogItemsMissed.Raw() directly.
var EventLogItemsMissedLowBits = EventLogItemsMissed.Raw() &^ (1 << 30)
