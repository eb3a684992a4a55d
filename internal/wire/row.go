package wire

import (
	"github.com/jeffweiss/modality-probe/internal/clock"
	"github.com/jeffweiss/modality-probe/internal/ids"
	"github.com/jeffweiss/modality-probe/internal/logword"
)

// RowKind distinguishes the two shapes a decoded report expands into.
type RowKind int

const (
	RowKindFrontierClock RowKind = iota
	RowKindEvent
)

// Row is the flattened, collector-visible shape of one piece of a
// report: either a frontier clock or a single log event, tagged with
// enough session bookkeeping for a downstream sink to order and
// dedupe rows across reports.
type Row struct {
	SessionID      uint32
	SequenceNumber uint16
	SequenceIndex  uint16
	Kind           RowKind

	ProbeId ids.ProbeId // report's own probe id, copied onto every row

	// Frontier clock rows.
	FrontierProbeId ids.ProbeId
	FrontierEpoch   uint16
	FrontierTicks   uint16

	// Event rows.
	EventId      uint32
	HasPayload   bool
	EventPayload uint32
}

// ExpandReport flattens a decoded report into rows: one per frontier
// clock, in order, followed by one per log event, in order. A clock
// pair in the log collapses into a single RowKindFrontierClock row, and
// an event-with-payload pair into a single RowKindEvent row.
// SequenceIndex restarts at zero for each call.
func ExpandReport(sessionID uint32, seq uint16, r Report) []Row {
	rows := make([]Row, 0, len(r.FrontierClocks)+len(r.LogEntries))
	var idx uint16

	for _, c := range r.FrontierClocks {
		rows = append(rows, Row{
			SessionID:       sessionID,
			SequenceNumber:  seq,
			SequenceIndex:   idx,
			Kind:            RowKindFrontierClock,
			ProbeId:         r.ProbeId,
			FrontierProbeId: c.ID,
			FrontierEpoch:   uint16(c.Epoch),
			FrontierTicks:   uint16(c.Ticks),
		})
		idx++
	}

	entries := r.LogEntries
	for i := 0; i < len(entries); i++ {
		w := entries[i]
		row := Row{
			SessionID:      sessionID,
			SequenceNumber: seq,
			SequenceIndex:  idx,
			ProbeId:        r.ProbeId,
		}
		switch w.Tag() {
		case logword.TagClockMarker:
			row.Kind = RowKindFrontierClock
			row.FrontierProbeId, _ = ids.NewProbeId(w.ProbeId())
			if i+1 < len(entries) {
				i++
				e, t := clock.Unpack(entries[i].Raw())
				row.FrontierEpoch = uint16(e)
				row.FrontierTicks = uint16(t)
			}
		case logword.TagEventWithPayloadMarker:
			row.Kind = RowKindEvent
			row.EventId = w.EventId()
			row.HasPayload = true
			if i+1 < len(entries) {
				i++
				row.EventPayload = entries[i].Raw()
			}
		default:
			row.Kind = RowKindEvent
			row.EventId = w.EventId()
		}
		rows = append(rows, row)
		idx++
	}

	return rows
}
