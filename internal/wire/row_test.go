package wire

import (
	"testing"

	"github.com/jeffweiss/modality-probe/internal/clock"
	"github.com/jeffweiss/modality-probe/internal/events"
	"github.com/jeffweiss/modality-probe/internal/logword"
)

func TestExpandReportFrontierThenEvents(t *testing.T) {
	self := newTestProbeID(t, 1)
	peer := newTestProbeID(t, 2)

	marker, payload := logword.EventWithPayload(events.EventLogItemsMissed, 3)
	r := Report{
		ProbeId: self,
		FrontierClocks: []clock.LogicalClock{
			{ID: self, Epoch: 0, Ticks: 5},
			{ID: peer, Epoch: 1, Ticks: 0},
		},
		LogEntries: []logword.Word{
			logword.PlainEvent(events.ProbeInitialized),
			marker, payload,
		},
	}

	rows := ExpandReport(7, 1, r)
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want 4", len(rows))
	}

	for i, row := range rows {
		if row.SessionID != 7 || row.SequenceNumber != 1 {
			t.Fatalf("row %d has wrong session bookkeeping: %+v", i, row)
		}
		if row.SequenceIndex != uint16(i) {
			t.Fatalf("row %d SequenceIndex = %d, want %d", i, row.SequenceIndex, i)
		}
	}

	if rows[0].Kind != RowKindFrontierClock || rows[0].FrontierProbeId != self || rows[0].FrontierTicks != 5 {
		t.Fatalf("row 0 = %+v, want self frontier clock", rows[0])
	}
	if rows[1].Kind != RowKindFrontierClock || rows[1].FrontierProbeId != peer || rows[1].FrontierEpoch != 1 {
		t.Fatalf("row 1 = %+v, want peer frontier clock", rows[1])
	}
	if rows[2].Kind != RowKindEvent || rows[2].HasPayload {
		t.Fatalf("row 2 = %+v, want a plain event row", rows[2])
	}
	if rows[3].Kind != RowKindEvent || !rows[3].HasPayload || rows[3].EventPayload != 3 {
		t.Fatalf("row 3 = %+v, want a payload event row with payload 3", rows[3])
	}
	if rows[3].EventId != events.EventLogItemsMissedLowBits {
		t.Fatalf("row 3 EventId = %#x, want %#x", rows[3].EventId, events.EventLogItemsMissedLowBits)
	}
}

func TestExpandReportLogClockMarkerFromMerge(t *testing.T) {
	self := newTestProbeID(t, 1)
	peer := newTestProbeID(t, 4)
	marker, word := logword.ClockPair(peer, clock.Pack(2, 9))

	r := Report{
		ProbeId:        self,
		FrontierClocks: []clock.LogicalClock{{ID: self, Epoch: 0, Ticks: 1}},
		LogEntries:     []logword.Word{marker, word},
	}

	rows := ExpandReport(1, 1, r)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	logRow := rows[1]
	if logRow.Kind != RowKindFrontierClock || logRow.FrontierProbeId != peer {
		t.Fatalf("log row = %+v, want a clock row for the merged peer", logRow)
	}
	if logRow.FrontierEpoch != 2 || logRow.FrontierTicks != 9 {
		t.Fatalf("log row clock = (%d,%d), want (2,9)", logRow.FrontierEpoch, logRow.FrontierTicks)
	}
}

func TestExpandReportEmptyReportYieldsNoRows(t *testing.T) {
	self := newTestProbeID(t, 1)
	rows := ExpandReport(1, 1, Report{ProbeId: self})
	if len(rows) != 0 {
		t.Fatalf("got %d rows, want 0", len(rows))
	}
}
