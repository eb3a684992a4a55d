// Package history implements DynamicHistory: the per-probe state
// machine that owns a probe's local logical clock, its table of known
// peer clocks, and the race buffer backing its event log. One small
// exported constructor plus methods that mutate state in place and
// never allocate on the hot path.
package history

import (
	"github.com/jeffweiss/modality-probe/internal/clock"
	"github.com/jeffweiss/modality-probe/internal/errs"
	"github.com/jeffweiss/modality-probe/internal/events"
	"github.com/jeffweiss/modality-probe/internal/ids"
	"github.com/jeffweiss/modality-probe/internal/logword"
	"github.com/jeffweiss/modality-probe/internal/racebuf"
	"github.com/jeffweiss/modality-probe/internal/wire"
)

// DefaultFrontierCapacity is the number of peer-clock slots carved out
// of a history's backing memory, independent of how large that memory
// is. The owning probe always occupies slot 0.
const DefaultFrontierCapacity = 8

const frontierSlotBytes = 8 // probe id (4) + epoch (2) + ticks (2)

// MinLogWords is the resource floor a region must leave room for as
// ring words after the frontier table (itself always at least the 2
// slots a frontier table requires, since DefaultFrontierCapacity is 8).
const MinLogWords = 32

// History is the dynamic per-probe state: local clock, frontier of
// peer clocks, and the event log ring. Recording events and producing
// or merging snapshots do not allocate after construction; Report
// allocates a copy of the frontier table and a slice of the log words
// it flushes on every call.
//
// This does not literally alias memory's bytes as the frontier table
// and ring storage — Go has no safe zero-copy reinterpretation of a
// []byte as a []T without unsafe, and this library does not expose a C
// ABI that would need that layout. memory's length is used only to
// size the two regions, which New allocates itself; the ring is read
// only through the in-process internal/racebuf API, not by another
// process mapping memory.
type History struct {
	probeID      ids.ProbeId
	selfClock    clock.LogicalClock
	eventCount   uint32
	frontier     []clock.LogicalClock
	frontierCap  int
	log          *racebuf.RaceBuffer[logword.Word]
	readCursor   uint64
	reportSeqNum uint16
}

// New constructs a History backed by memory, whose length determines
// how many ring words are available once the fixed-size frontier table
// is carved out. It returns errs.ErrNullDestination for a nil region
// and errs.ErrUnderMinimumAllowedSize for a region too small to hold
// the frontier floor plus MinLogWords ring entries. On success, the
// probe's first log entry is the internal ProbeInitialized event.
func New(memory []byte, probeID ids.ProbeId) (*History, error) {
	if memory == nil {
		return nil, errs.ErrNullDestination
	}
	frontierBytes := DefaultFrontierCapacity * frontierSlotBytes
	if len(memory) < frontierBytes+MinLogWords*4 {
		return nil, errs.ErrUnderMinimumAllowedSize
	}

	numWords := (len(memory) - frontierBytes) / 4
	ring, err := racebuf.New(make([]logword.Word, numWords))
	if err != nil {
		return nil, err
	}

	h := &History{
		probeID:     probeID,
		selfClock:   clock.LogicalClock{ID: probeID, Epoch: 0, Ticks: 0},
		frontier:    make([]clock.LogicalClock, 1, DefaultFrontierCapacity),
		frontierCap: DefaultFrontierCapacity,
		log:         ring,
	}
	h.frontier[0] = h.selfClock
	h.log.Write(logword.PlainEvent(events.ProbeInitialized))
	h.eventCount = 1
	return h, nil
}

func saturatingInc(n uint32) uint32 {
	if n == ^uint32(0) {
		return n
	}
	return n + 1
}

// RecordEvent appends a plain event to the log. It never fails: a full
// ring silently overwrites its oldest entry, observable only through a
// reader's miss count.
func (h *History) RecordEvent(e ids.EventId) {
	h.log.Write(logword.PlainEvent(e))
	h.eventCount = saturatingInc(h.eventCount)
}

// RecordEventWithPayload appends an event-with-payload pair to the
// log.
func (h *History) RecordEventWithPayload(e ids.EventId, payload uint32) {
	marker, word := logword.EventWithPayload(e, payload)
	h.log.WritePair(marker, word)
	h.eventCount = saturatingInc(h.eventCount)
}

// incrementLocalClock advances ticks, rolling into epoch on overflow,
// and resets the since-last-increment event count. It does not touch
// the frontier table: a frontier slot, including slot 0 for this
// probe, only advances when Report's log scan reaches the
// corresponding clock pair.
func (h *History) incrementLocalClock() {
	h.selfClock.Epoch, h.selfClock.Ticks = clock.Increment(h.selfClock.Epoch, h.selfClock.Ticks)
	h.eventCount = 0
}

// ProduceSnapshot captures the probe's current clock, advances it, and
// records the advance as a clock pair in the log.
func (h *History) ProduceSnapshot() wire.CausalSnapshot {
	snap := wire.CausalSnapshot{Clock: h.selfClock}
	h.incrementLocalClock()
	marker, word := logword.ClockPair(h.probeID, clock.Pack(h.selfClock.Epoch, h.selfClock.Ticks))
	h.log.WritePair(marker, word)
	return snap
}

// ProduceSnapshotBytes is ProduceSnapshot encoded directly into dst.
func (h *History) ProduceSnapshotBytes(dst []byte) (int, error) {
	return wire.EncodeSnapshot(dst, h.ProduceSnapshot())
}

// reconcileFrontierFromLog updates an existing slot for c's probe id
// if c is causally ahead of what's recorded, inserts c into a free
// slot if the id is new, or records NumClocksOverflowed if neither is
// possible. It is the only place the frontier table changes after
// construction, driven by Report's scan over clock pairs as they are
// flushed out of the log — never by ProduceSnapshot or MergeSnapshot
// directly.
func (h *History) reconcileFrontierFromLog(c clock.LogicalClock) {
	for i := range h.frontier {
		if h.frontier[i].ID == c.ID {
			if clock.GreaterClock(h.frontier[i], c) {
				h.frontier[i] = c
			}
			return
		}
	}
	if len(h.frontier) < h.frontierCap {
		h.frontier = append(h.frontier, c)
		return
	}
	h.RecordEvent(events.NumClocksOverflowed)
}

// MergeSnapshot validates s, advances the local clock, and records
// both the local and incoming clocks as log entries. Neither clock
// reaches the frontier table until Report's log scan catches up to
// these entries.
func (h *History) MergeSnapshot(s wire.CausalSnapshot) error {
	if s.Clock.ID.Raw() == 0 {
		return errs.ErrInvalidProbeId
	}

	h.incrementLocalClock()

	selfMarker, selfWord := logword.ClockPair(h.probeID, clock.Pack(h.selfClock.Epoch, h.selfClock.Ticks))
	h.log.WritePair(selfMarker, selfWord)

	peerMarker, peerWord := logword.ClockPair(s.Clock.ID, clock.Pack(s.Clock.Epoch, s.Clock.Ticks))
	h.log.WritePair(peerMarker, peerWord)

	return nil
}

// MergeSnapshotBytes decodes a snapshot frame from src and merges it.
func (h *History) MergeSnapshotBytes(src []byte) error {
	snap, err := wire.DecodeSnapshot(src)
	if err != nil {
		return err
	}
	return h.MergeSnapshot(snap)
}

// Report assembles a report frame into dst and returns the number of
// bytes written. It copies the current frontier table, then scans as
// many log words as fit since the last call, preserving pair
// atomicity, updating the frontier table from clock pairs as they are
// flushed. The copy happens before the scan, so a clock entry flushed
// by this call's own scan shows up in the frontier only starting with
// the next report, not this one. Log words that do not fit in dst stay
// unread for the next call. It advances the read cursor past the words
// it copied and advances the report sequence number. If dst cannot hold
// the header, the frontier table and two log words, it returns
// errs.ErrInsufficientDestinationSize and changes no state, so the
// caller may retry with a larger buffer.
func (h *History) Report(dst []byte) (int, error) {
	reader := racebuf.NewReaderFromCursor(h.log, h.readCursor)
	entries, nMissed := reader.Poll()

	cursor := reader.Cursor()
	if need := wire.EncodedLen(len(h.frontier), len(entries)); len(dst) < need {
		if len(dst) < wire.EncodedLen(len(h.frontier), 2) {
			return 0, errs.ErrInsufficientDestinationSize
		}
		room := (len(dst) - wire.EncodedLen(len(h.frontier), 0)) / 4
		k := 0
		for k < len(entries) {
			step := 1
			if entries[k].IsPrefix() {
				step = 2
			}
			if k+step > room {
				break
			}
			k += step
		}
		cursor -= uint64(len(entries) - k)
		entries = entries[:k]
	}

	h.readCursor = cursor

	// The frontier copied into this report reflects state as of the
	// previous report: it must not see updates from the log scan
	// below, so those updates land in the frontier only in time for
	// the next report.
	frontierCopy := make([]clock.LogicalClock, len(h.frontier))
	copy(frontierCopy, h.frontier)

	for i := 0; i < len(entries); i++ {
		if entries[i].Tag() != logword.TagClockMarker {
			continue
		}
		rawID := entries[i].ProbeId()
		i++
		if i >= len(entries) {
			break
		}
		if rawID == 0 {
			continue
		}
		if id, err := ids.NewProbeId(rawID); err == nil {
			epoch, ticks := clock.Unpack(entries[i].Raw())
			h.reconcileFrontierFromLog(clock.LogicalClock{ID: id, Epoch: epoch, Ticks: ticks})
		}
	}

	if nMissed > 0 {
		h.RecordEventWithPayload(events.EventLogItemsMissed, uint32(nMissed))
	}

	rep := wire.Report{
		ProbeId:        h.probeID,
		SelfClock:      h.selfClock,
		SeqNum:         uint32(h.reportSeqNum),
		FrontierClocks: frontierCopy,
		LogEntries:     entries,
	}
	h.reportSeqNum++

	n, err := wire.EncodeReport(dst, rep)
	if err != nil {
		return 0, err
	}
	h.RecordEvent(events.ProducedExternalReport)
	return n, nil
}

// SelfClock returns the probe's current logical clock.
func (h *History) SelfClock() clock.LogicalClock { return h.selfClock }

// Frontier returns a copy of the probe's current frontier table, slot
// 0 always describing the owning probe.
func (h *History) Frontier() []clock.LogicalClock {
	out := make([]clock.LogicalClock, len(h.frontier))
	copy(out, h.frontier)
	return out
}
