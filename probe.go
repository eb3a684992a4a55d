// Package probe is the outward-facing API of a causal-history tracing
// probe: record events into a fixed memory region, exchange causal
// snapshots with peer probes, and periodically flush a report frame for
// an off-device collector. Every method is a thin wrapper over
// internal/history; this file's job is to be the one package a caller
// ever imports.
package probe

import (
	"github.com/jeffweiss/modality-probe/internal/clock"
	"github.com/jeffweiss/modality-probe/internal/errs"
	"github.com/jeffweiss/modality-probe/internal/events"
	"github.com/jeffweiss/modality-probe/internal/history"
	"github.com/jeffweiss/modality-probe/internal/ids"
	"github.com/jeffweiss/modality-probe/internal/wire"
)

// Re-exported leaf types, so a caller never needs to import this
// module's internal packages directly.
type (
	ProbeId       = ids.ProbeId
	EventId       = ids.EventId
	Epoch         = clock.Epoch
	Ticks         = clock.Ticks
	LogicalClock  = clock.LogicalClock
	CausalSnapshot = wire.CausalSnapshot
	Report        = wire.Report
	Row           = wire.Row
)

// Re-exported constructors and sentinel errors.
var (
	NewProbeId = ids.NewProbeId
	NewEventId = ids.NewEventId

	ErrUnderMinimumAllowedSize     = errs.ErrUnderMinimumAllowedSize
	ErrNullDestination             = errs.ErrNullDestination
	ErrInvalidProbeId              = errs.ErrInvalidProbeId
	ErrInvalidEventId              = errs.ErrInvalidEventId
	ErrInsufficientDestinationSize = errs.ErrInsufficientDestinationSize
)

// Reserved internal event ids, re-exported for callers inspecting a
// decoded report.
var (
	EventProbeInitialized       = events.ProbeInitialized
	EventProducedExternalReport = events.ProducedExternalReport
	EventNumClocksOverflowed    = events.NumClocksOverflowed
	EventLogItemsMissed         = events.EventLogItemsMissed
)

// Probe owns a single tracing session backed by caller-supplied memory.
// It is not safe for concurrent use by more than one recording
// goroutine; the race buffer it sits on top of is a single-producer
// design (see internal/racebuf).
type Probe struct {
	h *history.History
}

// Initialize constructs a Probe with the given id over memory. memory's
// length determines how many log entries the probe's ring can hold
// once its fixed-size frontier table is carved out; see
// history.MinLogWords for the floor. The returned error is one of
// ErrNullDestination or ErrUnderMinimumAllowedSize.
func Initialize(memory []byte, id ProbeId) (*Probe, error) {
	h, err := history.New(memory, id)
	if err != nil {
		return nil, err
	}
	return &Probe{h: h}, nil
}

// RecordEvent appends a plain event to the log.
func (p *Probe) RecordEvent(id EventId) {
	p.h.RecordEvent(id)
}

// RecordEventWithPayload appends an event carrying a 32-bit payload to
// the log.
func (p *Probe) RecordEventWithPayload(id EventId, payload uint32) {
	p.h.RecordEventWithPayload(id, payload)
}

// ProduceSnapshot advances the probe's local clock and returns a
// snapshot suitable for handing to a peer probe's MergeSnapshot.
func (p *Probe) ProduceSnapshot() CausalSnapshot {
	return p.h.ProduceSnapshot()
}

// ProduceSnapshotBytes is ProduceSnapshot encoded directly into dst; it
// returns the number of bytes written or ErrInsufficientDestinationSize.
func (p *Probe) ProduceSnapshotBytes(dst []byte) (int, error) {
	return p.h.ProduceSnapshotBytes(dst)
}

// MergeSnapshot merges a peer's causal snapshot into this probe's
// history, advancing the local clock and logging both clocks. The
// frontier table picks up the peer's clock only when a later Report
// flushes those log entries.
func (p *Probe) MergeSnapshot(s CausalSnapshot) error {
	return p.h.MergeSnapshot(s)
}

// MergeSnapshotBytes decodes a snapshot frame from src and merges it.
func (p *Probe) MergeSnapshotBytes(src []byte) error {
	return p.h.MergeSnapshotBytes(src)
}

// Report flushes as many of the probe's unreported log entries as fit,
// together with the current frontier, into a report frame written to
// dst, returning the number of bytes written. Entries that do not fit
// stay for the next Report. A dst too small for the header, the
// frontier and two log words leaves the probe's state unchanged and
// returns ErrInsufficientDestinationSize.
func (p *Probe) Report(dst []byte) (int, error) {
	return p.h.Report(dst)
}

// SelfClock returns the probe's current logical clock.
func (p *Probe) SelfClock() LogicalClock {
	return p.h.SelfClock()
}

// Frontier returns a copy of the probe's current view of every known
// probe's logical clock, including its own.
func (p *Probe) Frontier() []LogicalClock {
	return p.h.Frontier()
}
