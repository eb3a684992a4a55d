// Package collector is a reference off-device receiver: it turns UDP
// datagrams carrying report frames into the row shape of wire.Row and
// appends them to a per-session log. It is not part of the tracing core
// and has no opinion on durable storage, so its Sink only ever
// accumulates in memory.
//
// The recv-decode-append loop is adapted from a single-socket blocking
// receive loop into Go's context-cancelable net.PacketConn idiom.
package collector

import (
	"context"
	"fmt"
	"net"
	"sync"

	logger "github.com/opencoff/go-logger"

	"github.com/jeffweiss/modality-probe/internal/wire"
)

// maxDatagramBytes bounds a single incoming UDP read. Report frames are
// small (header plus at most a few hundred log words in practice); this
// is generous headroom, mirroring the 1 MiB scratch buffer the Rust
// source allocates once up front.
const maxDatagramBytes = 64 * 1024

// Sink accumulates decoded rows, one append call per received report.
// The zero value is ready to use.
type Sink struct {
	mu   sync.Mutex
	rows []wire.Row
}

// Append adds rows to the sink, in order.
func (s *Sink) Append(rows []wire.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, rows...)
}

// Rows returns a copy of everything the sink has accumulated so far.
func (s *Sink) Rows() []wire.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]wire.Row, len(s.rows))
	copy(out, s.rows)
	return out
}

// Len reports how many rows the sink currently holds.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// ListenAndServe binds a UDP socket at addr and decodes report frames
// from it until ctx is canceled, appending the resulting rows to sink
// under sessionID. Each datagram is expected to hold exactly one report
// frame, matching how a probe's Report call fills a single send buffer.
// Malformed datagrams are logged and skipped; they never stop the loop,
// mirroring the source's eprintln-and-continue behavior on a bad
// message.
func ListenAndServe(ctx context.Context, addr string, sessionID uint32, sink *Sink, log logger.Logger) error {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return fmt.Errorf("collector: listen on %s: %w", addr, err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	buf := make([]byte, maxDatagramBytes)
	for {
		n, _, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Warn("collector: read from %s: %s", addr, err)
			continue
		}

		report, err := wire.DecodeReport(buf[:n])
		if err != nil {
			log.Warn("collector: dropping malformed report (%d bytes): %s", n, err)
			continue
		}

		rows := wire.ExpandReport(sessionID, uint16(report.SeqNum), report)
		sink.Append(rows)

		log.Debug("collector: appended %d rows for probe %d, seq %d", len(rows), report.ProbeId.Raw(), report.SeqNum)
	}
}
