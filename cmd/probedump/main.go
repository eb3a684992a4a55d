// Command probedump reads one or more concatenated report frames from a
// file or from stdin and prints their decoded frontier clocks and log
// entries: open the input, decode sequential fixed-format records, print
// one line per decoded field.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/jeffweiss/modality-probe/internal/wire"
)

func main() {
	flag.Parse()

	var in io.Reader = os.Stdin
	if flag.NArg() == 1 {
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			log.Fatalf("Failed to open file: %v", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				log.Printf("Failed to close file: %v", err)
			}
		}()
		in = f
	} else if flag.NArg() > 1 {
		fmt.Println("Usage: probedump [report-file]")
		return
	}

	data, err := io.ReadAll(in)
	if err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}

	var frameIndex int
	for offset := 0; offset < len(data); {
		frame := data[offset:]
		if len(frame) < wire.HeaderLen {
			log.Printf("%d trailing bytes do not form a full report header, stopping", len(frame))
			break
		}
		nClocks := int(binary.LittleEndian.Uint16(frame[16:]))
		nLogEntries := int(binary.LittleEndian.Uint32(frame[20:]))
		frameLen := wire.EncodedLen(nClocks, nLogEntries)

		report, err := wire.DecodeReport(frame)
		if err != nil {
			log.Fatalf("Failed to decode report at offset %d: %v", offset, err)
		}

		printReport(frameIndex, report)
		offset += frameLen
		frameIndex++
	}
}

// printReport prints the decoded report's fields. frameIndex is the
// 0-based position of this frame within the input, independent of
// r.SeqNum: the input may start mid-stream, and a dropped frame
// upstream would otherwise desync the two.
func printReport(frameIndex int, r wire.Report) {
	fmt.Printf("=== frame %d: probe %d seq=%d self=(epoch=%d,ticks=%d) ===\n",
		frameIndex, r.ProbeId.Raw(), r.SeqNum, r.SelfClock.Epoch, r.SelfClock.Ticks)

	for _, row := range wire.ExpandReport(0, uint16(r.SeqNum), r) {
		switch row.Kind {
		case wire.RowKindFrontierClock:
			fmt.Printf("  clock  peer=%d epoch=%d ticks=%d\n", row.FrontierProbeId.Raw(), row.FrontierEpoch, row.FrontierTicks)
		case wire.RowKindEvent:
			if row.HasPayload {
				fmt.Printf("  event  id=%d payload=%d\n", row.EventId, row.EventPayload)
			} else {
				fmt.Printf("  event  id=%d\n", row.EventId)
			}
		}
	}
}
