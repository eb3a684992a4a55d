// Command probedemo is an interactive REPL for driving a single
// in-process probe one keystroke at a time, modeled directly on a
// fetch-decode-execute loop: raw-mode terminal, keyboard.GetSingleKey
// single-stepping, one command per keystroke.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/eiannone/keyboard"
	"golang.org/x/term"

	probe "github.com/jeffweiss/modality-probe"
)

func main() {
	memSize := flag.Uint("memory", 4096, "backing memory size in bytes")
	rawID := flag.Uint("id", 1, "this probe's id")
	flag.Parse()

	id, err := probe.NewProbeId(uint32(*rawID))
	if err != nil {
		log.Fatalf("bad -id: %v", err)
	}

	p, err := probe.Initialize(make([]byte, *memSize), id)
	if err != nil {
		log.Fatalf("could not initialize probe: %v", err)
	}

	fmt.Printf("probe %d ready. keys: e=event p=snapshot m=merge r=report f=frontier q=quit\n", id.Raw())

	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		log.Fatalf("could not set raw terminal mode: %v", err)
	}
	defer term.Restore(int(os.Stdin.Fd()), oldState)

	var nextEventID uint32 = 1
	running := true
	for running {
		ch, key, err := keyboard.GetSingleKey()
		if err != nil {
			term.Restore(int(os.Stdin.Fd()), oldState)
			log.Fatalf("could not read key: %v", err)
		}
		if key == keyboard.KeyCtrlC {
			running = false
			break
		}

		switch ch {
		case 'e':
			eid, err := probe.NewEventId(nextEventID)
			if err != nil {
				printRaw(oldState, "bad event id %d: %v\n", nextEventID, err)
				continue
			}
			p.RecordEvent(eid)
			printRaw(oldState, "recorded event %d\n", nextEventID)
			nextEventID++
		case 'p':
			snap := p.ProduceSnapshot()
			printRaw(oldState, "snapshot: probe=%d epoch=%d ticks=%d\n", snap.Clock.ID.Raw(), snap.Clock.Epoch, snap.Clock.Ticks)
		case 'm':
			term.Restore(int(os.Stdin.Fd()), oldState)
			fmt.Print("peer id epoch ticks: ")
			var peerRaw, epoch, ticks uint32
			if _, err := fmt.Scanln(&peerRaw, &epoch, &ticks); err != nil {
				fmt.Printf("bad input: %v\n", err)
			} else if peerID, err := probe.NewProbeId(peerRaw); err != nil {
				fmt.Printf("bad peer id: %v\n", err)
			} else {
				snap := probe.CausalSnapshot{Clock: probe.LogicalClock{ID: peerID, Epoch: probe.Epoch(epoch), Ticks: probe.Ticks(ticks)}}
				if err := p.MergeSnapshot(snap); err != nil {
					fmt.Printf("merge failed: %v\n", err)
				} else {
					fmt.Println("merged")
				}
			}
			term.MakeRaw(int(os.Stdin.Fd()))
		case 'r':
			buf := make([]byte, 64*1024)
			n, err := p.Report(buf)
			if err != nil {
				printRaw(oldState, "report failed: %v\n", err)
				continue
			}
			printRaw(oldState, "report: %d bytes\n", n)
		case 'f':
			printRaw(oldState, "frontier: %+v\n", p.Frontier())
		case 'q':
			running = false
		}
	}

	term.Restore(int(os.Stdin.Fd()), oldState)
	fmt.Println("bye")
}

// printRaw drops out of raw mode just long enough to print a readable
// line, since raw mode does not translate \n to \r\n.
func printRaw(oldState *term.State, format string, args ...interface{}) {
	term.Restore(int(os.Stdin.Fd()), oldState)
	fmt.Printf(format, args...)
	term.MakeRaw(int(os.Stdin.Fd()))
}
