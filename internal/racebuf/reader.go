package racebuf

// Reader polls a RaceBuffer asynchronously. It has no effect on the
// writer and never blocks; each call to Poll advances the reader's own
// cursor by whatever it could safely observe.
type Reader[E Entry] struct {
	buf      *RaceBuffer[E]
	readSeqn uint64
}

// NewReader returns a Reader starting at the current write position,
// matching the behavior of a fresh collector attaching mid-stream: it
// will only observe entries written after this call.
func NewReader[E Entry](buf *RaceBuffer[E]) *Reader[E] {
	return &Reader[E]{buf: buf, readSeqn: buf.WriteSeqNum()}
}

// NewReaderFromCursor returns a Reader resuming from a previously
// recorded sequence number, e.g. one persisted across a process
// restart of an out-of-process collector.
func NewReaderFromCursor[E Entry](buf *RaceBuffer[E], cursor uint64) *Reader[E] {
	return &Reader[E]{buf: buf, readSeqn: cursor}
}

// Cursor returns the reader's current sequence number.
func (r *Reader[E]) Cursor() uint64 { return r.readSeqn }

// Poll reads everything currently safe to read from the buffer:
//
//  1. snapshot write and overwrite sequence numbers.
//  2. catch up over anything already overwritten, counting it as missed.
//  3. walk forward word by word, re-checking the overwrite sequence
//     number so a write racing ahead of this read is never included
//     as a torn entry.
//  4. stop one word short if the last safely-read word is a pair
//     prefix whose suffix has not yet been published.
//
// It returns the words read, in order, and the number of words known
// to have been missed since the previous call.
func (r *Reader[E]) Poll() (entries []E, nMissed uint64) {
	writeSnap := r.buf.WriteSeqNum()
	overwriteSnap := r.buf.OverwriteSeqNum()

	if overwriteSnap > r.readSeqn {
		nMissed += overwriteSnap - r.readSeqn
		r.readSeqn = overwriteSnap
	}

	i := r.readSeqn
	for i < writeSnap {
		e := r.buf.storage[r.buf.index(i)]

		if e.IsPrefix() {
			if i+1 >= writeSnap {
				// Suffix not published yet; leave the whole pair for
				// the next poll.
				break
			}
			if safe := r.buf.OverwriteSeqNum(); safe > i+1 {
				// The pair was overwritten while we were reading it.
				break
			}
			suffix := r.buf.storage[r.buf.index(i+1)]
			entries = append(entries, e, suffix)
			i += 2
			continue
		}

		if safe := r.buf.OverwriteSeqNum(); safe > i {
			break
		}
		entries = append(entries, e)
		i++
	}
	r.readSeqn = i
	return entries, nMissed
}
