package racebuf

import "testing"

// testEntry is a minimal Entry for exercising the buffer without
// pulling in internal/logword.
type testEntry struct {
	val    uint32
	prefix bool
}

func (e testEntry) IsPrefix() bool { return e.prefix }

func single(v uint32) testEntry { return testEntry{val: v} }
func pairPrefix(v uint32) testEntry { return testEntry{val: v, prefix: true} }
func pairSuffix(v uint32) testEntry { return testEntry{val: v} }

func TestNewRejectsUndersizedStorage(t *testing.T) {
	if _, err := New[testEntry](make([]testEntry, 1)); err == nil {
		t.Fatal("expected an error for a 1-entry buffer")
	}
}

func TestSingleWriteAndRead(t *testing.T) {
	buf, err := New[testEntry](make([]testEntry, 8))
	if err != nil {
		t.Fatal(err)
	}
	r := NewReaderFromCursor(buf, 0)
	buf.Write(single(1))
	buf.Write(single(2))

	entries, missed := r.Poll()
	if missed != 0 {
		t.Fatalf("missed = %d, want 0", missed)
	}
	if len(entries) != 2 || entries[0].val != 1 || entries[1].val != 2 {
		t.Fatalf("entries = %v, want [1 2]", entries)
	}
}

// Scenario 4: ring overwrite. 100 single writes into a 16-word ring,
// then one poll, should observe n_missed >= 84 and a strictly
// monotonic tail of values with no duplicates.
func TestRingOverwriteScenario(t *testing.T) {
	const ringSize = 16
	const numWrites = 100

	buf, err := New[testEntry](make([]testEntry, ringSize))
	if err != nil {
		t.Fatal(err)
	}
	r := NewReaderFromCursor(buf, 0)

	for i := uint32(0); i < numWrites; i++ {
		buf.Write(single(i))
	}

	entries, missed := r.Poll()
	if missed < 84 {
		t.Fatalf("missed = %d, want >= 84", missed)
	}
	var last int64 = -1
	for _, e := range entries {
		if int64(e.val) <= last {
			t.Fatalf("tail not strictly increasing: %v", entries)
		}
		last = int64(e.val)
	}
}

// Scenario 5: two-word atomicity under overwrite. 8 single writes then
// one pair into an 8-word ring forces the overwrite of exactly the two
// oldest words; a reader initialized before the sequence observes
// n_missed = 2, the six surviving singles, then the whole pair, never a
// lone suffix.
func TestPairAtomicityUnderFullBufferOverwrite(t *testing.T) {
	const ringSize = 8

	buf, err := New[testEntry](make([]testEntry, ringSize))
	if err != nil {
		t.Fatal(err)
	}
	r := NewReaderFromCursor(buf, 0)

	for i := uint32(0); i < 8; i++ {
		buf.Write(single(i))
	}
	buf.WritePair(pairPrefix(1000), pairSuffix(1001))

	entries, missed := r.Poll()
	if missed != 2 {
		t.Fatalf("missed = %d, want 2", missed)
	}
	if len(entries) != 8 || entries[0].val != 2 || !entries[6].prefix || entries[6].val != 1000 || entries[7].val != 1001 {
		t.Fatalf("entries = %v, want singles 2..7 then the clock pair with no lone suffix", entries)
	}
}

// Boundary behavior: a pair push when only one slot remains free
// advances overwrite_seqn by two so no orphan suffix is observable,
// even though the entry about to be displaced is itself a pair's
// suffix-bearing prefix.
func TestPairPushWithOneFreeSlotNeverOrphansASuffix(t *testing.T) {
	const ringSize = 8

	buf, err := New[testEntry](make([]testEntry, ringSize))
	if err != nil {
		t.Fatal(err)
	}
	r := NewReaderFromCursor(buf, 0)

	// Fill the ring so the oldest entry is a pair prefix: pair, then
	// five singles (occupied = 7, one free slot; oldest is the prefix).
	buf.WritePair(pairPrefix(1), pairSuffix(2))
	for i := uint32(3); i < 8; i++ {
		buf.Write(single(i))
	}

	buf.WritePair(pairPrefix(2000), pairSuffix(2001))

	entries, missed := r.Poll()
	if missed != 2 {
		t.Fatalf("missed = %d, want 2 (the old prefix and its suffix evicted together)", missed)
	}
	for _, e := range entries {
		if !e.prefix && e.val == 2 {
			t.Fatal("observed an orphaned suffix word")
		}
	}
}

func TestReaderStopsShortOfAnUnpublishedSuffix(t *testing.T) {
	buf, err := New[testEntry](make([]testEntry, 8))
	if err != nil {
		t.Fatal(err)
	}
	r := NewReaderFromCursor(buf, 0)

	buf.Write(single(1))
	// Simulate a writer that has stored a prefix word but not yet
	// published its suffix: store the prefix directly and advance the
	// published write sequence number by one only (WritePair itself
	// always publishes both words together).
	buf.storage[buf.index(buf.writeTotal)] = pairPrefix(2)
	buf.writeTotal++
	buf.writeSeqn.publish(buf.writeTotal)

	entries, missed := r.Poll()
	if missed != 0 || len(entries) != 1 {
		t.Fatalf("entries=%v missed=%d, want one entry and no misses", entries, missed)
	}
	if r.Cursor() != 1 {
		t.Fatalf("Cursor() = %d, want 1 (the unpaired prefix left for the next poll)", r.Cursor())
	}
}
