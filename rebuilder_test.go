// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rcv_test

import (
	"testing"

	"code.hybscloud.com/rcv"
)

func newRebuilder(t *testing.T) rcv.LogRebuilder {
	t.Helper()
	ring, err := rcv.HeapAllocator{}.Allocate(testTermCapacity)
	if err != nil {
		t.Fatal(err)
	}
	return rcv.NewLogRebuilder(ring.Buffer(0))
}

func insert(r rcv.LogRebuilder, termOffset int32, length int) {
	_, b := dataFrame(0, termOffset, length)
	r.Insert(b, termOffset)
}

func TestRebuilderInOrder(t *testing.T) {
	r := newRebuilder(t)

	insert(r, 0, 50)
	insert(r, 50, 30)
	insert(r, 80, 24)

	if got := r.Tail(); got != 104 {
		t.Fatalf("Tail got %d, want 104", got)
	}
	if got := r.Buffer().HighWaterMark(); got != 104 {
		t.Fatalf("HighWaterMark got %d, want 104", got)
	}
}

func TestRebuilderOutOfOrderFill(t *testing.T) {
	r := newRebuilder(t)

	insert(r, 0, 100)
	insert(r, 200, 100)
	insert(r, 300, 50)
	if got := r.Tail(); got != 100 {
		t.Fatalf("Tail with gap got %d, want 100", got)
	}
	if got := r.Buffer().HighWaterMark(); got != 350 {
		t.Fatalf("HighWaterMark got %d, want 350", got)
	}

	// the retransmission closes the gap and the tail jumps over later frames
	insert(r, 100, 100)
	if got := r.Tail(); got != 350 {
		t.Fatalf("Tail after fill got %d, want 350", got)
	}
}

func TestRebuilderIgnoresInvalid(t *testing.T) {
	r := newRebuilder(t)
	insert(r, 0, 100)

	insert(r, 0, 100)                  // duplicate below tail
	insert(r, -8, 64)                  // negative offset
	insert(r, testTermCapacity-32, 64) // overruns the term

	_, short := dataFrame(0, 100, 24)
	r.Insert(short[:rcv.DataHeaderLength-1], 100) // shorter than a header

	if got := r.Tail(); got != 100 {
		t.Fatalf("Tail got %d, want 100", got)
	}
	if got := r.Buffer().HighWaterMark(); got != 100 {
		t.Fatalf("HighWaterMark got %d, want 100", got)
	}
}

func TestRebuilderComplete(t *testing.T) {
	r := newRebuilder(t)
	for off := int32(0); off < testTermCapacity; off += 256 {
		insert(r, off, 256)
	}
	if !r.IsComplete() {
		t.Fatalf("IsComplete false at tail %d", r.Tail())
	}
}
