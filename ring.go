// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rcv

import (
	"math/bits"

	"code.hybscloud.com/atomix"
)

// MinTermCapacity is the smallest accepted term buffer capacity.
const MinTermCapacity = 64

// DefaultTermCapacity is the term capacity used by HeapAllocator callers
// that do not configure one.
const DefaultTermCapacity = 64 * 1024

// LogBuffer is one ring slot: a term buffer plus its rebuild state.
//
// The term bytes are written only by the receive path while the slot is
// Clean, and reset only by the context holding InCleaning.
//
// starts holds one bit per term offset, set where a received frame begins.
// Only the rebuilder sets bits; gap scans read them instead of parsing
// term bytes that a payload could make look like a header.
type LogBuffer struct {
	term   []byte
	starts []atomix.Uint64
	status atomix.Int32
	tail   atomix.Int32
	hwm    atomix.Int32
}

// Capacity returns the term capacity in bytes.
func (lb *LogBuffer) Capacity() int32 {
	return int32(len(lb.term))
}

// Status returns the slot status with acquire ordering.
func (lb *LogBuffer) Status() SlotStatus {
	return lb.status.LoadAcquire()
}

// CompareAndSetStatus transitions the slot from old to new.
// Exactly one of any set of concurrent callers with the same old wins.
func (lb *LogBuffer) CompareAndSetStatus(old, new SlotStatus) bool {
	return lb.status.CompareAndSwapAcqRel(old, new)
}

// StatusOrdered stores the slot status with release ordering.
func (lb *LogBuffer) StatusOrdered(s SlotStatus) {
	lb.status.StoreRelease(s)
}

// Tail returns the highest contiguous offset received in this term.
func (lb *LogBuffer) Tail() int32 {
	return lb.tail.LoadAcquire()
}

// HighWaterMark returns the end of the furthest frame received in this term.
func (lb *LogBuffer) HighWaterMark() int32 {
	return lb.hwm.LoadAcquire()
}

// markStart records a frame beginning at offset. Receive path only.
func (lb *LogBuffer) markStart(offset int32) {
	w := &lb.starts[offset>>6]
	w.StoreRelease(w.LoadRelaxed() | 1<<(uint(offset)&63))
}

// nextStart returns the first recorded frame start in [from, limit), or
// limit if there is none.
func (lb *LogBuffer) nextStart(from, limit int32) int32 {
	if from >= limit {
		return limit
	}
	i := int(from >> 6)
	word := lb.starts[i].LoadAcquire() &^ (1<<(uint(from)&63) - 1)
	last := int(limit-1) >> 6
	for {
		if word != 0 {
			if o := int32(i<<6 + bits.TrailingZeros64(word)); o < limit {
				return o
			}
			return limit
		}
		if i++; i > last {
			return limit
		}
		word = lb.starts[i].LoadAcquire()
	}
}

// Clean zeroes the term and rebuild state and marks the slot Clean.
// The caller must hold InCleaning.
func (lb *LogBuffer) Clean() {
	clear(lb.term)
	for i := range lb.starts {
		lb.starts[i].StoreRelaxed(0)
	}
	lb.tail.StoreRelaxed(0)
	lb.hwm.StoreRelaxed(0)
	lb.status.StoreRelease(Clean)
}

// Ring is the three-slot term buffer set of one session, plus the
// active term cursor published by the session and followed by its
// loss scanner.
type Ring struct {
	buffers      [BufferCount]LogBuffer
	activeTermID atomix.Int64
}

// NewRing wraps three same-capacity term buffers. All slots start Clean.
// The buffers must be zeroed.
func NewRing(terms [BufferCount][]byte) (*Ring, error) {
	capacity := len(terms[0])
	if capacity < MinTermCapacity || capacity > 1<<30 {
		return nil, ErrTermCapacity
	}
	r := &Ring{}
	for i, t := range terms {
		if len(t) != capacity {
			return nil, ErrBufferCount
		}
		r.buffers[i].term = t
		r.buffers[i].starts = make([]atomix.Uint64, (capacity+63)>>6)
	}
	r.activeTermID.StoreRelaxed(UnknownTermID)
	return r, nil
}

// Buffer returns slot i.
func (r *Ring) Buffer(i int) *LogBuffer {
	return &r.buffers[i]
}

// TermCapacity returns the capacity shared by all three slots.
func (r *Ring) TermCapacity() int32 {
	return r.buffers[0].Capacity()
}

// ActiveTermID returns the most recently published term id.
// The load is relaxed: readers tolerate a stale value and re-poll.
func (r *Ring) ActiveTermID() int64 {
	return r.activeTermID.LoadRelaxed()
}

// RingAllocator provisions the buffers of a session at setup.
type RingAllocator interface {
	Allocate(termCapacity int32) (*Ring, error)
}

// AllocatorFunc adapts a function to RingAllocator.
type AllocatorFunc func(termCapacity int32) (*Ring, error)

// Allocate calls f.
func (f AllocatorFunc) Allocate(termCapacity int32) (*Ring, error) {
	return f(termCapacity)
}

// HeapAllocator allocates ring buffers on the Go heap.
type HeapAllocator struct{}

// Allocate returns a ring of three zeroed termCapacity-byte buffers.
func (HeapAllocator) Allocate(termCapacity int32) (*Ring, error) {
	if termCapacity < MinTermCapacity || termCapacity > 1<<30 {
		return nil, ErrTermCapacity
	}
	backing := make([]byte, BufferCount*int(termCapacity))
	var terms [BufferCount][]byte
	for i := range terms {
		lo := i * int(termCapacity)
		terms[i] = backing[lo : lo+int(termCapacity) : lo+int(termCapacity)]
	}
	return NewRing(terms)
}
