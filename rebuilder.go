// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rcv

import "encoding/binary"

// LogRebuilder places inbound frames into one slot's term buffer.
//
// Insert is called only from the receive path. The tail it maintains is
// published with release ordering so the conductor can read it in O(1).
type LogRebuilder struct {
	lb *LogBuffer
}

// NewLogRebuilder binds a rebuilder to lb.
func NewLogRebuilder(lb *LogBuffer) LogRebuilder {
	return LogRebuilder{lb: lb}
}

// Buffer returns the bound slot.
func (r LogRebuilder) Buffer() *LogBuffer {
	return r.lb
}

// Insert copies frame into the term at termOffset and advances the tail
// over every contiguous frame now present.
//
// Frames that fall outside the term, are shorter than a data header, or
// start below the tail (duplicates) are ignored. The frame length and term
// offset words are rewritten from len(frame) and termOffset so the stored
// header always describes the stored bytes. Insert never blocks; the caller
// guarantees the slot is not being reclaimed.
func (r LogRebuilder) Insert(frame []byte, termOffset int32) {
	lb := r.lb
	n := int32(len(frame))
	capacity := lb.Capacity()
	if termOffset < 0 || n < DataHeaderLength || termOffset > capacity-n {
		return
	}
	tail := lb.tail.LoadRelaxed()
	if termOffset < tail {
		return
	}

	dst := lb.term[termOffset : termOffset+n]
	copy(dst[versionOffset:], frame[versionOffset:])
	binary.LittleEndian.PutUint32(dst[termOffsetOffset:], uint32(termOffset))
	// length word last: a non-zero length marks the frame as received
	binary.LittleEndian.PutUint32(dst[frameLengthOffset:], uint32(n))
	lb.markStart(termOffset)

	if end := termOffset + n; end > lb.hwm.LoadRelaxed() {
		lb.hwm.StoreRelease(end)
	}
	if termOffset == tail {
		lb.tail.StoreRelease(r.scanContiguous(tail))
	}
}

// scanContiguous walks received frames from offset and returns the first
// offset not covered by one.
func (r LogRebuilder) scanContiguous(offset int32) int32 {
	term := r.lb.term
	capacity := int32(len(term))
	for capacity-offset >= DataHeaderLength {
		length := frameLengthAt(term, offset)
		if length < DataHeaderLength || length > capacity-offset {
			break
		}
		offset += length
	}
	return offset
}

// Tail returns the highest contiguous offset received.
func (r LogRebuilder) Tail() int32 {
	return r.lb.Tail()
}

// IsComplete reports whether the whole term has been rebuilt.
func (r LogRebuilder) IsComplete() bool {
	return r.lb.Tail() >= r.lb.Capacity()
}
