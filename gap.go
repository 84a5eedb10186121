// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rcv

// GapHandler receives one gap [offset, offset+length) of a term.
type GapHandler func(offset, length int32)

// GapScanner finds the first gap between the tail and the high-water mark
// of one slot.
type GapScanner struct {
	lb *LogBuffer
}

// NewGapScanner binds a scanner to lb.
func NewGapScanner(lb *LogBuffer) GapScanner {
	return GapScanner{lb: lb}
}

// Scan reports the first gap to handler and returns true, or returns false
// when everything below the high-water mark has been received.
//
// The gap ends at the next offset where the rebuilder recorded a frame
// start. Frames above the tail may be concurrently inserted by the receive
// path, so a gap seen here is a hint that later scans confirm.
func (g GapScanner) Scan(handler GapHandler) bool {
	tail := g.lb.Tail()
	hwm := g.lb.HighWaterMark()
	if tail >= hwm {
		return false
	}
	end := g.lb.nextStart(tail+1, hwm)
	handler(tail, end-tail)
	return true
}
