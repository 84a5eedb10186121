// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rcv

import "time"

// Scanner is the loss-scanning view a Session drives and reads.
type Scanner interface {
	// Scan inspects the current term for gaps.
	Scan()
	// Position returns the current term and its highest contiguous
	// offset. The offset always belongs to the returned term.
	Position() (termID int64, offset int32)
}

// NakSink receives retransmission requests.
type NakSink interface {
	SendNak(termID int64, termOffset, length int32)
}

// NakFunc adapts a function to NakSink.
type NakFunc func(termID int64, termOffset, length int32)

// SendNak calls f.
func (f NakFunc) SendNak(termID int64, termOffset, length int32) {
	f(termID, termOffset, length)
}

// DelayGenerator yields the time a gap must persist before it is NAKed.
type DelayGenerator interface {
	Delay() time.Duration
}

// StaticDelay is a DelayGenerator with a fixed delay.
type StaticDelay time.Duration

// Delay returns d.
func (d StaticDelay) Delay() time.Duration {
	return time.Duration(d)
}

// DefaultLossDelay is the NAK delay used when none is configured.
const DefaultLossDelay = StaticDelay(20 * time.Millisecond)

// LossScanner discovers loss in the active term of a ring.
//
// It follows the term published by the session (relaxed, may lag) and
// scans that term's slot. A gap that stays unchanged for the generated
// delay is reported to the NakSink; a changed gap or a term change re-arms
// the timer. LossScanner is driven by a single conductor context.
type LossScanner struct {
	ring     *Ring
	scanners [BufferCount]GapScanner
	delay    DelayGenerator
	clock    Clock
	sink     NakSink
	onGapFn  GapHandler

	termID   int64
	active   bool
	gapStart int32
	gapLen   int32
	deadline int64
}

// NewLossScanner creates a scanner over ring. A nil sink discards NAKs,
// a nil delay uses DefaultLossDelay and a nil clock uses MonotonicClock.
func NewLossScanner(ring *Ring, delay DelayGenerator, sink NakSink, clock Clock) *LossScanner {
	if delay == nil {
		delay = DefaultLossDelay
	}
	if clock == nil {
		clock = MonotonicClock
	}
	ls := &LossScanner{
		ring:   ring,
		delay:  delay,
		clock:  clock,
		sink:   sink,
		termID: UnknownTermID,
	}
	for i := range ls.scanners {
		ls.scanners[i] = NewGapScanner(ring.Buffer(i))
	}
	ls.onGapFn = ls.onGap
	return ls
}

// Scan looks for the first gap in the active term.
func (ls *LossScanner) Scan() {
	termID := ls.ring.ActiveTermID()
	if termID == UnknownTermID {
		return
	}
	if termID != ls.termID {
		ls.termID = termID
		ls.active = false
	}
	if !ls.scanners[SlotIndex(termID)].Scan(ls.onGapFn) {
		ls.active = false
	}
}

func (ls *LossScanner) onGap(offset, length int32) {
	now := ls.clock()
	if ls.active && ls.gapStart == offset && ls.gapLen == length {
		if now >= ls.deadline {
			if ls.sink != nil {
				ls.sink.SendNak(ls.termID, offset, length)
			}
			ls.deadline = now + int64(ls.delay.Delay())
		}
		return
	}
	ls.active = true
	ls.gapStart = offset
	ls.gapLen = length
	ls.deadline = now + int64(ls.delay.Delay())
}

// Position returns the current term and its highest contiguous offset,
// reading the tail of the slot that belongs to the returned term.
//
// If the receive path rotates after the term is loaded, the tail is still
// that of the loaded term: its slot is not retired until the rotation after
// next, and a retired slot only reads lower.
func (ls *LossScanner) Position() (termID int64, offset int32) {
	termID = ls.ring.ActiveTermID()
	if termID == UnknownTermID {
		return termID, 0
	}
	return termID, ls.ring.Buffer(SlotIndex(termID)).Tail()
}

// HighestContiguousOffset returns the tail of the current term.
func (ls *LossScanner) HighestContiguousOffset() int32 {
	_, offset := ls.Position()
	return offset
}

// CurrentTermID returns the current term.
func (ls *LossScanner) CurrentTermID() int64 {
	return ls.ring.ActiveTermID()
}
