// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rcv_test

import (
	"runtime"
	"testing"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/rcv"
)

const testTermCapacity = 1024

// dataFrame encodes a data frame of the given total length. The payload
// bytes are non-zero so that rebuilt regions are distinguishable from
// cleaned ones.
func dataFrame(termID int64, termOffset int32, length int) (rcv.DataHeader, []byte) {
	h := rcv.DataHeader{
		FrameLength: int32(length),
		Version:     rcv.CurrentVersion,
		Flags:       rcv.UnfragmentedFlags,
		Type:        rcv.FrameTypeData,
		TermOffset:  termOffset,
		SessionID:   7,
		ChannelID:   1,
		TermID:      termID,
	}
	b := make([]byte, length)
	h.Encode(b)
	for i := rcv.DataHeaderLength; i < length; i++ {
		b[i] = 0xA5
	}
	return h, b
}

// sessionFrame is dataFrame with SessionID replaced by sessionID.
func sessionFrame(sessionID int32, termID int64, termOffset int32, length int) []byte {
	h, b := dataFrame(termID, termOffset, length)
	h.SessionID = sessionID
	h.Encode(b)
	return b
}

// smRecord is one status message seen by a recordingSink.
type smRecord struct {
	termID     int64
	termOffset int32
	window     int32
}

type recordingSink struct {
	sent []smRecord
}

func (r *recordingSink) SendSm(termID int64, termOffset, window int32) {
	r.sent = append(r.sent, smRecord{termID: termID, termOffset: termOffset, window: window})
}

// fakeClock is a settable Clock.
type fakeClock struct {
	now int64
}

func (c *fakeClock) Now() int64 { return c.now }

// countingIdle counts waits and yields the processor.
type countingIdle struct {
	waits atomix.Int64
}

func (c *countingIdle) Wait() {
	c.waits.Add(1)
	runtime.Gosched()
}

func (c *countingIdle) Reset() {}

// attached returns a session attached at initialTerm over a fresh ring,
// with a loss scanner and a recording status message sink.
func attached(tb testing.TB, initialTerm int64, window int32, opts ...rcv.Option) (*rcv.Session, *rcv.LossScanner, *recordingSink) {
	tb.Helper()
	ring, err := rcv.HeapAllocator{}.Allocate(testTermCapacity)
	if err != nil {
		tb.Fatalf("Allocate: %v", err)
	}
	s := rcv.NewSession("udp://127.0.0.1:40123", 7, 1, nil, opts...)
	ls := rcv.NewLossScanner(ring, nil, nil, nil)
	sink := &recordingSink{}
	if err := s.Attach(initialTerm, window, ring, ls, sink); err != nil {
		tb.Fatalf("Attach: %v", err)
	}
	return s, ls, sink
}

// rebuild encodes and inserts one data frame.
func rebuild(s *rcv.Session, termID int64, termOffset int32, length int) {
	h, b := dataFrame(termID, termOffset, length)
	s.RebuildBuffer(&h, b)
}

// statuses returns the status of each ring slot.
func statuses(r *rcv.Ring) [rcv.BufferCount]rcv.SlotStatus {
	var out [rcv.BufferCount]rcv.SlotStatus
	for i := range out {
		out[i] = r.Buffer(i).Status()
	}
	return out
}
