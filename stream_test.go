// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rcv_test

import (
	"testing"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/rcv"
)

// TestStreamWithConcurrentConductor rebuilds many full terms on one
// goroutine while another services the session as a conductor. Every
// rotation must find its next slot clean, either reclaimed by the
// conductor or inline.
func TestStreamWithConcurrentConductor(t *testing.T) {
	skipRace(t)
	const terms = 300
	const frame = 128

	s, _, _ := attached(t, 0, testTermCapacity)

	var stop atomix.Int32
	sent := make(chan int, 1)
	go func() {
		passes := 0
		for stop.Load() == 0 {
			s.CleanLogBuffer()
			s.ScanForGaps()
			s.SendAnyPendingSm(int64(passes))
			passes++
		}
		sent <- passes
	}()

	for term := int64(0); term < terms; term++ {
		for off := int32(0); off < testTermCapacity; off += frame {
			rebuild(s, term, off, frame)
		}
		if got := s.Ring().Buffer(rcv.SlotIndex(term)).Tail(); got != testTermCapacity {
			t.Errorf("term %d tail %d, want %d", term, got, testTermCapacity)
			break
		}
	}
	stop.Store(1)
	<-sent

	if got := s.CurrentTermID(); got != terms-1 {
		t.Fatalf("CurrentTermID got %d, want %d", got, terms-1)
	}
}
