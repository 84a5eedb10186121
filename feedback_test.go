// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rcv_test

import (
	"testing"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/rcv"
)

func TestSmQueue(t *testing.T) {
	skipRace(t)
	q := rcv.NewSmQueue(8)
	sink := q.Sink(7, 1)

	if _, err := q.Poll(); !iox.IsWouldBlock(err) {
		t.Fatalf("Poll on empty queue: got %v, want ErrWouldBlock", err)
	}

	sink.SendSm(3, 128, 400)
	sink.SendSm(4, 0, 400)

	m, err := q.Poll()
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	want := rcv.StatusMessage{SessionID: 7, ChannelID: 1, TermID: 3, TermOffset: 128, Window: 400}
	if m != want {
		t.Fatalf("got %+v, want %+v", m, want)
	}
	if m, _ = q.Poll(); m.TermID != 4 {
		t.Fatalf("second message term %d, want 4", m.TermID)
	}
}

func TestSmQueueDropsWhenFull(t *testing.T) {
	skipRace(t)
	q := rcv.NewSmQueue(4)
	sink := q.Sink(1, 1)

	const sent = 100
	for i := range sent {
		sink.SendSm(0, int32(i), 400)
	}

	polled := 0
	var last int32 = -1
	for {
		m, err := q.Poll()
		if err != nil {
			break
		}
		if m.TermOffset <= last {
			t.Fatalf("out of order: %d after %d", m.TermOffset, last)
		}
		last = m.TermOffset
		polled++
	}
	if polled == 0 || q.Dropped() == 0 {
		t.Fatalf("polled=%d dropped=%d, want both non-zero", polled, q.Dropped())
	}
	if uint64(polled)+q.Dropped() != sent {
		t.Fatalf("polled %d + dropped %d != %d", polled, q.Dropped(), sent)
	}
}

func TestNakQueue(t *testing.T) {
	skipRace(t)
	q := rcv.NewNakQueue(0)
	q.Sink(2, 3).SendNak(5, 100, 60)

	n, err := q.Poll()
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	want := rcv.Nak{SessionID: 2, ChannelID: 3, TermID: 5, TermOffset: 100, Length: 60}
	if n != want {
		t.Fatalf("got %+v, want %+v", n, want)
	}
	if q.Dropped() != 0 {
		t.Fatalf("Dropped got %d, want 0", q.Dropped())
	}
}
