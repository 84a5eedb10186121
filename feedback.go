// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rcv

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/lfq"
)

// feedbackQueue is a bounded single-producer single-consumer queue from the
// conductor to a sender-side collaborator. A full queue drops the message:
// the next conductor pass re-evaluates and sends again.
type feedbackQueue[T any] struct {
	q       lfq.SPSC[T]
	slot    T
	dropped atomix.Uint64
}

func (f *feedbackQueue[T]) initQueue(capacity int) {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	f.q.Init(capacity)
}

// offer enqueues f.slot. Producer side only.
func (f *feedbackQueue[T]) offer() {
	if err := f.q.Enqueue(&f.slot); err != nil {
		f.dropped.Add(1)
	}
}

// SmQueue carries status messages from the conductor to the sender side.
type SmQueue struct {
	feedbackQueue[StatusMessage]
}

// NewSmQueue returns a status message queue holding up to capacity messages.
func NewSmQueue(capacity int) *SmQueue {
	q := &SmQueue{}
	q.initQueue(capacity)
	return q
}

// Sink returns a StatusMessageSink that tags messages with the session and
// channel ids. All sinks of one queue must be used from one context.
func (q *SmQueue) Sink(sessionID, channelID int32) StatusMessageSink {
	return StatusMessageFunc(func(termID int64, termOffset, window int32) {
		q.slot = StatusMessage{
			SessionID:  sessionID,
			ChannelID:  channelID,
			TermID:     termID,
			TermOffset: termOffset,
			Window:     window,
		}
		q.offer()
	})
}

// Poll removes the oldest status message. It returns iox.ErrWouldBlock
// when the queue is empty. Consumer side only.
func (q *SmQueue) Poll() (StatusMessage, error) {
	return q.q.Dequeue()
}

// Dropped returns the number of messages dropped on a full queue.
func (q *SmQueue) Dropped() uint64 {
	return q.dropped.Load()
}

// NakQueue carries retransmission requests from the conductor to the
// sender side.
type NakQueue struct {
	feedbackQueue[Nak]
}

// NewNakQueue returns a NAK queue holding up to capacity requests.
func NewNakQueue(capacity int) *NakQueue {
	q := &NakQueue{}
	q.initQueue(capacity)
	return q
}

// Sink returns a NakSink that tags requests with the session and channel
// ids. All sinks of one queue must be used from one context.
func (q *NakQueue) Sink(sessionID, channelID int32) NakSink {
	return NakFunc(func(termID int64, termOffset, length int32) {
		q.slot = Nak{
			SessionID:  sessionID,
			ChannelID:  channelID,
			TermID:     termID,
			TermOffset: termOffset,
			Length:     length,
		}
		q.offer()
	})
}

// Poll removes the oldest NAK. It returns iox.ErrWouldBlock when the queue
// is empty. Consumer side only.
func (q *NakQueue) Poll() (Nak, error) {
	return q.q.Dequeue()
}

// Dropped returns the number of requests dropped on a full queue.
func (q *NakQueue) Dropped() uint64 {
	return q.dropped.Load()
}
