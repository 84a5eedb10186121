// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package rcv provides the receiver-side state of a reliable transport over
// unreliable datagrams: one [Session] per (destination, session, channel)
// rebuilds inbound frames into a ring of three term buffers, discovers loss
// and reports progress back to the sender with status messages.
//
// # Architecture
//
//   - Ring: Three same-capacity [LogBuffer] slots, each with a Clean → NeedsCleaning → InCleaning status driven by compare-and-swap via [code.hybscloud.com/atomix].
//   - Rebuild: [LogRebuilder] copies frames at their term offset and keeps the highest contiguous offset in O(1).
//   - Loss: [LossScanner] follows the active term, finds the first gap with [GapScanner] and NAKs gaps that persist.
//   - Flow control: [Session.SendAnyPendingSm] reports term changes and window-gain progress.
//   - Feedback: [SmQueue] and [NakQueue] hand messages to the sender side over lock-free SPSC queues from [code.hybscloud.com/lfq].
//
// # Contexts
//
//   - Receive: [Receiver.OnDataFrame] and [Session.RebuildBuffer]. Term rotation happens here.
//   - Conductor: [Conductor.DoWork] calls [Session.CleanLogBuffer], [Session.ScanForGaps] and [Session.SendAnyPendingSm] for every session.
//
// Neither context takes a lock. A rotation that finds the next slot not yet
// reclaimed cleans it inline or waits on an [IdleStrategy] for the
// conductor to finish.
//
// # Work counts
//
// Conductor operations return work counts for the caller's idle strategy.
// [Session.SendAnyPendingSm] inverts the usual polarity: it returns 1 when
// no status message was due and 0 after sending one.
//
// # Example
//
//	c := rcv.NewConductor()
//	r := rcv.NewReceiver("udp://0.0.0.0:40123", c)
//	_ = r.OnDataFrame(datagram, src) // receive context
//	c.DoWork(rcv.MonotonicClock())   // conductor context
//	sm, err := r.StatusMessages().Poll()
package rcv
