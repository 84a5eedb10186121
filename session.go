// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rcv

import (
	"log/slog"
	"net"

	"code.hybscloud.com/atomix"
)

// StatusMessageSink receives status messages for the sender.
// No acknowledgement is awaited.
type StatusMessageSink interface {
	SendSm(termID int64, termOffset, window int32)
}

// StatusMessageFunc adapts a function to StatusMessageSink.
type StatusMessageFunc func(termID int64, termOffset, window int32)

// SendSm calls f.
func (f StatusMessageFunc) SendSm(termID int64, termOffset, window int32) {
	f(termID, termOffset, window)
}

// Session is the receive state of one (destination, session, channel)
// tuple.
//
// Two contexts share a Session. The receive path calls RebuildBuffer.
// A single conductor calls CleanLogBuffer, ScanForGaps and
// SendAnyPendingSm once per pass. No locks are taken: slots are handed
// between the two by compare-and-swap on their status, and the current
// term is published with a relaxed store that readers re-poll.
type Session struct {
	destination string
	source      net.Addr
	sessionID   int32
	channelID   int32
	serial      Serial

	ring          *Ring
	rebuilders    [BufferCount]LogRebuilder
	currentTermID *atomix.Int64
	currentSlot   atomix.Int32
	cleanedTermID atomix.Int64
	attached      bool

	scanner Scanner
	sink    StatusMessageSink

	// conductor-only flow-control state
	lastSmTimestamp int64
	lastSmTermID    int64
	lastSmTail      int32
	window          int32
	windowGain      int32
	smTimeout       int64

	idle   IdleStrategy
	logger *slog.Logger
}

// NewSession returns an unattached session. Attach must be called before
// any frame is rebuilt.
func NewSession(destination string, sessionID, channelID int32, source net.Addr, opts ...Option) *Session {
	o := buildOptions(opts)
	idle := NewYieldIdle()
	if o.idle != nil {
		idle = o.idle()
	}
	s := &Session{
		destination: destination,
		source:      source,
		sessionID:   sessionID,
		channelID:   channelID,
		serial:      nextSerial(),
		smTimeout:   int64(o.smTimeout),
		idle:        idle,
		logger: o.logger.With(
			slog.String("destination", destination),
			slog.Int("session", int(sessionID)),
			slog.Int("channel", int(channelID)),
		),
	}
	s.cleanedTermID.StoreRelaxed(UnknownTermID)
	return s
}

// Attach binds the ring, loss scanner and status message sink and starts
// the session at initialTermID with window initialWindow.
//
// The scanner is expected to follow ring. scanner and sink may be nil, in
// which case ScanForGaps and SendAnyPendingSm do nothing.
func (s *Session) Attach(initialTermID int64, initialWindow int32, ring *Ring, scanner Scanner, sink StatusMessageSink) error {
	if s.attached {
		return ErrAttached
	}
	if ring == nil {
		return ErrNilRing
	}
	if initialWindow <= 0 {
		return ErrWindow
	}
	s.ring = ring
	for i := range s.rebuilders {
		s.rebuilders[i] = NewLogRebuilder(ring.Buffer(i))
	}
	s.currentTermID = &ring.activeTermID
	s.cleanedTermID.StoreRelaxed(initialTermID + CleanWindow)
	s.currentSlot.StoreRelaxed(int32(SlotIndex(initialTermID)))
	s.currentTermID.StoreRelease(initialTermID)
	s.scanner = scanner
	s.sink = sink

	// compare against the position the sender starts from
	s.lastSmTermID = initialTermID
	if scanner != nil {
		_, s.lastSmTail = scanner.Position()
	}
	s.setWindow(initialWindow)
	s.attached = true
	return nil
}

// RebuildBuffer inserts one data frame. frame is the complete frame
// described by h; its length is the fragment length.
//
// A frame of the current term is inserted. A frame of the next term
// rotates the ring first. Any other term is dropped without a trace.
func (s *Session) RebuildBuffer(h *DataHeader, frame []byte) {
	if !s.attached {
		panic("rcv: RebuildBuffer on unattached session")
	}
	if h.FrameLength < 0 {
		return
	}
	if int(h.FrameLength) < len(frame) {
		frame = frame[:h.FrameLength]
	}
	current := s.currentTermID.LoadRelaxed()
	switch h.TermID {
	case current:
	case current + 1:
		s.nextTerm(h.TermID)
	default:
		// TODO: accept frames more than one term ahead once position
		// tracking replaces term-relative offsets.
		return
	}
	s.rebuilders[s.currentSlot.LoadRelaxed()].Insert(frame, h.TermOffset)
}

// nextTerm rotates to termID. If the next slot has not been reclaimed yet
// the receive path reclaims it inline, or waits for the context that
// claimed it. The wait has no bound if that context never finishes.
func (s *Session) nextTerm(termID int64) {
	current := int(s.currentSlot.LoadRelaxed())
	next := rotateNext(current)
	lb := s.ring.Buffer(next)

	if status := lb.Status(); status != Clean {
		s.logger.Warn("term not clean",
			slog.Int64("term", termID),
			slog.Int("slot", next),
			slog.String("status", statusName(status)),
		)
		if lb.CompareAndSetStatus(NeedsCleaning, InCleaning) {
			lb.Clean()
		} else {
			s.idle.Reset()
			for lb.Status() != Clean {
				s.idle.Wait()
			}
		}
	}

	s.ring.Buffer(rotatePrevious(current)).StatusOrdered(NeedsCleaning)

	s.currentTermID.StoreRelaxed(termID)
	s.currentSlot.StoreRelaxed(int32(next))
}

// CleanLogBuffer reclaims at most one slot marked NeedsCleaning and
// returns 1 if it did, 0 otherwise. Called from the conductor.
func (s *Session) CleanLogBuffer() int {
	if !s.attached {
		return 0
	}
	for i := range BufferCount {
		lb := s.ring.Buffer(i)
		if lb.Status() == NeedsCleaning && lb.CompareAndSetStatus(NeedsCleaning, InCleaning) {
			lb.Clean()
			return 1
		}
	}
	return 0
}

// ScanForGaps runs one loss scan. It always returns 0: scanning is lazy
// background work and never counts as busy. Called from the conductor.
func (s *Session) ScanForGaps() int {
	if s.scanner != nil {
		s.scanner.Scan()
	}
	return 0
}

// SendAnyPendingSm sends a status message when one is due and returns the
// conductor work count. Called from the conductor with a monotonic
// timestamp in nanoseconds.
//
// A message is due when the scanned term differs from the last one
// reported, or when the tail has advanced by more than a quarter of the
// window since the last message. If a status message timeout is
// configured, any progress older than the timeout is also due.
//
// The work count is inverted: 1 when nothing was due, 0 when a message was
// sent, so a session appears less busy right after it reports. With no
// scanner or sink attached it returns 0.
func (s *Session) SendAnyPendingSm(now int64) int {
	if s.scanner == nil || s.sink == nil {
		return 0
	}

	// one read: the tail must belong to the term it is reported with
	termID, tail := s.scanner.Position()

	if termID != s.lastSmTermID {
		s.lastSmTimestamp = now
		return s.sendSm(termID, tail)
	}

	if tail > s.lastSmTail {
		if tail-s.lastSmTail > s.windowGain {
			s.lastSmTimestamp = now
			return s.sendSm(termID, tail)
		}
		// lastSmTimestamp is zero until the first message goes out
		if s.smTimeout > 0 && s.lastSmTimestamp > 0 && now > s.lastSmTimestamp+s.smTimeout {
			s.lastSmTimestamp = now
			return s.sendSm(termID, tail)
		}
	}

	return 1
}

func (s *Session) sendSm(termID int64, termOffset int32) int {
	s.sink.SendSm(termID, termOffset, s.window)
	s.lastSmTermID = termID
	s.lastSmTail = termOffset
	return 0
}

// UpdateWindow changes the flow-control window. Called from the conductor.
func (s *Session) UpdateWindow(window int32) error {
	if window <= 0 {
		return ErrWindow
	}
	s.setWindow(window)
	return nil
}

func (s *Session) setWindow(window int32) {
	s.window = window
	s.windowGain = window >> 2
}

// Destination returns the channel destination the session was seen on.
func (s *Session) Destination() string { return s.destination }

// SourceAddress returns the sender's address.
func (s *Session) SourceAddress() net.Addr { return s.source }

// SessionID returns the sender's session id.
func (s *Session) SessionID() int32 { return s.sessionID }

// ChannelID returns the channel id.
func (s *Session) ChannelID() int32 { return s.channelID }

// Serial returns the registration serial assigned at creation.
func (s *Session) Serial() Serial { return s.serial }

// Ring returns the attached ring, or nil before Attach.
func (s *Session) Ring() *Ring { return s.ring }

// CurrentTermID returns the term the receive path is rebuilding.
func (s *Session) CurrentTermID() int64 {
	if s.currentTermID == nil {
		return UnknownTermID
	}
	return s.currentTermID.LoadRelaxed()
}

// CurrentSlotIndex returns the ring slot of CurrentTermID.
func (s *Session) CurrentSlotIndex() int {
	return int(s.currentSlot.LoadRelaxed())
}

// CleanedTermID returns the look-ahead watermark for buffer prefetching.
func (s *Session) CleanedTermID() int64 {
	return s.cleanedTermID.LoadRelaxed()
}

// Window returns the flow-control window.
func (s *Session) Window() int32 { return s.window }

// WindowGain returns the tail progress that triggers a status message.
func (s *Session) WindowGain() int32 { return s.windowGain }

// LastSm returns the term, tail and timestamp of the last status message.
func (s *Session) LastSm() (termID int64, tail int32, timestamp int64) {
	return s.lastSmTermID, s.lastSmTail, s.lastSmTimestamp
}
