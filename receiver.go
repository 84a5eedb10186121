// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rcv

import (
	"log/slog"
	"net"

	"code.hybscloud.com/iox"
)

type sessionKey struct {
	sessionID int32
	channelID int32
}

// Receiver is the receive-path entry point for one destination. It
// decodes data frames, discovers sessions and routes frames to them.
//
// A Receiver is used from a single receive context. Sessions it creates
// are attached before they are handed to the conductor. The hand-off never
// blocks the receive path: a session the conductor cannot take yet is kept
// pending and offered again on its next frame.
type Receiver struct {
	destination string
	conductor   *Conductor
	sessions    map[sessionKey]*Session
	pending     map[sessionKey]*Session
	sms         *SmQueue
	naks        *NakQueue
	opts        []Option
	o           options
}

// NewReceiver returns a receiver that hands new sessions to conductor.
// opts also apply to every session it creates.
func NewReceiver(destination string, conductor *Conductor, opts ...Option) *Receiver {
	o := buildOptions(opts)
	return &Receiver{
		destination: destination,
		conductor:   conductor,
		sessions:    make(map[sessionKey]*Session),
		pending:     make(map[sessionKey]*Session),
		sms:         NewSmQueue(o.queueCapacity),
		naks:        NewNakQueue(o.queueCapacity),
		opts:        opts,
		o:           o,
	}
}

// StatusMessages returns the queue the conductor fills with status
// messages for this destination's senders.
func (r *Receiver) StatusMessages() *SmQueue { return r.sms }

// Naks returns the queue the conductor fills with retransmission requests.
func (r *Receiver) Naks() *NakQueue { return r.naks }

// OnDataFrame processes one datagram from src. The first frame of an
// unknown (session, channel) creates and attaches its session at the
// frame's term. Padding frames are rebuilt like data.
//
// If the conductor's command queue is full the frame is dropped and
// iox.ErrWouldBlock is returned; the session stays pending and is offered
// again with the next frame for it. The sender retransmits what was
// dropped once the gap is NAKed.
func (r *Receiver) OnDataFrame(b []byte, src net.Addr) error {
	h, err := DecodeDataHeader(b)
	if err != nil {
		return err
	}
	key := sessionKey{sessionID: h.SessionID, channelID: h.ChannelID}
	s, ok := r.sessions[key]
	if !ok {
		s, ok = r.pending[key]
		if !ok {
			s, err = r.newSession(&h, src)
			if err != nil {
				return err
			}
		}
		if err := r.conductor.Add(s); err != nil {
			r.pending[key] = s
			return iox.ErrWouldBlock
		}
		delete(r.pending, key)
		r.sessions[key] = s
	}
	s.RebuildBuffer(&h, b[:h.FrameLength])
	return nil
}

func (r *Receiver) newSession(h *DataHeader, src net.Addr) (*Session, error) {
	ring, err := r.o.allocator.Allocate(r.o.termCapacity)
	if err != nil {
		return nil, err
	}
	s := NewSession(r.destination, h.SessionID, h.ChannelID, src, r.opts...)
	scanner := NewLossScanner(ring, r.o.lossDelay, r.naks.Sink(h.SessionID, h.ChannelID), r.o.clock)
	if err := s.Attach(h.TermID, r.o.window, ring, scanner, r.sms.Sink(h.SessionID, h.ChannelID)); err != nil {
		return nil, err
	}
	r.o.logger.Info("session discovered",
		slog.String("destination", r.destination),
		slog.Int("session", int(h.SessionID)),
		slog.Int("channel", int(h.ChannelID)),
		slog.Int64("term", h.TermID),
		slog.Int("termCapacity", int(ring.TermCapacity())),
	)
	return s, nil
}

// Pending returns the number of discovered sessions the conductor has not
// accepted yet. Receive context only.
func (r *Receiver) Pending() int { return len(r.pending) }

// Session returns the session for (sessionID, channelID), if it has been
// handed to the conductor. Receive context only.
func (r *Receiver) Session(sessionID, channelID int32) (*Session, bool) {
	s, ok := r.sessions[sessionKey{sessionID: sessionID, channelID: channelID}]
	return s, ok
}
