// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rcv

import (
	"log/slog"

	"code.hybscloud.com/lfq"
)

// Conductor is the polling context that services every live session:
// buffer reclamation, loss scanning and status messages, once per pass.
//
// New sessions reach the conductor through a bounded SPSC queue, so Add
// must be called from a single producer (the Receiver).
type Conductor struct {
	pending  lfq.SPSC[*Session]
	slot     *Session
	sessions []*Session
	clock    Clock
	idle     IdleStrategy
	logger   *slog.Logger
}

// NewConductor returns a conductor with no sessions.
func NewConductor(opts ...Option) *Conductor {
	o := buildOptions(opts)
	idle := NewBackoffIdle()
	if o.idle != nil {
		idle = o.idle()
	}
	c := &Conductor{
		clock:  o.clock,
		idle:   idle,
		logger: o.logger,
	}
	c.pending.Init(o.queueCapacity)
	return c
}

// Add hands an attached session to the conductor. It returns
// iox.ErrWouldBlock if the command queue is full. Producer side only.
func (c *Conductor) Add(s *Session) error {
	c.slot = s
	err := c.pending.Enqueue(&c.slot)
	c.slot = nil
	return err
}

// DoWork runs one pass over all sessions at timestamp now and returns the
// summed work count.
func (c *Conductor) DoWork(now int64) int {
	for {
		s, err := c.pending.Dequeue()
		if err != nil {
			break
		}
		c.sessions = append(c.sessions, s)
		c.logger.Info("session added",
			slog.Int("session", int(s.SessionID())),
			slog.Int("channel", int(s.ChannelID())),
			slog.Int64("term", s.CurrentTermID()),
		)
	}

	work := 0
	for _, s := range c.sessions {
		work += s.CleanLogBuffer()
		work += s.ScanForGaps()
		work += s.SendAnyPendingSm(now)
	}
	return work
}

// Run calls DoWork until stop returns true, idling when a pass does no
// work and resetting the idle strategy when it does.
func (c *Conductor) Run(stop func() bool) {
	c.idle.Reset()
	for !stop() {
		if c.DoWork(c.clock()) > 0 {
			c.idle.Reset()
		} else {
			c.idle.Wait()
		}
	}
}

// Len returns the number of sessions the conductor has taken over.
// Conductor context only.
func (c *Conductor) Len() int {
	return len(c.sessions)
}
