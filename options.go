// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rcv

import (
	"log/slog"
	"time"
)

const (
	// DefaultInitialWindow is the flow-control window given to sessions a
	// Receiver discovers.
	DefaultInitialWindow int32 = 32 * 1024

	// DefaultQueueCapacity is the capacity of feedback and command queues.
	DefaultQueueCapacity = 64
)

// Option configures a Session, Receiver or Conductor.
// Options that do not apply to the value being built are ignored.
type Option func(*options)

type options struct {
	logger        *slog.Logger
	idle          func() IdleStrategy
	smTimeout     time.Duration
	clock         Clock
	window        int32
	termCapacity  int32
	allocator     RingAllocator
	lossDelay     DelayGenerator
	queueCapacity int
}

func defaultOptions() options {
	return options{
		logger:        slog.New(slog.DiscardHandler),
		clock:         MonotonicClock,
		window:        DefaultInitialWindow,
		termCapacity:  DefaultTermCapacity,
		allocator:     HeapAllocator{},
		lossDelay:     DefaultLossDelay,
		queueCapacity: DefaultQueueCapacity,
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger. The default discards all records.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithIdleStrategy sets the factory for idle strategies: the rotation-stall
// wait of a Session or the between-pass wait of a Conductor.
func WithIdleStrategy(f func() IdleStrategy) Option {
	return func(o *options) { o.idle = f }
}

// WithStatusMessageTimeout enables the time-based status message trigger:
// a session that has made any progress sends when d has elapsed since its
// last status message. Zero, the default, disables the trigger.
func WithStatusMessageTimeout(d time.Duration) Option {
	return func(o *options) { o.smTimeout = d }
}

// WithClock sets the timestamp source.
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithInitialWindow sets the window a Receiver attaches new sessions with.
func WithInitialWindow(w int32) Option {
	return func(o *options) { o.window = w }
}

// WithTermCapacity sets the term capacity a Receiver allocates.
func WithTermCapacity(c int32) Option {
	return func(o *options) { o.termCapacity = c }
}

// WithAllocator sets the ring allocator a Receiver uses.
func WithAllocator(a RingAllocator) Option {
	return func(o *options) {
		if a != nil {
			o.allocator = a
		}
	}
}

// WithLossDelay sets the NAK delay generator of discovered sessions.
func WithLossDelay(d DelayGenerator) Option {
	return func(o *options) {
		if d != nil {
			o.lossDelay = d
		}
	}
}

// WithQueueCapacity sets the capacity of feedback and command queues.
func WithQueueCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.queueCapacity = n
		}
	}
}
