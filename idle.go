// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rcv

import (
	"time"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/spin"
)

// IdleStrategy waits between attempts that made no progress.
// *iox.Backoff satisfies IdleStrategy.
type IdleStrategy interface {
	Wait()
	Reset()
}

// yieldIdle spins, then yields the processor. It never sleeps, which keeps
// a rotation stall short when the conductor finishes cleaning quickly.
type yieldIdle struct {
	sw spin.Wait
}

// NewYieldIdle returns the spin-then-yield strategy used for rotation stalls.
func NewYieldIdle() IdleStrategy {
	return &yieldIdle{}
}

func (y *yieldIdle) Wait() {
	y.sw.Once()
}

func (y *yieldIdle) Reset() {
	y.sw = spin.Wait{}
}

// NewBackoffIdle returns the adaptive backoff used between conductor passes.
func NewBackoffIdle() IdleStrategy {
	return &iox.Backoff{}
}

// Clock returns a monotonic timestamp in nanoseconds.
type Clock func() int64

var epoch = time.Now()

// MonotonicClock returns nanoseconds elapsed since package initialization.
func MonotonicClock() int64 {
	return int64(time.Since(epoch))
}
