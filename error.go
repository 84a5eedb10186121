// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rcv

import "errors"

var (
	// ErrAttached is returned by a second Attach on the same session.
	ErrAttached = errors.New("rcv: session already attached")

	// ErrWindow is returned for a non-positive flow-control window.
	ErrWindow = errors.New("rcv: window must be positive")

	// ErrTermCapacity is returned for a term capacity outside
	// [MinTermCapacity, 1<<30].
	ErrTermCapacity = errors.New("rcv: invalid term capacity")

	// ErrBufferCount is returned when ring buffers differ in capacity.
	ErrBufferCount = errors.New("rcv: ring buffers must share one capacity")

	// ErrNilRing is returned by Attach without a ring.
	ErrNilRing = errors.New("rcv: nil ring")

	// ErrShortFrame is returned when a datagram is shorter than its header.
	ErrShortFrame = errors.New("rcv: short frame")

	// ErrFrameLength is returned when a header's frame length is inconsistent
	// with the datagram.
	ErrFrameLength = errors.New("rcv: invalid frame length")

	// ErrFrameType is returned for a frame type the decoder does not accept.
	ErrFrameType = errors.New("rcv: unexpected frame type")
)
