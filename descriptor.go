// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rcv

// SlotStatus is the reclamation state of one ring slot.
//
// A slot moves Clean → NeedsCleaning → InCleaning → Clean.
// Only the holder of InCleaning may reset the slot, and InCleaning is
// only reachable by compare-and-swap from NeedsCleaning.
type SlotStatus = int32

const (
	// Clean slots are zeroed and ready to receive a term.
	Clean SlotStatus = 0
	// NeedsCleaning slots hold a retired term that has not been reclaimed.
	NeedsCleaning SlotStatus = 1
	// InCleaning slots are being reset by the context that won the CAS.
	InCleaning SlotStatus = 2
)

const (
	// BufferCount is the number of term buffers in a ring.
	BufferCount = 3

	// CleanWindow is the look-ahead distance, in terms, of the cleaned
	// term watermark relative to the initial term.
	CleanWindow = 2

	// UnknownTermID marks a term id that has not been assigned.
	UnknownTermID int64 = -1
)

// SlotIndex returns the ring slot that holds termID.
// The result is in [0, BufferCount) for negative term ids as well.
func SlotIndex(termID int64) int {
	i := int(termID % BufferCount)
	if i < 0 {
		i += BufferCount
	}
	return i
}

// rotateNext returns the slot after i.
func rotateNext(i int) int {
	return (i + 1) % BufferCount
}

// rotatePrevious returns the slot before i.
func rotatePrevious(i int) int {
	return (i + BufferCount - 1) % BufferCount
}

// statusName is used in log attributes.
func statusName(s SlotStatus) string {
	switch s {
	case Clean:
		return "clean"
	case NeedsCleaning:
		return "needs-cleaning"
	case InCleaning:
		return "in-cleaning"
	}
	return "unknown"
}
