// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rcv_test

import (
	"testing"

	"code.hybscloud.com/rcv"
)

// BenchmarkRebuildInOrder measures in-order insertion across term rotations,
// with the conductor cleaning on the same goroutine.
func BenchmarkRebuildInOrder(b *testing.B) {
	const frame = 128
	s, _, _ := attached(b, 0, testTermCapacity)
	h, buf := dataFrame(0, 0, frame)
	b.ReportAllocs()
	b.SetBytes(frame)
	for b.Loop() {
		s.RebuildBuffer(&h, buf)
		h.TermOffset += frame
		if h.TermOffset == testTermCapacity {
			h.TermOffset = 0
			h.TermID++
			s.CleanLogBuffer()
		}
	}
}

// BenchmarkSendAnyPendingSmWithheld measures the common no-message-due path.
func BenchmarkSendAnyPendingSmWithheld(b *testing.B) {
	s, _, _ := attached(b, 0, testTermCapacity)
	rebuild(s, 0, 0, 64)
	b.ReportAllocs()
	var now int64
	for b.Loop() {
		now++
		s.SendAnyPendingSm(now)
	}
}

// BenchmarkScanForGaps measures a scan over a term with one open gap.
func BenchmarkScanForGaps(b *testing.B) {
	s, _, _ := attached(b, 0, testTermCapacity)
	rebuild(s, 0, 0, 64)
	rebuild(s, 0, 512, 64)
	b.ReportAllocs()
	for b.Loop() {
		s.ScanForGaps()
	}
}

// BenchmarkDecodeDataHeader measures header parsing.
func BenchmarkDecodeDataHeader(b *testing.B) {
	_, buf := dataFrame(1, 0, 256)
	b.ReportAllocs()
	for b.Loop() {
		if _, err := rcv.DecodeDataHeader(buf); err != nil {
			b.Fatal(err)
		}
	}
}
