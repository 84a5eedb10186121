// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package rcv_test

import "testing"

// skipRace skips tests that exercise lfq SPSC transport or read term bytes
// concurrently with the receive path.
// The race detector tracks per-variable happens-before and cannot
// see cross-variable memory ordering (store-release on an index or tail,
// load-acquire on the same), producing false positives.
func skipRace(tb testing.TB) {
	tb.Helper()
	tb.Skip("skip: relies on cross-variable memory ordering")
}
