// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rcv

import "code.hybscloud.com/atomix"

// Serial numbers sessions in creation order across all receivers of the
// process. A Receiver creates a session when it first sees its
// (session, channel) pair, so serials also order discovery, including for
// sessions the conductor has not accepted yet.
type Serial = uint32

var sessionSerials atomix.Uint32

func nextSerial() Serial {
	return sessionSerials.Add(1)
}
