// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rcv

import "encoding/binary"

// Frame layout, little-endian. Data frames are copied verbatim into the
// term buffer at their term offset, so the frame length word at offset 0
// doubles as the "received" marker that rebuilding and gap scanning read.
//
//	 0         4     5     6       8           12          16          20          24
//	 +---------+-----+-----+-------+-----------+-----------+-----------+-----------+
//	 | length  | ver |flags| type  | termOffset| sessionID | channelID |  termID   |
//	 +---------+-----+-----+-------+-----------+-----------+-----------+-----------+
const (
	frameLengthOffset = 0
	versionOffset     = 4
	flagsOffset       = 5
	typeOffset        = 6
	termOffsetOffset  = 8
	sessionIDOffset   = 12
	channelIDOffset   = 16
	termIDOffset      = 20

	// DataHeaderLength is the encoded size of a DataHeader.
	DataHeaderLength = 24

	// StatusMessageLength is the encoded size of a StatusMessage.
	StatusMessageLength = 32

	// NakLength is the encoded size of a Nak.
	NakLength = 32

	// CurrentVersion is the frame version written by Encode.
	CurrentVersion uint8 = 0
)

// FrameType identifies the frame carried by a datagram.
type FrameType = uint16

const (
	FrameTypePad  FrameType = 0
	FrameTypeData FrameType = 1
	FrameTypeNak  FrameType = 2
	FrameTypeSM   FrameType = 3
)

// Data frame flags.
const (
	BeginFlag uint8 = 0x80
	EndFlag   uint8 = 0x40

	UnfragmentedFlags = BeginFlag | EndFlag
)

// DataHeader is the parsed header of a data or padding frame.
type DataHeader struct {
	FrameLength int32
	Version     uint8
	Flags       uint8
	Type        FrameType
	TermOffset  int32
	SessionID   int32
	ChannelID   int32
	TermID      int64
}

// DecodeDataHeader parses the data header at the start of b.
// It fails if b is shorter than the header or than the frame length
// the header declares.
func DecodeDataHeader(b []byte) (DataHeader, error) {
	if len(b) < DataHeaderLength {
		return DataHeader{}, ErrShortFrame
	}
	h := DataHeader{
		FrameLength: int32(binary.LittleEndian.Uint32(b[frameLengthOffset:])),
		Version:     b[versionOffset],
		Flags:       b[flagsOffset],
		Type:        binary.LittleEndian.Uint16(b[typeOffset:]),
		TermOffset:  int32(binary.LittleEndian.Uint32(b[termOffsetOffset:])),
		SessionID:   int32(binary.LittleEndian.Uint32(b[sessionIDOffset:])),
		ChannelID:   int32(binary.LittleEndian.Uint32(b[channelIDOffset:])),
		TermID:      int64(int32(binary.LittleEndian.Uint32(b[termIDOffset:]))),
	}
	if h.Type != FrameTypeData && h.Type != FrameTypePad {
		return DataHeader{}, ErrFrameType
	}
	if h.FrameLength < DataHeaderLength || int(h.FrameLength) > len(b) {
		return DataHeader{}, ErrFrameLength
	}
	return h, nil
}

// Encode writes h into the first DataHeaderLength bytes of b.
// It panics if b is too short.
func (h *DataHeader) Encode(b []byte) {
	_ = b[DataHeaderLength-1]
	binary.LittleEndian.PutUint32(b[frameLengthOffset:], uint32(h.FrameLength))
	b[versionOffset] = h.Version
	b[flagsOffset] = h.Flags
	binary.LittleEndian.PutUint16(b[typeOffset:], h.Type)
	binary.LittleEndian.PutUint32(b[termOffsetOffset:], uint32(h.TermOffset))
	binary.LittleEndian.PutUint32(b[sessionIDOffset:], uint32(h.SessionID))
	binary.LittleEndian.PutUint32(b[channelIDOffset:], uint32(h.ChannelID))
	binary.LittleEndian.PutUint32(b[termIDOffset:], uint32(h.TermID))
}

// frameLengthAt reads the frame length word at offset in a term buffer.
func frameLengthAt(b []byte, offset int32) int32 {
	return int32(binary.LittleEndian.Uint32(b[offset:]))
}

// StatusMessage reports receive progress and window back to a sender.
type StatusMessage struct {
	SessionID  int32
	ChannelID  int32
	TermID     int64
	TermOffset int32
	Window     int32
}

// Encode writes m as a status message frame into b.
//
//	0 length | 4 ver | 5 flags | 6 type | 8 sessionID | 12 channelID |
//	16 termID (8) | 24 termOffset | 28 window
func (m *StatusMessage) Encode(b []byte) {
	_ = b[StatusMessageLength-1]
	binary.LittleEndian.PutUint32(b[0:], StatusMessageLength)
	b[4] = CurrentVersion
	b[5] = 0
	binary.LittleEndian.PutUint16(b[6:], FrameTypeSM)
	binary.LittleEndian.PutUint32(b[8:], uint32(m.SessionID))
	binary.LittleEndian.PutUint32(b[12:], uint32(m.ChannelID))
	binary.LittleEndian.PutUint64(b[16:], uint64(m.TermID))
	binary.LittleEndian.PutUint32(b[24:], uint32(m.TermOffset))
	binary.LittleEndian.PutUint32(b[28:], uint32(m.Window))
}

// DecodeStatusMessage parses a status message frame.
func DecodeStatusMessage(b []byte) (StatusMessage, error) {
	if len(b) < StatusMessageLength {
		return StatusMessage{}, ErrShortFrame
	}
	if binary.LittleEndian.Uint16(b[6:]) != FrameTypeSM {
		return StatusMessage{}, ErrFrameType
	}
	return StatusMessage{
		SessionID:  int32(binary.LittleEndian.Uint32(b[8:])),
		ChannelID:  int32(binary.LittleEndian.Uint32(b[12:])),
		TermID:     int64(binary.LittleEndian.Uint64(b[16:])),
		TermOffset: int32(binary.LittleEndian.Uint32(b[24:])),
		Window:     int32(binary.LittleEndian.Uint32(b[28:])),
	}, nil
}

// Nak asks a sender to retransmit [TermOffset, TermOffset+Length) of TermID.
type Nak struct {
	SessionID  int32
	ChannelID  int32
	TermID     int64
	TermOffset int32
	Length     int32
}

// Encode writes n as a NAK frame into b. The layout matches StatusMessage
// with Length in place of Window.
func (n *Nak) Encode(b []byte) {
	_ = b[NakLength-1]
	binary.LittleEndian.PutUint32(b[0:], NakLength)
	b[4] = CurrentVersion
	b[5] = 0
	binary.LittleEndian.PutUint16(b[6:], FrameTypeNak)
	binary.LittleEndian.PutUint32(b[8:], uint32(n.SessionID))
	binary.LittleEndian.PutUint32(b[12:], uint32(n.ChannelID))
	binary.LittleEndian.PutUint64(b[16:], uint64(n.TermID))
	binary.LittleEndian.PutUint32(b[24:], uint32(n.TermOffset))
	binary.LittleEndian.PutUint32(b[28:], uint32(n.Length))
}

// DecodeNak parses a NAK frame.
func DecodeNak(b []byte) (Nak, error) {
	if len(b) < NakLength {
		return Nak{}, ErrShortFrame
	}
	if binary.LittleEndian.Uint16(b[6:]) != FrameTypeNak {
		return Nak{}, ErrFrameType
	}
	return Nak{
		SessionID:  int32(binary.LittleEndian.Uint32(b[8:])),
		ChannelID:  int32(binary.LittleEndian.Uint32(b[12:])),
		TermID:     int64(binary.LittleEndian.Uint64(b[16:])),
		TermOffset: int32(binary.LittleEndian.Uint32(b[24:])),
		Length:     int32(binary.LittleEndian.Uint32(b[28:])),
	}, nil
}
