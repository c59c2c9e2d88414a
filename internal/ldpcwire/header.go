// Package ldpcwire defines the framing the encode daemon speaks: a fixed
// job header followed by the message bits, answered by a fixed response
// header followed by the codeword bits. Bits travel one per byte, exactly
// as the encoder consumes and produces them.
package ldpcwire

import (
	"encoding/binary"
)

// Protocol version.
const Version1 uint8 = 1

// Encoder tier identifiers used on the wire.
const (
	TypeAuto    uint8 = 0
	TypeGeneric uint8 = 1
	TypePacked  uint8 = 2
)

// Response status codes.
const (
	StatusOK         uint8 = 0
	StatusBadRequest uint8 = 1
	StatusEncodeErr  uint8 = 2
)

// JobHeader prefixes one encode request. InputLen message bits follow.
type JobHeader struct {
	Version     uint8
	BaseGraph   uint8 // 1 or 2
	Type        uint8 // TypeAuto, TypeGeneric, TypePacked
	Flags       uint8 // reserved
	LiftingSize uint16
	JobID       uint32
	InputLen    uint32
	RMLength    uint32 // 0 requests the full-rate codeword
}

const JobHeaderLen = 1 + 1 + 1 + 1 + 2 + 4 + 4 + 4

func (h *JobHeader) MarshalBinary(b []byte) []byte {
	if len(b) < JobHeaderLen {
		b = make([]byte, JobHeaderLen)
	}
	b[0] = h.Version
	b[1] = h.BaseGraph
	b[2] = h.Type
	b[3] = h.Flags
	binary.LittleEndian.PutUint16(b[4:6], h.LiftingSize)
	binary.LittleEndian.PutUint32(b[6:10], h.JobID)
	binary.LittleEndian.PutUint32(b[10:14], h.InputLen)
	binary.LittleEndian.PutUint32(b[14:18], h.RMLength)
	return b[:JobHeaderLen]
}

func (h *JobHeader) UnmarshalBinary(b []byte) bool {
	if len(b) < JobHeaderLen {
		return false
	}
	h.Version = b[0]
	h.BaseGraph = b[1]
	h.Type = b[2]
	h.Flags = b[3]
	h.LiftingSize = binary.LittleEndian.Uint16(b[4:6])
	h.JobID = binary.LittleEndian.Uint32(b[6:10])
	h.InputLen = binary.LittleEndian.Uint32(b[10:14])
	h.RMLength = binary.LittleEndian.Uint32(b[14:18])
	return true
}

// ResponseHeader prefixes one reply. CodewordLen codeword bits follow on
// success; nothing follows otherwise.
type ResponseHeader struct {
	Version     uint8
	Status      uint8
	JobID       uint32
	CodewordLen uint32
}

const ResponseHeaderLen = 1 + 1 + 4 + 4

func (h *ResponseHeader) MarshalBinary(b []byte) []byte {
	if len(b) < ResponseHeaderLen {
		b = make([]byte, ResponseHeaderLen)
	}
	b[0] = h.Version
	b[1] = h.Status
	binary.LittleEndian.PutUint32(b[2:6], h.JobID)
	binary.LittleEndian.PutUint32(b[6:10], h.CodewordLen)
	return b[:ResponseHeaderLen]
}

func (h *ResponseHeader) UnmarshalBinary(b []byte) bool {
	if len(b) < ResponseHeaderLen {
		return false
	}
	h.Version = b[0]
	h.Status = b[1]
	h.JobID = binary.LittleEndian.Uint32(b[2:6])
	h.CodewordLen = binary.LittleEndian.Uint32(b[6:10])
	return true
}
