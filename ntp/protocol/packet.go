/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// PacketSizeBytes sets the size of NTP packet
const PacketSizeBytes = 48

// Port is the well-known NTP port
const Port = 123

var (
	// ErrMalformedPacket is returned when a datagram is not exactly PacketSizeBytes long
	ErrMalformedPacket = errors.New("malformed packet")
	// ErrInvalidTimestamp is returned when the transmit timestamp of a response is not set
	ErrInvalidTimestamp = errors.New("invalid transmit timestamp")
)

// Packet is an NTP packet, used both for client requests and server responses
/*
https://tools.ietf.org/html/rfc1305
   0                   1                   2                   3
   0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
0 +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
  |LI | VN  |Mode |    Stratum     |     Poll      |  Precision   |
4 +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
  |                         Root Delay                            |
8 +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
  |                         Root Dispersion                       |
12+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
  |                          Reference ID                         |
16+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
  |                     Reference Timestamp (64)                  |
24+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
  |                      Origin Timestamp (64)                    |
32+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
  |                      Receive Timestamp (64)                   |
40+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
  |                      Transmit Timestamp (64)                  |
48+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+

Client request for version 3:
00 011 011 (or 0x1B)
|  |   +-- client mode (3)
|  + ----- version (3)
+ -------- leap indicator, 0 no warning
*/
type Packet struct {
	Settings       uint8  // leap indicator, version number and mode
	Stratum        uint8  // stratum
	Poll           int8   // poll. Power of 2
	Precision      int8   // precision. Power of 2
	RootDelay      uint32 // total delay to the reference clock
	RootDispersion uint32 // total dispersion to the reference clock
	ReferenceID    uint32 // identifier of server or a reference clock
	RefTimeSec     uint32 // last time local clock was updated sec
	RefTimeFrac    uint32 // last time local clock was updated frac
	OrigTimeSec    uint32 // client time sec
	OrigTimeFrac   uint32 // client time frac
	RxTimeSec      uint32 // receive time sec
	RxTimeFrac     uint32 // receive time frac
	TxTimeSec      uint32 // transmit time sec
	TxTimeFrac     uint32 // transmit time frac
}

const (
	vnFirst    = 1
	vnLast     = 4
	modeClient = 3
)

// ValidVersion reports whether v is a protocol version we can put on the wire
func ValidVersion(v int) bool {
	return v >= vnFirst && v <= vnLast
}

// LeapIndicator returns two LI bits of the settings byte
func (p *Packet) LeapIndicator() uint8 {
	return p.Settings >> 6
}

// Version returns three VN bits of the settings byte
func (p *Packet) Version() uint8 {
	return (p.Settings >> 3) & 0x7
}

// Mode returns three Mode bits of the settings byte
func (p *Packet) Mode() uint8 {
	return p.Settings & 0x7
}

// EncodeRequest builds a minimal client query: only the settings byte is set.
func EncodeRequest(version int) ([]byte, error) {
	if !ValidVersion(version) {
		return nil, fmt.Errorf("unsupported protocol version %d", version)
	}
	b := make([]byte, PacketSizeBytes)
	b[0] = uint8(version)<<3 | modeClient
	return b, nil
}

// DecodeResponse parses a server response.
// Length is validated before any field is interpreted.
func DecodeResponse(b []byte) (*Packet, error) {
	if len(b) != PacketSizeBytes {
		return nil, fmt.Errorf("%w: got %d bytes, expected %d", ErrMalformedPacket, len(b), PacketSizeBytes)
	}
	p, err := BytesToPacket(b)
	if err != nil {
		return nil, err
	}
	if p.TxTimeSec == 0 {
		return p, ErrInvalidTimestamp
	}
	return p, nil
}

// Bytes converts Packet to []bytes
func (p *Packet) Bytes() ([]byte, error) {
	var bytes bytes.Buffer
	err := binary.Write(&bytes, binary.BigEndian, p)
	return bytes.Bytes(), err
}

// BytesToPacket converts []bytes to Packet
func BytesToPacket(ntpPacketBytes []byte) (*Packet, error) {
	packet := &Packet{}
	reader := bytes.NewReader(ntpPacketBytes)
	err := binary.Read(reader, binary.BigEndian, packet)
	return packet, err
}
