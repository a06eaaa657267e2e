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
	"encoding/binary"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var (
	// Unix
	usec  = int64(1585147599)
	unsec = int64(631495778)
	// NTP
	nsec  = uint32(3794136399)
	nfrac = uint32(2712253714)

	// Packet response
	ntpResponse = &Packet{
		Settings:       36,
		Stratum:        1,
		Poll:           3,
		Precision:      -32,
		RootDelay:      0,
		RootDispersion: 10,
		ReferenceID:    1178738720,
		RefTimeSec:     3794209800,
		RefTimeFrac:    0,
		OrigTimeSec:    3794210679,
		OrigTimeFrac:   2718216404,
		RxTimeSec:      3794210679,
		RxTimeFrac:     2718375472,
		TxTimeSec:      3794210679,
		TxTimeFrac:     2719753478,
	}
	// Same response as above in bytes
	ntpResponseBytes = []byte{36, 1, 3, 224, 0, 0, 0, 0, 0, 0, 0, 10, 70, 66, 32, 32, 226, 39, 12, 8, 0, 0, 0, 0, 226, 39, 15, 119, 162, 4, 176, 212, 226, 39, 15, 119, 162, 7, 30, 48, 226, 39, 15, 119, 162, 28, 37, 6}
)

func TestEncodeRequest(t *testing.T) {
	for _, version := range []int{1, 2, 3} {
		t.Run(fmt.Sprintf("v%d", version), func(t *testing.T) {
			b, err := EncodeRequest(version)
			require.NoError(t, err)
			require.Len(t, b, PacketSizeBytes)
			require.Equal(t, uint8(version<<3|3), b[0])
			require.Equal(t, make([]byte, PacketSizeBytes-1), b[1:])
		})
	}
}

func TestEncodeRequestV3(t *testing.T) {
	b, err := EncodeRequest(3)
	require.NoError(t, err)
	require.Equal(t, uint8(0x1B), b[0])

	p, err := BytesToPacket(b)
	require.NoError(t, err)
	require.Equal(t, uint8(0), p.LeapIndicator())
	require.Equal(t, uint8(3), p.Version())
	require.Equal(t, uint8(3), p.Mode())
}

func TestEncodeRequestUnsupportedVersion(t *testing.T) {
	for _, version := range []int{-1, 0, 5, 8} {
		_, err := EncodeRequest(version)
		require.Error(t, err)
	}
}

func TestDecodeResponse(t *testing.T) {
	packet, err := DecodeResponse(ntpResponseBytes)
	require.NoError(t, err)
	require.Equal(t, ntpResponse, packet)
}

func TestDecodeResponseMalformed(t *testing.T) {
	for _, size := range []int{0, 1, 47, 49, 96, 1024} {
		t.Run(fmt.Sprintf("%d bytes", size), func(t *testing.T) {
			_, err := DecodeResponse(make([]byte, size))
			require.ErrorIs(t, err, ErrMalformedPacket)
		})
	}
}

func TestDecodeResponseInvalidTimestamp(t *testing.T) {
	b := make([]byte, PacketSizeBytes)
	copy(b, ntpResponseBytes[:40])
	packet, err := DecodeResponse(b)
	require.ErrorIs(t, err, ErrInvalidTimestamp)
	// diagnostics are still available
	require.Equal(t, uint8(1), packet.Stratum)
}

func TestRequestLoopback(t *testing.T) {
	b, err := EncodeRequest(2)
	require.NoError(t, err)
	binary.BigEndian.PutUint32(b[40:], 3913056000)
	binary.BigEndian.PutUint32(b[44:], 42)

	packet, err := DecodeResponse(b)
	require.NoError(t, err)
	require.Equal(t, uint32(3913056000), packet.TxTimeSec)
	require.Equal(t, uint32(42), packet.TxTimeFrac)
	require.Equal(t, uint8(2), packet.Version())
}

// Testing conversion so if Packet structure changes we notice
func TestResponseConversion(t *testing.T) {
	bytes, err := ntpResponse.Bytes()
	require.NoError(t, err)
	require.Equal(t, ntpResponseBytes, bytes)
}

func TestBytesToPacket(t *testing.T) {
	packet, err := BytesToPacket(ntpResponseBytes)
	require.NoError(t, err)
	require.Equal(t, ntpResponse, packet)
}

func TestBytesToPacketError(t *testing.T) {
	bytes := []byte{}
	packet, err := BytesToPacket(bytes)
	require.NotNil(t, err)
	require.Equal(t, &Packet{}, packet)
}

func TestSettingsAccessors(t *testing.T) {
	p := &Packet{Settings: 227}
	require.Equal(t, uint8(3), p.LeapIndicator())
	require.Equal(t, uint8(4), p.Version())
	require.Equal(t, uint8(3), p.Mode())

	require.Equal(t, uint8(0), ntpResponse.LeapIndicator())
	require.Equal(t, uint8(4), ntpResponse.Version())
	require.Equal(t, uint8(4), ntpResponse.Mode())
}

func TestValidVersion(t *testing.T) {
	require.False(t, ValidVersion(0))
	require.True(t, ValidVersion(1))
	require.True(t, ValidVersion(4))
	require.False(t, ValidVersion(5))
}

func TestTime(t *testing.T) {
	testtime := time.Unix(usec, unsec)
	sec, frac := Time(testtime)

	require.Equal(t, nsec, sec)
	require.Equal(t, nfrac, frac)
}

func TestUnix(t *testing.T) {
	testtime := Unix(nsec, nfrac)

	require.Equal(t, usec, testtime.Unix())
	// +1ns is a rounding issue
	require.Equal(t, unsec, int64(testtime.Nanosecond())+1)
}

func TestUnixSeconds(t *testing.T) {
	require.Equal(t, int64(0), UnixSeconds(EpochDelta))
	require.Equal(t, usec, UnixSeconds(int64(nsec)))
}

func TestShortToDuration(t *testing.T) {
	require.Equal(t, time.Second, ShortToDuration(65536))
	require.Equal(t, 500*time.Millisecond, ShortToDuration(32768))
	require.Equal(t, time.Duration(152587), ShortToDuration(10))
}

func TestRefIDString(t *testing.T) {
	require.Equal(t, "FB  ", RefIDString(1, ntpResponse.ReferenceID))
	require.Equal(t, "GPS", RefIDString(1, 0x47505300))
	require.Equal(t, "192.168.0.1", RefIDString(2, 0xC0A80001))
	require.Equal(t, "0x01020304", RefIDString(0, 0x01020304))
}

func Benchmark_DecodeResponse(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = DecodeResponse(ntpResponseBytes)
	}
}
