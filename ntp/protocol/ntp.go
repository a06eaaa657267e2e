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

/*
Package protocol implements ntp packet and basic functions to work with.
It provides explicit translation between 48 bytes on the wire and
simply accessible struct, validating the length before any field is read.
*/
package protocol

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// EpochDelta is the number of seconds between NTP epoch (1900) and Unix epoch (1970)
const EpochDelta = int64(2208988800)

// NanosecondsToUnix is the difference between NTP and Unix epoch in NS
const NanosecondsToUnix = EpochDelta * int64(time.Second)

// Time is converting Unix time to sec and frac NTP format
func Time(t time.Time) (seconds uint32, fracions uint32) {
	nsec := t.UnixNano() + NanosecondsToUnix
	sec := nsec / time.Second.Nanoseconds()
	return uint32(sec), uint32((nsec - sec*time.Second.Nanoseconds()) << 32 / time.Second.Nanoseconds())
}

// Unix is converting NTP seconds and fractions into Unix time
func Unix(seconds, fractions uint32) time.Time {
	secs := int64(seconds) - EpochDelta
	nanos := (int64(fractions) * time.Second.Nanoseconds()) >> 32 // convert fractional to nanos
	return time.Unix(secs, nanos)
}

// UnixSeconds converts seconds since 1900 into seconds since 1970
func UnixSeconds(ntpSeconds int64) int64 {
	return ntpSeconds - EpochDelta
}

// ShortToDuration converts NTP short format (16.16 fixed point seconds) used by root delay and dispersion
func ShortToDuration(v uint32) time.Duration {
	return time.Duration((int64(v) * time.Second.Nanoseconds()) >> 16)
}

// RefIDString renders reference identifier.
// Stratum 0 and 1 servers use four ASCII characters (kiss code or clock source),
// everybody else puts an IPv4 address of their upstream there.
func RefIDString(stratum uint8, refID uint32) string {
	if stratum > 1 {
		return net.IPv4(byte(refID>>24), byte(refID>>16), byte(refID>>8), byte(refID)).String()
	}
	result := []rune{}
	for i := 0; i < 4; i++ {
		c := rune((refID >> (24 - uint(i)*8)) & 0xff)
		if c == 0 {
			continue
		}
		if !strconv.IsPrint(c) {
			return fmt.Sprintf("0x%08x", refID)
		}
		result = append(result, c)
	}
	return string(result)
}
