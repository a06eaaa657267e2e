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
Package adjust turns server transmit time into the time we want the system clock to show.

Corrections are applied in a fixed order:
 - NTP to Unix epoch conversion
 - European summer time hour, evaluated on the received time
 - manual offset

Then the result is compared with the local wall clock to decide if the clock has to be set.
*/
package adjust

import (
	"math"
	"time"

	log "github.com/sirupsen/logrus"
	ntp "github.com/zntpdate/zntpdate/ntp/protocol"
)

// Options are user supplied corrections
type Options struct {
	Offset   time.Duration // manual offset, may be negative and carry sub-second part
	Daylight bool          // add an hour inside summer time window
	DryRun   bool          // never ask for commit
}

// Result is the outcome of all corrections
type Result struct {
	Converted   time.Time     // server transmit time
	Time        time.Time     // adjusted time, keeps sub-second part of the offset
	Seconds     int64         // adjusted Unix time in whole seconds, this is what gets set
	Delta       time.Duration // local wall clock minus adjusted time, whole seconds
	Daylight    bool          // summer time hour was added
	NeedsCommit bool
}

// OffsetFromSeconds converts offset given in (fractional) seconds
func OffsetFromSeconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}

// Adjust applies corrections to transmitSeconds (seconds since 1900).
// ErrUnsupportedYear is not fatal: it's returned together with a valid Result
// which simply lacks the summer time hour.
func Adjust(transmitSeconds int64, opts Options, now time.Time) (*Result, error) {
	seconds := ntp.UnixSeconds(transmitSeconds)
	r := &Result{Converted: time.Unix(seconds, 0).UTC()}
	log.Debugf("UNIX time: %d", seconds)

	var warning error
	if opts.Daylight {
		start, end, err := DaylightWindow(r.Converted.Year())
		if err != nil {
			log.Warningf("Summer time adjustment skipped: %v", err)
			warning = err
		} else {
			log.Debugf("European summer time starts at: %s", start)
			log.Debugf("European summer time ends at: %s", end)
			if !r.Converted.Before(start) && r.Converted.Before(end) {
				log.Info("Summer time is active")
				seconds += int64(DaylightShift / time.Second)
				r.Daylight = true
			}
		}
	}

	log.Debugf("Offset: %v", opts.Offset)
	r.Time = time.Unix(seconds, 0).Add(opts.Offset).UTC()
	// the clock is set with whole seconds, fraction of the offset is dropped
	r.Seconds = seconds + int64(opts.Offset/time.Second)
	r.Delta = time.Duration(now.Unix()-r.Seconds) * time.Second
	r.NeedsCommit = r.Delta != 0 && !opts.DryRun
	return r, warning
}
