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

package adjust

import (
	"errors"
	"fmt"
	"time"
)

// MaxDaylightYear is the last year the summer time formula is valid for
const MaxDaylightYear = 2099

// DaylightShift is added to the time inside summer time window
const DaylightShift = time.Hour

// ErrUnsupportedYear is returned for years the summer time formula can't handle
var ErrUnsupportedYear = errors.New("unsupported year")

// DaylightWindow returns [start, end) of European summer time for the year.
// Summer time starts on the last Sunday of March and ends on the last Sunday of October, both at 01:00 UTC.
func DaylightWindow(year int) (start, end time.Time, err error) {
	if year > MaxDaylightYear {
		return start, end, fmt.Errorf("%w: summer time of %d is beyond %d", ErrUnsupportedYear, year, MaxDaylightYear)
	}
	start = time.Date(year, time.March, 31-(5*year/4+4)%7, 1, 0, 0, 0, time.UTC)
	end = time.Date(year, time.October, 31-(5*year/4+1)%7, 1, 0, 0, 0, time.UTC)
	return start, end, nil
}
