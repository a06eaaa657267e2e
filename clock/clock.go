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

package clock

import (
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// ErrCommitFailed is returned when the system clock can't be set
var ErrCommitFailed = errors.New("failed to set system clock")

// Method is how the system clock is set
type Method string

// Supported methods
const (
	MethodSetTime Method = "settime"
	MethodStep    Method = "step"
)

// ParseMethod validates method name
func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case MethodSetTime, MethodStep:
		return m, nil
	}
	return "", fmt.Errorf("unsupported clock method %q", s)
}

// System sets the system realtime clock
type System struct {
	Method Method

	// overridable in tests
	now     func() time.Time
	setTime func(time.Time) error
	step    func(time.Duration) error
}

// NewSystem returns System which uses given method
func NewSystem(m Method) (*System, error) {
	if _, err := ParseMethod(string(m)); err != nil {
		return nil, err
	}
	return &System{
		Method:  m,
		now:     time.Now,
		setTime: SetTime,
		step:    stepRealtime,
	}, nil
}

// Commit sets the system clock to t
func (s *System) Commit(t time.Time) error {
	var err error
	switch s.Method {
	case MethodStep:
		offset := t.Sub(s.now())
		log.Debugf("Stepping system clock by %v", offset)
		err = s.step(offset)
	default:
		log.Debugf("Setting system clock to %v", t)
		err = s.setTime(t)
	}
	if err != nil {
		return fmt.Errorf("%w using %s: %w", ErrCommitFailed, s.Method, err)
	}
	return nil
}
