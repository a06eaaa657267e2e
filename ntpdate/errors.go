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

package ntpdate

import (
	"errors"

	"github.com/zntpdate/zntpdate/clock"
	"github.com/zntpdate/zntpdate/ntp/client"
	ntp "github.com/zntpdate/zntpdate/ntp/protocol"
)

// ErrInvalidArgument is returned for bad command line or config
var ErrInvalidArgument = errors.New("invalid argument")

// Exit codes
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitUsage     = 2
	ExitTransport = 3
	ExitProtocol  = 4
	ExitCommit    = 5
)

// ExitCode maps run error to process exit status
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrInvalidArgument):
		return ExitUsage
	case errors.Is(err, client.ErrTransport), errors.Is(err, client.ErrTimeoutExceeded):
		return ExitTransport
	case errors.Is(err, ntp.ErrInvalidTimestamp):
		return ExitProtocol
	case errors.Is(err, clock.ErrCommitFailed):
		return ExitCommit
	}
	return ExitFailure
}
