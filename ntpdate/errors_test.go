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
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zntpdate/zntpdate/clock"
	"github.com/zntpdate/zntpdate/ntp/adjust"
	"github.com/zntpdate/zntpdate/ntp/client"
	ntp "github.com/zntpdate/zntpdate/ntp/protocol"
)

func TestExitCode(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{nil, ExitOK},
		{fmt.Errorf("%w: bad flag", ErrInvalidArgument), ExitUsage},
		{&client.TransportError{Op: "send", Err: errors.New("network is unreachable")}, ExitTransport},
		{&client.TransportError{Op: "receive", Err: context.Canceled}, ExitTransport},
		{fmt.Errorf("%w: no response", client.ErrTimeoutExceeded), ExitTransport},
		// wrong-sized datagrams are dropped by the client and never end a run
		{fmt.Errorf("%w: 47 bytes", ntp.ErrMalformedPacket), ExitFailure},
		{ntp.ErrInvalidTimestamp, ExitProtocol},
		{fmt.Errorf("%w using settime: %w", clock.ErrCommitFailed, errors.New("operation not permitted")), ExitCommit},
		{adjust.ErrUnsupportedYear, ExitFailure},
		{errors.New("boom"), ExitFailure},
	}
	for _, c := range cases {
		t.Run(fmt.Sprintf("%v", c.err), func(t *testing.T) {
			require.Equal(t, c.code, ExitCode(c.err))
		})
	}
}
