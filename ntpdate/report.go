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
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/zntpdate/zntpdate/ntp/adjust"
	"github.com/zntpdate/zntpdate/ntp/client"
	ntp "github.com/zntpdate/zntpdate/ntp/protocol"
)

var okString = color.GreenString("[ OK ]")
var dryString = color.YellowString("[DRY ]")
var failString = color.RedString("[FAIL]")

func fmtTimestamp(sec, frac uint32) string {
	if sec == 0 && frac == 0 {
		return "-"
	}
	return fmt.Sprintf("%d.%010d (%s)", sec, frac, ntp.Unix(sec, frac).UTC().Format(time.RFC3339Nano))
}

// PrintPacket renders every field of the server response as a table
func PrintPacket(w io.Writer, resp *client.Response) error {
	p := resp.Packet
	table := tablewriter.NewWriter(w)
	table.Header("Field", "Value")
	rows := [][]string{
		{"Server", resp.Peer.String()},
		{"Leap indicator", fmt.Sprintf("%d", p.LeapIndicator())},
		{"Version", fmt.Sprintf("%d", p.Version())},
		{"Mode", fmt.Sprintf("%d", p.Mode())},
		{"Stratum", fmt.Sprintf("%d", p.Stratum)},
		{"Poll", fmt.Sprintf("%d", p.Poll)},
		{"Precision", fmt.Sprintf("%d", p.Precision)},
		{"Root delay", ntp.ShortToDuration(p.RootDelay).String()},
		{"Root dispersion", ntp.ShortToDuration(p.RootDispersion).String()},
		{"Reference ID", ntp.RefIDString(p.Stratum, p.ReferenceID)},
		{"Reference time", fmtTimestamp(p.RefTimeSec, p.RefTimeFrac)},
		{"Originate time", fmtTimestamp(p.OrigTimeSec, p.OrigTimeFrac)},
		{"Receive time", fmtTimestamp(p.RxTimeSec, p.RxTimeFrac)},
		{"Transmit time", fmtTimestamp(p.TxTimeSec, p.TxTimeFrac)},
		{"Round trip", resp.Received.Sub(resp.Sent).String()},
		{"Attempts", fmt.Sprintf("%d", resp.Attempts)},
	}
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

// PrintResult prints one line summary of the run
func PrintResult(w io.Writer, host string, r *adjust.Result, dryRun bool, err error) {
	switch {
	case err != nil:
		fmt.Fprintf(w, "%s %s: %v\n", failString, host, err)
	case dryRun:
		fmt.Fprintf(w, "%s %s: would set time to %s, offset %+d s\n", dryString, host, r.Time.Format(time.RFC3339Nano), int64(r.Delta/time.Second))
	default:
		fmt.Fprintf(w, "%s %s: time %s, offset %+d s\n", okString, host, r.Time.Format(time.RFC3339Nano), int64(r.Delta/time.Second))
	}
}

// LogResult reports the summary through the logger when there is no console to print to.
// Errors are left to the caller.
func LogResult(host string, r *adjust.Result, dryRun bool) {
	if r == nil {
		return
	}
	if dryRun {
		log.Infof("%s: would set time to %s, offset %+d s", host, r.Time.Format(time.RFC3339Nano), int64(r.Delta/time.Second))
		return
	}
	log.Infof("%s: time %s, offset %+d s", host, r.Time.Format(time.RFC3339Nano), int64(r.Delta/time.Second))
}
