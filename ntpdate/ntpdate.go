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
Package ntpdate glues a single query, adjustment and clock update together.

	Run:
	 1. query the server (client.Exchange)
	 2. apply summer time and manual offset (adjust.Adjust)
	 3. set the clock if it is off and this is not a dry run
*/
package ntpdate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/zntpdate/zntpdate/clock"
	"github.com/zntpdate/zntpdate/ntp/adjust"
	"github.com/zntpdate/zntpdate/ntp/client"
)

// Exchanger queries the server
type Exchanger interface {
	Exchange(ctx context.Context, host string) (*client.Response, error)
}

// Runner performs one query/adjust/set cycle
type Runner struct {
	Config    *Config
	Client    Exchanger
	Committer Committer
	Stats     *Stats
	Verbose   bool
	Out       io.Writer // console, nil sends the summary to the logger

	now func() time.Time
}

// NewRunner builds Runner talking to the network and the real system clock
func NewRunner(cfg *Config) (*Runner, error) {
	method, err := clock.ParseMethod(cfg.Method)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	committer, err := clock.NewSystem(method)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	stats := NewStats()
	c := client.New(&cfg.Client)
	c.Stats = stats
	return &Runner{
		Config:    cfg,
		Client:    c,
		Committer: committer,
		Stats:     stats,
		Out:       os.Stdout,
		now:       time.Now,
	}, nil
}

// Run queries the server once and sets the clock if needed.
// Metrics file is written regardless of the outcome.
func (r *Runner) Run(ctx context.Context) (*adjust.Result, error) {
	if r.now == nil {
		r.now = time.Now
	}
	res, err := r.run(ctx)
	if r.Stats != nil {
		r.Stats.Finish(err)
		if r.Config.MetricsFile != "" {
			if werr := r.Stats.WriteFile(r.Config.MetricsFile); werr != nil {
				log.Errorf("Failed to write metrics to %s: %v", r.Config.MetricsFile, werr)
			}
		}
	}
	if r.Out != nil {
		PrintResult(r.Out, r.Config.Host, res, r.Config.DryRun, err)
	} else if err == nil {
		LogResult(r.Config.Host, res, r.Config.DryRun)
	}
	return res, err
}

func (r *Runner) run(ctx context.Context) (*adjust.Result, error) {
	cfg := r.Config
	resp, err := r.Client.Exchange(ctx, cfg.Host)
	if resp != nil && r.Verbose && r.Out != nil {
		if perr := PrintPacket(r.Out, resp); perr != nil {
			log.Errorf("Failed to print response: %v", perr)
		}
	}
	if err != nil {
		return nil, err
	}
	if r.Stats != nil {
		r.Stats.SetStratum(resp.Packet.Stratum)
	}
	log.Debugf("Transmit timestamp: %d", resp.Packet.TxTimeSec)

	opts := adjust.Options{
		Offset:   adjust.OffsetFromSeconds(cfg.Offset),
		Daylight: cfg.SummerTime,
		DryRun:   cfg.DryRun,
	}
	res, err := adjust.Adjust(int64(resp.Packet.TxTimeSec), opts, r.now())
	// unsupported year only costs us the summer time hour, it's already logged
	if err != nil && !errors.Is(err, adjust.ErrUnsupportedYear) {
		return nil, err
	}
	if r.Stats != nil {
		r.Stats.SetResult(res)
	}

	secs := int64(res.Delta / time.Second)
	switch {
	case res.Delta == 0:
		log.Info("Set time of day is not necessary")
		return res, nil
	case cfg.DryRun:
		log.Infof("System time is %d seconds off", secs)
		log.Infof("Dry run: no set time of day, would set %s", res.Time.Format(time.RFC3339Nano))
		return res, nil
	}

	log.Infof("System time is %d seconds off", secs)
	if !res.NeedsCommit {
		return res, nil
	}
	if err := r.Committer.Commit(time.Unix(res.Seconds, 0)); err != nil {
		return res, err
	}
	log.Infof("System time set to %s", time.Unix(res.Seconds, 0).UTC().Format(time.RFC3339))
	if r.Stats != nil {
		r.Stats.SetCommitted(true)
	}
	return res, nil
}
