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

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/zntpdate/zntpdate/ntpdate"
	"golang.org/x/term"
)

// Version is overridden at build time with -ldflags "-X ..."
var Version = "dev"

// RootCmd is a main entry point. It's exported so zntpdate could be easily extended without touching core functionality.
var RootCmd = &cobra.Command{
	Use:   "zntpdate [flags] host",
	Short: "Set the system clock from an NTP server",
	Long: "zntpdate queries an NTP server once, applies optional summer time and manual offset " +
		"and sets the system clock if it is off.",
	Args:          checkArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

var (
	verbose     bool
	useSyslog   bool
	showVersion bool
	configFlag  string
	flags       = ntpdate.DefaultConfig()
)

func init() {
	f := RootCmd.Flags()
	f.BoolVarP(&verbose, "verbose", "v", false, "verbose output, dumps the server response")
	f.BoolVarP(&useSyslog, "syslog", "s", false, "log to syslog instead of the console")
	f.BoolVarP(&showVersion, "version", "V", false, "print version and exit")
	f.StringVarP(&configFlag, "config", "c", "", "path to the config")
	f.IntVarP(&flags.Client.Version, "ntp-version", "o", flags.Client.Version, "NTP version to put into the request, 1, 2 or 3")
	f.Float64VarP(&flags.Offset, "offset", "O", flags.Offset, "manual offset in seconds, e.g. -O+3600 or -O-1.5")
	f.BoolVarP(&flags.SummerTime, "summer-time", "E", flags.SummerTime, "add an hour during European summer time")
	f.BoolVarP(&flags.DryRun, "dry-run", "d", flags.DryRun, "only print the time, don't set the clock")
	f.DurationVar(&flags.Client.Timeout, "timeout", flags.Client.Timeout, "how long to wait for a response to one request")
	f.IntVar(&flags.Client.Retries, "retries", flags.Client.Retries, "how many times to re-send the request after a timeout")
	f.IntVar(&flags.Client.Port, "port", flags.Client.Port, "server port")
	f.IntVar(&flags.Client.DSCP, "dscp", flags.Client.DSCP, "DSCP for the request, valid values are between 0-63")
	f.StringVar(&flags.Method, "method", flags.Method, "how to set the clock: settime or step")
	f.StringVar(&flags.MetricsFile, "metrics-file", flags.MetricsFile, "write prometheus metrics of the run to this file")

	RootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", ntpdate.ErrInvalidArgument, err)
	})
}

func checkArgs(_ *cobra.Command, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("%w: expected a single host, got %d arguments", ntpdate.ErrInvalidArgument, len(args))
	}
	return nil
}

// ConfigureVerbosity configures log verbosity based on parsed flags. Needs to be called by any subcommand.
func ConfigureVerbosity() {
	log.SetLevel(log.InfoLevel)
	if verbose {
		log.SetLevel(log.DebugLevel)
	}
	// timestamps matter when output ends up in a file
	log.SetFormatter(&log.TextFormatter{FullTimestamp: !term.IsTerminal(int(os.Stderr.Fd()))})
}

func run(c *cobra.Command, args []string) error {
	if showVersion {
		fmt.Fprintf(c.OutOrStdout(), "zntpdate %s\n", Version)
		return nil
	}
	ConfigureVerbosity()
	if useSyslog {
		if err := configureSyslog(); err != nil {
			return fmt.Errorf("setting up syslog: %w", err)
		}
	}

	setFlags := make(map[string]bool)
	c.Flags().Visit(func(f *pflag.Flag) {
		setFlags[f.Name] = true
	})
	host := ""
	if len(args) > 0 {
		host = args[0]
	}
	cfg, err := ntpdate.PrepareConfig(configFlag, host, flags, setFlags)
	if err != nil {
		return err
	}
	runner, err := ntpdate.NewRunner(cfg)
	if err != nil {
		return err
	}
	runner.Verbose = verbose
	runner.Out = consoleOut(c)

	ctx := c.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	_, err = runner.Run(ctx)
	return err
}

// consoleOut is where the report goes, nothing is printed when logging to syslog
func consoleOut(c *cobra.Command) io.Writer {
	if useSyslog {
		return nil
	}
	return c.OutOrStdout()
}

// Execute is the main entry point for CLI interface
func Execute() {
	err := RootCmd.Execute()
	if err != nil {
		log.Error(err)
	}
	os.Exit(ntpdate.ExitCode(err))
}
