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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, data string) string {
	path := filepath.Join(t.TempDir(), "zntpdate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	require.Equal(t, 3, c.Client.Version)
	require.Equal(t, 10*time.Second, c.Client.Timeout)
	require.Equal(t, 3, c.Client.Retries)
	require.Equal(t, "settime", c.Method)
	require.False(t, c.DryRun)
	require.False(t, c.SummerTime)
	require.Zero(t, c.Offset)
}

func TestConfigValidate(t *testing.T) {
	c := DefaultConfig()
	require.EqualError(t, c.Validate(), "host must be specified")

	c.Host = "pool.ntp.org"
	require.NoError(t, c.Validate())

	c.Client.Version = 4
	require.EqualError(t, c.Validate(), "version must be 1, 2 or 3")

	c.Client.Version = 2
	c.Method = "adjtime"
	require.EqualError(t, c.Validate(), "unsupported clock method \"adjtime\"")

	c.Method = "step"
	require.NoError(t, c.Validate())
}

func TestReadConfig(t *testing.T) {
	path := writeConfig(t, `
host: ntp.example.com
offset: -1.5
summer_time: true
method: step
metrics_file: /var/lib/node_exporter/zntpdate.prom
client:
  version: 2
  timeout: 2s
  dscp: 46
`)
	c, err := ReadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "ntp.example.com", c.Host)
	require.Equal(t, -1.5, c.Offset)
	require.True(t, c.SummerTime)
	require.False(t, c.DryRun)
	require.Equal(t, "step", c.Method)
	require.Equal(t, "/var/lib/node_exporter/zntpdate.prom", c.MetricsFile)
	require.Equal(t, 2, c.Client.Version)
	require.Equal(t, 2*time.Second, c.Client.Timeout)
	require.Equal(t, 46, c.Client.DSCP)
	// defaults are kept for what's not in the file
	require.Equal(t, 3, c.Client.Retries)
	require.Equal(t, 123, c.Client.Port)
}

func TestReadConfigErrors(t *testing.T) {
	_, err := ReadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = ReadConfig(writeConfig(t, "host: [a"))
	require.Error(t, err)
}

func TestPrepareConfigFlagsOnly(t *testing.T) {
	flags := DefaultConfig()
	flags.Offset = 3600
	flags.DryRun = true
	flags.Client.Retries = 7

	c, err := PrepareConfig("", "pool.ntp.org", flags, map[string]bool{"offset": true, "dry-run": true})
	require.NoError(t, err)
	require.Equal(t, "pool.ntp.org", c.Host)
	require.Equal(t, float64(3600), c.Offset)
	require.True(t, c.DryRun)
	// not set explicitly
	require.Equal(t, 3, c.Client.Retries)
}

func TestPrepareConfigOverridesFile(t *testing.T) {
	path := writeConfig(t, `
host: ntp.example.com
dry_run: true
client:
  timeout: 2s
  retries: 1
`)
	flags := DefaultConfig()
	flags.DryRun = false
	flags.Client.Timeout = 5 * time.Second
	flags.Client.Retries = 0

	c, err := PrepareConfig(path, "", flags, map[string]bool{"timeout": true})
	require.NoError(t, err)
	require.Equal(t, "ntp.example.com", c.Host)
	require.True(t, c.DryRun)
	require.Equal(t, 5*time.Second, c.Client.Timeout)
	require.Equal(t, 1, c.Client.Retries)

	c, err = PrepareConfig(path, "other.example.com", flags, map[string]bool{"dry-run": true, "retries": true})
	require.NoError(t, err)
	require.Equal(t, "other.example.com", c.Host)
	require.False(t, c.DryRun)
	require.Equal(t, 0, c.Client.Retries)
	require.Equal(t, 2*time.Second, c.Client.Timeout)
}

func TestPrepareConfigErrors(t *testing.T) {
	_, err := PrepareConfig("", "", DefaultConfig(), nil)
	require.ErrorIs(t, err, ErrInvalidArgument)

	flags := DefaultConfig()
	flags.Client.Version = 5
	_, err = PrepareConfig("", "pool.ntp.org", flags, map[string]bool{"ntp-version": true})
	require.ErrorIs(t, err, ErrInvalidArgument)
	require.Equal(t, ExitUsage, ExitCode(err))

	_, err = PrepareConfig(filepath.Join(t.TempDir(), "missing.yaml"), "pool.ntp.org", DefaultConfig(), nil)
	require.ErrorIs(t, err, ErrInvalidArgument)
	require.ErrorIs(t, err, os.ErrNotExist)
}
