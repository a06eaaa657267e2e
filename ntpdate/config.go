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
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/zntpdate/zntpdate/clock"
	"github.com/zntpdate/zntpdate/ntp/client"
	yaml "gopkg.in/yaml.v2"
)

// Config is everything a single run needs
type Config struct {
	Host        string        `yaml:"host"`         // server to query
	Client      client.Config `yaml:"client"`       // how we talk to the server
	Offset      float64       `yaml:"offset"`       // manual offset in seconds, may be negative or fractional
	SummerTime  bool          `yaml:"summer_time"`  // add an hour inside European summer time window
	DryRun      bool          `yaml:"dry_run"`      // don't set the clock
	Method      string        `yaml:"method"`       // how the clock is set, see clock.Method
	MetricsFile string        `yaml:"metrics_file"` // write prometheus metrics of the run into this file
}

// DefaultConfig returns Config initialized with default values
func DefaultConfig() *Config {
	return &Config{
		Client: *client.DefaultConfig(),
		Method: string(clock.MethodSetTime),
	}
}

// Validate config is sane
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host must be specified")
	}
	if err := c.Client.Validate(); err != nil {
		return err
	}
	if _, err := clock.ParseMethod(c.Method); err != nil {
		return err
	}
	return nil
}

// ReadConfig reads config from the file
func ReadConfig(path string) (*Config, error) {
	c := DefaultConfig()
	cData, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	err = yaml.Unmarshal(cData, &c)
	if err != nil {
		return nil, err
	}

	return c, nil
}

// PrepareConfig prepares final version of config based on defaults, CLI flags and on-disk config, and validates resulting config.
// Only flags present in setFlags override values from the file.
func PrepareConfig(cfgPath string, host string, flags *Config, setFlags map[string]bool) (*Config, error) {
	cfg := DefaultConfig()
	var err error
	warn := func(name string) {
		log.Warningf("overriding %s from CLI flag", name)
	}
	if cfgPath != "" {
		cfg, err = ReadConfig(cfgPath)
		if err != nil {
			return nil, fmt.Errorf("%w: reading config from %q: %w", ErrInvalidArgument, cfgPath, err)
		}
	}
	if host != "" {
		if cfg.Host != "" && cfg.Host != host {
			warn("host")
		}
		cfg.Host = host
	}
	if setFlags["ntp-version"] {
		warn("version")
		cfg.Client.Version = flags.Client.Version
	}
	if setFlags["port"] {
		warn("port")
		cfg.Client.Port = flags.Client.Port
	}
	if setFlags["timeout"] {
		warn("timeout")
		cfg.Client.Timeout = flags.Client.Timeout
	}
	if setFlags["retries"] {
		warn("retries")
		cfg.Client.Retries = flags.Client.Retries
	}
	if setFlags["dscp"] {
		warn("dscp")
		cfg.Client.DSCP = flags.Client.DSCP
	}
	if setFlags["offset"] {
		warn("offset")
		cfg.Offset = flags.Offset
	}
	if setFlags["summer-time"] {
		warn("summer_time")
		cfg.SummerTime = flags.SummerTime
	}
	if setFlags["dry-run"] {
		warn("dry_run")
		cfg.DryRun = flags.DryRun
	}
	if setFlags["method"] {
		warn("method")
		cfg.Method = flags.Method
	}
	if setFlags["metrics-file"] {
		warn("metrics_file")
		cfg.MetricsFile = flags.MetricsFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: validating config: %w", ErrInvalidArgument, err)
	}
	return cfg, nil
}
