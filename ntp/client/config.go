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

package client

import (
	"fmt"
	"net"
	"time"

	ntp "github.com/zntpdate/zntpdate/ntp/protocol"
)

// Defaults for a single exchange
const (
	DefaultVersion = 3
	DefaultTimeout = 10 * time.Second
	DefaultRetries = 3
)

// Config specifies how we talk to the server
type Config struct {
	Version      int           `yaml:"version"`       // protocol version put into the request
	Port         int           `yaml:"port"`          // server port
	Timeout      time.Duration `yaml:"timeout"`       // how long we wait for a response to one request
	Retries      int           `yaml:"retries"`       // how many times the request is re-sent after a timeout
	DSCP         int           `yaml:"dscp"`          // DSCP value of outgoing packets, 0 leaves it untouched
	LocalAddress string        `yaml:"local_address"` // source address, empty means any
}

// DefaultConfig returns Config initialized with default values
func DefaultConfig() *Config {
	return &Config{
		Version: DefaultVersion,
		Port:    ntp.Port,
		Timeout: DefaultTimeout,
		Retries: DefaultRetries,
	}
}

// Validate config is sane
func (c *Config) Validate() error {
	if c.Version < 1 || c.Version > 3 {
		return fmt.Errorf("version must be 1, 2 or 3")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be greater than zero")
	}
	if c.Retries < 0 {
		return fmt.Errorf("retries must be 0 or positive")
	}
	if c.DSCP < 0 || c.DSCP > 63 {
		return fmt.Errorf("dscp must be between 0 and 63")
	}
	if c.LocalAddress != "" && net.ParseIP(c.LocalAddress) == nil {
		return fmt.Errorf("local_address %q is not a valid IP address", c.LocalAddress)
	}
	return nil
}
