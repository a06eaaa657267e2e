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

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// enableDSCP sets DSCP bits (upper 6 bits of TOS / traffic class) on the socket
func enableDSCP(conn *net.UDPConn, network string, dscp int) error {
	tos := dscp << 2
	if network == "udp6" {
		if err := ipv6.NewConn(conn).SetTrafficClass(tos); err != nil {
			return fmt.Errorf("setting traffic class: %w", err)
		}
		return nil
	}
	if err := ipv4.NewConn(conn).SetTOS(tos); err != nil {
		return fmt.Errorf("setting TOS: %w", err)
	}
	return nil
}
