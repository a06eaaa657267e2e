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
	"context"
	"fmt"
	"net"
	"net/netip"

	log "github.com/sirupsen/logrus"
)

// pickIP returns first IPv4 address if there is one, first address otherwise
func pickIP(ips []net.IP) net.IP {
	for _, ip := range ips {
		if ip4 := ip.To4(); ip4 != nil {
			return ip4
		}
	}
	if len(ips) > 0 {
		return ips[0]
	}
	return nil
}

// resolve looks the host up and falls back to parsing it as an address literal
// whenever the lookup did not produce a usable address.
func (c *Client) resolve(ctx context.Context, host string) (net.IP, error) {
	ips, lookupErr := c.lookupIP(ctx, "ip", host)
	if lookupErr == nil {
		if ip := pickIP(ips); ip != nil {
			return ip, nil
		}
		lookupErr = fmt.Errorf("no addresses found for %s", host)
	}
	log.Debugf("Failed to resolve %q: %v, trying it as an address", host, lookupErr)
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return nil, lookupErr
	}
	return net.IP(addr.Unmap().AsSlice()), nil
}
