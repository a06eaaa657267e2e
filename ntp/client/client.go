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
Package client implements a one-shot NTP client.
It sends a single request over an unconnected UDP socket and waits for the answer
with a deadline, re-sending the very same request a bounded number of times.
*/
package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	ntp "github.com/zntpdate/zntpdate/ntp/protocol"
)

// big enough to notice datagrams longer than a packet
const readBufferSize = 1024

var (
	// ErrTimeoutExceeded is returned when all retries timed out
	ErrTimeoutExceeded = errors.New("timeout exceeded")
	// ErrTransport is matched by every TransportError
	ErrTransport = errors.New("transport error")
)

// TransportError describes resolve, socket, send or receive failure
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap allows matching both ErrTransport and the underlying error
func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}

// UDPConn describes what functionality we expect from UDP connection
type UDPConn interface {
	ReadFromUDP(b []byte) (int, *net.UDPAddr, error)
	WriteTo(b []byte, addr net.Addr) (int, error)
	SetReadDeadline(t time.Time) error
	Close() error
}

// Stats is a sink for exchange counters
type Stats interface {
	IncRequests()
	IncTimeouts()
	IncResponses()
	IncErrors()
}

type noopStats struct{}

func (noopStats) IncRequests()  {}
func (noopStats) IncTimeouts()  {}
func (noopStats) IncResponses() {}
func (noopStats) IncErrors()    {}

// Response is a decoded server answer with some context around it
type Response struct {
	Packet   *ntp.Packet
	Peer     *net.UDPAddr
	Sent     time.Time // when the last request left
	Received time.Time
	Attempts int // requests sent, including the first one
}

// Client talks to a single NTP server
type Client struct {
	cfg   *Config
	Stats Stats

	lookupIP func(ctx context.Context, network, host string) ([]net.IP, error)
	listen   func(network string, laddr *net.UDPAddr, dscp int) (UDPConn, error)
}

// New returns Client for given config
func New(cfg *Config) *Client {
	return &Client{
		cfg:      cfg,
		Stats:    noopStats{},
		lookupIP: net.DefaultResolver.LookupIP,
		listen:   listenUDP,
	}
}

func listenUDP(network string, laddr *net.UDPAddr, dscp int) (UDPConn, error) {
	conn, err := net.ListenUDP(network, laddr)
	if err != nil {
		return nil, err
	}
	if dscp > 0 {
		if err := enableDSCP(conn, network, dscp); err != nil {
			conn.Close()
			return nil, err
		}
	}
	return conn, nil
}

func (c *Client) fail(op string, err error) error {
	c.Stats.IncErrors()
	return &TransportError{Op: op, Err: err}
}

func (c *Client) send(conn UDPConn, request []byte, addr *net.UDPAddr) (time.Time, error) {
	sent := time.Now()
	if _, err := conn.WriteTo(request, addr); err != nil {
		return sent, err
	}
	c.Stats.IncRequests()
	return sent, nil
}

// Exchange sends request to the host and waits for the response.
// Every timeout re-sends the identical request until Retries are exhausted.
// Datagrams of the wrong size are dropped, waiting goes on until the same deadline.
// A response with an unset transmit timestamp is returned together with ntp.ErrInvalidTimestamp
// so its fields can still be reported.
func (c *Client) Exchange(ctx context.Context, host string) (*Response, error) {
	request, err := ntp.EncodeRequest(c.cfg.Version)
	if err != nil {
		return nil, err
	}
	log.Debugf("NTP version: %d", c.cfg.Version)

	ip, err := c.resolve(ctx, host)
	if err != nil {
		return nil, c.fail("resolve", err)
	}
	addr := &net.UDPAddr{IP: ip, Port: c.cfg.Port}
	log.Infof("Trying to reach %s (%s)", host, addr)

	network := "udp4"
	if ip.To4() == nil {
		network = "udp6"
	}
	laddr := &net.UDPAddr{
		// nil IP is same as default
		IP: net.ParseIP(c.cfg.LocalAddress),
	}
	conn, err := c.listen(network, laddr, c.cfg.DSCP)
	if err != nil {
		return nil, c.fail("listen", err)
	}
	defer conn.Close()

	sent, err := c.send(conn, request, addr)
	if err != nil {
		return nil, c.fail("send", err)
	}

	buf := make([]byte, readBufferSize)
	retries := 0
	deadline := c.deadline(ctx)
	log.Debugf("Attempt receive with timeout %v", c.cfg.Timeout)
	for {
		if err := ctx.Err(); err != nil {
			return nil, c.fail("receive", err)
		}
		if err := conn.SetReadDeadline(deadline); err != nil {
			return nil, c.fail("set deadline", err)
		}

		n, peer, err := conn.ReadFromUDP(buf)
		received := time.Now()
		if err != nil {
			if !errors.Is(err, os.ErrDeadlineExceeded) {
				return nil, c.fail("receive", err)
			}
			c.Stats.IncTimeouts()
			if err := ctx.Err(); err != nil {
				return nil, c.fail("receive", err)
			}
			if retries >= c.cfg.Retries {
				log.Errorf("No response, %d tries", retries+1)
				return nil, fmt.Errorf("%w: no response from %s after %d requests", ErrTimeoutExceeded, addr, retries+1)
			}
			retries++
			log.Infof("Timed out, %d more tries...", c.cfg.Retries-retries+1)
			if sent, err = c.send(conn, request, addr); err != nil {
				return nil, c.fail("send", err)
			}
			deadline = c.deadline(ctx)
			log.Debugf("Attempt receive with timeout %v", c.cfg.Timeout)
			continue
		}

		c.Stats.IncResponses()
		log.Debugf("Got %d bytes from %v", n, peer)
		packet, err := ntp.DecodeResponse(buf[:n])
		if errors.Is(err, ntp.ErrMalformedPacket) {
			// keep waiting for a proper answer to the same request
			c.Stats.IncErrors()
			log.Debugf("Ignoring datagram from %v: %v", peer, err)
			continue
		}
		resp := &Response{
			Packet:   packet,
			Peer:     peer,
			Sent:     sent,
			Received: received,
			Attempts: retries + 1,
		}
		if err != nil {
			c.Stats.IncErrors()
			if errors.Is(err, ntp.ErrInvalidTimestamp) {
				return resp, err
			}
			return nil, err
		}
		return resp, nil
	}
}

// deadline of a single attempt, never past the context deadline
func (c *Client) deadline(ctx context.Context) time.Time {
	deadline := time.Now().Add(c.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	return deadline
}
