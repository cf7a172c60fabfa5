// SPDX-License-Identifier: GPL-3.0-or-later

package dnsprobe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"golang.org/x/net/idna"
)

// ErrNoServerName indicates that [Config] lacks the ServerName.
var ErrNoServerName = errors.New("no server name configured")

// Config describes the server under test.
//
// Construct using [NewConfig] and fill the MANDATORY fields.
type Config struct {
	// ServerAddr is the MANDATORY address (or hostname) used
	// to send queries to the server under test.
	ServerAddr string

	// ServerName is the MANDATORY name of the server under test, which
	// must have an A record inside the zone named by Domain.
	ServerName string

	// Domain is the zone served by the server under test.
	Domain string

	// Port is the port where the server under test listens.
	Port int

	// Timeout is the OPTIONAL timeout for each transaction. When
	// zero, transactions block until the server responds.
	Timeout time.Duration

	// Logger is the OPTIONAL logger used by transports.
	Logger *slog.Logger
}

// NewConfig returns a new [*Config] using "example.com" as the
// domain, [DefaultPort] as the port, and no timeout.
func NewConfig() *Config {
	return &Config{
		ServerAddr: "",
		ServerName: "",
		Domain:     "example.com",
		Port:       DefaultPort,
		Timeout:    0,
		Logger:     nil,
	}
}

// QueryName returns "<label>.<domain>". The domain is converted to its
// lowercase ASCII form, which also handles internationalized domains.
func (c *Config) QueryName(label string) (string, error) {
	domain, err := idna.Lookup.ToASCII(c.Domain)
	if err != nil {
		return "", fmt.Errorf("invalid domain %q: %w", c.Domain, err)
	}
	return label + "." + domain, nil
}

// ServerQueryName returns "<server>.<domain>".
func (c *Config) ServerQueryName() (string, error) {
	if c.ServerName == "" {
		return "", ErrNoServerName
	}
	return c.QueryName(c.ServerName)
}

// Endpoint returns the server endpoint as "<addr>:<port>".
func (c *Config) Endpoint() string {
	return net.JoinHostPort(c.ServerAddr, strconv.Itoa(c.Port))
}

// NewTransport returns a [*UDPTransport] honoring Timeout and Logger.
func (c *Config) NewTransport() *UDPTransport {
	txp := NewUDPTransport()
	txp.Timeout = c.Timeout
	txp.Logger = c.Logger
	return txp
}

// Transact performs a transaction with the configured server.
func (c *Config) Transact(ctx context.Context, query *Message) (*Message, error) {
	return c.NewTransport().Transact(ctx, query, c.ServerAddr, c.Port)
}
