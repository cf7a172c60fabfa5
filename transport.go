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
)

// ErrTransport indicates a failure to dial, send, or receive.
var ErrTransport = errors.New("DNS transport failure")

const (
	// DefaultPort is the default DNS port.
	DefaultPort = 53

	// MaxResponseSize is the size of the buffer used to receive responses.
	MaxResponseSize = 2048
)

// Dialer dials network connections. [*net.Dialer] implements it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// UDPTransport exchanges DNS messages over UDP.
//
// Each exchange uses a dedicated socket that is closed before returning.
// There are no retries or retransmissions.
//
// Construct using [NewUDPTransport] or initialize the MANDATORY fields.
type UDPTransport struct {
	// Dialer is the MANDATORY [Dialer] to use.
	Dialer Dialer

	// Logger is the OPTIONAL [*slog.Logger] to use. When nil,
	// the transport does not emit any log message.
	Logger *slog.Logger

	// Timeout OPTIONALLY bounds each exchange. When zero, we block until
	// we receive a response or the context passed to the exchange is done.
	Timeout time.Duration
}

// NewUDPTransport returns a new [*UDPTransport] using a [*net.Dialer]
// and blocking indefinitely while waiting for the response.
func NewUDPTransport() *UDPTransport {
	return &UDPTransport{
		Dialer:  &net.Dialer{},
		Logger:  nil,
		Timeout: 0,
	}
}

// TransactUDP is like [*UDPTransport.Transact] using [NewUDPTransport].
func TransactUDP(ctx context.Context, query *Message, host string, port int) (*Message, error) {
	return NewUDPTransport().Transact(ctx, query, host, port)
}

// Transact encodes the query, sends it to the server at the given host
// and port, and returns the decoded response.
//
// Errors wrap [ErrFormat] when we cannot encode the query or decode the
// response and [ErrTransport] in case of network failures. A response
// carrying a nonzero result code is not an error.
func (t *UDPTransport) Transact(ctx context.Context, query *Message, host string, port int) (*Message, error) {
	rawQuery, err := Encode(query)
	if err != nil {
		return nil, err
	}

	logger := t.logger()
	address := net.JoinHostPort(host, strconv.Itoa(port))
	t0 := time.Now()
	logger.InfoContext(ctx, "transactStart",
		slog.String("serverAddr", address),
		slog.Int("id", int(query.ID)),
		slog.Int("questions", len(query.Questions)),
	)

	resp, err := t.transact(ctx, rawQuery, host, port)

	if err != nil {
		logger.InfoContext(ctx, "transactDone",
			slog.String("serverAddr", address),
			slog.Int("id", int(query.ID)),
			slog.Duration("elapsed", time.Since(t0)),
			slog.Any("err", err),
		)
		return nil, err
	}
	logger.InfoContext(ctx, "transactDone",
		slog.String("serverAddr", address),
		slog.Int("id", int(query.ID)),
		slog.Duration("elapsed", time.Since(t0)),
		slog.String("opcode", resp.Opcode().String()),
		slog.String("rcode", resp.Rcode().String()),
	)
	return resp, nil
}

func (t *UDPTransport) transact(ctx context.Context, rawQuery []byte, host string, port int) (*Message, error) {
	rawResp, err := t.ExchangeRaw(ctx, rawQuery, host, port)
	if err != nil {
		return nil, err
	}
	return Decode(rawResp)
}

// ExchangeRaw sends a raw query as a single datagram and returns the
// first datagram received in response, truncated to [MaxResponseSize].
//
// Errors wrap [ErrTransport].
func (t *UDPTransport) ExchangeRaw(ctx context.Context, rawQuery []byte, host string, port int) ([]byte, error) {
	address := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := t.Dialer.DialContext(ctx, "udp", address)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer conn.Close()

	if t.Timeout > 0 {
		if err := conn.SetDeadline(time.Now().Add(t.Timeout)); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTransport, err)
		}
	}

	// Unblock pending I/O as soon as the context is done.
	stop := context.AfterFunc(ctx, func() {
		conn.SetDeadline(time.Now())
	})
	defer stop()

	if _, err := conn.Write(rawQuery); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	buffer := make([]byte, MaxResponseSize)
	count, err := conn.Read(buffer)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	return buffer[:count], nil
}

func (t *UDPTransport) logger() *slog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return slog.New(slog.DiscardHandler)
}
