//
// SPDX-License-Identifier: BSD-3-Clause
//
// Adapted from: https://github.com/bassosimone/dnscodec/blob/main/response.go
//

package dnsprobe

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError indicates that a response field differs from
// the value we expected. This signals a noncompliant server rather
// than a failure of this package.
type ValidationError struct {
	// Field is the name of the field (e.g., "rcode").
	Field string

	// Expected is the expected value.
	Expected string

	// Observed is the observed value.
	Observed string
}

var _ error = &ValidationError{}

// Error implements error.
func (err *ValidationError) Error() string {
	return fmt.Sprintf("expected %s %s, got %s", err.Field, err.Expected, err.Observed)
}

// CheckRcode returns a [*ValidationError] if the result code of the
// message is not the expected one and nil otherwise.
func CheckRcode(m *Message, expected Rcode) error {
	if observed := m.Rcode(); observed != expected {
		return &ValidationError{
			Field:    "rcode",
			Expected: fmt.Sprintf("%s (%d)", expected, expected),
			Observed: fmt.Sprintf("%s (%d)", observed, observed),
		}
	}
	return nil
}

// CheckOpcode returns a [*ValidationError] if the opcode of the
// message is not the expected one and nil otherwise.
func CheckOpcode(m *Message, expected Opcode) error {
	if observed := m.Opcode(); observed != expected {
		return &ValidationError{
			Field:    "opcode",
			Expected: fmt.Sprintf("%s (%d)", expected, expected),
			Observed: fmt.Sprintf("%s (%d)", observed, observed),
		}
	}
	return nil
}

// These error messages use the same suffixes used by the Go standard library.
var (
	// ErrInvalidResponse means that the response is not a response
	// message or does not belong to the query transaction.
	ErrInvalidResponse = errors.New("invalid DNS response")

	// ErrNoName indicates that the server response code is NXDOMAIN.
	ErrNoName = errors.New("no such host")

	// ErrServerMisbehaving indicates that the server response code is
	// neither 0, nor NXDOMAIN, nor SERVFAIL.
	ErrServerMisbehaving = errors.New("server misbehaving")

	// ErrServerTemporarilyMisbehaving indicates that the server answer is SERVFAIL.
	//
	// The error message is same as [ErrServerMisbehaving] for compatibility with the
	// Go standard library, which assigns the same error string to both errors.
	ErrServerTemporarilyMisbehaving = errors.New("server misbehaving")
)

// ValidateResponseForQuery checks whether resp is a response for query.
//
// The response must have the QR bit set and the same ID. Servers may omit
// the question section when replying with an error, so we only compare
// questions when the response contains them.
func ValidateResponseForQuery(query, resp *Message) error {
	// 1. make sure the message is actually a response
	if resp.Operation&FlagQR == 0 {
		return fmt.Errorf("%w: QR bit not set", ErrInvalidResponse)
	}

	// 2. make sure the response ID matches the query ID
	if resp.ID != query.ID {
		return fmt.Errorf("%w: expected ID %d, got %d", ErrInvalidResponse, query.ID, resp.ID)
	}

	// 3. make sure any echoed question matches the query
	if len(resp.Questions) <= 0 {
		return nil
	}
	if len(resp.Questions) > len(query.Questions) {
		return fmt.Errorf("%w: unexpected questions", ErrInvalidResponse)
	}
	for idx, rq := range resp.Questions {
		qq := query.Questions[idx]
		if !responseEqualASCIIName(rq.Name, qq.Name) {
			return fmt.Errorf("%w: question #%d: name mismatch", ErrInvalidResponse, idx)
		}
		if rq.Qclass != qq.Qclass {
			return fmt.Errorf("%w: question #%d: class mismatch", ErrInvalidResponse, idx)
		}
		if rq.Qtype != qq.Qtype {
			return fmt.Errorf("%w: question #%d: type mismatch", ErrInvalidResponse, idx)
		}
	}
	return nil
}

// SPDX-License-Identifier: BSD-3-Clause
//
// Borrowed from Go src/net package.
func responseEqualASCIIName(x, y string) bool {
	x, y = strings.TrimSuffix(x, "."), strings.TrimSuffix(y, ".")
	if len(x) != len(y) {
		return false
	}
	for i := 0; i < len(x); i++ {
		a := x[i]
		b := y[i]
		if 'A' <= a && a <= 'Z' {
			a += 0x20
		}
		if 'A' <= b && b <= 'Z' {
			b += 0x20
		}
		if a != b {
			return false
		}
	}
	return true
}

// ResponseErrorFromRcode maps the result code of a response to an
// error using a suffix compatible with the error strings returned
// by [*net.Resolver]. It returns nil when the result code is zero.
func ResponseErrorFromRcode(resp *Message) error {
	switch rcode := resp.Rcode(); rcode {
	case RcodeSuccess:
		return nil
	case RcodeNameError:
		return ErrNoName
	case RcodeServerFailure:
		return ErrServerTemporarilyMisbehaving
	default:
		return fmt.Errorf("%w: %s", ErrServerMisbehaving, rcode)
	}
}
