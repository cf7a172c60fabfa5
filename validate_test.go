//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: https://github.com/bassosimone/dnscodec/blob/main/response_test.go
//

package dnsprobe

import (
	"errors"
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/require"
)

func TestCheckRcode(t *testing.T) {
	m := NewQueryWithID(OpcodeQuery, 1)
	m.Operation |= FlagQR | FlagRA
	m.SetRcode(RcodeFormatError)

	require.NoError(t, CheckRcode(m, RcodeFormatError))

	err := CheckRcode(m, RcodeSuccess)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, "rcode", verr.Field)
	require.Equal(t, "expected rcode NOERROR (0), got FORMERR (1)", err.Error())
}

func TestCheckOpcode(t *testing.T) {
	m := NewQueryWithID(OpcodeUpdate, 1)
	m.SetRcode(RcodeRefused)

	require.NoError(t, CheckOpcode(m, OpcodeUpdate))

	err := CheckOpcode(m, OpcodeQuery)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, "opcode", verr.Field)
	require.Equal(t, "expected opcode QUERY (0), got UPDATE (5)", err.Error())
}

func TestChecksDoNotMutate(t *testing.T) {
	m := NewQueryWithID(OpcodeQuery, 1)
	Finalize(m, []Question{NewQuestion("example.com", dns.TypeA, dns.ClassINET)})
	m.SetRcode(RcodeServerFailure)
	orig := m.Clone()

	_ = CheckRcode(m, RcodeSuccess)
	_ = CheckOpcode(m, OpcodeStatus)
	require.Equal(t, orig, m)
}

func TestValidateResponseForQuery(t *testing.T) {
	tests := []struct {
		name     string
		modify   func(query, resp *Message)
		expected error
	}{
		{
			name: "ValidResponse",
			modify: func(query, resp *Message) {
				// No modification needed, valid response.
			},
			expected: nil,
		},

		{
			name: "ValidResponseWithoutQuestions",
			modify: func(query, resp *Message) {
				Finalize(resp, nil)
				resp.SetRcode(RcodeFormatError)
			},
			expected: nil,
		},

		{
			name: "ValidResponseDifferentCase",
			modify: func(query, resp *Message) {
				resp.Questions[0].Name = "EXAMPLE.com."
			},
			expected: nil,
		},

		{
			name: "InvalidResponseID",
			modify: func(query, resp *Message) {
				resp.ID = query.ID + 1
			},
			expected: ErrInvalidResponse,
		},

		{
			name: "InvalidResponseNotAResponse",
			modify: func(query, resp *Message) {
				resp.Operation &^= FlagQR
			},
			expected: ErrInvalidResponse,
		},

		{
			name: "InvalidResponseTooManyQuestions",
			modify: func(query, resp *Message) {
				Finalize(resp, append(resp.Questions, resp.Questions[0]))
			},
			expected: ErrInvalidResponse,
		},

		{
			name: "InvalidResponseQuestionName",
			modify: func(query, resp *Message) {
				resp.Questions[0].Name = "invalid.com"
			},
			expected: ErrInvalidResponse,
		},

		{
			name: "InvalidResponseQuestionClass",
			modify: func(query, resp *Message) {
				resp.Questions[0].Qclass = dns.ClassCHAOS
			},
			expected: ErrInvalidResponse,
		},

		{
			name: "InvalidResponseQuestionType",
			modify: func(query, resp *Message) {
				resp.Questions[0].Qtype = dns.TypeAAAA
			},
			expected: ErrInvalidResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query := NewQueryWithID(OpcodeQuery, 7)
			Finalize(query, []Question{NewQuestion("example.com", dns.TypeA, dns.ClassINET)})

			resp := query.Clone()
			resp.Operation |= FlagQR

			tt.modify(query, resp)

			err := ValidateResponseForQuery(query, resp)
			if tt.expected != nil {
				require.ErrorIs(t, err, tt.expected)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestResponseEqualASCIIName(t *testing.T) {
	tests := []struct {
		name     string
		x        string
		y        string
		expected bool
	}{
		{"EqualNames", "example.com.", "example.com.", true},
		{"EqualNamesDifferentCase", "Example.COM.", "exaMple.com.", true},
		{"EqualNamesTrailingDot", "example.com", "example.com.", true},
		{"DifferentNames", "example.com.", "example.org.", false},
		{"DifferentLengths", "example.com.", "example.co.uk.", false},
		{"OnlyPrefixMatch", "example.co.", "example.co.uk.", false},
		{"EmptyStrings", "", "", true},
		{"OneEmptyString", "example.com.", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := responseEqualASCIIName(tt.x, tt.y)
			require.Equal(t, tt.expected, result)
		})
	}
}

func TestResponseErrorFromRcode(t *testing.T) {
	tests := []struct {
		name     string
		rcode    Rcode
		expected error
	}{
		{"Success", RcodeSuccess, nil},
		{"NameError", RcodeNameError, ErrNoName},
		{"ServerFailure", RcodeServerFailure, ErrServerTemporarilyMisbehaving},
		{"Refused", RcodeRefused, ErrServerMisbehaving},
		{"FormatError", RcodeFormatError, ErrServerMisbehaving},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &Message{Operation: FlagQR}
			resp.SetRcode(tt.rcode)

			err := ResponseErrorFromRcode(resp)
			if tt.expected != nil {
				require.ErrorIs(t, err, tt.expected)
				return
			}
			require.NoError(t, err)
		})
	}
}
