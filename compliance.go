// SPDX-License-Identifier: GPL-3.0-or-later

package dnsprobe

import (
	"context"
	"errors"

	"github.com/miekg/dns"
)

// BogusLabel is the label of a name that the server under test
// is not expected to know about.
const BogusLabel = "bogusname"

// Check is a compliance check against the server described by a [*Config].
type Check struct {
	// Name is the name of the check.
	Name string

	// Run runs the check and returns nil on success.
	Run func(ctx context.Context, cfg *Config) error
}

// Checks contains all the available compliance checks.
var Checks = []Check{
	{Name: "one_a_query", Run: CheckOneAQuery},
	{Name: "two_queries", Run: CheckTwoQueries},
}

// CheckResult is the outcome of running a [Check].
type CheckResult struct {
	// Name is the name of the check.
	Name string

	// Err is nil on success.
	Err error
}

// RunChecks runs all the [Checks] in order and returns their results.
func RunChecks(ctx context.Context, cfg *Config) []CheckResult {
	results := make([]CheckResult, 0, len(Checks))
	for _, check := range Checks {
		results = append(results, CheckResult{
			Name: check.Name,
			Err:  check.Run(ctx, cfg),
		})
	}
	return results
}

// CheckOneAQuery sends a query containing a single A question for
// the server name and expects a NOERROR response with QUERY opcode.
func CheckOneAQuery(ctx context.Context, cfg *Config) error {
	name, err := cfg.ServerQueryName()
	if err != nil {
		return err
	}

	query := NewQuery(OpcodeQuery)
	Finalize(query, []Question{
		NewQuestion(name, dns.TypeA, dns.ClassINET),
	})

	resp, err := cfg.Transact(ctx, query)
	if err != nil {
		return err
	}
	if err := ValidateResponseForQuery(query, resp); err != nil {
		return err
	}
	return errors.Join(
		CheckRcode(resp, RcodeSuccess),
		CheckOpcode(resp, OpcodeQuery),
	)
}

// CheckTwoQueries sends a query containing two A questions and expects
// the server to reject it with FORMERR, since most servers only accept
// a single question per query.
func CheckTwoQueries(ctx context.Context, cfg *Config) error {
	name, err := cfg.ServerQueryName()
	if err != nil {
		return err
	}
	bogus, err := cfg.QueryName(BogusLabel)
	if err != nil {
		return err
	}

	query := NewQuery(OpcodeQuery)
	Finalize(query, []Question{
		NewQuestion(name, dns.TypeA, dns.ClassINET),
		NewQuestion(bogus, dns.TypeA, dns.ClassINET),
	})

	resp, err := cfg.Transact(ctx, query)
	if err != nil {
		return err
	}
	if err := ValidateResponseForQuery(query, resp); err != nil {
		return err
	}
	return CheckRcode(resp, RcodeFormatError)
}
