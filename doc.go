// SPDX-License-Identifier: GPL-3.0-or-later

// Package dnsprobe checks the protocol compliance of a DNS server.
//
// [NewQuery], [NewQuestion] and [Finalize] construct a [*Message]. [Encode]
// and [Decode] translate between a [*Message] and the RFC 1035 wire format.
// [*UDPTransport] performs a single query/response exchange with a server
// and [CheckRcode] and [CheckOpcode] validate the reply.
//
// The codec only decodes the header and the question section. Use
// [ParseRecords], which relies on [github.com/miekg/dns], when you need
// the answer, authority, and additional sections.
//
// [CheckOneAQuery] and [CheckTwoQueries] bundle the above into ready to
// use compliance checks driven by a [*Config].
package dnsprobe
