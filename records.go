// SPDX-License-Identifier: GPL-3.0-or-later

package dnsprobe

import (
	"fmt"

	"github.com/miekg/dns"
)

// ParseRecords parses the whole raw message, including the answer,
// authority and additional sections and any compression pointers
// therein, which [Decode] does not handle.
func ParseRecords(raw []byte) (*dns.Msg, error) {
	msg := new(dns.Msg)
	if err := msg.Unpack(raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	return msg, nil
}
