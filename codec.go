// SPDX-License-Identifier: GPL-3.0-or-later

package dnsprobe

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/cryptobyte"
)

// ErrFormat indicates that a message cannot be encoded or decoded.
var ErrFormat = errors.New("malformed DNS message")

const (
	// HeaderSize is the size of the DNS message header.
	HeaderSize = 12

	// MaxLabelSize is the maximum size of a single label.
	MaxLabelSize = 63

	// MaxNameSize is the maximum size of an encoded domain name.
	MaxNameSize = 255
)

// Encode serializes a [*Message] to the RFC 1035 wire format.
//
// The message QuestionCount must match the number of questions,
// which [Finalize] ensures. We never fix a mismatch on your behalf.
func Encode(m *Message) ([]byte, error) {
	if int(m.QuestionCount) != len(m.Questions) {
		return nil, fmt.Errorf("%w: question count is %d but there are %d questions",
			ErrFormat, m.QuestionCount, len(m.Questions))
	}

	b := cryptobyte.NewBuilder(make([]byte, 0, 512))
	b.AddUint16(m.ID)
	b.AddUint16(m.Operation)
	b.AddUint16(m.QuestionCount)
	b.AddUint16(m.AnswerCount)
	b.AddUint16(m.AuthorityCount)
	b.AddUint16(m.AdditionalCount)

	for _, q := range m.Questions {
		labels, err := encodeSplitName(q.Name)
		if err != nil {
			return nil, err
		}
		for _, label := range labels {
			b.AddUint8(uint8(len(label)))
			b.AddBytes([]byte(label))
		}
		b.AddUint8(0)
		b.AddUint16(q.Qtype)
		b.AddUint16(q.Qclass)
	}

	return b.Bytes()
}

// encodeSplitName splits a name into labels. A single trailing dot,
// denoting the root, is allowed and does not produce a label.
func encodeSplitName(name string) ([]string, error) {
	trimmed := strings.TrimSuffix(name, ".")
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty name %q", ErrFormat, name)
	}
	labels := strings.Split(trimmed, ".")
	size := 1 // root label
	for _, label := range labels {
		switch {
		case len(label) == 0:
			return nil, fmt.Errorf("%w: empty label in %q", ErrFormat, name)
		case len(label) > MaxLabelSize:
			return nil, fmt.Errorf("%w: label too long in %q", ErrFormat, name)
		}
		size += 1 + len(label)
	}
	if size > MaxNameSize {
		return nil, fmt.Errorf("%w: name too long %q", ErrFormat, name)
	}
	return labels, nil
}

// Decode parses a [*Message] from the RFC 1035 wire format.
//
// Decoding stops after the question section. The answer, authority
// and additional sections are not parsed, though their counts are
// available in the returned message. Use [ParseRecords] for them.
func Decode(raw []byte) (*Message, error) {
	s := cryptobyte.String(raw)
	m := &Message{}
	if !s.ReadUint16(&m.ID) ||
		!s.ReadUint16(&m.Operation) ||
		!s.ReadUint16(&m.QuestionCount) ||
		!s.ReadUint16(&m.AnswerCount) ||
		!s.ReadUint16(&m.AuthorityCount) ||
		!s.ReadUint16(&m.AdditionalCount) {
		return nil, fmt.Errorf("%w: truncated header", ErrFormat)
	}

	// Do not preallocate using QuestionCount: it is attacker controlled.
	for idx := 0; idx < int(m.QuestionCount); idx++ {
		q, err := decodeQuestion(&s)
		if err != nil {
			return nil, fmt.Errorf("question #%d: %w", idx, err)
		}
		m.Questions = append(m.Questions, q)
	}
	return m, nil
}

func decodeQuestion(s *cryptobyte.String) (Question, error) {
	name, err := decodeName(s)
	if err != nil {
		return Question{}, err
	}
	q := Question{Name: name}
	if !s.ReadUint16(&q.Qtype) || !s.ReadUint16(&q.Qclass) {
		return Question{}, fmt.Errorf("%w: truncated question", ErrFormat)
	}
	return q, nil
}

func decodeName(s *cryptobyte.String) (string, error) {
	var (
		labels []string
		size   = 1
	)
	for {
		var length uint8
		if !s.ReadUint8(&length) {
			return "", fmt.Errorf("%w: truncated name", ErrFormat)
		}
		if length == 0 {
			break
		}
		// The two most significant bits select the label type and
		// only 00 (a plain label) may appear in questions we handle.
		if length&0xc0 != 0 {
			return "", fmt.Errorf("%w: unsupported label type %#02x", ErrFormat, length&0xc0)
		}
		var label []byte
		if !s.ReadBytes(&label, int(length)) {
			return "", fmt.Errorf("%w: truncated label", ErrFormat)
		}
		if size += 1 + len(label); size > MaxNameSize {
			return "", fmt.Errorf("%w: name too long", ErrFormat)
		}
		labels = append(labels, string(label))
	}
	return strings.Join(labels, "."), nil
}
