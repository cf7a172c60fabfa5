//
// SPDX-License-Identifier: BSD-3-Clause
//
// Adapted from: https://github.com/bassosimone/dnscodec/blob/main/query.go
//

package dnsprobe

import (
	"fmt"

	"github.com/miekg/dns"
)

// Opcode is the 4-bit kind of query carried by a DNS message.
type Opcode uint8

// DNS opcodes.
const (
	OpcodeQuery  = Opcode(dns.OpcodeQuery)
	OpcodeIQuery = Opcode(dns.OpcodeIQuery)
	OpcodeStatus = Opcode(dns.OpcodeStatus)
	OpcodeNotify = Opcode(dns.OpcodeNotify)
	OpcodeUpdate = Opcode(dns.OpcodeUpdate)
)

// String returns the conventional name of the opcode (e.g., QUERY).
func (op Opcode) String() string {
	if s, ok := dns.OpcodeToString[int(op)]; ok {
		return s
	}
	return fmt.Sprintf("OPCODE%d", op)
}

// Rcode is the 4-bit result code carried by a DNS message.
type Rcode uint8

// DNS result codes.
const (
	RcodeSuccess        = Rcode(dns.RcodeSuccess)
	RcodeFormatError    = Rcode(dns.RcodeFormatError)
	RcodeServerFailure  = Rcode(dns.RcodeServerFailure)
	RcodeNameError      = Rcode(dns.RcodeNameError)
	RcodeNotImplemented = Rcode(dns.RcodeNotImplemented)
	RcodeRefused        = Rcode(dns.RcodeRefused)
)

// String returns the conventional name of the result code (e.g., NOERROR).
func (rc Rcode) String() string {
	if s, ok := dns.RcodeToString[int(rc)]; ok {
		return s
	}
	return fmt.Sprintf("RCODE%d", rc)
}

// Bits of the operation field other than the opcode and the result code.
const (
	FlagQR = uint16(1 << 15)
	FlagAA = uint16(1 << 10)
	FlagTC = uint16(1 << 9)
	FlagRD = uint16(1 << 8)
	FlagRA = uint16(1 << 7)
	FlagZ  = uint16(0x0070)
)

const (
	opcodeShift = 11
	opcodeMask  = uint16(0x7800)
	rcodeMask   = uint16(0x000f)
)

// OpcodeOf extracts the opcode from an operation field.
func OpcodeOf(operation uint16) Opcode {
	return Opcode((operation & opcodeMask) >> opcodeShift)
}

// RcodeOf extracts the result code from an operation field.
func RcodeOf(operation uint16) Rcode {
	return Rcode(operation & rcodeMask)
}

// Question is an entry of the question section of a [*Message].
type Question struct {
	// Name is the domain name using dots to separate labels.
	Name string

	// Qtype is the record type (e.g., [dns.TypeA]).
	Qtype uint16

	// Qclass is the record class (e.g., [dns.ClassINET]).
	Qclass uint16
}

// NewQuestion constructs a new [Question].
//
// The name is not validated: [Encode] rejects names it cannot serialize.
func NewQuestion(name string, qtype, qclass uint16) Question {
	return Question{Name: name, Qtype: qtype, Qclass: qclass}
}

// Message is a DNS message limited to its header and question section.
//
// Construct using [NewQuery] and [Finalize], or by decoding a raw
// message using [Decode]. Once passed to [Encode] or to a transport,
// a message should not be modified anymore.
type Message struct {
	// ID is the transaction ID.
	ID uint16

	// Operation packs the QR, AA, TC, RD, RA and Z flags along
	// with the opcode (bits 11-14) and the result code (bits 0-3).
	Operation uint16

	// QuestionCount is the number of questions. It MUST be equal
	// to len(Questions) for [Encode] to succeed.
	QuestionCount uint16

	// AnswerCount is the number of answer records.
	AnswerCount uint16

	// AuthorityCount is the number of authority records.
	AuthorityCount uint16

	// AdditionalCount is the number of additional records.
	AdditionalCount uint16

	// Questions contains the questions in wire order.
	Questions []Question
}

// Opcode returns the opcode of the message.
func (m *Message) Opcode() Opcode {
	return OpcodeOf(m.Operation)
}

// Rcode returns the result code of the message.
func (m *Message) Rcode() Rcode {
	return RcodeOf(m.Operation)
}

// SetOpcode replaces the opcode leaving all the other bits untouched.
func (m *Message) SetOpcode(op Opcode) {
	m.Operation = (m.Operation &^ opcodeMask) | (uint16(op)<<opcodeShift)&opcodeMask
}

// SetRcode replaces the result code leaving all the other bits untouched.
func (m *Message) SetRcode(rc Rcode) {
	m.Operation = (m.Operation &^ rcodeMask) | uint16(rc)&rcodeMask
}

// Clone returns a deep copy of the message.
func (m *Message) Clone() *Message {
	c := *m
	if m.Questions != nil {
		c.Questions = make([]Question, len(m.Questions))
		copy(c.Questions, m.Questions)
	}
	return &c
}

// IDGenerator generates transaction IDs.
type IDGenerator interface {
	NextID() uint16
}

// IDGeneratorFunc adapts a func to the [IDGenerator] interface.
type IDGeneratorFunc func() uint16

var _ IDGenerator = IDGeneratorFunc(nil)

// NextID implements [IDGenerator].
func (fx IDGeneratorFunc) NextID() uint16 {
	return fx()
}

// DefaultIDGenerator is the [IDGenerator] used by [NewQuery].
var DefaultIDGenerator IDGenerator = IDGeneratorFunc(dns.Id)

// NewQuery constructs a new query [*Message] with the given opcode, a
// zero result code, no questions, and an ID from [DefaultIDGenerator].
func NewQuery(opcode Opcode) *Message {
	return NewQueryWithGenerator(DefaultIDGenerator, opcode)
}

// NewQueryWithGenerator is like [NewQuery] but takes the ID from gen.
func NewQueryWithGenerator(gen IDGenerator, opcode Opcode) *Message {
	return NewQueryWithID(opcode, gen.NextID())
}

// NewQueryWithID is like [NewQuery] but uses the given ID.
func NewQueryWithID(opcode Opcode, id uint16) *Message {
	m := &Message{ID: id}
	m.SetOpcode(opcode)
	return m
}

// Finalize assigns the questions to the message and updates the
// question count accordingly. Call it before [Encode].
func Finalize(m *Message, questions []Question) {
	m.Questions = questions
	m.QuestionCount = uint16(len(questions))
}
