package command

import "fmt"

// Operation is the block operation a request asks for.
type Operation int

// Operations. A request with no operation flag set is OpNone.
const (
	OpNone Operation = iota
	OpWrite
	OpRead
	OpIdentify
)

func (o Operation) String() string {
	switch o {
	case OpWrite:
		return "write"
	case OpRead:
		return "read"
	case OpIdentify:
		return "identify"
	default:
		return "none"
	}
}

// A Request is one beat of the caller request stream. The start beat carries
// the operation flags, the address, and the length. A write request carries
// its payload on the same stream: one 32-bit word per beat, starting with the
// start beat and ending with the beat marked EOP.
type Request struct {
	Write    bool
	Read     bool
	Identify bool
	Address  uint64
	Length   uint16
	Data     uint32
	SOP      bool
	EOP      bool
}

// StartOfUnit returns the start-of-request marker.
func (r Request) StartOfUnit() bool {
	return r.SOP
}

// EndOfUnit returns the end-of-request marker.
func (r Request) EndOfUnit() bool {
	return r.EOP
}

// Operation decodes the operation flags. When several flags are set, write
// wins over read and read wins over identify.
func (r Request) Operation() Operation {
	switch {
	case r.Write:
		return OpWrite
	case r.Read:
		return OpRead
	case r.Identify:
		return OpIdentify
	default:
		return OpNone
	}
}

func (r Request) String() string {
	return fmt.Sprintf("%s{lba=0x%012x count=%d sop=%t eop=%t}",
		r.Operation(), r.Address, r.Length, r.SOP, r.EOP)
}

// A Response is one payload beat on the caller response stream.
type Response struct {
	Data uint32
	SOP  bool
	EOP  bool
}

// StartOfUnit returns the start-of-payload marker.
func (r Response) StartOfUnit() bool {
	return r.SOP
}

// EndOfUnit returns the end-of-payload marker.
func (r Response) EndOfUnit() bool {
	return r.EOP
}

// NewWriteRequest builds the beats of a write request. The payload must hold
// at least one word.
func NewWriteRequest(lba uint64, count uint16, payload []uint32) []Request {
	if len(payload) == 0 {
		panic("write payload must not be empty")
	}

	beats := make([]Request, len(payload))
	for i, w := range payload {
		beats[i] = Request{
			Write:   true,
			Address: lba,
			Length:  count,
			Data:    w,
			SOP:     i == 0,
			EOP:     i == len(payload)-1,
		}
	}

	return beats
}

// NewReadRequest builds the single beat of a read request.
func NewReadRequest(lba uint64, count uint16) Request {
	return Request{
		Read:    true,
		Address: lba,
		Length:  count,
		SOP:     true,
		EOP:     true,
	}
}

// NewIdentifyRequest builds the single beat of an identify request.
func NewIdentifyRequest() Request {
	return Request{
		Identify: true,
		SOP:      true,
		EOP:      true,
	}
}
