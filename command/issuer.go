package command

import "github.com/sarchlab/satacmd/fis"

// IssuerInput is what the issuer samples in one cycle.
type IssuerInput struct {
	// Req is the head beat of the request stream, meaningful when ReqValid.
	Req      Request
	ReqValid bool

	// TxReady is the transport's accept signal for the outbound stream.
	TxReady bool

	// Events are the classifier pulses of the same cycle.
	Events Events
}

// IssuerOutput is what the issuer drives in one cycle.
type IssuerOutput struct {
	// ReqAccept consumes the head request beat.
	ReqAccept bool

	// Tx is the outbound unit, offered to the transport when TxValid.
	Tx      fis.Unit
	TxValid bool
}

// TxFired tells if the outbound unit was taken by the transport.
func (o IssuerOutput) TxFired(in IssuerInput) bool {
	return o.TxValid && in.TxReady
}

// IssuerStep evaluates the issuer for one cycle. It returns the state for the
// next cycle and the signals to drive in this one.
func IssuerStep(s State, in IssuerInput) (State, IssuerOutput) {
	out := IssuerOutput{Tx: fixedFields(in.Req)}
	next := s

	switch s {
	case Idle:
		next = stepIdle(in, &out)
	case IssueWrite:
		out.Tx = commandFIS(out.Tx, fis.CmdWriteDMAExt)
		out.TxValid = true
		if in.TxReady {
			next = AwaitActivate
		}
	case AwaitActivate:
		if in.Events.DMAActivate {
			next = TransferData
		}
	case TransferData:
		next = stepTransferData(in, &out)
	case IssueRead:
		next = stepIssueReadLike(s, in, &out, fis.CmdReadDMAExt)
	case IssueIdentify:
		next = stepIssueReadLike(s, in, &out, fis.CmdIdentifyDeviceDMA)
	case AwaitDataDone:
		if in.Events.DataComplete {
			next = AwaitStatus
		}
	case AwaitStatus:
		// Leaves after one cycle whether or not the status FIS has been seen.
		next = Idle
		if in.Events.RegD2H {
			next = Idle
		}
	default:
		panic("unknown issuer state")
	}

	return next, out
}

// The fixed header fields are driven every cycle. Address and length pass
// through from the head request beat.
func fixedFields(req Request) fis.Unit {
	return fis.Unit{
		PMPort:   0,
		Features: 0,
		LBA:      req.Address & fis.MaxLBA,
		Device:   fis.DeviceLBA,
		Count:    req.Length,
		ICC:      0,
		Control:  0,
	}
}

func commandFIS(u fis.Unit, cmd fis.Command) fis.Unit {
	u.Type = fis.TypeRegH2D
	u.C = true
	u.Command = cmd
	u.SOP = true
	u.EOP = true

	return u
}

func stepIdle(in IssuerInput, out *IssuerOutput) State {
	if !in.ReqValid {
		return Idle
	}

	if !in.Req.SOP {
		// Stray beats outside a request are drained.
		out.ReqAccept = true
		return Idle
	}

	switch in.Req.Operation() {
	case OpWrite:
		// The start beat stays at the head; it is the first payload beat.
		return IssueWrite
	case OpRead:
		return IssueRead
	case OpIdentify:
		return IssueIdentify
	default:
		out.ReqAccept = true
		return Idle
	}
}

func stepTransferData(in IssuerInput, out *IssuerOutput) State {
	out.Tx.Type = fis.TypeData
	out.Tx.Data = in.Req.Data
	out.Tx.SOP = in.Req.SOP
	out.Tx.EOP = in.Req.EOP
	out.TxValid = in.ReqValid
	out.ReqAccept = in.ReqValid && in.TxReady

	if out.ReqAccept && in.Req.EOP {
		return AwaitStatus
	}

	return TransferData
}

func stepIssueReadLike(
	s State,
	in IssuerInput,
	out *IssuerOutput,
	cmd fis.Command,
) State {
	out.Tx = commandFIS(out.Tx, cmd)
	out.TxValid = in.ReqValid
	out.ReqAccept = in.ReqValid && in.TxReady

	if out.ReqAccept {
		return AwaitDataDone
	}

	return s
}
