package command

import "github.com/sarchlab/satacmd/fis"

// ClassifierInput is what the classifier samples in one cycle.
type ClassifierInput struct {
	// Rx is the head unit of the transport inbound stream.
	Rx      fis.Unit
	RxValid bool

	// RspReady is the caller's accept signal on the response stream.
	RspReady bool
}

// Disposition tells what the classifier did with an inbound unit.
type Disposition int

// Dispositions.
const (
	NoInput Disposition = iota
	Consumed
	Forwarded
	Stalled
	Dropped
)

func (d Disposition) String() string {
	switch d {
	case NoInput:
		return "NoInput"
	case Consumed:
		return "Consumed"
	case Forwarded:
		return "Forwarded"
	case Stalled:
		return "Stalled"
	case Dropped:
		return "Dropped"
	default:
		return "Unknown"
	}
}

// ClassifierOutput is what the classifier drives in one cycle.
type ClassifierOutput struct {
	RxAccept bool

	Rsp      Response
	RspValid bool

	Events      Events
	Disposition Disposition
}

// Classify evaluates the classifier for one cycle. All outputs depend only on
// the inputs of the same cycle.
func Classify(in ClassifierInput) ClassifierOutput {
	out := ClassifierOutput{}

	if !in.RxValid {
		return out
	}

	switch in.Rx.Type {
	case fis.TypeRegD2H:
		out.Events.RegD2H = true
		out.RxAccept = true
		out.Disposition = Consumed
	case fis.TypeDMAActivateD2H:
		out.Events.DMAActivate = true
		out.RxAccept = true
		out.Disposition = Consumed
	case fis.TypeData:
		out.RspValid = true
		out.Rsp = Response{
			Data: in.Rx.Data,
			SOP:  in.Rx.SOP,
			EOP:  in.Rx.EOP,
		}
		out.RxAccept = in.RspReady
		out.Events.DataComplete = in.Rx.EOP && in.RspReady
		out.Disposition = Forwarded
		if !in.RspReady {
			out.Disposition = Stalled
		}
	default:
		out.RxAccept = true
		out.Disposition = Dropped
	}

	return out
}
