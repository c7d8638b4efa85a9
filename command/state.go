package command

// State is a state of the command issuer.
type State int

// Issuer states.
const (
	Idle State = iota
	IssueWrite
	AwaitActivate
	TransferData
	IssueRead
	IssueIdentify
	AwaitDataDone
	AwaitStatus
)

var stateNames = [...]string{
	Idle:          "Idle",
	IssueWrite:    "IssueWrite",
	AwaitActivate: "AwaitActivate",
	TransferData:  "TransferData",
	IssueRead:     "IssueRead",
	IssueIdentify: "IssueIdentify",
	AwaitDataDone: "AwaitDataDone",
	AwaitStatus:   "AwaitStatus",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}

	return stateNames[s]
}

// Transmitting tells if the issuer drives the transport in this state.
func (s State) Transmitting() bool {
	switch s {
	case IssueWrite, TransferData, IssueRead, IssueIdentify:
		return true
	default:
		return false
	}
}

// Waiting tells if the issuer is parked until an event arrives.
func (s State) Waiting() bool {
	return s == AwaitActivate || s == AwaitDataDone
}
