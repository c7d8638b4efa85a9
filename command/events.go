package command

// Events are the pulses the classifier raises for the issuer. They are valid
// only in the cycle they are produced; nothing holds them across cycles.
type Events struct {
	DMAActivate  bool
	DataComplete bool
	RegD2H       bool
}

// Any tells if any pulse is asserted.
func (e Events) Any() bool {
	return e.DMAActivate || e.DataComplete || e.RegD2H
}
