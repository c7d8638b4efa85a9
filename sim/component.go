package sim

// A Named object is an object that has a name.
type Named interface {
	Name() string
}

// A Ticker is an object that updates states with ticks. Tick returns true if
// the ticker made progress in the cycle.
type Ticker interface {
	Tick() bool
}

// A Component is an element that is being simulated. It is advanced by the
// engine once per cycle.
type Component interface {
	Named
	Hookable
	Ticker
}

// ComponentBase provides some functions that other component can use.
type ComponentBase struct {
	HookableBase

	name string
}

// NewComponentBase creates a new ComponentBase
func NewComponentBase(name string) *ComponentBase {
	NameMustBeValid(name)

	c := new(ComponentBase)
	c.name = name

	return c
}

// Name returns the name of the component.
func (c *ComponentBase) Name() string {
	return c.name
}
