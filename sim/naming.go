package sim

import (
	"log"
	"strings"
)

// NameMustBeValid panics if the name does not follow the dot-separated,
// capitalized naming convention, e.g., "Host.CommandLayer".
func NameMustBeValid(name string) {
	if name == "" {
		log.Panic("name must not be empty")
	}

	for _, elem := range strings.Split(name, ".") {
		if elem == "" {
			log.Panicf("name %q has an empty element", name)
		}

		if strings.ContainsAny(elem, "_\"'- ") {
			log.Panicf("name %q contains invalid characters", name)
		}

		if elem[0] < 'A' || elem[0] > 'Z' {
			log.Panicf("name element %q must start with a capital letter", elem)
		}
	}
}
