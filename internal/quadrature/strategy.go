package quadrature

import (
	"fmt"

	"github.com/san-kum/relic/internal/relic"
)

// Strategy selects how nodes are placed. The integer values are the ids
// accepted in configuration files.
type Strategy int

const (
	Auto Strategy = iota
	Laguerre
	Trapezoid
	Midpoint
)

func (s Strategy) String() string {
	switch s {
	case Auto:
		return "auto"
	case Laguerre:
		return "laguerre"
	case Trapezoid:
		return "trapezoid"
	case Midpoint:
		return "midpoint"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// Manual reports whether the strategy uses a fixed node count.
func (s Strategy) Manual() bool { return s != Auto }

// ParseStrategy validates a strategy id.
func ParseStrategy(id int) (Strategy, error) {
	s := Strategy(id)
	switch s {
	case Auto, Laguerre, Trapezoid, Midpoint:
		return s, nil
	}
	return 0, relic.Invalid("quadrature", relic.NoSpecies, "unknown strategy id %d", id)
}
