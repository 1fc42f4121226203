package ncdm

// Observer is notified of setup-phase numerics.
type Observer interface {
	GridBuilt(species int, grid string, nodes int)
	MassSolved(species int, iterations int)
}

type nopObserver struct{}

func (nopObserver) GridBuilt(int, string, int) {}
func (nopObserver) MassSolved(int, int)        {}

// Grid names reported to observers.
const (
	GridBackground   = "background"
	GridPerturbation = "perturbation"
)
