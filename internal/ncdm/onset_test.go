package ncdm

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/relic/internal/relic"
)

var _ = Describe("InitialScaleFactor", func() {
	const tol = 1e-3
	var r *Registry

	BeforeEach(func() {
		nu := laguerre30()
		nu.Omega0 = nuMassOmega
		heavy := laguerre30()
		heavy.MassEV = 5
		var err error
		r, _, err = Create([]SpeciesInput{nu, heavy, decaySpecies(4, 8)}, DefaultSettings())
		Expect(err).NotTo(HaveOccurred())
	})

	maxDeviation := func(a float64) float64 {
		worst := 0.0
		for id := 0; id < 2; id++ {
			m, err := r.Momenta(id, 1/a-1, Energy|Pressure)
			Expect(err).NotTo(HaveOccurred())
			worst = math.Max(worst, math.Abs(m.W()-1./3.))
		}
		return worst
	}

	It("returns the first power-of-ten epoch where every species is relativistic", func() {
		a, err := r.InitialScaleFactor(1, 1, tol)
		Expect(err).NotTo(HaveOccurred())
		Expect(a).To(BeNumerically("<", 1))
		Expect(maxDeviation(a)).To(BeNumerically("<", tol))
		Expect(maxDeviation(a * 10)).To(BeNumerically(">=", tol))
	})

	It("moves earlier for heavier species", func() {
		light, _, err := Create([]SpeciesInput{laguerre30()}, DefaultSettings())
		Expect(err).NotTo(HaveOccurred())
		aLight, err := light.InitialScaleFactor(1, 1, tol)
		Expect(err).NotTo(HaveOccurred())
		aHeavy, err := r.InitialScaleFactor(1, 1, tol)
		Expect(err).NotTo(HaveOccurred())
		Expect(aHeavy).To(BeNumerically("<", aLight))
	})

	It("accepts the starting epoch when it already qualifies", func() {
		a, err := r.InitialScaleFactor(1e-12, 1, tol)
		Expect(err).NotTo(HaveOccurred())
		Expect(a).To(Equal(1e-12))
	})

	It("stays finite at extremely early epochs", func() {
		a, err := r.InitialScaleFactor(1e-290, 1, tol)
		Expect(err).NotTo(HaveOccurred())
		Expect(a).To(Equal(1e-290))
	})

	It("fails to converge when the search runs out of attempts", func() {
		saved := onsetMaxIter
		onsetMaxIter = 2
		DeferCleanup(func() { onsetMaxIter = saved })

		_, err := r.InitialScaleFactor(1, 1, tol)
		Expect(err).To(MatchError(relic.ErrConvergence))
		Expect(errors.Is(err, relic.ErrNumerical)).To(BeFalse())

		var re *relic.Error
		Expect(errors.As(err, &re)).To(BeTrue())
		Expect(re.Residual).To(BeNumerically(">", tol))
	})

	It("rejects invalid arguments", func() {
		_, err := r.InitialScaleFactor(0, 1, tol)
		Expect(err).To(MatchError(relic.ErrInvalidInput))
		_, err = r.InitialScaleFactor(1, 1, 0)
		Expect(err).To(MatchError(relic.ErrInvalidInput))
	})
})
