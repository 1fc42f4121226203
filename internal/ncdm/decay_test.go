package ncdm

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/relic/internal/quadrature"
	"github.com/san-kum/relic/internal/relic"
)

var _ = Describe("Decay-sourced species", func() {
	var r *Registry

	BeforeEach(func() {
		var err error
		r, _, err = Create([]SpeciesInput{
			laguerre30(),
			decaySpecies(4, 8),
			decaySpecies(6, 12),
		}, DefaultSettings())
		Expect(err).NotTo(HaveOccurred())
	})

	It("lays out channels back to back", func() {
		Expect(r.DecaySpecies()).To(Equal([]int{1, 2}))
		Expect(r.DecayBins()).To(Equal(10))

		first, ok := r.Channel(1)
		Expect(ok).To(BeTrue())
		Expect(first.Ordinal).To(Equal(0))
		Expect(first.Offset).To(Equal(0))
		Expect(first.Source).To(Equal(0))
		Expect(first.DQ).To(Equal([]float64{2, 2, 2, 2}))

		second, _ := r.Channel(2)
		Expect(second.Ordinal).To(Equal(1))
		Expect(second.Offset).To(Equal(4))
		Expect(second.DQ).To(HaveLen(6))

		_, ok = r.Channel(0)
		Expect(ok).To(BeFalse())
	})

	It("shifts dark radiation indices past a decaying cold source", func() {
		s := DefaultSettings()
		s.HasDCDM = true
		r, _, err := Create([]SpeciesInput{decaySpecies(4, 8)}, s)
		Expect(err).NotTo(HaveOccurred())
		ch, _ := r.Channel(0)
		Expect(ch.Source).To(Equal(1))
	})

	It("converts the lifetime to a rate in 1/Mpc", func() {
		ch, _ := r.Channel(1)
		Expect(ch.Gamma).To(BeNumerically("~", relic.RateToMpc(relic.LifetimeToRate(1e9)), 1e-30))
		Expect(ch.Gamma).To(BeNumerically(">", 0))
	})

	It("has no density until weights are set", func() {
		m, err := r.Momenta(1, 0, Energy|Pressure)
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Rho).To(BeZero())
		Expect(m.W()).To(BeZero())
		Expect(r.MassEV(1)).To(Equal(DefaultDecayMassEV))

		sp, _ := r.Species(1)
		Expect(sp.Omega0).To(BeZero())
		Expect(sp.Background.Q).To(Equal(sp.Perturbation.Q))

		Expect(r.SetBackgroundWeight(1, 0, 1e-3)).To(Succeed())
		m, err = r.Momenta(1, 0, Energy)
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Rho).To(BeNumerically(">", 0))

		Expect(r.SetBackgroundWeight(1, 4, 1)).To(MatchError(relic.ErrInvalidInput))
	})

	It("starts from a thermal seed when populated", func() {
		in := decaySpecies(4, 8)
		in.Decay.InitialPopulation = true
		r, _, err := Create([]SpeciesInput{in}, DefaultSettings())
		Expect(err).NotTo(HaveOccurred())
		m, _ := r.Momenta(0, 0, Energy)
		Expect(m.Rho).To(BeNumerically(">", 0))
		Expect(r.Omega0()).To(BeNumerically(">", 0))
	})

	DescribeTable("rejects invalid decay input",
		func(mutate func(*SpeciesInput)) {
			in := decaySpecies(4, 8)
			mutate(&in)
			_, _, err := Create([]SpeciesInput{in}, DefaultSettings())
			Expect(err).To(MatchError(relic.ErrInvalidInput))
		},
		Entry("no rate", func(in *SpeciesInput) { in.Decay.Lifetime = nil }),
		Entry("two rates", func(in *SpeciesInput) { in.Decay.Log10Gamma = ptr(-2) }),
		Entry("negative lifetime", func(in *SpeciesInput) { in.Decay.Lifetime = ptr(-1) }),
		Entry("automatic grid", func(in *SpeciesInput) { in.Strategy = quadrature.Auto }),
		Entry("no mass", func(in *SpeciesInput) { in.MassEV = 0 }),
		Entry("density given", func(in *SpeciesInput) { in.Omega0 = 0.01 }),
	)

	Describe("rescaled moments", func() {
		state := func(shift float64) []float64 {
			s := make([]float64, 10)
			for i := range s {
				s[i] = -float64(i) - shift
			}
			return s
		}

		It("offsets by the margin above the largest amplitude", func() {
			lnN, err := r.RescalingOffset(2, state(0))
			Expect(err).NotTo(HaveOccurred())
			Expect(lnN).To(Equal(4 + RescaleMargin))
		})

		It("is invariant under a constant shift of ln f", func() {
			for _, a := range []float64{1e-8, 1e-3, 1} {
				base, err := r.Rescaled(1, a, state(0))
				Expect(err).NotTo(HaveOccurred())
				shifted, err := r.Rescaled(1, a, state(5000))
				Expect(err).NotTo(HaveOccurred())

				Expect(shifted.LnN - base.LnN).To(BeNumerically("~", 5000, 1e-9))
				Expect(rel(shifted.W(), base.W())).To(BeNumerically("<", 1e-12))
				Expect(rel(shifted.PseudoPOverP(), base.PseudoPOverP())).To(BeNumerically("<", 1e-12))
				Expect(math.IsInf(shifted.Rho, 0)).To(BeFalse())
				Expect(shifted.Rho).To(BeNumerically(">", 0))
			}
		})

		It("runs from radiation-like to matter-like", func() {
			early, _ := r.Rescaled(1, 1e-10, state(0))
			Expect(early.W()).To(BeNumerically("~", 1./3., 1e-6))
			Expect(early.PseudoPOverP()).To(BeNumerically("~", 1, 1e-6))

			late, _ := r.Rescaled(1, 1, state(0))
			Expect(late.W()).To(BeNumerically("<", 0.01))
			Expect(late.W()).To(BeNumerically(">", 0))
		})

		It("returns zero moments for an empty species", func() {
			s := make([]float64, 10)
			for i := range s {
				s[i] = math.Inf(-1)
			}
			m, err := r.Rescaled(2, 1, s)
			Expect(err).NotTo(HaveOccurred())
			Expect(math.IsInf(m.LnN, 1)).To(BeTrue())
			Expect(m.W()).To(BeZero())
			Expect(m.PseudoPOverP()).To(BeZero())
		})

		It("rejects bad input", func() {
			_, err := r.Rescaled(0, 1, state(0))
			Expect(err).To(MatchError(relic.ErrInvalidInput))
			_, err = r.Rescaled(2, 1, state(0)[:5])
			Expect(err).To(MatchError(relic.ErrInvalidInput))
			_, err = r.Rescaled(1, 0, state(0))
			Expect(err).To(MatchError(relic.ErrInvalidInput))

			bad := state(0)
			bad[1] = math.NaN()
			_, err = r.Rescaled(1, 1, bad)
			Expect(err).To(MatchError(relic.ErrNumerical))
		})
	})
})
