package ncdm

import (
	"bytes"
	"errors"
	"log/slog"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/relic/internal/quadrature"
	"github.com/san-kum/relic/internal/relic"
)

var _ = Describe("Create", func() {
	It("reports an empty input as not configured", func() {
		r, ok, err := Create(nil, DefaultSettings())
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
		Expect(r).To(BeNil())
		Expect(r.Len()).To(Equal(0))
	})

	It("defaults to an ultra-light mass when neither mass nor density is given", func() {
		r, ok, err := Create([]SpeciesInput{DefaultSpecies(Standard)}, DefaultSettings())
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(r.MassEV(0)).To(Equal(DefaultMassEV))
		Expect(r.Omega0()).To(BeNumerically(">", 0))
	})

	It("builds grids and reports them to the observer", func() {
		obs := &recordingObserver{}
		in := DefaultSpecies(Standard)
		in.Omega0 = nuMassOmega
		_, _, err := Create([]SpeciesInput{in, DefaultSpecies(Standard)}, DefaultSettings(), WithObserver(obs))
		Expect(err).NotTo(HaveOccurred())
		Expect(obs.grids).To(HaveKeyWithValue(GridBackground, 2))
		Expect(obs.grids).To(HaveKeyWithValue(GridPerturbation, 2))
		Expect(obs.solved).To(Equal([]int{0}))
	})

	It("logs a line per species at debug level", func() {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		_, _, err := Create([]SpeciesInput{DefaultSpecies(Standard)}, DefaultSettings(), WithLogger(logger))
		Expect(err).NotTo(HaveOccurred())
		Expect(buf.String()).To(ContainSubstring("ncdm species ready"))
		Expect(buf.String()).To(ContainSubstring("species=0"))
	})

	It("derives the density-of-record from omega", func() {
		in := DefaultSpecies(Standard)
		in.OmegaH2 = 0.0013
		r, _, err := Create([]SpeciesInput{in}, DefaultSettings())
		Expect(err).NotTo(HaveOccurred())
		sp, ok := r.Species(0)
		Expect(ok).To(BeTrue())
		Expect(sp.Omega0).To(BeNumerically("~", 0.0013/(relic.DefaultH*relic.DefaultH), 1e-15))
		Expect(sp.OmegaH2).To(BeNumerically("~", 0.0013, 1e-15))
	})

	DescribeTable("rejects invalid input",
		func(mutate func(*SpeciesInput), settings Settings) {
			in := DefaultSpecies(Standard)
			mutate(&in)
			_, ok, err := Create([]SpeciesInput{in}, settings)
			Expect(err).To(MatchError(relic.ErrInvalidInput))
			Expect(ok).To(BeFalse())
		},
		Entry("Omega and omega together", func(in *SpeciesInput) { in.Omega0, in.OmegaH2 = 0.01, 0.005 }, DefaultSettings()),
		Entry("negative degeneracy", func(in *SpeciesInput) { in.Degeneracy = -1 }, DefaultSettings()),
		Entry("zero temperature", func(in *SpeciesInput) { in.TRatio = 0 }, DefaultSettings()),
		Entry("negative mass", func(in *SpeciesInput) { in.MassEV = -0.1 }, DefaultSettings()),
		Entry("no manual nodes", func(in *SpeciesInput) { in.Strategy, in.Nodes = quadrature.Trapezoid, 0 }, DefaultSettings()),
		Entry("density below the massless limit", func(in *SpeciesInput) { in.Omega0 = 1e-9 }, DefaultSettings()),
		Entry("unknown strategy", func(in *SpeciesInput) { in.Strategy = 9 }, DefaultSettings()),
		Entry("non-positive h", func(in *SpeciesInput) {}, Settings{H: 0, TCMB: relic.DefaultTCMB, TolMass: 1e-7}),
	)

	It("names the offending species", func() {
		bad := DefaultSpecies(Standard)
		bad.Degeneracy = -1
		_, _, err := Create([]SpeciesInput{DefaultSpecies(Standard), bad}, DefaultSettings())
		var re *relic.Error
		Expect(err).To(BeAssignableToTypeOf(re))
		Expect(err.(*relic.Error).Species).To(Equal(1))
	})
})

var _ = Describe("Mass and density", func() {
	It("solves the mass of a 0.06 eV neutrino from its density", func() {
		in := DefaultSpecies(Standard)
		in.Omega0 = nuMassOmega
		r, _, err := Create([]SpeciesInput{in}, DefaultSettings())
		Expect(err).NotTo(HaveOccurred())
		Expect(r.MassEV(0)).To(BeNumerically("~", 0.06, 0.06*0.01))
	})

	It("round-trips mass to density and back", func() {
		in := DefaultSpecies(Standard)
		in.Omega0 = nuMassOmega
		solved, _, err := Create([]SpeciesInput{in}, DefaultSettings())
		Expect(err).NotTo(HaveOccurred())

		in = DefaultSpecies(Standard)
		in.MassEV = solved.MassEV(0)
		given, _, err := Create([]SpeciesInput{in}, DefaultSettings())
		Expect(err).NotTo(HaveOccurred())
		Expect(rel(given.Omega0(), nuMassOmega)).To(BeNumerically("<", 1e-5))

		sp, _ := given.Species(0)
		m, err := given.MassFromOmega(0, given.Omega0())
		Expect(err).NotTo(HaveOccurred())
		Expect(rel(m, sp.M)).To(BeNumerically("<", 1e-6))
	})

	It("rescales the degeneracy when both mass and density are given", func() {
		in := DefaultSpecies(Standard)
		in.MassEV = 0.06
		in.Omega0 = 2 * nuMassOmega
		r, _, err := Create([]SpeciesInput{in}, DefaultSettings())
		Expect(err).NotTo(HaveOccurred())
		Expect(r.Degeneracy(0)).To(BeNumerically("~", 2, 0.02))

		m, err := r.Momenta(0, 0, Energy)
		Expect(err).NotTo(HaveOccurred())
		h0 := relic.HubbleMpc(relic.DefaultH)
		Expect(rel(m.Rho/(h0*h0), 2*nuMassOmega)).To(BeNumerically("<", 1e-12))
	})

	It("gives one neutrino-like species a Neff near 1.0132", func() {
		r, _, err := Create([]SpeciesInput{laguerre30(), laguerre30(), laguerre30()}, DefaultSettings())
		Expect(err).NotTo(HaveOccurred())
		dn, err := r.DeltaNeff(1)
		Expect(err).NotTo(HaveOccurred())
		Expect(dn).To(BeNumerically("~", 1.0132, 1e-3))
		Expect(r.Neff()).To(BeNumerically("~", 3*dn, 1e-12))
	})

	It("sets the degeneracy from an early-time density", func() {
		r, _, err := Create([]SpeciesInput{laguerre30()}, DefaultSettings())
		Expect(err).NotTo(HaveOccurred())
		const zIni, omegaIni = 1e8, 0.02
		Expect(r.SetDegeneracyFromInitialOmega(0, zIni, omegaIni)).To(Succeed())

		m, err := r.Momenta(0, zIni, Energy)
		Expect(err).NotTo(HaveOccurred())
		h0 := relic.HubbleMpc(relic.DefaultH)
		Expect(rel(m.Rho*math.Pow(1+zIni, -4)/(h0*h0), omegaIni)).To(BeNumerically("<", 1e-10))
	})

	It("keeps Omega0 bookkeeping separate from the normalization", func() {
		r, _, err := Create([]SpeciesInput{laguerre30()}, DefaultSettings())
		Expect(err).NotTo(HaveOccurred())
		before, _ := r.Momenta(0, 0, Energy)
		Expect(r.SetOmega0(0, 0.3)).To(Succeed())
		after, _ := r.Momenta(0, 0, Energy)
		Expect(after.Rho).To(Equal(before.Rho))
		Expect(r.Omega0()).To(Equal(0.3))
		Expect(r.SetOmega0(0, -1)).To(MatchError(relic.ErrInvalidInput))
	})

	It("returns zero for unknown species in plain getters", func() {
		r, _, err := Create([]SpeciesInput{laguerre30()}, DefaultSettings())
		Expect(err).NotTo(HaveOccurred())
		Expect(r.MassEV(7)).To(BeZero())
		Expect(r.Degeneracy(-1)).To(BeZero())
		_, err = r.Momenta(3, 0, Energy)
		Expect(err).To(MatchError(relic.ErrInvalidInput))
	})
})

var _ = Describe("MassFromOmega", func() {
	It("reports non-convergence when Newton runs out of iterations", func() {
		obs := &recordingObserver{}
		in := laguerre30()
		in.MassEV = 0.003
		r, _, err := Create([]SpeciesInput{in}, DefaultSettings(), WithObserver(obs))
		Expect(err).NotTo(HaveOccurred())
		target := r.Omega0()

		saved := massMaxIter
		massMaxIter = 1
		DeferCleanup(func() { massMaxIter = saved })

		_, err = r.MassFromOmega(0, target)
		Expect(err).To(MatchError(relic.ErrConvergence))

		var re *relic.Error
		Expect(errors.As(err, &re)).To(BeTrue())
		Expect(re.Species).To(Equal(0))
		Expect(re.Residual).To(BeNumerically(">", DefaultSettings().TolMass))
		Expect(obs.solved).To(BeEmpty())
	})
})
