package ncdm

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/relic/internal/quadrature"
	"github.com/san-kum/relic/internal/relic"
)

var _ = Describe("Momenta", func() {
	var r *Registry

	BeforeEach(func() {
		nu := laguerre30()
		nu.Omega0 = nuMassOmega
		var err error
		r, _, err = Create([]SpeciesInput{nu, DefaultSpecies(Standard)}, DefaultSettings())
		Expect(err).NotTo(HaveOccurred())
	})

	It("reproduces the relativistic energy per particle", func() {
		m, err := r.Momenta(0, 1e6, Number|Energy)
		Expect(err).NotTo(HaveOccurred())
		want := 7 * math.Pow(math.Pi, 4) / (180 * zeta3)
		Expect(rel(m.Rho/m.N/(1+1e6), want)).To(BeNumerically("<", 1e-4))
	})

	It("stays close to the closed form on an automatic grid", func() {
		m, err := r.Momenta(1, 1e6, Number|Energy)
		Expect(err).NotTo(HaveOccurred())
		want := 7 * math.Pow(math.Pi, 4) / (180 * zeta3)
		Expect(rel(m.Rho/m.N/(1+1e6), want)).To(BeNumerically("<", 1e-2))
	})

	It("fills only the requested quantities", func() {
		m, err := r.Momenta(0, 0, Energy|Pressure)
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Has(Energy)).To(BeTrue())
		Expect(m.Has(Number)).To(BeFalse())
		Expect(m.N).To(BeZero())
		Expect(m.DRhoDM).To(BeZero())
		Expect(m.Rho).To(BeNumerically(">", 0))
	})

	It("orders the moments physically", func() {
		for _, z := range []float64{0, 1, 100, 1e5} {
			m, err := r.Momenta(0, z, AllMoments)
			Expect(err).NotTo(HaveOccurred())
			Expect(m.W()).To(BeNumerically(">", 0))
			Expect(m.W()).To(BeNumerically("<=", 1./3.+1e-12))
			Expect(m.PseudoP).To(BeNumerically("<=", m.P*(1+1e-12)))
			Expect(m.DRhoDM).To(BeNumerically(">", 0))
		}
	})

	It("matches a finite difference for drho/dM", func() {
		sp, _ := r.Species(0)
		const z = 50.0
		h := sp.M * 1e-6
		up := moments(sp.Background, sp.factor, sp.Deg, sp.M+h, z, Energy)
		down := moments(sp.Background, sp.factor, sp.Deg, sp.M-h, z, Energy)
		m, _ := r.Momenta(0, z, EnergyMassDerivative)
		Expect(rel(m.DRhoDM, (up.Rho-down.Rho)/(2*h))).To(BeNumerically("<", 1e-6))
	})

	It("scales linearly with an explicit degeneracy", func() {
		one, err := r.MomentaDegeneracy(0, 1, 10, Energy|EnergyDegeneracyDerivative)
		Expect(err).NotTo(HaveOccurred())
		two, err := r.MomentaDegeneracy(0, 2, 10, Energy|EnergyDegeneracyDerivative)
		Expect(err).NotTo(HaveOccurred())
		Expect(rel(two.Rho, 2*one.Rho)).To(BeNumerically("<", 1e-14))
		Expect(rel(two.DRhoDDeg, one.Rho)).To(BeNumerically("<", 1e-14))

		_, err = r.MomentaDegeneracy(0, 0, 10, EnergyDegeneracyDerivative)
		Expect(err).To(MatchError(relic.ErrInvalidInput))
	})

	It("rejects a redshift at or below -1", func() {
		_, err := r.Momenta(0, -1, Energy)
		Expect(err).To(MatchError(relic.ErrInvalidInput))
	})
})

var _ = Describe("Manual grids end to end", func() {
	It("integrates a five-node trapezoid species", func() {
		in := DefaultSpecies(Standard)
		in.Strategy = quadrature.Trapezoid
		in.Nodes = 5
		in.QMax = 15
		in.Degeneracy = 2
		in.TRatio = 0.71611
		r, _, err := Create([]SpeciesInput{in}, DefaultSettings())
		Expect(err).NotTo(HaveOccurred())

		sp, _ := r.Species(0)
		Expect(sp.Background.Q).To(Equal([]float64{3, 6, 9, 12, 15}))
		Expect(sp.Perturbation.Len()).To(Equal(5))
		Expect(sp.DLnF0DLnQ).To(HaveLen(5))

		m, err := r.Momenta(0, 0, Energy|Pressure)
		Expect(err).NotTo(HaveOccurred())
		Expect(m.P).To(BeNumerically("~", m.Rho/3, m.Rho/3*0.01))

		one, err := r.MomentaDegeneracy(0, 1, 0, Energy)
		Expect(err).NotTo(HaveOccurred())
		Expect(rel(m.Rho, 2*one.Rho)).To(BeNumerically("<", 1e-14))
	})
})

var _ = Describe("Table", func() {
	var r *Registry

	BeforeEach(func() {
		var err error
		r, _, err = Create([]SpeciesInput{laguerre30(), DefaultSpecies(Standard)}, DefaultSettings())
		Expect(err).NotTo(HaveOccurred())
	})

	It("keeps row order and agrees with Momenta", func() {
		zs, err := RedshiftGrid(0, 1e4, 100)
		Expect(err).NotTo(HaveOccurred())
		rows, err := r.Table(context.Background(), zs, Energy|Pressure)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(100))
		for i, row := range rows {
			Expect(row.Z).To(Equal(zs[i]))
			Expect(row.Moments).To(HaveLen(2))
			m, _ := r.Momenta(1, zs[i], Energy|Pressure)
			Expect(row.Moments[1]).To(Equal(m))
		}
	})

	It("stops on a cancelled context", func() {
		zs, _ := RedshiftGrid(0, 10, 64)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := r.Table(ctx, zs, Energy)
		Expect(err).To(MatchError(context.Canceled))
	})

	It("validates the grid", func() {
		_, err := RedshiftGrid(5, 1, 10)
		Expect(err).To(MatchError(relic.ErrInvalidInput))
		_, err = r.Table(context.Background(), []float64{0, -2}, Energy)
		Expect(err).To(MatchError(relic.ErrInvalidInput))
	})

	It("spans the requested range in log(1+z)", func() {
		zs, err := RedshiftGrid(0, 99, 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(zs[0]).To(BeNumerically("~", 0, 1e-12))
		Expect(zs[1]).To(BeNumerically("~", 9, 1e-9))
		Expect(zs[2]).To(BeNumerically("~", 99, 1e-9))
	})
})
