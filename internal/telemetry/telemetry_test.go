package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/san-kum/relic/internal/ncdm"
	"github.com/san-kum/relic/internal/relic"
)

func TestObserverCounts(t *testing.T) {
	g := NewWithT(t)
	m := New()

	in := ncdm.DefaultSpecies(ncdm.Standard)
	in.Omega0 = 0.06 / 93.14 / (relic.DefaultH * relic.DefaultH)
	r, _, err := ncdm.Create([]ncdm.SpeciesInput{in, ncdm.DefaultSpecies(ncdm.Standard)}, ncdm.DefaultSettings(), ncdm.WithObserver(m))
	g.Expect(err).NotTo(HaveOccurred())
	m.Record(r, 250*time.Millisecond)

	g.Expect(testutil.ToFloat64(m.gridsBuilt.WithLabelValues(ncdm.GridBackground))).To(Equal(2.0))
	g.Expect(testutil.ToFloat64(m.gridsBuilt.WithLabelValues(ncdm.GridPerturbation))).To(Equal(2.0))
	g.Expect(testutil.CollectAndCount(m.gridNodes)).To(Equal(4))
	g.Expect(testutil.CollectAndCount(m.massIterations)).To(Equal(1))

	sp, _ := r.Species(1)
	g.Expect(testutil.ToFloat64(m.gridNodes.WithLabelValues("1", ncdm.GridBackground))).To(Equal(float64(sp.Background.Len())))
	g.Expect(testutil.ToFloat64(m.species)).To(Equal(2.0))
	g.Expect(testutil.ToFloat64(m.neff)).To(BeNumerically("~", r.Neff(), 1e-12))
	g.Expect(testutil.ToFloat64(m.setupDuration)).To(Equal(0.25))
}

func TestRecordWithoutRegistry(t *testing.T) {
	g := NewWithT(t)
	m := New()
	m.Record(nil, time.Second)
	g.Expect(testutil.ToFloat64(m.species)).To(BeZero())
}

func TestWriteTextfile(t *testing.T) {
	g := NewWithT(t)
	m := New()
	m.GridBuilt(0, ncdm.GridBackground, 12)
	m.MassSolved(0, 4)

	path := filepath.Join(t.TempDir(), "relic.prom")
	g.Expect(m.WriteTextfile(path)).To(Succeed())
	data, err := os.ReadFile(path)
	g.Expect(err).NotTo(HaveOccurred())
	text := string(data)
	g.Expect(text).To(ContainSubstring(`relic_quadrature_nodes{grid="background",species="0"} 12`))
	g.Expect(strings.Count(text, "relic_mass_solver_iterations_count 1")).To(Equal(1))
}
