package ncdm

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/relic/internal/relic"
)

// Row is the moments of every species at one redshift.
type Row struct {
	Z       float64
	Moments []Moments
}

// minChunk keeps tiny tables on one goroutine.
const minChunk = 16

// Table evaluates Momenta for all species on a redshift grid. Rows are
// split into chunks and computed concurrently; the output keeps the input
// order.
func (r *Registry) Table(ctx context.Context, zs []float64, want Quantity) ([]Row, error) {
	for _, z := range zs {
		if z <= -1 || math.IsNaN(z) {
			return nil, relic.Invalid("table", relic.NoSpecies, "redshift must exceed -1, got %g", z)
		}
	}

	rows := make([]Row, len(zs))
	workers := runtime.GOMAXPROCS(0)
	if len(zs) <= minChunk || workers <= 1 {
		if err := r.fill(ctx, rows, zs, want, 0, len(zs)); err != nil {
			return nil, err
		}
		return rows, nil
	}
	chunk := (len(zs) + workers - 1) / workers
	if chunk < minChunk {
		chunk = minChunk
	}

	g, ctx := errgroup.WithContext(ctx)
	for start := 0; start < len(zs); start += chunk {
		end := min(start+chunk, len(zs))
		g.Go(func() error {
			return r.fill(ctx, rows, zs, want, start, end)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Registry) fill(ctx context.Context, rows []Row, zs []float64, want Quantity, start, end int) error {
	for i := start; i < end; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		row := Row{Z: zs[i], Moments: make([]Moments, len(r.species))}
		for id, sp := range r.species {
			row.Moments[id] = moments(sp.Background, sp.factor, sp.Deg, sp.M, zs[i], want)
		}
		rows[i] = row
	}
	return nil
}

// RedshiftGrid returns n redshifts with 1+z log-spaced between 1+zMin and
// 1+zMax.
func RedshiftGrid(zMin, zMax float64, n int) ([]float64, error) {
	if n < 2 || zMin <= -1 || zMax <= zMin {
		return nil, relic.Invalid("redshift grid", relic.NoSpecies, "need n >= 2 and -1 < zmin < zmax, got n=%d [%g, %g]", n, zMin, zMax)
	}
	zs := floats.LogSpan(make([]float64, n), 1+zMin, 1+zMax)
	floats.AddConst(-1, zs)
	return zs, nil
}
