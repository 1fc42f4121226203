// Package ncdm computes background quantities of non-cold relic species.
//
// A [Registry] is built once from typed per-species input. For every species
// it samples momentum space (a background grid and a perturbation grid),
// estimates dln f0/dln q, fixes the normalization and, when only a density
// is given, solves for the mass. Afterwards the registry answers:
//
//   - [Registry.Momenta]: number density, energy density, pressure,
//     dρ/dM and pseudo-pressure at a redshift
//   - [Registry.MomentaDegeneracy]: the same with the degeneracy as input
//   - [Registry.Rescaled]: moments of decay-sourced species whose occupation
//     is stored as log-amplitudes in an externally owned state vector
//   - [Registry.InitialScaleFactor]: the earliest safe ultra-relativistic
//     starting epoch
//
// # Decay-sourced species
//
// Each decay-sourced species owns a contiguous slice of the shared state
// vector. Offsets follow registration order and never overlap:
//
//	state: [ species 2 bins | species 4 bins | ... ]
//	         Offset=0          Offset=len(bins of 2)
//
// # Thread Safety
//
// After [Create] returns, read methods are safe for concurrent use as long
// as no setter runs and the state vector is not being written. The registry
// performs no locking.
package ncdm
