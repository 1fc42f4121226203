// Package psd provides phase-space distribution functions for relic species.
//
// Three variants implement [relic.Distribution]:
//
//   - [FermiDirac]: analytic Fermi-Dirac with a chemical potential
//   - [Tabulated]: natural cubic spline through sampled (q, f0) pairs, with
//     a flat extension below the table and an exponential tail above it
//   - [DecaySeed]: the daughter population before any decay has happened
//
// [LogDerivative] estimates dln f0/dln q on a momentum grid using a
// five-point stencil whose step is chosen to stay clear of rounding noise.
package psd
