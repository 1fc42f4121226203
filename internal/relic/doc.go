// Package relic provides the shared primitives for non-cold relic species.
//
// The package defines the types every other layer builds on:
//
//   - [Distribution]: phase-space density f0(q) over comoving momentum
//   - [DistributionFunc]: adapter turning a plain function into a Distribution
//   - [Error]: error carrying the failing operation, species and residual
//   - physical constants in SI units plus the cosmological unit conversions
//
// # Error Taxonomy
//
// Three sentinel errors classify every failure:
//
//	ErrInvalidInput  malformed or mutually exclusive configuration
//	ErrConvergence   an iterative search ran out of iterations
//	ErrNumerical     a quadrature could not meet its tolerance
//
// None of them are retryable. Match with [errors.Is].
package relic
