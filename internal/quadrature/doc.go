// Package quadrature builds momentum grids and weights for integrating
// moments of a phase-space distribution.
//
// A [Set] holds abscissas Q, weights W that already include f0(q), and the
// bare step sizes DQ with W = DQ*f0. Two construction modes exist:
//
//   - [Automatic]: grows the node count until the weighted [Probe]
//     integral matches its reference within a tolerance
//   - [Manual]: a fixed node count placed by a deterministic [Strategy]
package quadrature
