// Package viz renders registry summaries and equation-of-state curves for
// the terminal.
//
//   - [SpeciesTable]: one styled row per species
//   - [EquationOfState]: asciigraph plot of w(z) per species
//   - [Theme]: colour schemes selected with SetTheme
package viz
