// Package rf provides the multiport network primitives used by the
// de-embedding strategies: frequency grids and per-frequency complex
// scattering matrices with consistent S/Y/Z round-trip conversion.
//
// Networks are value types with copy semantics. A network holds one
// complex square matrix per frequency sample, stored in scattering form
// at a real per-port reference impedance. Admittance and impedance views
// are derived on demand and written back through the scattering form,
// so repeated domain changes stay consistent.
//
// Two-port specific operations (series cascade, de-embedding inverse,
// port flip) are provided for the fixture-removal algorithms. Cascading
// uses wave cascading (T) matrices:
//
//	T = 1/s21 * | -det(S)  s11 |
//	            | -s22     1   |
//
// so that T_total = T1 * T2 for a series connection.
package rf
