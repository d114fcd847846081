// Package tdr implements the causal time-domain utilities behind the
// IEEE-P370 fixture-splitting strategies: Hermitian spectral extension,
// impulse and step transforms, the causal DC-point solver, TDR impedance
// extraction, transmission-line segment synthesis, iterative peeling and
// Nyquist-rate-point delay normalization.
//
// All routines share one time-domain convention. A one-sided spectrum of
// n samples on a uniform grid (df, 2*df, ..., n*df) plus an explicit DC
// value is extended to a two-sided Hermitian spectrum of length
// N = 2n + 1 and inverse-transformed at exactly that length, giving a
// real sequence with time step dt = 1/(N*df). Shifted sequences place
// t = 0 at index n. Reference indices (signal arrival, truncation
// boundaries, peel counts) are always expressed in these single-rate
// samples.
package tdr
