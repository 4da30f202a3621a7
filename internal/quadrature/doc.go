// Package quadrature implements adaptive Gauss–Kronrod integration over
// finite intervals.
//
// The likelihood engine convolves marginal densities with measurement-error
// kernels that can be very narrow relative to the marginal's support.
// Fixed-grid rules under-resolve such integrands, so this package bisects
// the interval adaptively, always splitting the subinterval with the
// largest error estimate, until the G7/K15 error bound falls below
// tolerance or the interval budget is exhausted.
//
// The interval budget doubles as a latency safety valve: pathological
// parameter regions cannot trigger runaway subdivision. When the budget
// runs out, Integrate returns the best achieved estimate with
// Result.Converged set to false rather than failing.
package quadrature
