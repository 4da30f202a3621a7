// Package dist provides the closed set of distribution families available
// to the likelihood engine, selected by name once at engine construction.
//
// Every family exposes {PDF, CDF, Quantile, Support} under a shared
// location/scale/shape parametrization so that heterogeneous marginals can
// be mixed through a common Gaussian-copula transform. The same families
// double as measurement-error kernels, where the observed cell's
// uncertainty supplies the kernel scale.
//
// Families are stateless values; all parameters arrive per call, which
// keeps repeated evaluation under changing population parameters free of
// shared mutable state.
package dist
