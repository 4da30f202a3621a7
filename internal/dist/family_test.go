package dist

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{"short normal", "norm", "norm", false},
		{"long normal", "normal", "norm", false},
		{"short lognormal", "lognorm", "lognorm", false},
		{"long lognormal", "lognormal", "lognorm", false},
		{"case and whitespace", " LogNorm ", "lognorm", false},
		{"unknown family", "weibull", "", true},
		{"empty name", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fam, err := Lookup(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, fam.Name())
		})
	}
}

func TestNormal(t *testing.T) {
	fam := Normal{}

	t.Run("standard normal values", func(t *testing.T) {
		assert.InDelta(t, 1/math.Sqrt(2*math.Pi), fam.PDF(0, 0, 1, 0), 1e-12)
		assert.InDelta(t, 0.5, fam.CDF(0, 0, 1, 0), 1e-12)
		assert.InDelta(t, 0, fam.Quantile(0.5, 0, 1, 0), 1e-12)
		assert.InDelta(t, 1.959963985, fam.Quantile(0.975, 0, 1, 0), 1e-6)
	})

	t.Run("location and scale", func(t *testing.T) {
		// N(3, 2) density at its mean.
		assert.InDelta(t, 1/(2*math.Sqrt(2*math.Pi)), fam.PDF(3, 3, 2, 0), 1e-12)
		assert.InDelta(t, 0.5, fam.CDF(3, 3, 2, 0), 1e-12)
	})

	t.Run("quantile round trip", func(t *testing.T) {
		for _, p := range []float64{0.01, 0.2, 0.5, 0.8, 0.99} {
			x := fam.Quantile(p, 1.5, 0.7, 0)
			assert.InDelta(t, p, fam.CDF(x, 1.5, 0.7, 0), 1e-10)
		}
	})

	t.Run("parameter domain", func(t *testing.T) {
		assert.True(t, fam.ParamsOK(0, 1, 0))
		assert.False(t, fam.ParamsOK(0, 0, 0))
		assert.False(t, fam.ParamsOK(0, -1, 0))
		assert.False(t, fam.ParamsOK(math.NaN(), 1, 0))
	})
}

func TestLogNormal(t *testing.T) {
	fam := LogNormal{}

	t.Run("density below support is zero", func(t *testing.T) {
		assert.Equal(t, 0.0, fam.PDF(1.0, 2.0, 1, 0.5))
		assert.Equal(t, 0.0, fam.CDF(2.0, 2.0, 1, 0.5))
	})

	t.Run("standard lognormal median", func(t *testing.T) {
		// With loc=0, scale=1 the median is scale = 1.
		assert.InDelta(t, 0.5, fam.CDF(1.0, 0, 1, 0.5), 1e-12)
		assert.InDelta(t, 1.0, fam.Quantile(0.5, 0, 1, 0.5), 1e-10)
	})

	t.Run("shifted and scaled", func(t *testing.T) {
		// Median of loc + scale*exp(shape*Z) is loc + scale.
		assert.InDelta(t, 2.0+3.0, fam.Quantile(0.5, 2.0, 3.0, 1.5), 1e-9)
		assert.InDelta(t, 0.5, fam.CDF(5.0, 2.0, 3.0, 1.5), 1e-12)
	})

	t.Run("pdf matches analytic form", func(t *testing.T) {
		loc, scale, shape := 0.5, 2.0, 0.8
		x := 3.7
		z := math.Log((x - loc) / scale) / shape
		want := math.Exp(-0.5*z*z) / ((x - loc) * shape * math.Sqrt(2*math.Pi))
		assert.InDelta(t, want, fam.PDF(x, loc, scale, shape), 1e-12)
	})

	t.Run("quantile round trip", func(t *testing.T) {
		for _, p := range []float64{0.05, 0.3, 0.5, 0.7, 0.95} {
			x := fam.Quantile(p, 1.0, 2.0, 0.6)
			assert.InDelta(t, p, fam.CDF(x, 1.0, 2.0, 0.6), 1e-10)
		}
	})

	t.Run("parameter domain", func(t *testing.T) {
		assert.True(t, fam.ParamsOK(0, 1, 0.5))
		assert.False(t, fam.ParamsOK(0, 1, 0))
		assert.False(t, fam.ParamsOK(0, 0, 0.5))
	})

	t.Run("support", func(t *testing.T) {
		lo, hi := fam.Support(2.0, 1.0, 0.5)
		assert.Equal(t, 2.0, lo)
		assert.True(t, math.IsInf(hi, 1))
	})
}
