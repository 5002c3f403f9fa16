package main

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

// =============================================================================
// Matrix validation
// =============================================================================

func TestValidateCorrelationMatrix(t *testing.T) {
	tests := []struct {
		name    string
		matrix  [][]float64
		wantErr error
	}{
		{"identity", [][]float64{{1, 0}, {0, 1}}, nil},
		{"valid 3x3", [][]float64{{1, 0.3, -0.2}, {0.3, 1, 0.5}, {-0.2, 0.5, 1}}, nil},
		{"empty", nil, ErrCorrelationShape},
		{"ragged", [][]float64{{1, 0}, {0}}, ErrCorrelationShape},
		{"diagonal not one", [][]float64{{1, 0}, {0, 0.9}}, ErrCorrelationDiagonal},
		{"out of range", [][]float64{{1, 1.5}, {1.5, 1}}, ErrCorrelationRange},
		{"nan entry", [][]float64{{1, math.NaN()}, {math.NaN(), 1}}, ErrCorrelationRange},
		{"asymmetric", [][]float64{{1, 0.2}, {0.3, 1}}, ErrCorrelationAsymmetric},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateCorrelationMatrix(tc.matrix)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.wantErr), "got %v, want %v", err, tc.wantErr)
			assert.True(t, errors.Is(err, ErrInvalidConfiguration), "every validation error is an invalid configuration")
		})
	}
}

func TestNewReturnGenerator_Errors(t *testing.T) {
	identity := [][]float64{{1, 0}, {0, 1}}

	t.Run("group out of range", func(t *testing.T) {
		assets := []Asset{{ID: "a", CorrelationGroup: 3}}
		_, err := NewReturnGenerator(LegacyCorrelation, assets, identity)
		assert.ErrorIs(t, err, ErrCorrelationGroup)
	})

	t.Run("group zero", func(t *testing.T) {
		assets := []Asset{{ID: "a", CorrelationGroup: 0}}
		_, err := NewReturnGenerator(LegacyCorrelation, assets, identity)
		assert.ErrorIs(t, err, ErrCorrelationGroup)
	})

	t.Run("unknown mode", func(t *testing.T) {
		assets := []Asset{{ID: "a", CorrelationGroup: 1}}
		_, err := NewReturnGenerator("copula", assets, identity)
		assert.ErrorIs(t, err, ErrUnknownOption)
	})

	t.Run("cholesky rejects indefinite matrix", func(t *testing.T) {
		indefinite := [][]float64{{1, 0.9, -0.9}, {0.9, 1, 0.9}, {-0.9, 0.9, 1}}
		assets := []Asset{{ID: "a", CorrelationGroup: 1}}
		_, err := NewReturnGenerator(CholeskyCorrelation, assets, indefinite)
		assert.ErrorIs(t, err, ErrNotPositiveDefinite)

		// The legacy generator accepts the same matrix
		_, err = NewReturnGenerator(LegacyCorrelation, assets, indefinite)
		assert.NoError(t, err)
	})
}

// =============================================================================
// Legacy lower-triangular generator
// =============================================================================

func TestLegacyGenerator_IdentityUsesOwnShock(t *testing.T) {
	assets := []Asset{
		{ID: "a", ExpectedReturn: 0.05, Volatility: 0.1, CorrelationGroup: 1},
		{ID: "b", ExpectedReturn: 0.02, Volatility: 0.3, CorrelationGroup: 2},
	}
	gen, err := NewReturnGenerator(LegacyCorrelation, assets, [][]float64{{1, 0}, {0, 1}})
	require.NoError(t, err)
	assert.Equal(t, 2, gen.ShockCount())

	s := NewTrialSampler(11, 0)
	mirror := NewTrialSampler(11, 0)
	shocks := make([]float64, gen.ShockCount())
	dst := make([]float64, len(assets))
	gen.Returns(s, shocks, dst)

	z0, z1 := mirror.Draw(0, 1), mirror.Draw(0, 1)
	assert.InDelta(t, 0.05+z0*0.1, dst[0], 1e-12)
	assert.InDelta(t, 0.02+z1*0.3, dst[1], 1e-12)
}

func TestLegacyGenerator_SameGroupAccumulates(t *testing.T) {
	assets := []Asset{
		{ID: "a", ExpectedReturn: 0.04, Volatility: 0.2, CorrelationGroup: 1},
		{ID: "b", ExpectedReturn: 0.04, Volatility: 0.2, CorrelationGroup: 1},
	}
	gen, err := NewReturnGenerator(LegacyCorrelation, assets, [][]float64{{1}})
	require.NoError(t, err)

	s := NewTrialSampler(5, 2)
	mirror := NewTrialSampler(5, 2)
	shocks := make([]float64, gen.ShockCount())
	dst := make([]float64, len(assets))
	gen.Returns(s, shocks, dst)

	z0, z1 := mirror.Draw(0, 1), mirror.Draw(0, 1)
	assert.InDelta(t, 0.04+z0*0.2, dst[0], 1e-12)
	assert.InDelta(t, 0.04+(z0+z1)*0.2, dst[1], 1e-12)
}

// =============================================================================
// Cholesky generator
// =============================================================================

func TestCholeskyGenerator_RealisedCorrelation(t *testing.T) {
	assets := []Asset{
		{ID: "a", Volatility: 1, CorrelationGroup: 1},
		{ID: "b", Volatility: 1, CorrelationGroup: 2},
	}
	gen, err := NewReturnGenerator(CholeskyCorrelation, assets, [][]float64{{1, 0.6}, {0.6, 1}})
	require.NoError(t, err)

	s := NewTrialSampler(99, 0)
	shocks := make([]float64, gen.ShockCount())
	dst := make([]float64, 2)
	const n = 20000
	xs, ys := make([]float64, n), make([]float64, n)
	for i := 0; i < n; i++ {
		gen.Returns(s, shocks, dst)
		xs[i], ys[i] = dst[0], dst[1]
	}

	assert.InDelta(t, 0.6, stat.Correlation(xs, ys, nil), 0.03)
	assert.InDelta(t, 1.0, stat.StdDev(ys, nil), 0.03)
}

func TestCholeskyGenerator_SharedGroupShock(t *testing.T) {
	assets := []Asset{
		{ID: "a", ExpectedReturn: 0.01, Volatility: 0.1, CorrelationGroup: 1},
		{ID: "b", ExpectedReturn: 0.03, Volatility: 0.1, CorrelationGroup: 1},
	}
	gen, err := NewReturnGenerator(CholeskyCorrelation, assets, [][]float64{{1, 0}, {0, 1}})
	require.NoError(t, err)
	assert.Equal(t, 2, gen.ShockCount(), "one shock per group, not per asset")

	s := NewTrialSampler(3, 0)
	shocks := make([]float64, gen.ShockCount())
	dst := make([]float64, 2)
	gen.Returns(s, shocks, dst)

	assert.InDelta(t, dst[0]-0.01, dst[1]-0.03, 1e-12, "assets in one group move together")
}
