package main

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

const correlationTolerance = 1e-9

// ReturnGenerator produces one year of correlated asset returns.
// Implementations hold only read-only data; shocks is caller-owned scratch
// of length ShockCount().
type ReturnGenerator interface {
	ShockCount() int
	Returns(s *NormalSampler, shocks, dst []float64)
}

// ValidateCorrelationMatrix checks shape, symmetry, unit diagonal and range
func ValidateCorrelationMatrix(m [][]float64) error {
	n := len(m)
	if n == 0 {
		return configErrorf(ErrCorrelationShape, "correlation matrix is empty")
	}
	for i, row := range m {
		if len(row) != n {
			return configErrorf(ErrCorrelationShape, "row %d has %d entries, want %d", i, len(row), n)
		}
	}
	for i := 0; i < n; i++ {
		if math.Abs(m[i][i]-1) > correlationTolerance {
			return configErrorf(ErrCorrelationDiagonal, "entry [%d][%d] = %g", i, i, m[i][i])
		}
		for j := 0; j < n; j++ {
			v := m[i][j]
			if math.IsNaN(v) || v < -1-correlationTolerance || v > 1+correlationTolerance {
				return configErrorf(ErrCorrelationRange, "entry [%d][%d] = %g", i, j, v)
			}
			if math.Abs(v-m[j][i]) > correlationTolerance {
				return configErrorf(ErrCorrelationAsymmetric, "entry [%d][%d] = %g but [%d][%d] = %g", i, j, v, j, i, m[j][i])
			}
		}
	}
	return nil
}

// lowerTriangularGenerator accumulates M[g_i][g_j]·z_j over j ≤ i.
// This is not a true Cholesky factorisation, so realised correlations only
// approximate the matrix, but the draw order and arithmetic match the
// projections the family office has been producing.
type lowerTriangularGenerator struct {
	means   []float64
	vols    []float64
	groups  []int // 0-based
	weights [][]float64
}

func newLowerTriangularGenerator(assets []Asset, groups []int, matrix [][]float64) *lowerTriangularGenerator {
	g := &lowerTriangularGenerator{
		means:   make([]float64, len(assets)),
		vols:    make([]float64, len(assets)),
		groups:  append([]int(nil), groups...),
		weights: cloneMatrix(matrix),
	}
	for i, a := range assets {
		g.means[i] = a.ExpectedReturn
		g.vols[i] = a.Volatility
	}
	return g
}

func (g *lowerTriangularGenerator) ShockCount() int { return len(g.means) }

func (g *lowerTriangularGenerator) Returns(s *NormalSampler, shocks, dst []float64) {
	for i := range g.means {
		shocks[i] = s.Draw(0, 1)
	}
	for i := range g.means {
		row := g.weights[g.groups[i]]
		corr := 0.0
		for j := 0; j <= i; j++ {
			corr += row[g.groups[j]] * shocks[j]
		}
		dst[i] = g.means[i] + corr*g.vols[i]
	}
}

// choleskyGenerator draws one shock per correlation group and correlates
// them with the lower Cholesky factor; assets share their group's shock.
type choleskyGenerator struct {
	means  []float64
	vols   []float64
	groups []int
	lower  [][]float64
	groupN int
}

func newCholeskyGenerator(assets []Asset, groups []int, matrix [][]float64) (*choleskyGenerator, error) {
	n := len(matrix)
	data := make([]float64, 0, n*n)
	for _, row := range matrix {
		data = append(data, row...)
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(mat.NewSymDense(n, data)); !ok {
		return nil, ErrNotPositiveDefinite
	}
	var l mat.TriDense
	chol.LTo(&l)

	lower := make([][]float64, n)
	for i := 0; i < n; i++ {
		lower[i] = make([]float64, i+1)
		for k := 0; k <= i; k++ {
			lower[i][k] = l.At(i, k)
		}
	}

	g := &choleskyGenerator{
		means:  make([]float64, len(assets)),
		vols:   make([]float64, len(assets)),
		groups: append([]int(nil), groups...),
		lower:  lower,
		groupN: n,
	}
	for i, a := range assets {
		g.means[i] = a.ExpectedReturn
		g.vols[i] = a.Volatility
	}
	return g, nil
}

func (g *choleskyGenerator) ShockCount() int { return g.groupN }

func (g *choleskyGenerator) Returns(s *NormalSampler, shocks, dst []float64) {
	for k := 0; k < g.groupN; k++ {
		shocks[k] = s.Draw(0, 1)
	}
	for i := range g.means {
		row := g.lower[g.groups[i]]
		corr := 0.0
		for k, w := range row {
			corr += w * shocks[k]
		}
		dst[i] = g.means[i] + corr*g.vols[i]
	}
}

// NewReturnGenerator validates the matrix and the asset groups and builds
// the generator for the requested mode
func NewReturnGenerator(mode CorrelationMode, assets []Asset, matrix [][]float64) (ReturnGenerator, error) {
	if err := ValidateCorrelationMatrix(matrix); err != nil {
		return nil, err
	}
	groups := make([]int, len(assets))
	for i, a := range assets {
		if a.CorrelationGroup < 1 || a.CorrelationGroup > len(matrix) {
			return nil, configErrorf(ErrCorrelationGroup, "asset %q group %d (matrix has %d groups)", a.ID, a.CorrelationGroup, len(matrix))
		}
		groups[i] = a.CorrelationGroup - 1
	}

	switch mode {
	case "", LegacyCorrelation:
		return newLowerTriangularGenerator(assets, groups, matrix), nil
	case CholeskyCorrelation:
		return newCholeskyGenerator(assets, groups, matrix)
	default:
		return nil, configErrorf(ErrUnknownOption, "correlation mode %q", mode)
	}
}

func cloneMatrix(m [][]float64) [][]float64 {
	if m == nil {
		return nil
	}
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = append([]float64(nil), row...)
	}
	return out
}
