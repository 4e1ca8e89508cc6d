package spinclimate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 深度に比例して密度が増える単純なモデル
type linearModel struct {
	rate  float64
	calls int
}

func (m *linearModel) Profile(rho0 float64, depth []float64, temperature float64, accumulation float64) ([]float64, []float64) {
	m.calls++
	age := make([]float64, len(depth))
	rho := make([]float64, len(depth))
	for i, h := range depth {
		age[i] = h / accumulation
		rho[i] = rho0 + m.rate*h
	}
	return age, rho
}

func solver(model DensityModel) HorizonSolver {
	return HorizonSolver{
		Model:            model,
		RhoSurface:       350,
		RhoBottom:        916,
		HorizonDensities: DefaultHorizonDensities,
		Depth:            DepthGrid(500, 1),
	}
}

func Test_DepthGrid(t *testing.T) {
	grid := DepthGrid(500, 1)
	require.Len(t, grid, 501)
	assert.Equal(t, 0.0, grid[0])
	assert.Equal(t, 250.0, grid[250])
	assert.Equal(t, 500.0, grid[500])

	assert.Equal(t, []float64{0, 0.5, 1}, DepthGrid(1, 0.5))
}

func Test_HorizonSolver_ExplicitDepth(t *testing.T) {
	m := &linearModel{rate: 1}
	h, err := solver(m).Solve(250, 0.2, 123.0)
	require.NoError(t, err)

	assert.Equal(t, 123.0, h.TargetDepth)
	assert.Equal(t, 0.5*123.0, h.DepthS1)
	assert.Equal(t, 0.75*123.0, h.DepthS2)
	// モデルは呼ばれない
	assert.Equal(t, 0, m.calls)
}

func Test_HorizonSolver_Lookup(t *testing.T) {
	// rho = 350 + 2h => 450 at 50, 650 at 150, 916 at 283
	m := &linearModel{rate: 2}
	h, err := solver(m).Solve(250, 0.2, 0)
	require.NoError(t, err)

	assert.Equal(t, 283.0, h.TargetDepth)
	assert.Equal(t, 50.0, h.DepthS1)
	assert.Equal(t, 150.0, h.DepthS2)
	assert.Equal(t, 1, m.calls)
}

func Test_HorizonSolver_Unreachable(t *testing.T) {
	m := &linearModel{rate: 0.5}
	_, err := solver(m).Solve(250, 0.2, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnreachableDensity))

	var ue *UnreachableDensityError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, 916.0, ue.Threshold)
	assert.Equal(t, 0.0, ue.DepthMin)
	assert.Equal(t, 500.0, ue.DepthMax)
	assert.Equal(t, 600.0, ue.MaxDensity)
}

func Test_HorizonSolver_HerronLangway(t *testing.T) {
	s := solver(NewHerronLangway(DefaultConstants()))

	// Summit付近の気候
	h, err := s.Solve(241, 0.23, 0)
	require.NoError(t, err)
	assert.Greater(t, h.TargetDepth, 200.0)
	assert.Less(t, h.TargetDepth, 350.0)
	assert.Less(t, h.DepthS1, h.DepthS2)
	assert.Less(t, h.DepthS2, h.TargetDepth)

	// 堆積量が大きいと500mでは916に届かない
	_, err = s.Solve(250, 3.98, 0)
	assert.True(t, errors.Is(err, ErrUnreachableDensity))
}

func Test_HorizonSolver_InvalidInputs(t *testing.T) {
	s := solver(&linearModel{rate: 2})

	_, err := s.Solve(250, 0.2, -1)
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	_, err = s.Solve(250, 0, 0)
	assert.Error(t, err)
}
