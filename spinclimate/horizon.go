package spinclimate

import (
	"fmt"

	"github.com/hhkbp2/go-logging"
	"gonum.org/v1/gonum/floats"
)

// 深度
type Horizons struct {
	TargetDepth float64 // 計算領域の底 (RhoBottom に達する深度) [m]
	DepthS1     float64 // 1つ目の密度ホライズンの深度 [m]
	DepthS2     float64 // 2つ目の密度ホライズンの深度 [m]
}

// 既定の密度ホライズン [kg/m3]
var (
	DefaultHorizonDensities    = [2]float64{450, 650}
	DefaultSEBHorizonDensities = [2]float64{550, 750}
)

// 密度ホライズンの深度を求める
type HorizonSolver struct {
	Model            DensityModel
	RhoSurface       float64    // 表層密度 [kg/m3]
	RhoBottom        float64    // 計算領域の底の密度 [kg/m3]
	HorizonDensities [2]float64 // S1, S2 の密度 [kg/m3]
	Depth            []float64  // 評価深度 [m]
}

// DepthGrid は 0 から depthMax までの step 間隔の深度を返します。
func DepthGrid(depthMax float64, step float64) []float64 {
	n := int(depthMax/step+1e-9) + 1
	if n < 2 {
		return []float64{0}
	}
	grid := make([]float64, n)
	floats.Span(grid, 0, step*float64(n-1))
	return grid
}

// Solve は平均温度と平均堆積量から深度を求めます。
//
// desiredDepth > 0 の場合はモデルを使わず、S1, S2 をその 0.5倍, 0.75倍とする。
//
// Args:
//
//	tMean(float64): 平均温度 [K]
//	bdotMeanIE(float64): 平均堆積量 [m i.e./yr]
//	desiredDepth(float64): 明示的な計算領域の深さ [m] (0の場合は未指定)
func (s HorizonSolver) Solve(tMean float64, bdotMeanIE float64, desiredDepth float64) (Horizons, error) {
	logger := logging.GetLogger(loggerName)

	if desiredDepth < 0 {
		return Horizons{}, fmt.Errorf("%w: desired depth must not be negative (got %g)", ErrInvalidConfig, desiredDepth)
	}
	if desiredDepth > 0 {
		return Horizons{
			TargetDepth: desiredDepth,
			DepthS1:     desiredDepth * 0.5,
			DepthS2:     desiredDepth * 0.75,
		}, nil
	}
	if len(s.Depth) == 0 {
		return Horizons{}, fmt.Errorf("%w: empty depth grid", ErrInvalidConfig)
	}
	if !(bdotMeanIE > 0) {
		return Horizons{}, fmt.Errorf("mean accumulation must be positive to evaluate the density profile (got %g m i.e./yr)", bdotMeanIE)
	}

	_, rho := s.Model.Profile(s.RhoSurface, s.Depth, tMean, bdotMeanIE)

	target, err := s.firstDepth(rho, s.RhoBottom)
	if err != nil {
		return Horizons{}, err
	}
	s1, err := s.firstDepth(rho, s.HorizonDensities[0])
	if err != nil {
		return Horizons{}, err
	}
	s2, err := s.firstDepth(rho, s.HorizonDensities[1])
	if err != nil {
		return Horizons{}, err
	}

	logger.Infof("target depth %.1f m (%.0f kg/m3), S1 %.1f m (%.0f), S2 %.1f m (%.0f)",
		target, s.RhoBottom, s1, s.HorizonDensities[0], s2, s.HorizonDensities[1])

	return Horizons{TargetDepth: target, DepthS1: s1, DepthS2: s2}, nil
}

// 密度が threshold 以上となる最も浅い深度
func (s HorizonSolver) firstDepth(rho []float64, threshold float64) (float64, error) {
	for i, r := range rho {
		if r >= threshold {
			return s.Depth[i], nil
		}
	}
	return 0, &UnreachableDensityError{
		Threshold:  threshold,
		DepthMin:   s.Depth[0],
		DepthMax:   s.Depth[len(s.Depth)-1],
		MaxDensity: maxDensity(rho),
	}
}

func maxDensity(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return floats.Max(x)
}
