package spinclimate

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// 温度のリサンプリング方法
type TInterp string

const (
	TInterpMean      TInterp = "mean"      // 算術平均
	TInterpEffective TInterp = "effective" // アレニウス平均
	TInterpWeighted  TInterp = "weighted"  // 堆積量による重み付き平均
)

func ParseTInterp(s string) (TInterp, error) {
	switch TInterp(s) {
	case TInterpMean, TInterpEffective, TInterpWeighted:
		return TInterp(s), nil
	}
	return "", fmt.Errorf("%w: tinterp must be mean, effective or weighted (got %q)", ErrInvalidConfig, s)
}

// EffectiveT はアレニウス平均温度を返します。
//
//	T_eff = Q / (R ln(mean(exp(Q / (R T)))))
//
// Args:
//
//	T([]float64): 温度[K]
//	c(Constants): Q, R を参照する
//
// Returns:
//
//	float64: アレニウス平均温度[K] (空の場合はNaN)
func EffectiveT(T []float64, c Constants) float64 {
	if len(T) == 0 {
		return math.NaN()
	}
	k := make([]float64, len(T))
	for i, t := range T {
		k[i] = math.Exp(c.ArrheniusQ / (c.GasR * t))
	}
	km := stat.Mean(k, nil)
	return c.ArrheniusQ / (c.GasR * math.Log(km))
}

// WeightedT は堆積量 bdot で重み付けした平均温度を返します。
// 区間内の堆積量の合計が0の場合はNaN(後で前方補完される)。
func WeightedT(bdot []float64, T []float64) float64 {
	den := floats.Sum(bdot)
	if den == 0 {
		return math.NaN()
	}
	return floats.Dot(bdot, T) / den
}

// 区間平均 (空の場合はNaN)
func meanOrNaN(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return stat.Mean(x, nil)
}

// NaNを除いた平均
func nanMean(x []float64) float64 {
	return meanOrNaN(dropNaN(x))
}
