package spinclimate

import (
	"fmt"
	"math"
	"time"

	"github.com/hhkbp2/go-logging"
	"gonum.org/v1/gonum/stat"
)

// 平均堆積量に昇華量を含めるかどうか
type AccumulationMode string

const (
	AccumAuto           AccumulationMode = "auto"            // 通常モードは含める、SEBモードは含めない
	AccumSnowfall       AccumulationMode = "snowfall"        // BDOTのみ
	AccumSnowfallSublim AccumulationMode = "snowfall+sublim" // BDOT + SUBLIM
)

func ParseAccumulationMode(s string) (AccumulationMode, error) {
	switch AccumulationMode(s) {
	case "":
		return AccumAuto, nil
	case AccumAuto, AccumSnowfall, AccumSnowfallSublim:
		return AccumulationMode(s), nil
	}
	return "", fmt.Errorf("%w: accumulation must be auto, snowfall or snowfall+sublim (got %q)", ErrInvalidConfig, s)
}

// 時間解像度の変換
type Resampler struct {
	Cadence      Cadence
	TInterp      TInterp
	SEB          bool
	Accumulation AccumulationMode
	Constants    Constants
}

// リサンプリング結果
type Resampled struct {
	Table     *Table     // 区間ラベルを時刻とする表 (前方補完済み)
	DecDate   []float64  // 各行の10進年
	Variables []Variable // 存在する正準変数 (出力列順)

	StepsPerYear float64 // 1年あたりのステップ数 (実際の間隔から算出)
	BdotMeanIE   float64 // 平均堆積量 [m i.e./yr]
	TMean        float64 // 平均地表面温度 [K]
}

func (r Resampler) mode() string {
	if r.SEB {
		return "SEB"
	}
	return "standard"
}

func (r Resampler) includeSublim() bool {
	switch r.Accumulation {
	case AccumSnowfall:
		return false
	case AccumSnowfallSublim:
		return true
	}
	return !r.SEB
}

// 必要な変数の確認
func (r Resampler) checkRequired(tbl *Table) error {
	if !tbl.Has(string(BDOT)) {
		return &MissingVariableError{Variable: BDOT, Mode: r.mode()}
	}
	if r.SEB {
		if !tbl.Has(string(TSKIN)) && !tbl.Has(string(T2m)) {
			return &MissingVariableError{Variable: TSKIN, Mode: r.mode()}
		}
		return nil
	}
	if !tbl.Has(string(TSKIN)) {
		return &MissingVariableError{Variable: TSKIN, Mode: r.mode()}
	}
	return nil
}

// Resample は正準化された表を指定の間隔へ集計します。
//
// フラックスは区間の合計、それ以外は区間の平均とする。TSKIN は TInterp に従う。
// 集計後に欠損を前方補完し、10進年と1年あたりのステップ数を求める。
//
// Args:
//
//	tbl(*Table): Harmonize の出力
//
// Returns:
//
//	*Resampled: 集計後の表と平均値
func (r Resampler) Resample(tbl *Table) (*Resampled, error) {
	logger := logging.GetLogger(loggerName)

	if err := r.checkRequired(tbl); err != nil {
		return nil, err
	}
	if err := tbl.Validate(); err != nil {
		return nil, err
	}

	bins := r.Cadence.bins(tbl.Date)
	if len(bins) < 2 {
		return nil, fmt.Errorf("resample %s: at least two output steps are required, got %d", r.Cadence, len(bins))
	}
	logger.Debugf("resample %s: %d rows => %d steps", r.Cadence, tbl.Len(), len(bins))

	labels := make([]time.Time, len(bins))
	for i, b := range bins {
		labels[i] = b.Label
	}
	out := NewTable(labels)

	vars := []Variable{}
	for _, v := range CanonicalVariables(r.SEB) {
		col, ok := tbl.Series(v)
		if !ok {
			continue
		}
		vars = append(vars, v)
		logger.Debugf("  %s: %s", v, v.AggregationOf())
		agg := make([]float64, len(bins))
		for i, b := range bins {
			if v.AggregationOf() == AggSum {
				agg[i] = nanSum(col[b.Lo:b.Hi])
			} else {
				agg[i] = nanMean(col[b.Lo:b.Hi])
			}
		}
		out.Columns[string(v)] = agg
	}

	if tskin, ok := tbl.Series(TSKIN); ok {
		bdot, _ := tbl.Series(BDOT)
		out.Columns[string(TSKIN)] = r.resampleTemperature(bins, tskin, bdot)
	}

	// 平均温度は補完前の値で計算する
	tempVar := TSKIN
	if !out.Has(string(TSKIN)) {
		tempVar = T2m
	}
	tMean := nanMean(out.Columns[string(tempVar)])

	for _, v := range vars {
		forwardFill(out.Columns[string(v)])
	}

	decdate := DecimalDates(labels)
	diffs := make([]float64, len(decdate)-1)
	for i := 1; i < len(decdate); i++ {
		diffs[i-1] = decdate[i] - decdate[i-1]
	}
	stepsPerYear := 1 / stat.Mean(diffs, nil)

	toIE := r.Constants.ToIceEquivalent(stepsPerYear)
	bdot := out.Columns[string(BDOT)]
	sublim, hasSublim := out.Series(SUBLIM)
	withSublim := r.includeSublim() && hasSublim
	accum := make([]float64, len(bdot))
	for i := range bdot {
		accum[i] = bdot[i]
		if withSublim {
			accum[i] += sublim[i]
		}
		accum[i] *= toIE
	}
	bdotMeanIE := nanMean(accum)

	logger.Infof("steps per year: %.4f", stepsPerYear)
	logger.Infof("mean accumulation: %.5f m i.e./yr (sublimation included: %t)", bdotMeanIE, withSublim)
	logger.Infof("mean temperature (%s, %s): %.3f K", tempVar, r.TInterp, tMean)

	return &Resampled{
		Table:        out,
		DecDate:      decdate,
		Variables:    vars,
		StepsPerYear: stepsPerYear,
		BdotMeanIE:   bdotMeanIE,
		TMean:        tMean,
	}, nil
}

// 区間ごとの温度
func (r Resampler) resampleTemperature(bins []bin, tskin []float64, bdot []float64) []float64 {
	out := make([]float64, len(bins))
	for i, b := range bins {
		switch r.TInterp {
		case TInterpEffective:
			out[i] = EffectiveT(dropNaN(tskin[b.Lo:b.Hi]), r.Constants)
		case TInterpWeighted:
			out[i] = WeightedT(bdot[b.Lo:b.Hi], tskin[b.Lo:b.Hi])
		default:
			out[i] = nanMean(tskin[b.Lo:b.Hi])
		}
	}
	return out
}

// NaNを直前の値で埋める (先頭のNaNはそのまま)
func forwardFill(x []float64) {
	last := math.NaN()
	for i, v := range x {
		if math.IsNaN(v) {
			x[i] = last
		} else {
			last = v
		}
	}
}

// NaNを除いた合計 (空の場合は0)
func nanSum(x []float64) float64 {
	s := 0.0
	for _, v := range x {
		if !math.IsNaN(v) {
			s += v
		}
	}
	return s
}

func dropNaN(x []float64) []float64 {
	out := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
